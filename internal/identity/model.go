package identity

import "time"

// StatusPending marks an account that registered but has not been approved.
const StatusPending = "pending"

// User is the stored account record. PIN holds the bcrypt hash, never the secret.
type User struct {
	ID           string
	Name         string
	PIN          string
	MobileNumber string
	Email        string
	Role         string
	PhotoURL     string
	Balance      int64
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Registration is the input accepted by Service.Register.
type Registration struct {
	Name         string
	PIN          string
	MobileNumber string
	Email        string
	Role         string
	PhotoURL     string
}

// Credentials is the input accepted by Service.Login. EmailOrMobile is
// matched against both identifiers.
type Credentials struct {
	EmailOrMobile string
	PIN           string
}

// Profile is the subset of a user returned after a successful login.
type Profile struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobileNumber"`
	Balance      int64  `json:"balance"`
	PhotoURL     string `json:"photoURL"`
	Role         string `json:"role"`
}

// ProfileOf projects a user onto the fields clients may see.
func ProfileOf(u User) Profile {
	return Profile{
		Name:         u.Name,
		MobileNumber: u.MobileNumber,
		Balance:      u.Balance,
		PhotoURL:     u.PhotoURL,
		Role:         u.Role,
	}
}
