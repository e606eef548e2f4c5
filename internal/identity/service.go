package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/moneyon/moneyon_server/internal/notification"
)

var (
	// ErrDuplicateUser means the mobile number or email is already registered.
	ErrDuplicateUser = errors.New("user already exists with this mobile number or email")

	// ErrInvalidCredentials covers both an unknown identifier and a wrong PIN.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service manages the credential lifecycle: registration and login.
type Service struct {
	repo      Repository
	hasher    PINHasher
	notifier  notification.Notifier
	logger    *slog.Logger
	dummyHash string
	now       func() time.Time
}

// NewService creates a new identity service. notifier may be nil.
func NewService(repo Repository, hasher PINHasher, notifier notification.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	// Compared against on unknown identifiers so both failure paths pay for one bcrypt run.
	dummy, err := hasher.Hash("moneyon-dummy-pin")
	if err != nil {
		logger.Warn("dummy pin hash unavailable", slog.Any("error", err))
	}
	return &Service{
		repo:      repo,
		hasher:    hasher,
		notifier:  notifier,
		logger:    logger,
		dummyHash: dummy,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register stores a new pending user with a hashed PIN.
func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
	_, err := s.repo.FindByMobileOrEmail(ctx, reg.MobileNumber, reg.Email)
	switch {
	case err == nil:
		return User{}, ErrDuplicateUser
	case !errors.Is(err, ErrUserNotFound):
		return User{}, fmt.Errorf("lookup existing user: %w", err)
	}

	hash, err := s.hasher.Hash(reg.PIN)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	user := User{
		Name:         reg.Name,
		PIN:          hash,
		MobileNumber: reg.MobileNumber,
		Email:        reg.Email,
		Role:         reg.Role,
		PhotoURL:     reg.PhotoURL,
		Balance:      0,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		// Lost the race against a concurrent registration.
		if errors.Is(err, ErrDuplicateKey) {
			return User{}, ErrDuplicateUser
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	s.notifyRegistered(ctx, created)
	return created, nil
}

// Login verifies the PIN for the user identified by email or mobile number
// and returns the public profile.
func (s *Service) Login(ctx context.Context, creds Credentials) (Profile, error) {
	if creds.EmailOrMobile == "" {
		s.burnComparison(creds.PIN)
		return Profile{}, ErrInvalidCredentials
	}

	user, err := s.repo.FindByMobileOrEmail(ctx, creds.EmailOrMobile, creds.EmailOrMobile)
	if errors.Is(err, ErrUserNotFound) {
		s.burnComparison(creds.PIN)
		return Profile{}, ErrInvalidCredentials
	}
	if err != nil {
		return Profile{}, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.hasher.Matches(user.PIN, creds.PIN)
	if err != nil {
		return Profile{}, err
	}
	if !ok {
		return Profile{}, ErrInvalidCredentials
	}

	return ProfileOf(user), nil
}

func (s *Service) burnComparison(pin string) {
	if s.dummyHash == "" {
		return
	}
	_, _ = s.hasher.Matches(s.dummyHash, pin)
}

func (s *Service) notifyRegistered(ctx context.Context, user User) {
	if s.notifier == nil {
		return
	}
	destination := user.Email
	if destination == "" {
		destination = user.MobileNumber
	}
	msg := notification.Message{
		Kind:        notification.KindUserRegistered,
		Destination: destination,
		Body:        fmt.Sprintf("user %s registered, status %s", user.ID, user.Status),
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("registration notification failed", slog.String("user_id", user.ID), slog.Any("error", err))
	}
}
