package identity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersCollection is the collection holding one document per user.
const UsersCollection = "users"

// balanceValue is written as an int64 and read from any BSON number, since
// other processes sharing the collection may store balances as doubles.
// Fractional values round to the nearest whole unit.
type balanceValue int64

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (b *balanceValue) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Int32:
		*b = balanceValue(raw.Int32())
	case bsontype.Int64:
		*b = balanceValue(raw.Int64())
	case bsontype.Double:
		*b = balanceValue(math.Round(raw.Double()))
	case bsontype.Null, bsontype.Undefined:
		*b = 0
	default:
		return fmt.Errorf("decode balance: unsupported bson type %s", t)
	}
	return nil
}

// userDocument is the BSON shape of a user in MongoDB.
type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	PIN          string             `bson:"pin"`
	MobileNumber string             `bson:"mobileNumber"`
	Email        string             `bson:"email"`
	Role         string             `bson:"role,omitempty"`
	PhotoURL     string             `bson:"photoURL,omitempty"`
	Balance      balanceValue       `bson:"balance"`
	Status       string             `bson:"status"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func toDocument(u User) userDocument {
	return userDocument{
		Name:         u.Name,
		PIN:          u.PIN,
		MobileNumber: u.MobileNumber,
		Email:        u.Email,
		Role:         u.Role,
		PhotoURL:     u.PhotoURL,
		Balance:      balanceValue(u.Balance),
		Status:       u.Status,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDocument) toUser() User {
	return User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		PIN:          d.PIN,
		MobileNumber: d.MobileNumber,
		Email:        d.Email,
		Role:         d.Role,
		PhotoURL:     d.PhotoURL,
		Balance:      int64(d.Balance),
		Status:       d.Status,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// identifierFilter matches documents by mobile number OR email.
func identifierFilter(mobile, email string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"mobileNumber": mobile},
		bson.M{"email": email},
	}}
}

// MongoRepository implements Repository on a MongoDB collection.
type MongoRepository struct {
	client *mongo.Client
	users  *mongo.Collection
}

// NewMongoRepository builds a repository over db.users.
func NewMongoRepository(client *mongo.Client, database string) *MongoRepository {
	return &MongoRepository{
		client: client,
		users:  client.Database(database).Collection(UsersCollection),
	}
}

// FindByMobileOrEmail fetches the first user matching either identifier.
func (r *MongoRepository) FindByMobileOrEmail(ctx context.Context, mobile, email string) (User, error) {
	var doc userDocument
	err := r.users.FindOne(ctx, identifierFilter(mobile, email)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return doc.toUser(), nil
}

// Create inserts a new user document.
func (r *MongoRepository) Create(ctx context.Context, user User) (User, error) {
	res, err := r.users.InsertOne(ctx, toDocument(user))
	if mongo.IsDuplicateKeyError(err) {
		return User{}, ErrDuplicateKey
	}
	if err != nil {
		return User{}, err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return User{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	user.ID = oid.Hex()
	return user, nil
}

// EnsureIndexes creates unique indexes on mobileNumber and email.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mobileNumber", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_mobileNumber"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

// Ping checks connectivity to the primary.
func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}
