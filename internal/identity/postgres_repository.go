package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const usersSchema = `CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    pin           TEXT NOT NULL,
    mobile_number TEXT NOT NULL,
    email         TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT '',
    photo_url     TEXT NOT NULL DEFAULT '',
    balance       BIGINT NOT NULL DEFAULT 0,
    status        TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL,
    CONSTRAINT users_mobile_number_key UNIQUE (mobile_number),
    CONSTRAINT users_email_key UNIQUE (email)
)`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByMobileOrEmail fetches the first user matching either identifier.
func (r *PostgresRepository) FindByMobileOrEmail(ctx context.Context, mobile, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, pin, mobile_number, email, role, photo_url, balance, status, created_at, updated_at
        FROM users WHERE mobile_number = $1 OR email = $2 LIMIT 1`, mobile, email)
	var (
		id        uuid.UUID
		createdAt time.Time
		updatedAt time.Time
		user      User
	)
	err := row.Scan(&id, &user.Name, &user.PIN, &user.MobileNumber, &user.Email, &user.Role, &user.PhotoURL,
		&user.Balance, &user.Status, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	user.UpdatedAt = updatedAt.UTC()
	return user, nil
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx, `INSERT INTO users (id, name, pin, mobile_number, email, role, photo_url, balance, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, user.Name, user.PIN, user.MobileNumber, user.Email, user.Role, user.PhotoURL,
		user.Balance, user.Status, user.CreatedAt.UTC(), user.UpdatedAt.UTC())
	if isUniqueViolation(err) {
		return User{}, ErrDuplicateKey
	}
	if err != nil {
		return User{}, err
	}
	user.ID = id.String()
	return user, nil
}

// EnsureIndexes creates the users table with its unique constraints.
func (r *PostgresRepository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, usersSchema); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// Ping checks connectivity to the database.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
