package identity

import (
	"context"
	"database/sql"
	"errors"

	"rollbook/internal/store"
)

// User is an operator account. Accounts are created once and never
// updated or deleted by the application.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash []byte `json:"-"`
}

// Repo persists accounts in Postgres.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a repo.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Insert writes a new account row.
func (r *Repo) Insert(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash)
		VALUES ($1, $2, $3)
	`, u.ID, u.Username, u.PasswordHash)
	if store.IsUniqueViolation(err) {
		return ErrDuplicateUsername
	}
	return err
}

// GetByUsername returns the account for username, or ErrUnknownUser.
func (r *Repo) GetByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUnknownUser
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
