// Package schema creates the rollbook tables and seeds the default
// operator account. Initialize is safe to run on every process start.
package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT UNIQUE NOT NULL,
		password_hash BYTEA NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id         TEXT PRIMARY KEY,
		roll_no    TEXT UNIQUE NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		year       INT NOT NULL DEFAULT 1,
		phone      TEXT NOT NULL DEFAULT '',
		address    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id         TEXT PRIMARY KEY,
		student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		date       DATE NOT NULL,
		status     TEXT NOT NULL,
		timestamp  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (student_id, date)
	)`,
}

// Initialize ensures the three tables exist and that the default admin
// account is present. The attendance table carries a unique key on
// (student_id, date) so the one-record-per-day rule is enforced by the
// database, and the foreign key cascades so deleting a student removes
// its attendance rows.
func Initialize(ctx context.Context, db *sql.DB, adminUsername, adminPassword string) error {
	if db == nil {
		return errors.New("schema: nil database handle")
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema: create tables: %w", err)
		}
	}
	return seedAdmin(ctx, db, adminUsername, adminPassword)
}

func seedAdmin(ctx context.Context, db *sql.DB, username, password string) error {
	var id string
	err := db.QueryRowContext(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("schema: check admin: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("schema: hash admin password: %w", err)
	}
	// ON CONFLICT keeps a concurrent start from failing on the unique username.
	_, err = db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING
	`, uuid.NewString(), username, hashed)
	if err != nil {
		return fmt.Errorf("schema: seed admin: %w", err)
	}
	return nil
}
