package roster

import (
	"context"
	"database/sql"
	"fmt"

	"rollbook/internal/store"
)

// Student is one roster entry.
type Student struct {
	ID         string `json:"id"`
	RollNo     string `json:"roll_no"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Year       int    `json:"year"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

// Repo persists students in Postgres.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a repo.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Insert writes a new student row.
func (r *Repo) Insert(ctx context.Context, s Student) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (id, roll_no, name, department, year, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.ID, s.RollNo, s.Name, s.Department, s.Year, s.Phone, s.Address)
	if store.IsUniqueViolation(err) {
		return ErrDuplicateRollNo
	}
	return err
}

// ListAll returns every student ordered by roll number.
func (r *Repo) ListAll(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, roll_no, name, department, year, phone, address
		FROM students
		ORDER BY roll_no
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.RollNo, &s.Name, &s.Department, &s.Year, &s.Phone, &s.Address); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Update replaces every mutable field of the row identified by id.
func (r *Repo) Update(ctx context.Context, s Student) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE students
		SET roll_no = $2, name = $3, department = $4, year = $5, phone = $6, address = $7
		WHERE id = $1
	`, s.ID, s.RollNo, s.Name, s.Department, s.Year, s.Phone, s.Address)
	if store.IsUniqueViolation(err) {
		return ErrDuplicateRollNo
	}
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a student and its attendance rows. The attendance delete
// runs first inside the transaction so the cascade holds even if the
// foreign key were ever created without ON DELETE CASCADE. A missing id
// deletes nothing and returns nil.
func (r *Repo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE student_id = $1`, id); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return tx.Commit()
}
