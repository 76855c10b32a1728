package attendance

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"rollbook/internal/store"
)

// Record is one attendance mark, joined with the student's identity
// fields when read back.
type Record struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RollNo    string    `json:"roll_no,omitempty"`
	Name      string    `json:"name,omitempty"`
}

// StatusCount is one row of a status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Repo persists attendance in Postgres.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a repo.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Upsert writes the mark for (studentID, date). A second mark for the
// same day lands on the unique (student_id, date) key and overwrites
// status and timestamp of the existing row, so two concurrent marks
// serialize inside the database and never produce two rows.
func (r *Repo) Upsert(ctx context.Context, studentID string, date time.Time, status string) (Record, error) {
	rec := Record{StudentID: studentID, Date: date, Status: status}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance (id, student_id, date, status, timestamp)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (student_id, date)
		DO UPDATE SET status = EXCLUDED.status, timestamp = NOW()
		RETURNING id, timestamp
	`, uuid.NewString(), studentID, date, status).Scan(&rec.ID, &rec.Timestamp)
	if store.IsForeignKeyViolation(err) {
		return Record{}, ErrStudentNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// QueryByDate returns records joined with student identity. With a date
// it returns that day ordered by roll number; with nil it returns
// everything ordered by date descending then roll number.
func (r *Repo) QueryByDate(ctx context.Context, date *time.Time) ([]Record, error) {
	query := `
		SELECT a.id, a.student_id, a.date, a.status, a.timestamp, s.roll_no, s.name
		FROM attendance a
		JOIN students s ON s.id = a.student_id`
	var args []any
	if date != nil {
		query += ` WHERE a.date = $1 ORDER BY s.roll_no`
		args = append(args, *date)
	} else {
		query += ` ORDER BY a.date DESC, s.roll_no`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.Date, &rec.Status, &rec.Timestamp, &rec.RollNo, &rec.Name); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByStatus returns how many records carry each status, for one day
// or across all days when date is nil.
func (r *Repo) CountByStatus(ctx context.Context, date *time.Time) ([]StatusCount, error) {
	query := `SELECT status, COUNT(*) FROM attendance`
	var args []any
	if date != nil {
		query += ` WHERE date = $1`
		args = append(args, *date)
	}
	query += ` GROUP BY status ORDER BY status`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
