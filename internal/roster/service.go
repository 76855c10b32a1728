package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrDuplicateRollNo rejects a roll number already on the roster.
	ErrDuplicateRollNo = errors.New("roll number already exists")
	// ErrNotFound is returned when an update targets a missing student.
	ErrNotFound = errors.New("student not found")
)

const (
	minYear = 1
	maxYear = 10
)

// Repository defines persistence operations for students.
type Repository interface {
	Insert(ctx context.Context, s Student) error
	ListAll(ctx context.Context) ([]Student, error)
	Update(ctx context.Context, s Student) error
	Delete(ctx context.Context, id string) error
}

// Service validates and applies roster changes.
type Service struct {
	repo Repository
}

// NewService creates a service backed by a repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add inserts a new student and returns it with a generated id.
func (s *Service) Add(ctx context.Context, st Student) (Student, error) {
	if err := validate(&st); err != nil {
		return Student{}, err
	}
	st.ID = uuid.NewString()
	if err := s.repo.Insert(ctx, st); err != nil {
		return Student{}, err
	}
	return st, nil
}

// ListAll returns the roster ordered by roll number. An empty roster is
// an empty slice, not an error.
func (s *Service) ListAll(ctx context.Context) ([]Student, error) {
	students, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []Student{}
	}
	return students, nil
}

// Update replaces all fields of the student identified by st.ID.
func (s *Service) Update(ctx context.Context, st Student) error {
	if st.ID == "" {
		return ErrNotFound
	}
	if err := validate(&st); err != nil {
		return err
	}
	return s.repo.Update(ctx, st)
}

// Delete removes a student and all attendance referencing it. Deleting a
// missing id is a no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.repo.Delete(ctx, id)
}

func validate(st *Student) error {
	st.RollNo = strings.TrimSpace(st.RollNo)
	if st.RollNo == "" {
		return errors.New("roll number required")
	}
	if st.Year < minYear || st.Year > maxYear {
		return fmt.Errorf("year must be between %d and %d", minYear, maxYear)
	}
	return nil
}
