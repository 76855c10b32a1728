package attendance

import (
	"context"
	"errors"
	"sort"
	"time"
)

// Valid attendance statuses. Once a day is marked it can only flip
// between these two; there is no way back to unmarked.
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

var (
	// ErrInvalidStatus rejects any status outside Present/Absent before a write.
	ErrInvalidStatus = errors.New("status must be Present or Absent")
	// ErrStudentNotFound is returned when a mark references an unknown student.
	ErrStudentNotFound = errors.New("student not found")
)

// Repository defines persistence operations for attendance.
type Repository interface {
	Upsert(ctx context.Context, studentID string, date time.Time, status string) (Record, error)
	QueryByDate(ctx context.Context, date *time.Time) ([]Record, error)
	CountByStatus(ctx context.Context, date *time.Time) ([]StatusCount, error)
}

// Service validates and applies attendance marks.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a service backed by a repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Mark records status for a student on the given day. A zero date means
// today. Marking the same day again overwrites the earlier status.
func (s *Service) Mark(ctx context.Context, studentID, status string, date time.Time) (Record, error) {
	if studentID == "" {
		return Record{}, ErrStudentNotFound
	}
	if status != StatusPresent && status != StatusAbsent {
		return Record{}, ErrInvalidStatus
	}
	return s.repo.Upsert(ctx, studentID, s.day(date), status)
}

// BatchResult is the outcome of one entry of a batch mark.
type BatchResult struct {
	StudentID string `json:"student_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// OK reports whether the entry was applied.
func (b BatchResult) OK() bool { return b.Error == "" }

// MarkBatch applies Mark for every entry independently. A failing entry
// never blocks the others; the returned report carries one result per
// student, in student-id order.
func (s *Service) MarkBatch(ctx context.Context, marks map[string]string, date time.Time) []BatchResult {
	ids := make([]string, 0, len(marks))
	for id := range marks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make([]BatchResult, 0, len(ids))
	for _, id := range ids {
		res := BatchResult{StudentID: id, Status: marks[id]}
		if _, err := s.Mark(ctx, id, marks[id], date); err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

// QueryByDate returns records for one day (roll-number order) or, with a
// nil date, all records newest day first.
func (s *Service) QueryByDate(ctx context.Context, date *time.Time) ([]Record, error) {
	if date != nil {
		d := s.day(*date)
		date = &d
	}
	records, err := s.repo.QueryByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Summary returns the status breakdown for one day, or all days when
// date is nil.
func (s *Service) Summary(ctx context.Context, date *time.Time) ([]StatusCount, error) {
	if date != nil {
		d := s.day(*date)
		date = &d
	}
	counts, err := s.repo.CountByStatus(ctx, date)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []StatusCount{}
	}
	return counts, nil
}

// day truncates to a calendar date in UTC; zero means today.
func (s *Service) day(t time.Time) time.Time {
	if t.IsZero() {
		t = s.now()
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
