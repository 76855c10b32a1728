package attendance

import (
	"context"
	"sort"
	"testing"
	"time"
)

// fakeRepo models the unique (student_id, date) key in memory.
type fakeRepo struct {
	records map[string]Record
	known   map[string]bool
}

func newFakeRepo(studentIDs ...string) *fakeRepo {
	known := make(map[string]bool)
	for _, id := range studentIDs {
		known[id] = true
	}
	return &fakeRepo{records: make(map[string]Record), known: known}
}

func (f *fakeRepo) key(studentID string, date time.Time) string {
	return studentID + "|" + date.Format(DateLayout)
}

func (f *fakeRepo) Upsert(_ context.Context, studentID string, date time.Time, status string) (Record, error) {
	if !f.known[studentID] {
		return Record{}, ErrStudentNotFound
	}
	k := f.key(studentID, date)
	rec, ok := f.records[k]
	if !ok {
		rec = Record{ID: k, StudentID: studentID, Date: date}
	}
	rec.Status = status
	rec.Timestamp = time.Now()
	f.records[k] = rec
	return rec, nil
}

func (f *fakeRepo) QueryByDate(_ context.Context, date *time.Time) ([]Record, error) {
	var out []Record
	for _, rec := range f.records {
		if date == nil || rec.Date.Equal(*date) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out, nil
}

func (f *fakeRepo) CountByStatus(_ context.Context, date *time.Time) ([]StatusCount, error) {
	counts := make(map[string]int)
	for _, rec := range f.records {
		if date == nil || rec.Date.Equal(*date) {
			counts[rec.Status]++
		}
	}
	var out []StatusCount
	for status, n := range counts {
		out = append(out, StatusCount{Status: status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMarkRejectsInvalidStatus(t *testing.T) {
	repo := newFakeRepo("s1")
	svc := NewService(repo)
	for _, status := range []string{"", "present", "Late", "PRESENT", "Excused"} {
		if _, err := svc.Mark(context.Background(), "s1", status, day(2024, 1, 10)); err != ErrInvalidStatus {
			t.Fatalf("status %q: expected ErrInvalidStatus, got %v", status, err)
		}
	}
	if len(repo.records) != 0 {
		t.Fatalf("invalid statuses must not write, got %d records", len(repo.records))
	}
}

func TestMarkTwiceLeavesOneRecord(t *testing.T) {
	repo := newFakeRepo("s1")
	svc := NewService(repo)
	d := day(2024, 1, 10)

	for i := 0; i < 2; i++ {
		if _, err := svc.Mark(context.Background(), "s1", StatusPresent, d); err != nil {
			t.Fatalf("mark %d: %v", i, err)
		}
	}
	records, err := svc.QueryByDate(context.Background(), &d)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 || records[0].Status != StatusPresent {
		t.Fatalf("expected one Present record, got %+v", records)
	}
}

func TestMarkOverwritesStatus(t *testing.T) {
	repo := newFakeRepo("s1")
	svc := NewService(repo)
	d := day(2024, 1, 10)

	if _, err := svc.Mark(context.Background(), "s1", StatusPresent, d); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if _, err := svc.Mark(context.Background(), "s1", StatusAbsent, d); err != nil {
		t.Fatalf("second mark: %v", err)
	}

	records, err := svc.QueryByDate(context.Background(), &d)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected overwrite not append, got %d records", len(records))
	}
	if records[0].Status != StatusAbsent {
		t.Fatalf("expected last writer Absent, got %s", records[0].Status)
	}
}

func TestMarkDefaultsToToday(t *testing.T) {
	repo := newFakeRepo("s1")
	svc := NewService(repo)
	fixed := time.Date(2024, 3, 15, 22, 45, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	rec, err := svc.Mark(context.Background(), "s1", StatusPresent, time.Time{})
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	want := day(2024, 3, 15)
	if !rec.Date.Equal(want) {
		t.Fatalf("expected date %s, got %s", want, rec.Date)
	}
}

func TestMarkBatchIsBestEffort(t *testing.T) {
	repo := newFakeRepo("s1", "s3")
	svc := NewService(repo)
	d := day(2024, 1, 10)

	results := svc.MarkBatch(context.Background(), map[string]string{
		"s1": StatusPresent,
		"s2": StatusAbsent, // unknown student
		"s3": StatusAbsent,
	}, d)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
			if res.StudentID != "s2" {
				t.Fatalf("expected only s2 to fail, got %s: %s", res.StudentID, res.Error)
			}
		}
	}
	if failed != 1 {
		t.Fatalf("expected 1 failure, got %d", failed)
	}

	records, err := svc.QueryByDate(context.Background(), &d)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("failing entry must not block others, got %d records", len(records))
	}
}

func TestQueryByDateOrdering(t *testing.T) {
	repo := newFakeRepo("s1")
	svc := NewService(repo)

	if _, err := svc.Mark(context.Background(), "s1", StatusPresent, day(2024, 1, 10)); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if _, err := svc.Mark(context.Background(), "s1", StatusAbsent, day(2024, 1, 11)); err != nil {
		t.Fatalf("mark: %v", err)
	}

	d := day(2024, 1, 10)
	one, err := svc.QueryByDate(context.Background(), &d)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(one) != 1 || one[0].Status != StatusPresent {
		t.Fatalf("expected one Present row for Jan 10, got %+v", one)
	}

	all, err := svc.QueryByDate(context.Background(), nil)
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(all))
	}
	if !all[0].Date.Equal(day(2024, 1, 11)) {
		t.Fatalf("expected newest day first, got %s", all[0].Date)
	}
}

func TestQueryByDateEmptyIsNotNil(t *testing.T) {
	svc := NewService(newFakeRepo())
	records, err := svc.QueryByDate(context.Background(), nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty slice, got %v", records)
	}
}

func TestSummaryCounts(t *testing.T) {
	repo := newFakeRepo("s1", "s2", "s3")
	svc := NewService(repo)
	d := day(2024, 1, 10)

	svc.MarkBatch(context.Background(), map[string]string{
		"s1": StatusPresent,
		"s2": StatusPresent,
		"s3": StatusAbsent,
	}, d)

	counts, err := svc.Summary(context.Background(), &d)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := map[string]int{StatusAbsent: 1, StatusPresent: 2}
	if len(counts) != len(want) {
		t.Fatalf("expected %d statuses, got %+v", len(want), counts)
	}
	for _, c := range counts {
		if want[c.Status] != c.Count {
			t.Fatalf("status %s: expected %d, got %d", c.Status, want[c.Status], c.Count)
		}
	}
}
