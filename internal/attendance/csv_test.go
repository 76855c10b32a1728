package attendance

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWriteCSVColumnOrder(t *testing.T) {
	records := []Record{
		{
			ID:        "a1",
			StudentID: "s1",
			Date:      time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			Status:    StatusPresent,
			RollNo:    "R1",
			Name:      "Asha",
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != "id,student_id,date,status,roll_no,name" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if lines[1] != "a1,s1,2024-01-10,Present,R1,Asha" {
		t.Fatalf("unexpected row: %s", lines[1])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "id,student_id,date,status,roll_no,name" {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}
