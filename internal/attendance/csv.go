package attendance

import (
	"encoding/csv"
	"io"
)

// DateLayout is the calendar-date form used on the wire and in exports.
const DateLayout = "2006-01-02"

// csvHeader matches the tuple order of QueryByDate.
var csvHeader = []string{"id", "student_id", "date", "status", "roll_no", "name"}

// WriteCSV renders records as comma-separated text with a header row.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{rec.ID, rec.StudentID, rec.Date.Format(DateLayout), rec.Status, rec.RollNo, rec.Name}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
