package audit

import (
	"encoding/csv"
	"io"
	"time"
)

// WriteCSV streams timeline rows as CSV.
func WriteCSV(w io.Writer, rows []TimelineRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"At", "Actor", "Action", "Entity", "EntityID"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.At.Format(time.RFC3339),
			row.Actor,
			row.Action,
			row.Entity,
			row.EntityID,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
