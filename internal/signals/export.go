package signals

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVFilename is the download name used by the export endpoint.
const CSVFilename = "airlink-signals.csv"

var csvHeader = []string{"Type", "Status", "Subject", "Jurisdiction", "Address", "Scope", "Occurred At"}

// WriteCSV writes events in order with a header row. Scope tags are joined
// with "|"; embedded quotes are doubled.
func WriteCSV(w io.Writer, events []Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range events {
		row := []string{
			string(e.Type),
			e.Status,
			e.Subject,
			e.Jurisdiction,
			e.Address,
			strings.Join(e.Scope, "|"),
			e.OccurredAt,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
