package transfer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Envelope is the top-level object of a JSON export.
type Envelope struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	Cards      []Record  `json:"cards"`
}

// Write encodes records to w in format.
func Write(w io.Writer, format Format, records []Record, exportedAt time.Time) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatJSON:
		return WriteJSON(w, records, exportedAt)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteJSON writes the export envelope.
func WriteJSON(w io.Writer, records []Record, exportedAt time.Time) error {
	if records == nil {
		records = []Record{}
	}
	envelope := Envelope{
		Version:    EnvelopeVersion,
		ExportedAt: exportedAt.UTC(),
		Cards:      records,
	}
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		return fmt.Errorf("failed to encode json export: %w", err)
	}
	return nil
}

// WriteCSV writes the header row and one row per record. Null timestamps
// become empty cells.
func WriteCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Word,
			r.Translation,
			r.Example,
			r.Deck,
			strconv.Itoa(r.ReviewCount),
			strconv.Itoa(r.CorrectCount),
			formatTime(r.LastReviewed),
			formatTime(r.NextReview),
			formatTime(r.CreatedAt),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv export: %w", err)
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
