package transfer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/BogdanBedrinec/cards/internal/domain"
)

// timeLayouts are tried in order when reading a timestamp cell.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse decodes payload in format. Records are returned as found, without
// normalization or deduplication.
func Parse(format Format, payload []byte) ([]Record, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, domain.NewValidationError("data", "is required", domain.ErrInvalidFormat)
	}

	switch format {
	case FormatCSV:
		return ParseCSV(bytes.NewReader(payload))
	case FormatJSON:
		return ParseJSON(payload)
	default:
		return nil, domain.NewValidationError("format", "must be json or csv", ErrUnknownFormat)
	}
}

// ParseJSON accepts a bare array of cards, an object with a "cards" array
// (the export envelope), or either of those encoded as a JSON string.
func ParseJSON(payload []byte) ([]Record, error) {
	return parseJSON(bytes.TrimSpace(payload), true)
}

func parseJSON(payload []byte, allowString bool) ([]Record, error) {
	if len(payload) == 0 {
		return nil, domain.NewValidationError("data", "is required", domain.ErrInvalidFormat)
	}

	var wire []wireRecord
	switch payload[0] {
	case '"':
		if !allowString {
			break
		}
		var inner string
		if err := json.Unmarshal(payload, &inner); err != nil {
			return nil, malformed("json", err)
		}
		return parseJSON(bytes.TrimSpace([]byte(inner)), false)
	case '[':
		if err := json.Unmarshal(payload, &wire); err != nil {
			return nil, malformed("json", err)
		}
		return toRecords(wire), nil
	case '{':
		var envelope struct {
			Cards []wireRecord `json:"cards"`
		}
		if err := json.Unmarshal(payload, &envelope); err != nil {
			return nil, malformed("json", err)
		}
		return toRecords(envelope.Cards), nil
	}

	return nil, malformed("json", errors.New("expected an array of cards or an object with a cards array"))
}

// ParseCSV reads a header row followed by one card per row. Columns are
// matched by name, case-insensitively, and may appear in any order; unknown
// columns are ignored. Cells are trimmed and blank rows are skipped.
func ParseCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, malformed("csv", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = string(bytes.TrimPrefix([]byte(name), utf8BOM))
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed("csv", err)
		}
		if blankRow(row) {
			continue
		}

		cell := func(column string) string {
			i, ok := index[strings.ToLower(column)]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		records = append(records, Record{
			Word:         cell("word"),
			Translation:  cell("translation"),
			Example:      cell("example"),
			Deck:         cell("deck"),
			ReviewCount:  parseCount(cell("reviewCount")),
			CorrectCount: parseCount(cell("correctCount")),
			LastReviewed: parseTime(cell("lastReviewed")),
			NextReview:   parseTime(cell("nextReview")),
			CreatedAt:    parseTime(cell("createdAt")),
		})
	}

	return records, nil
}

func malformed(format string, err error) error {
	return domain.NewValidationError("data", fmt.Sprintf("is not valid %s", format),
		fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err))
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseCount reads a counter cell. Anything that is not a finite number
// counts as zero.
func parseCount(s string) int {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// parseTime reads a timestamp cell. Unparseable values count as absent.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return storable(t)
		}
	}
	return nil
}

// Timestamps outside years 1 to 9999 cannot be stored by every backend and
// are treated as absent.
var (
	minTime = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	maxTime = time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)
)

func storable(t time.Time) *time.Time {
	u := t.UTC()
	if u.Before(minTime) || !u.Before(maxTime) {
		return nil
	}
	return &u
}

// epochMillis reads a JSON number as milliseconds since the Unix epoch.
func epochMillis(ms float64) *time.Time {
	if ms < float64(minTime.UnixMilli()) || ms >= float64(maxTime.UnixMilli()) {
		return nil
	}
	return storable(time.UnixMilli(int64(ms)))
}

// wireRecord is the lenient JSON form of a Record: numbers may be strings
// and unknown or malformed values fall back to their defaults.
type wireRecord struct {
	Word         flexString `json:"word"`
	Translation  flexString `json:"translation"`
	Example      flexString `json:"example"`
	Deck         flexString `json:"deck"`
	ReviewCount  flexInt    `json:"reviewCount"`
	CorrectCount flexInt    `json:"correctCount"`
	LastReviewed flexTime   `json:"lastReviewed"`
	NextReview   flexTime   `json:"nextReview"`
	CreatedAt    flexTime   `json:"createdAt"`
}

func toRecords(wire []wireRecord) []Record {
	records := make([]Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, Record{
			Word:         string(w.Word),
			Translation:  string(w.Translation),
			Example:      string(w.Example),
			Deck:         string(w.Deck),
			ReviewCount:  int(w.ReviewCount),
			CorrectCount: int(w.CorrectCount),
			LastReviewed: w.LastReviewed.t,
			NextReview:   w.NextReview.t,
			CreatedAt:    w.CreatedAt.t,
		})
	}
	return records
}

type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		*s = flexString(x)
	case float64:
		*s = flexString(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		*s = flexString(strconv.FormatBool(x))
	default:
		*s = ""
	}
	return nil
}

type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*n = flexInt(parseCount(strconv.FormatFloat(x, 'f', -1, 64)))
	case string:
		*n = flexInt(parseCount(strings.TrimSpace(x)))
	default:
		*n = 0
	}
	return nil
}

type flexTime struct {
	t *time.Time
}

func (ft *flexTime) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		ft.t = parseTime(strings.TrimSpace(x))
	case float64:
		ft.t = epochMillis(x)
	default:
		ft.t = nil
	}
	return nil
}
