package flatfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"deepwork/internal/domain"
)

const (
	colDate     = "date"
	colStart    = "start_time"
	colEnd      = "end_time"
	colDuration = "duration_minutes"
	colProject  = "project"
	colNotes    = "notes"
	colID       = "id"

	bom = "\ufeff"
)

// SessionHeader is the column order written to disk. The first six columns
// are the legacy layout; id is appended so six-column readers keep working.
var SessionHeader = []string{colDate, colStart, colEnd, colDuration, colProject, colNotes, colID}

var legacyHeader = SessionHeader[:6]

// columnIndex maps a column name to its position in a record.
type columnIndex map[string]int

func newColumnIndex(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, bom)))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

// known reports whether the record looks like a header: at least two
// session column names must appear.
func (c columnIndex) known() bool {
	found := 0
	for _, name := range SessionHeader {
		if _, ok := c[name]; ok {
			found++
		}
	}
	return found >= 2
}

// get returns the value of column name, or "" when the record is too short.
func (c columnIndex) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func isCurrentHeader(header []string) bool {
	if len(header) != len(SessionHeader) {
		return false
	}
	for i, name := range header {
		if strings.TrimPrefix(name, bom) != SessionHeader[i] {
			return false
		}
	}
	return true
}

// parseDuration coerces the stored duration to whole minutes, 0 on failure.
func parseDuration(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f + 0.5)
	}
	return 0
}

// recordToSession maps a CSV record onto a Session using the column index.
func recordToSession(idx columnIndex, record []string) domain.Session {
	return domain.Session{
		ID:              strings.TrimSpace(idx.get(record, colID)),
		Date:            strings.TrimSpace(idx.get(record, colDate)),
		StartTime:       strings.TrimSpace(idx.get(record, colStart)),
		EndTime:         strings.TrimSpace(idx.get(record, colEnd)),
		DurationMinutes: parseDuration(idx.get(record, colDuration)),
		Project:         idx.get(record, colProject),
		Notes:           idx.get(record, colNotes),
	}
}

// sessionToRecord maps a Session onto a record in SessionHeader order.
func sessionToRecord(s domain.Session) []string {
	return []string{
		s.Date,
		s.StartTime,
		s.EndTime,
		strconv.Itoa(s.DurationMinutes),
		s.Project,
		s.Notes,
		s.ID,
	}
}

func isBlankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// decodeResult is the outcome of parsing a session file.
type decodeResult struct {
	sessions []domain.Session
	// header is false when the file lacked a recognizable header row.
	header bool
	// current is true when the header matches SessionHeader exactly.
	current bool
	// malformed holds quoting errors found by a strict read. The lenient
	// read above them may have merged or split rows around each one.
	malformed []error
}

// decodeSessions parses CSV data. Columns are located by header name; a file
// without a recognizable header is read in the legacy column order.
func decodeSessions(data []byte) (decodeResult, error) {
	var res decodeResult
	if len(bytes.TrimSpace(data)) == 0 {
		return res, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	first, err := r.Read()
	if err != nil && err != io.EOF {
		return res, fmt.Errorf("read header: %w", err)
	}

	idx := newColumnIndex(first)
	var pending []string
	if idx.known() {
		res.header = true
		res.current = isCurrentHeader(first)
	} else {
		idx = newColumnIndex(legacyHeader)
		pending = first
	}

	if pending != nil && !isBlankRecord(pending) {
		res.sessions = append(res.sessions, recordToSession(idx, pending))
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, err
		}
		if isBlankRecord(record) {
			continue
		}
		res.sessions = append(res.sessions, recordToSession(idx, record))
	}
	res.malformed = malformedQuotes(data)
	return res, nil
}

// malformedQuotes rereads data strictly and returns the quoted fields that
// are not closed properly. Bare quotes inside unquoted fields are accepted.
func malformedQuotes(data []byte) []error {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	var found []error
	for {
		_, err := r.Read()
		if err == io.EOF {
			return found
		}
		var perr *csv.ParseError
		if !errors.As(err, &perr) {
			if err != nil {
				return append(found, err)
			}
			continue
		}
		if perr.Err == csv.ErrQuote {
			found = append(found, perr)
		}
	}
}

// encodeSessions writes the header and one record per session.
func encodeSessions(sessions []domain.Session) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sessions); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV writes sessions to w in the session file layout, header first.
func WriteCSV(w io.Writer, sessions []domain.Session) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SessionHeader); err != nil {
		return err
	}
	for _, s := range sessions {
		if err := cw.Write(sessionToRecord(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads sessions in the session file layout from r. Rows are
// returned as written; ids, dates and durations are not repaired.
func ReadCSV(r io.Reader) ([]domain.Session, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	res, err := decodeSessions(data)
	if err != nil {
		return nil, err
	}
	if len(res.malformed) > 0 {
		return nil, fmt.Errorf("malformed quoting: %w", res.malformed[0])
	}
	if res.sessions == nil {
		return []domain.Session{}, nil
	}
	return res.sessions, nil
}

// encodeRecord encodes a single session row, without header.
func encodeRecord(s domain.Session) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(sessionToRecord(s)); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
