package flatfile

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"deepwork/internal/domain"
	apperrors "deepwork/internal/errors"
	"deepwork/internal/logging"
	"deepwork/internal/validation"
)

// SessionStore keeps sessions in a CSV file with a header row.
type SessionStore struct {
	path      string
	validator *validation.SessionValidator
	newID     func() string
	onSave    func(path string)
	log       *logrus.Entry
}

// NewSessionStore creates a store for the CSV file at path. The file is not
// touched until the first operation.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{
		path:      path,
		validator: validation.NewSessionValidator(),
		newID:     uuid.NewString,
		log:       logging.NewLogger("sessions"),
	}
}

// SetValidator overrides the validator applied before writes.
func (s *SessionStore) SetValidator(v *validation.SessionValidator) {
	s.validator = v
}

// SetIDGenerator overrides the id source. Passing nil restores UUIDs.
func (s *SessionStore) SetIDGenerator(fn func() string) {
	if fn == nil {
		fn = uuid.NewString
	}
	s.newID = fn
}

// SetOnSave registers a callback invoked after every successful write.
func (s *SessionStore) SetOnSave(fn func(path string)) {
	s.onSave = fn
}

// Path returns the location of the session file.
func (s *SessionStore) Path() string {
	return s.path
}

// Load returns every session in file order. A missing file yields an empty
// slice. Files in the legacy layout, with rows lacking a unique id, or with
// dates and times outside the stored layout are rewritten once in the
// current layout.
func (s *SessionStore) Load(ctx context.Context) ([]domain.Session, error) {
	sessions, _, err := s.load(ctx)
	return sessions, err
}

// loadForWrite loads the sessions ahead of a rewrite. Files with malformed
// quoting are refused.
func (s *SessionStore) loadForWrite(ctx context.Context) ([]domain.Session, error) {
	sessions, malformed, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(malformed) > 0 {
		return nil, malformedFileError(s.path, malformed)
	}
	return sessions, nil
}

func (s *SessionStore) load(ctx context.Context) ([]domain.Session, []error, error) {
	data, exists, err := readFile(ctx, "read sessions", s.path)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return []domain.Session{}, nil, nil
	}

	res, err := decodeSessions(data)
	if err != nil {
		return nil, nil, HandleStorageError("parse sessions", s.path, err)
	}
	for _, bad := range res.malformed {
		s.log.WithError(bad).Warn("malformed quoting in session file")
	}

	sessions := res.sessions
	if sessions == nil {
		sessions = []domain.Session{}
	}

	migrated := migrateSessionIDs(sessions, s.newID)
	canonical := canonicalizeSessions(sessions)
	if !migrated && !canonical && (!res.header || res.current) && (res.header || len(sessions) == 0) {
		return sessions, res.malformed, nil
	}
	if len(res.malformed) > 0 {
		s.log.WithField("path", s.path).Warn("not migrating session file until its quoting is fixed")
		return sessions, res.malformed, nil
	}
	s.log.WithField("path", s.path).Info("migrating session file to current layout")
	if err := s.write(sessions); err != nil {
		return nil, nil, err
	}
	return sessions, nil, nil
}

// Append adds one session without rewriting existing rows. A header is
// written first when the file is missing or empty, and a newline is inserted
// when the file does not end with one.
func (s *SessionStore) Append(ctx context.Context, session domain.Session) (domain.Session, error) {
	if session.ID == "" {
		session.ID = s.newID()
	}
	session = session.RecomputeDuration()
	if err := HandleValidationError("invalid session", s.validator.ValidateSession(session)); err != nil {
		return domain.Session{}, err
	}

	data, exists, err := readFile(ctx, "read sessions", s.path)
	if err != nil {
		return domain.Session{}, err
	}

	empty := !exists || len(bytes.TrimSpace(data)) == 0
	if !empty {
		res, err := decodeSessions(data)
		if err != nil {
			return domain.Session{}, HandleStorageError("parse sessions", s.path, err)
		}
		if len(res.malformed) > 0 {
			return domain.Session{}, malformedFileError(s.path, res.malformed)
		}
		if !res.current {
			// Bring the file to the current layout first so the new row's
			// id lands in a real column.
			if _, err := s.loadForWrite(ctx); err != nil {
				return domain.Session{}, err
			}
			if data, _, err = readFile(ctx, "read sessions", s.path); err != nil {
				return domain.Session{}, err
			}
		}
	}

	row, err := encodeRecord(session)
	if err != nil {
		return domain.Session{}, HandleStorageError("encode session", s.path, err)
	}

	var buf bytes.Buffer
	if empty {
		header, err := encodeSessions(nil)
		if err != nil {
			return domain.Session{}, HandleStorageError("encode header", s.path, err)
		}
		buf.Write(header)
	} else if len(data) > 0 && data[len(data)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.Write(row)

	if err := s.appendBytes(empty, buf.Bytes()); err != nil {
		return domain.Session{}, HandleStorageError("append session", s.path, err)
	}

	s.log.WithField("id", session.ID).Debug("session appended")
	s.notify()
	return session, nil
}

func (s *SessionStore) appendBytes(truncate bool, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return err
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if truncate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	f, err := os.OpenFile(s.path, flags, filePerm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Update sets one field of the session with the given id and rewrites the
// file. Editing a time boundary recomputes the duration; the duration itself
// can only be edited on sessions without both times.
func (s *SessionStore) Update(ctx context.Context, id string, field string, value string) (domain.Session, error) {
	f, err := domain.ParseField(field)
	if err != nil {
		return domain.Session{}, unknownFieldError(field)
	}

	sessions, err := s.loadForWrite(ctx)
	if err != nil {
		return domain.Session{}, err
	}

	idx := findSession(sessions, id)
	if idx < 0 {
		return domain.Session{}, apperrors.NewNotFoundError("session", id)
	}

	updated, err := f.Apply(sessions[idx], value)
	if err != nil {
		return domain.Session{}, fieldValueError(f.String(), value, err)
	}
	if err := HandleValidationError("invalid session", s.validator.ValidateSession(updated)); err != nil {
		return domain.Session{}, err
	}

	sessions[idx] = updated
	if err := s.write(sessions); err != nil {
		return domain.Session{}, err
	}
	return updated, nil
}

// Delete removes the session with the given id and rewrites the file.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	sessions, err := s.loadForWrite(ctx)
	if err != nil {
		return err
	}

	idx := findSession(sessions, id)
	if idx < 0 {
		return apperrors.NewNotFoundError("session", id)
	}

	sessions = append(sessions[:idx], sessions[idx+1:]...)
	return s.write(sessions)
}

// Replace rewrites the file with exactly the given sessions. Missing or
// duplicated ids are regenerated, durations are derived from the times and
// every session is validated first.
func (s *SessionStore) Replace(ctx context.Context, sessions []domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := make([]domain.Session, len(sessions))
	for i, session := range sessions {
		out[i] = session.RecomputeDuration()
	}
	migrateSessionIDs(out, s.newID)

	for _, session := range out {
		if err := s.validator.ValidateSession(session); err != nil {
			return apperrors.NewValidationError("invalid session", err).WithContext("id", session.ID)
		}
	}
	return s.write(out)
}

// Init creates the file with only a header row when none exists.
func (s *SessionStore) Init(ctx context.Context) (created bool, err error) {
	_, exists, err := readFile(ctx, "read sessions", s.path)
	if err != nil || exists {
		return false, err
	}
	return true, s.write([]domain.Session{})
}

func (s *SessionStore) write(sessions []domain.Session) error {
	data, err := encodeSessions(sessions)
	if err != nil {
		return HandleStorageError("encode sessions", s.path, err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return HandleStorageError("write sessions", s.path, err)
	}
	s.notify()
	return nil
}

func (s *SessionStore) notify() {
	if s.onSave != nil {
		s.onSave(s.path)
	}
}

func findSession(sessions []domain.Session, id string) int {
	if id == "" {
		return -1
	}
	for i := range sessions {
		if sessions[i].ID == id {
			return i
		}
	}
	return -1
}
