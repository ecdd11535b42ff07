// Package tracker owns the in-memory tracking state: whether a session is
// being timed, for which project, and since when.
package tracker

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"deepwork/internal/domain"
	apperrors "deepwork/internal/errors"
	"deepwork/internal/logging"
	"deepwork/internal/validation"
)

// State is the tracking state.
type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

// SessionAppender persists a completed session.
type SessionAppender interface {
	Append(ctx context.Context, session domain.Session) (domain.Session, error)
}

// Status is a point-in-time snapshot of the tracker.
type Status struct {
	State       State
	ProjectName string
	StartTime   time.Time
	Elapsed     time.Duration
}

// Active reports whether the snapshot was taken while tracking.
func (s Status) Active() bool {
	return s.State == Active
}

// Tracker is a two-state machine. All methods are safe for concurrent use.
type Tracker struct {
	mu        sync.RWMutex
	state     State
	project   string
	startTime time.Time

	store     SessionAppender
	validator *validation.ProjectValidator
	clock     func() time.Time
	log       *logrus.Entry
}

// New creates an idle tracker that appends completed sessions to store.
func New(store SessionAppender) *Tracker {
	return &Tracker{
		store:     store,
		validator: validation.NewProjectValidator(),
		clock:     time.Now,
		log:       logging.NewLogger("tracker"),
	}
}

// SetClock overrides the time source. Passing nil restores time.Now.
func (t *Tracker) SetClock(clock func() time.Time) {
	if clock == nil {
		clock = time.Now
	}
	t.mu.Lock()
	t.clock = clock
	t.mu.Unlock()
}

// SetValidator overrides the project name validator.
func (t *Tracker) SetValidator(v *validation.ProjectValidator) {
	t.mu.Lock()
	t.validator = v
	t.mu.Unlock()
}

// Start begins timing projectName. Starting while already active changes
// nothing, including the start time and the project.
func (t *Tracker) Start(projectName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == Active {
		t.log.WithField("project", t.project).Debug("start ignored, already tracking")
		return nil
	}
	if err := t.validator.ValidateName(projectName); err != nil {
		return apperrors.NewValidationError("invalid project name", err)
	}

	t.state = Active
	t.project = strings.TrimSpace(projectName)
	t.startTime = t.clock()
	t.log.WithField("project", t.project).Info("tracking started")
	return nil
}

// Stop ends the current session now. See StopAt.
func (t *Tracker) Stop(ctx context.Context, notes string) (*domain.Session, error) {
	t.mu.RLock()
	end := t.clock()
	t.mu.RUnlock()
	return t.StopAt(ctx, end, notes)
}

// StopAt ends the current session at end and appends it. When idle it returns
// nil and appends nothing. The tracker is idle afterwards even if the append
// fails; the error is logged and returned.
func (t *Tracker) StopAt(ctx context.Context, end time.Time, notes string) (*domain.Session, error) {
	t.mu.Lock()
	if t.state != Active {
		t.mu.Unlock()
		return nil, nil
	}
	session := domain.NewSession(t.project, t.startTime, end, notes)
	t.state = Idle
	t.project = ""
	t.startTime = time.Time{}
	t.mu.Unlock()

	saved, err := t.store.Append(ctx, session)
	if err != nil {
		t.log.WithError(err).WithFields(logrus.Fields{
			"project":  session.Project,
			"date":     session.Date,
			"start":    session.StartTime,
			"end":      session.EndTime,
			"duration": session.DurationMinutes,
		}).Error("failed to save session")
		return nil, err
	}

	t.log.WithFields(logrus.Fields{
		"id":       saved.ID,
		"project":  saved.Project,
		"duration": saved.DurationMinutes,
	}).Info("tracking stopped")
	return &saved, nil
}

// Elapsed returns the time since the session started, or zero when idle.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.elapsedLocked()
}

// ElapsedMs returns Elapsed in whole milliseconds.
func (t *Tracker) ElapsedMs() int64 {
	return t.Elapsed().Milliseconds()
}

// IsActive reports whether a session is being timed.
func (t *Tracker) IsActive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state == Active
}

// Status returns a consistent snapshot of the tracker.
func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Status{
		State:       t.state,
		ProjectName: t.project,
		StartTime:   t.startTime,
		Elapsed:     t.elapsedLocked(),
	}
}

func (t *Tracker) elapsedLocked() time.Duration {
	if t.state != Active {
		return 0
	}
	d := t.clock().Sub(t.startTime)
	if d < 0 {
		return 0
	}
	return d
}
