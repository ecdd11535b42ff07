package api

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"deepwork/internal/domain"
	"deepwork/internal/errors"
	"deepwork/internal/logging"
	"deepwork/internal/prompt"
	"deepwork/internal/repository/flatfile"
	"deepwork/internal/stats"
	"deepwork/internal/timeutil"
	"deepwork/internal/tracker"
	"deepwork/internal/validation"
)

// BusinessAPI defines the operations front ends call into
type BusinessAPI interface {
	// ========== Sessions ==========

	// Sessions returns the stored sessions matching filter, in file order
	Sessions(ctx context.Context, filter domain.SessionFilter) ([]domain.Session, error)

	// AppendSession records a completed session entered by hand
	AppendSession(ctx context.Context, session domain.Session) (domain.Session, error)

	// UpdateSession sets one editable field of a stored session
	UpdateSession(ctx context.Context, id string, field string, value string) (domain.Session, error)

	// DeleteSession removes a stored session
	DeleteSession(ctx context.Context, id string) error

	// ExportSessions writes the matching sessions as CSV and returns how many were written
	ExportSessions(ctx context.Context, w io.Writer, filter domain.SessionFilter) (int, error)

	// ImportSessions reads sessions in the export layout from r and appends them,
	// or with replace rewrites the file to hold exactly them. It returns how many were imported.
	ImportSessions(ctx context.Context, r io.Reader, replace bool) (int, error)

	// ========== Projects ==========

	// Projects returns every project in file order
	Projects(ctx context.Context) ([]domain.Project, error)

	// AddProject creates a project; an empty color selects the default
	AddProject(ctx context.Context, name string, color string) (domain.Project, error)

	// UpdateProjectColor changes a project's color
	UpdateProjectColor(ctx context.Context, id string, color string) (domain.Project, error)

	// RenameProject changes a project's name; recorded sessions keep the old name
	RenameProject(ctx context.Context, id string, name string) (domain.Project, error)

	// DeleteProject removes a project; recorded sessions are untouched
	DeleteProject(ctx context.Context, id string) error

	// ========== Tracking ==========

	// Start begins tracking projectName; a no-op while already tracking
	Start(ctx context.Context, projectName string) (*StartResult, error)

	// Stop asks prompter for notes, then records the session. It returns nil when idle.
	Stop(ctx context.Context, prompter prompt.NotesPrompter) (*domain.Session, error)

	// Elapsed returns the running session's elapsed time, zero when idle
	Elapsed() time.Duration

	// Status returns a snapshot of the tracker
	Status() tracker.Status

	// ========== Statistics ==========

	// Compare computes day, week and month comparisons relative to now
	Compare(ctx context.Context, now time.Time) (stats.Comparisons, error)

	// Dashboard gathers everything a dashboard view shows
	Dashboard(ctx context.Context, now time.Time, days int) (*Dashboard, error)
}

// businessAPIImpl implements the BusinessAPI interface
type businessAPIImpl struct {
	sessions flatfile.SessionRepository
	projects flatfile.ProjectRepository
	tracker  *tracker.Tracker

	// One writer at a time per file.
	sessionsMu sync.Mutex
	projectsMu sync.Mutex

	sessionValidator *validation.SessionValidator
	projectValidator *validation.ProjectValidator
	notesMaxLength   int
	autoCreate       bool
	now              func() time.Time
	logger           *logrus.Entry
}

// NewBusinessAPI creates a new BusinessAPI instance
func NewBusinessAPI(sessions flatfile.SessionRepository, projects flatfile.ProjectRepository, opts ...Option) BusinessAPI {
	b := &businessAPIImpl{
		sessions:         sessions,
		projects:         projects,
		sessionValidator: validation.NewSessionValidator(),
		projectValidator: validation.NewProjectValidator(),
		notesMaxLength:   validation.DefaultLimits().NotesMaxLength,
		autoCreate:       true,
		now:              time.Now,
		logger:           logging.NewLogger("api"),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.tracker == nil {
		b.tracker = tracker.New(&lockedAppender{b: b})
	}
	b.tracker.SetClock(b.now)
	b.tracker.SetValidator(b.projectValidator)
	return b
}

// lockedAppender serializes the tracker's appends with the other session writes.
type lockedAppender struct {
	b *businessAPIImpl
}

func (a *lockedAppender) Append(ctx context.Context, s domain.Session) (domain.Session, error) {
	a.b.sessionsMu.Lock()
	defer a.b.sessionsMu.Unlock()
	return a.b.sessions.Append(ctx, s)
}

// ========== Sessions ==========

func (b *businessAPIImpl) Sessions(ctx context.Context, filter domain.SessionFilter) ([]domain.Session, error) {
	if err := b.sessionValidator.ValidateFilter(filter); err != nil {
		return nil, errors.NewValidationError("invalid session filter", err)
	}

	all, err := b.loadSessions(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Filter(all, filter), nil
}

func (b *businessAPIImpl) loadSessions(ctx context.Context) ([]domain.Session, error) {
	b.sessionsMu.Lock()
	defer b.sessionsMu.Unlock()
	return b.sessions.Load(ctx)
}

func (b *businessAPIImpl) AppendSession(ctx context.Context, session domain.Session) (domain.Session, error) {
	normalized, err := normalizeSession(session)
	if err != nil {
		return domain.Session{}, err
	}

	b.sessionsMu.Lock()
	defer b.sessionsMu.Unlock()

	saved, err := b.sessions.Append(ctx, normalized)
	if err != nil {
		return domain.Session{}, err
	}
	b.logger.WithFields(logrus.Fields{"id": saved.ID, "project": saved.Project}).Info("session added")
	return saved, nil
}

// normalizeSession canonicalizes the date and time fields. When both times
// are present the duration is derived from them and any given value is
// replaced.
func normalizeSession(s domain.Session) (domain.Session, error) {
	steps := []struct {
		field domain.Field
		value string
	}{
		{domain.FieldDate, s.Date},
		{domain.FieldProject, s.Project},
		{domain.FieldStartTime, s.StartTime},
		{domain.FieldEndTime, s.EndTime},
	}
	for _, step := range steps {
		if step.value == "" {
			continue
		}
		next, err := step.field.Apply(s, step.value)
		if err != nil {
			ve := validation.NewValidationError()
			ve.AddInvalidValueError(step.field.String(), step.value, err.Error())
			return domain.Session{}, errors.NewValidationError("invalid session", ve)
		}
		s = next
	}
	return s.RecomputeDuration(), nil
}

func (b *businessAPIImpl) UpdateSession(ctx context.Context, id string, field string, value string) (domain.Session, error) {
	if err := b.sessionValidator.ValidateID(id); err != nil {
		return domain.Session{}, errors.NewValidationError("invalid session id", err)
	}

	b.sessionsMu.Lock()
	defer b.sessionsMu.Unlock()

	updated, err := b.sessions.Update(ctx, id, field, value)
	if err != nil {
		return domain.Session{}, err
	}
	b.logger.WithFields(logrus.Fields{"id": id, "field": field}).Info("session updated")
	return updated, nil
}

func (b *businessAPIImpl) DeleteSession(ctx context.Context, id string) error {
	if err := b.sessionValidator.ValidateID(id); err != nil {
		return errors.NewValidationError("invalid session id", err)
	}

	b.sessionsMu.Lock()
	defer b.sessionsMu.Unlock()

	if err := b.sessions.Delete(ctx, id); err != nil {
		return err
	}
	b.logger.WithField("id", id).Info("session deleted")
	return nil
}

func (b *businessAPIImpl) ExportSessions(ctx context.Context, w io.Writer, filter domain.SessionFilter) (int, error) {
	sessions, err := b.Sessions(ctx, filter)
	if err != nil {
		return 0, err
	}
	if err := flatfile.WriteCSV(w, sessions); err != nil {
		return 0, errors.NewStorageError("export sessions", b.sessions.Path(), err)
	}
	return len(sessions), nil
}

func (b *businessAPIImpl) ImportSessions(ctx context.Context, r io.Reader, replace bool) (int, error) {
	incoming, err := flatfile.ReadCSV(r)
	if err != nil {
		return 0, errors.NewInvalidInputError("import", "", err.Error())
	}

	sessions := make([]domain.Session, 0, len(incoming))
	for i, s := range incoming {
		normalized, err := normalizeSession(s)
		if err == nil {
			err = b.sessionValidator.ValidateSession(normalized)
		}
		if err != nil {
			cause := err
			if appErr, ok := errors.AsAppError(err); ok && appErr.Cause != nil {
				cause = appErr.Cause
			}
			return 0, errors.NewValidationError(fmt.Sprintf("invalid session in row %d", i+1), cause)
		}
		sessions = append(sessions, normalized)
	}

	b.sessionsMu.Lock()
	defer b.sessionsMu.Unlock()

	if replace {
		if err := b.sessions.Replace(ctx, sessions); err != nil {
			return 0, err
		}
		b.logger.WithField("count", len(sessions)).Info("sessions replaced by import")
		return len(sessions), nil
	}

	existing, err := b.sessions.Load(ctx)
	if err != nil {
		return 0, err
	}
	taken := make(map[string]struct{}, len(existing)+len(sessions))
	for _, s := range existing {
		taken[s.ID] = struct{}{}
	}
	for i, s := range sessions {
		if _, dup := taken[s.ID]; dup {
			s.ID = ""
		}
		saved, err := b.sessions.Append(ctx, s)
		if err != nil {
			return i, err
		}
		taken[saved.ID] = struct{}{}
	}
	b.logger.WithField("count", len(sessions)).Info("sessions imported")
	return len(sessions), nil
}

// ========== Projects ==========

func (b *businessAPIImpl) Projects(ctx context.Context) ([]domain.Project, error) {
	b.projectsMu.Lock()
	defer b.projectsMu.Unlock()
	return b.projects.Load(ctx)
}

func (b *businessAPIImpl) AddProject(ctx context.Context, name string, color string) (domain.Project, error) {
	b.projectsMu.Lock()
	defer b.projectsMu.Unlock()

	project, err := b.projects.Add(ctx, name, color)
	if err != nil {
		return domain.Project{}, err
	}
	b.logger.WithFields(logrus.Fields{"id": project.ID, "name": project.Name}).Info("project added")
	return project, nil
}

func (b *businessAPIImpl) UpdateProjectColor(ctx context.Context, id string, color string) (domain.Project, error) {
	if err := b.projectValidator.ValidateID(id); err != nil {
		return domain.Project{}, errors.NewValidationError("invalid project id", err)
	}

	b.projectsMu.Lock()
	defer b.projectsMu.Unlock()
	return b.projects.UpdateColor(ctx, id, color)
}

func (b *businessAPIImpl) RenameProject(ctx context.Context, id string, name string) (domain.Project, error) {
	if err := b.projectValidator.ValidateID(id); err != nil {
		return domain.Project{}, errors.NewValidationError("invalid project id", err)
	}

	b.projectsMu.Lock()
	defer b.projectsMu.Unlock()

	project, err := b.projects.Rename(ctx, id, name)
	if err != nil {
		return domain.Project{}, err
	}
	b.logger.WithFields(logrus.Fields{"id": id, "name": project.Name}).Info("project renamed")
	return project, nil
}

func (b *businessAPIImpl) DeleteProject(ctx context.Context, id string) error {
	if err := b.projectValidator.ValidateID(id); err != nil {
		return errors.NewValidationError("invalid project id", err)
	}

	b.projectsMu.Lock()
	defer b.projectsMu.Unlock()

	if err := b.projects.Delete(ctx, id); err != nil {
		return err
	}
	b.logger.WithField("id", id).Info("project deleted")
	return nil
}

// ========== Tracking ==========

func (b *businessAPIImpl) Start(ctx context.Context, projectName string) (*StartResult, error) {
	if status := b.tracker.Status(); status.Active() {
		return &StartResult{Status: status, AlreadyActive: true}, nil
	}
	if err := b.projectValidator.ValidateName(projectName); err != nil {
		return nil, errors.NewValidationError("invalid project name", err)
	}

	name, created, err := b.resolveProject(ctx, projectName)
	if err != nil {
		return nil, err
	}
	if err := b.tracker.Start(name); err != nil {
		return nil, err
	}
	return &StartResult{Status: b.tracker.Status(), CreatedProject: created}, nil
}

// resolveProject returns the stored spelling of name, adding the project
// first when it is unknown and auto-creation is enabled.
func (b *businessAPIImpl) resolveProject(ctx context.Context, name string) (string, *domain.Project, error) {
	b.projectsMu.Lock()
	defer b.projectsMu.Unlock()

	projects, err := b.projects.Load(ctx)
	if err != nil {
		return "", nil, err
	}
	if idx := domain.FindProjectByName(projects, name); idx >= 0 {
		return projects[idx].Name, nil, nil
	}
	if !b.autoCreate {
		return name, nil, nil
	}

	project, err := b.projects.Add(ctx, name, "")
	if err != nil {
		return "", nil, err
	}
	b.logger.WithField("name", project.Name).Info("project created on start")
	return project.Name, &project, nil
}

func (b *businessAPIImpl) Stop(ctx context.Context, prompter prompt.NotesPrompter) (*domain.Session, error) {
	status := b.tracker.Status()
	if !status.Active() {
		return nil, nil
	}
	end := b.now()

	notes := ""
	if prompter != nil {
		nc := prompt.NotesContext{ProjectName: status.ProjectName, Duration: end.Sub(status.StartTime)}
		answer, ok, err := prompter.PromptForNotes(ctx, nc)
		switch {
		case err != nil:
			b.logger.WithError(err).Warn("notes prompt failed, saving without notes")
		case ok:
			notes = prompt.Truncate(answer, b.notesMaxLength)
		default:
			logging.Debugf("notes prompt abandoned")
		}
	}

	// The prompt may have ended because ctx was canceled; the session is
	// still recorded.
	return b.tracker.StopAt(context.WithoutCancel(ctx), end, notes)
}

func (b *businessAPIImpl) Elapsed() time.Duration {
	return b.tracker.Elapsed()
}

func (b *businessAPIImpl) Status() tracker.Status {
	return b.tracker.Status()
}

// ========== Statistics ==========

func (b *businessAPIImpl) Compare(ctx context.Context, now time.Time) (stats.Comparisons, error) {
	sessions, err := b.loadSessions(ctx)
	if err != nil {
		return stats.Comparisons{}, err
	}
	return stats.Compute(sessions, now), nil
}

func (b *businessAPIImpl) Dashboard(ctx context.Context, now time.Time, days int) (*Dashboard, error) {
	if days <= 0 {
		days = DefaultDashboardDays
	}

	var sessions []domain.Session
	var projects []domain.Project

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = b.loadSessions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = b.Projects(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	from := timeutil.StartOfDay(now).AddDate(0, 0, -(days - 1))
	return &Dashboard{
		Now:           now,
		From:          from,
		Status:        b.tracker.Status(),
		Comparisons:   stats.Compute(sessions, now),
		ProjectTotals: stats.ProjectTotals(sessions, from, now),
		Daily:         stats.DailyTotals(sessions, from, now),
		Projects:      projects,
		Recent:        recentSessions(sessions, RecentSessionCount),
		SessionCount:  len(sessions),
		TotalHours:    stats.TotalHours(sessions),
	}, nil
}

// recentSessions returns up to n sessions, newest first by date and start time.
func recentSessions(sessions []domain.Session, n int) []domain.Session {
	sorted := append([]domain.Session(nil), sessions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date > sorted[j].Date
		}
		return sorted[i].StartTime > sorted[j].StartTime
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
