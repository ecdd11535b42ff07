package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"deepwork/internal/api"
	"deepwork/internal/config"
	"deepwork/internal/domain"
	"deepwork/internal/errors"
	"deepwork/internal/prompt"
	"deepwork/internal/repository/flatfile"
	"deepwork/internal/stats"
	"deepwork/internal/timeutil"
	"deepwork/internal/tracker"
)

// testNow is the fixed "current" time of CLI tests, a Wednesday evening.
var testNow = time.Date(2024, 3, 13, 18, 0, 0, 0, time.UTC)

// steppingClock advances by step on every call.
type steppingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.now
	c.now = c.now.Add(c.step)
	return cur
}

// mockBusinessAPI implements the BusinessAPI interface for testing
type mockBusinessAPI struct {
	mu       sync.Mutex
	sessions []domain.Session
	projects []domain.Project
	active   bool
	project  string
	start    time.Time
	nextID   int
	now      func() time.Time

	// err, when set, is returned by every call that can fail
	err error
}

var _ api.BusinessAPI = (*mockBusinessAPI)(nil)

// newMockBusinessAPI creates a new mock BusinessAPI instance
func newMockBusinessAPI() *mockBusinessAPI {
	return &mockBusinessAPI{now: func() time.Time { return testNow }}
}

func (m *mockBusinessAPI) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *mockBusinessAPI) Sessions(ctx context.Context, filter domain.SessionFilter) ([]domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return domain.Filter(m.sessions, filter), nil
}

func (m *mockBusinessAPI) AppendSession(ctx context.Context, s domain.Session) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(s)
}

func (m *mockBusinessAPI) appendLocked(s domain.Session) (domain.Session, error) {
	if m.err != nil {
		return domain.Session{}, m.err
	}
	edits := []struct {
		field domain.Field
		value string
	}{
		{domain.FieldDate, s.Date},
		{domain.FieldStartTime, s.StartTime},
		{domain.FieldEndTime, s.EndTime},
	}
	for _, e := range edits {
		if e.value == "" {
			continue
		}
		updated, err := e.field.Apply(s, e.value)
		if err != nil {
			return domain.Session{}, errors.NewValidationError("invalid session", err)
		}
		s = updated
	}
	s = s.RecomputeDuration()
	s.ID = m.id("s")
	m.sessions = append(m.sessions, s)
	return s, nil
}

func (m *mockBusinessAPI) UpdateSession(ctx context.Context, id string, field string, value string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Session{}, m.err
	}
	f, err := domain.ParseField(field)
	if err != nil {
		return domain.Session{}, errors.NewValidationError("invalid field", err)
	}
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			updated, err := f.Apply(m.sessions[i], value)
			if err != nil {
				return domain.Session{}, errors.NewValidationError("invalid value", err)
			}
			m.sessions[i] = updated
			return updated, nil
		}
	}
	return domain.Session{}, errors.NewNotFoundError("session", id)
}

func (m *mockBusinessAPI) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFoundError("session", id)
}

func (m *mockBusinessAPI) ExportSessions(ctx context.Context, w io.Writer, filter domain.SessionFilter) (int, error) {
	sessions, err := m.Sessions(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(sessions), flatfile.WriteCSV(w, sessions)
}

func (m *mockBusinessAPI) ImportSessions(ctx context.Context, r io.Reader, replace bool) (int, error) {
	incoming, err := flatfile.ReadCSV(r)
	if err != nil {
		return 0, errors.NewInvalidInputError("import", "", err.Error())
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if replace {
		m.sessions = nil
	}
	for _, s := range incoming {
		if _, err := m.appendLocked(s); err != nil {
			return 0, err
		}
	}
	return len(incoming), nil
}

func (m *mockBusinessAPI) Projects(ctx context.Context) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.Project(nil), m.projects...), nil
}

func (m *mockBusinessAPI) AddProject(ctx context.Context, name string, color string) (domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addProjectLocked(name, color)
}

func (m *mockBusinessAPI) addProjectLocked(name string, color string) (domain.Project, error) {
	if m.err != nil {
		return domain.Project{}, m.err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Project{}, errors.NewValidationError("invalid project name", fmt.Errorf("name is required"))
	}
	if domain.FindProjectByName(m.projects, name) >= 0 {
		return domain.Project{}, errors.NewDuplicateError("project", "name", name)
	}
	p := domain.NewProject(m.id("p"), name, color)
	m.projects = append(m.projects, p)
	return p, nil
}

func (m *mockBusinessAPI) findProject(id string) (int, error) {
	if m.err != nil {
		return -1, m.err
	}
	idx := domain.FindProjectByID(m.projects, id)
	if idx < 0 {
		return -1, errors.NewNotFoundError("project", id)
	}
	return idx, nil
}

func (m *mockBusinessAPI) UpdateProjectColor(ctx context.Context, id string, color string) (domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, err := m.findProject(id)
	if err != nil {
		return domain.Project{}, err
	}
	m.projects[idx].Color = color
	return m.projects[idx], nil
}

func (m *mockBusinessAPI) RenameProject(ctx context.Context, id string, name string) (domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, err := m.findProject(id)
	if err != nil {
		return domain.Project{}, err
	}
	m.projects[idx].Name = name
	return m.projects[idx], nil
}

func (m *mockBusinessAPI) DeleteProject(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, err := m.findProject(id)
	if err != nil {
		return err
	}
	m.projects = append(m.projects[:idx], m.projects[idx+1:]...)
	return nil
}

func (m *mockBusinessAPI) Start(ctx context.Context, projectName string) (*api.StartResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		return &api.StartResult{Status: m.statusLocked(), AlreadyActive: true}, nil
	}
	if m.err != nil {
		return nil, m.err
	}
	if strings.TrimSpace(projectName) == "" {
		return nil, errors.NewValidationError("invalid project name", fmt.Errorf("name is required"))
	}

	res := &api.StartResult{}
	if idx := domain.FindProjectByName(m.projects, projectName); idx >= 0 {
		projectName = m.projects[idx].Name
	} else {
		p, err := m.addProjectLocked(projectName, "")
		if err != nil {
			return nil, err
		}
		res.CreatedProject = &p
	}
	m.active, m.project, m.start = true, projectName, m.now()
	res.Status = m.statusLocked()
	return res, nil
}

func (m *mockBusinessAPI) Stop(ctx context.Context, prompter prompt.NotesPrompter) (*domain.Session, error) {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return nil, nil
	}
	project, start, end := m.project, m.start, m.now()
	m.mu.Unlock()

	notes := ""
	if prompter != nil {
		answer, ok, err := prompter.PromptForNotes(ctx, prompt.NotesContext{ProjectName: project, Duration: end.Sub(start)})
		if err == nil && ok {
			notes = answer
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
	s := domain.NewSession(project, start, end, notes)
	s = s.RecomputeDuration()
	s.ID = m.id("s")
	m.sessions = append(m.sessions, s)
	return &s, nil
}

func (m *mockBusinessAPI) Elapsed() time.Duration {
	return m.Status().Elapsed
}

func (m *mockBusinessAPI) Status() tracker.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

func (m *mockBusinessAPI) statusLocked() tracker.Status {
	if !m.active {
		return tracker.Status{State: tracker.Idle}
	}
	return tracker.Status{State: tracker.Active, ProjectName: m.project, StartTime: m.start, Elapsed: testNow.Sub(m.start)}
}

func (m *mockBusinessAPI) Compare(ctx context.Context, now time.Time) (stats.Comparisons, error) {
	sessions, err := m.Sessions(ctx, domain.SessionFilter{})
	if err != nil {
		return stats.Comparisons{}, err
	}
	return stats.Compute(sessions, now), nil
}

func (m *mockBusinessAPI) Dashboard(ctx context.Context, now time.Time, days int) (*api.Dashboard, error) {
	sessions, err := m.Sessions(ctx, domain.SessionFilter{})
	if err != nil {
		return nil, err
	}
	projects, _ := m.Projects(ctx)

	from := timeutil.StartOfDay(now).AddDate(0, 0, -(days - 1))
	recent := append([]domain.Session(nil), sessions...)
	sort.SliceStable(recent, func(i, j int) bool {
		if recent[i].Date != recent[j].Date {
			return recent[i].Date > recent[j].Date
		}
		return recent[i].StartTime > recent[j].StartTime
	})
	if len(recent) > api.RecentSessionCount {
		recent = recent[:api.RecentSessionCount]
	}
	return &api.Dashboard{
		Now:           now,
		From:          from,
		Status:        m.Status(),
		Comparisons:   stats.Compute(sessions, now),
		ProjectTotals: stats.ProjectTotals(sessions, from, now),
		Daily:         stats.DailyTotals(sessions, from, now),
		Projects:      projects,
		Recent:        recent,
		SessionCount:  len(sessions),
		TotalHours:    stats.TotalHours(sessions),
	}, nil
}

// addSessions seeds completed sessions.
func (m *mockBusinessAPI) addSessions(t *testing.T, sessions ...domain.Session) {
	t.Helper()
	for _, s := range sessions {
		if _, err := m.AppendSession(context.Background(), s); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}
}

// testApp bundles an App wired to a mock API with captured output.
type testApp struct {
	*App
	api *mockBusinessAPI
	out *bytes.Buffer
	err *bytes.Buffer
}

// canceledInterrupts simulates an interrupt arriving immediately.
func canceledInterrupts(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	cancel()
	return ctx, cancel
}

// noInterrupts never fires.
func noInterrupts(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(ctx)
}

// setupTestAppWithMockBusinessAPI creates a test app with mock BusinessAPI
func setupTestAppWithMockBusinessAPI(t *testing.T, in io.Reader, opts ...AppOption) *testApp {
	t.Helper()
	mockAPI := newMockBusinessAPI()
	cfg := config.NewConfig()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Display.NoColor = true
	cfg.Tracker.NotesPrompt = config.PromptLine

	if in == nil {
		in = strings.NewReader("")
	}
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	base := []AppOption{
		WithIO(in, out, errOut),
		WithClock(func() time.Time { return testNow }),
		WithInterrupts(noInterrupts),
		WithInteractive(false),
	}
	app := NewApp(mockAPI, cfg, append(base, opts...)...)
	return &testApp{App: app, api: mockAPI, out: out, err: errOut}
}
