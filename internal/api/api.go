package api

import (
	"time"

	"deepwork/internal/domain"
	"deepwork/internal/stats"
	"deepwork/internal/tracker"
	"deepwork/internal/validation"
)

// DefaultDashboardDays is the length of the dashboard's daily series.
const DefaultDashboardDays = 7

// RecentSessionCount is how many sessions the dashboard lists.
const RecentSessionCount = 5

// Dashboard represents all data needed for a dashboard view
type Dashboard struct {
	Now           time.Time            `json:"now"`
	From          time.Time            `json:"from"`
	Status        tracker.Status       `json:"status"`
	Comparisons   stats.Comparisons    `json:"comparisons"`
	ProjectTotals []stats.ProjectTotal `json:"project_totals"`
	Daily         []stats.DayTotal     `json:"daily"`
	Projects      []domain.Project     `json:"projects"`
	Recent        []domain.Session     `json:"recent"`
	SessionCount  int                  `json:"session_count"`
	TotalHours    float64              `json:"total_hours"`
}

// StartResult describes the outcome of Start.
type StartResult struct {
	Status tracker.Status
	// AlreadyActive is set when a session was running and nothing changed.
	AlreadyActive bool
	// CreatedProject is set when the project did not exist and was added.
	CreatedProject *domain.Project
}

// Option configures the business API.
type Option func(*businessAPIImpl)

// WithClock sets the time source for the API and its tracker.
func WithClock(clock func() time.Time) Option {
	return func(b *businessAPIImpl) {
		if clock != nil {
			b.now = clock
		}
	}
}

// WithTracker replaces the tracker the API drives.
func WithTracker(t *tracker.Tracker) Option {
	return func(b *businessAPIImpl) {
		if t != nil {
			b.tracker = t
		}
	}
}

// WithLimits applies validation limits to the API's own checks.
func WithLimits(limits validation.Limits) Option {
	return func(b *businessAPIImpl) {
		v := validation.NewValidatorWithLimits(limits)
		b.sessionValidator = validation.NewSessionValidatorWith(v)
		b.projectValidator = validation.NewProjectValidatorWith(v)
		b.notesMaxLength = v.Limits().NotesMaxLength
	}
}

// WithAutoCreateProjects controls whether Start adds unknown projects.
func WithAutoCreateProjects(enabled bool) Option {
	return func(b *businessAPIImpl) {
		b.autoCreate = enabled
	}
}
