// Package flatfile persists sessions as CSV and projects as a JSON array.
//
// Neither store holds a lock: every mutation reads the whole file, changes it
// in memory and writes it back. Callers that mutate concurrently must
// serialize access per file themselves.
package flatfile

import (
	"context"

	"deepwork/internal/domain"
)

const (
	// SessionsFileName is the session file inside the data directory.
	SessionsFileName = "sessions.csv"
	// ProjectsFileName is the project file inside the data directory.
	ProjectsFileName = "projects.json"

	dirPerm  = 0o700
	filePerm = 0o600
)

// SessionRepository defines the operations on the session file
type SessionRepository interface {
	Load(ctx context.Context) ([]domain.Session, error)
	Append(ctx context.Context, session domain.Session) (domain.Session, error)
	Update(ctx context.Context, id string, field string, value string) (domain.Session, error)
	Delete(ctx context.Context, id string) error
	Replace(ctx context.Context, sessions []domain.Session) error
	Path() string
}

// ProjectRepository defines the operations on the project file
type ProjectRepository interface {
	Load(ctx context.Context) ([]domain.Project, error)
	Add(ctx context.Context, name string, color string) (domain.Project, error)
	UpdateColor(ctx context.Context, id string, color string) (domain.Project, error)
	Rename(ctx context.Context, id string, name string) (domain.Project, error)
	Delete(ctx context.Context, id string) error
	Path() string
}

var (
	_ SessionRepository = (*SessionStore)(nil)
	_ ProjectRepository = (*ProjectStore)(nil)
)
