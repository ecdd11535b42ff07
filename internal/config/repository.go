package config

import (
	"context"
	"fmt"

	"deepwork/internal/logging"
	"deepwork/internal/repository/flatfile"
	"deepwork/internal/validation"
)

// Stores bundles the two data files.
type Stores struct {
	Sessions *flatfile.SessionStore
	Projects *flatfile.ProjectStore
}

// CreateStores creates the file stores using the configuration system
func CreateStores(config *Config) *Stores {
	v := validation.NewValidatorWithLimits(config.Limits())

	sessions := flatfile.NewSessionStore(config.GetSessionsPath())
	sessions.SetValidator(validation.NewSessionValidatorWith(v))

	projects := flatfile.NewProjectStore(config.GetProjectsPath())
	projects.SetValidator(validation.NewProjectValidatorWith(v))

	logger := logging.NewLogger("storage")
	saved := func(path string) {
		logger.WithField("path", path).Debug("data file written")
	}
	sessions.SetOnSave(saved)
	projects.SetOnSave(saved)

	return &Stores{Sessions: sessions, Projects: projects}
}

// InitResult reports which files Init created.
type InitResult struct {
	SessionsPath    string
	ProjectsPath    string
	SessionsCreated bool
	ProjectsCreated bool
}

// Init creates any missing data file. Existing files are left untouched.
func (s *Stores) Init(ctx context.Context) (InitResult, error) {
	res := InitResult{SessionsPath: s.Sessions.Path(), ProjectsPath: s.Projects.Path()}

	created, err := s.Sessions.Init(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to initialize sessions: %w", err)
	}
	res.SessionsCreated = created

	created, err = s.Projects.Init(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to initialize projects: %w", err)
	}
	res.ProjectsCreated = created
	return res, nil
}
