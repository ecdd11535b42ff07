package flatfile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"deepwork/internal/domain"
	apperrors "deepwork/internal/errors"
	"deepwork/internal/logging"
	"deepwork/internal/timeutil"
	"deepwork/internal/validation"
)

// ProjectStore keeps projects as a pretty-printed JSON array.
type ProjectStore struct {
	path      string
	validator *validation.ProjectValidator
	now       func() time.Time
	newID     func(time.Time) string
	onSave    func(path string)
	log       *logrus.Entry
}

// NewProjectStore creates a store for the JSON file at path.
func NewProjectStore(path string) *ProjectStore {
	return &ProjectStore{
		path:      path,
		validator: validation.NewProjectValidator(),
		now:       time.Now,
		newID:     timeutil.GenerateID,
		log:       logging.NewLogger("projects"),
	}
}

// SetValidator overrides the validator applied before writes.
func (s *ProjectStore) SetValidator(v *validation.ProjectValidator) {
	s.validator = v
}

// SetNowFunc overrides the clock used for id generation.
// Passing nil resets it to time.Now.
func (s *ProjectStore) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// SetIDGenerator overrides the id source. Passing nil restores the default.
func (s *ProjectStore) SetIDGenerator(fn func(time.Time) string) {
	if fn == nil {
		fn = timeutil.GenerateID
	}
	s.newID = fn
}

// SetOnSave registers a callback invoked after every successful write.
func (s *ProjectStore) SetOnSave(fn func(path string)) {
	s.onSave = fn
}

// Path returns the location of the project file.
func (s *ProjectStore) Path() string {
	return s.path
}

// Load returns the migrated project list. A missing file yields an empty list
// and is not created. Corrupt content is treated as empty; any repair
// rewrites the file once.
func (s *ProjectStore) Load(ctx context.Context) ([]domain.Project, error) {
	data, exists, err := readFile(ctx, "read projects", s.path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []domain.Project{}, nil
	}

	projects, m := migrateProjects(data, s.now(), s.newID)
	if !m.changed() {
		return projects, nil
	}

	s.log.WithFields(logrus.Fields{
		"path":           s.path,
		"corrupt":        m.corrupt,
		"assigned_ids":   m.assignedIDs,
		"defaulted":      m.renamed,
		"dropped":        m.dropped,
		"cleared_colors": m.clearedColors,
	}).Warn("repairing project file")

	if err := s.save(projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Add creates a project. The name must be unique case-insensitively; an
// empty color selects the default.
func (s *ProjectStore) Add(ctx context.Context, name string, color string) (domain.Project, error) {
	ve := validation.NewValidationError()
	ve.Merge(s.validator.ValidateName(name))
	ve.Merge(s.validator.ValidateOptionalColor(color))
	if err := HandleValidationError("invalid project", ve.ErrOrNil()); err != nil {
		return domain.Project{}, err
	}

	projects, err := s.Load(ctx)
	if err != nil {
		return domain.Project{}, err
	}
	if domain.FindProjectByName(projects, name) >= 0 {
		return domain.Project{}, apperrors.NewDuplicateError("project", "name", name)
	}

	seen := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		seen[p.ID] = struct{}{}
	}
	project := domain.NewProject(uniqueID(seen, s.now(), s.newID), name, color)

	if err := s.save(append(projects, project)); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// UpdateColor sets the color of the project with the given id.
func (s *ProjectStore) UpdateColor(ctx context.Context, id string, color string) (domain.Project, error) {
	if err := HandleValidationError("invalid color", s.validator.ValidateColor(color)); err != nil {
		return domain.Project{}, err
	}

	projects, err := s.Load(ctx)
	if err != nil {
		return domain.Project{}, err
	}
	idx := domain.FindProjectByID(projects, id)
	if idx < 0 {
		return domain.Project{}, apperrors.NewNotFoundError("project", id)
	}

	projects[idx].Color = color
	if err := s.save(projects); err != nil {
		return domain.Project{}, err
	}
	return projects[idx], nil
}

// Rename changes a project's name. Sessions keep the name they were recorded with.
func (s *ProjectStore) Rename(ctx context.Context, id string, name string) (domain.Project, error) {
	if err := HandleValidationError("invalid project", s.validator.ValidateName(name)); err != nil {
		return domain.Project{}, err
	}

	projects, err := s.Load(ctx)
	if err != nil {
		return domain.Project{}, err
	}
	idx := domain.FindProjectByID(projects, id)
	if idx < 0 {
		return domain.Project{}, apperrors.NewNotFoundError("project", id)
	}
	if other := domain.FindProjectByName(projects, name); other >= 0 && other != idx {
		return domain.Project{}, apperrors.NewDuplicateError("project", "name", name)
	}

	projects[idx].Name = domain.NewProject(id, name, "").Name
	if err := s.save(projects); err != nil {
		return domain.Project{}, err
	}
	return projects[idx], nil
}

// Delete removes the project with the given id.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	projects, err := s.Load(ctx)
	if err != nil {
		return err
	}
	idx := domain.FindProjectByID(projects, id)
	if idx < 0 {
		return apperrors.NewNotFoundError("project", id)
	}
	return s.save(append(projects[:idx], projects[idx+1:]...))
}

// Init creates an empty project file when none exists.
func (s *ProjectStore) Init(ctx context.Context) (created bool, err error) {
	_, exists, err := readFile(ctx, "read projects", s.path)
	if err != nil || exists {
		return false, err
	}
	return true, s.save([]domain.Project{})
}

func (s *ProjectStore) save(projects []domain.Project) error {
	if projects == nil {
		projects = []domain.Project{}
	}
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return HandleStorageError("encode projects", s.path, err)
	}
	data = append(data, '\n')
	if err := writeFileAtomic(s.path, data); err != nil {
		return HandleStorageError("write projects", s.path, err)
	}
	if s.onSave != nil {
		s.onSave(s.path)
	}
	return nil
}
