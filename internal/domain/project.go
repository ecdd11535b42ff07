package domain

import "strings"

const (
	// DefaultProjectColor is applied when a project is added without a color.
	DefaultProjectColor = "#3B82F6"
	// UntitledProjectName replaces missing or invalid names found on disk.
	UntitledProjectName = "Untitled Project"
)

// Project represents a named, colored bucket that sessions are tracked against.
type Project struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// NewProject creates a Project, falling back to the default color.
func NewProject(id, name, color string) Project {
	if color == "" {
		color = DefaultProjectColor
	}
	return Project{ID: id, Name: strings.TrimSpace(name), Color: color}
}

// String returns the project name for display purposes.
func (p Project) String() string {
	return p.Name
}

// SameName compares two project names case-insensitively, ignoring surrounding whitespace.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// FindProjectByName returns the index of the project named name, or -1.
func FindProjectByName(projects []Project, name string) int {
	for i, p := range projects {
		if SameName(p.Name, name) {
			return i
		}
	}
	return -1
}

// FindProjectByID returns the index of the project with the given id, or -1.
func FindProjectByID(projects []Project, id string) int {
	for i, p := range projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}
