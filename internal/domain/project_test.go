package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProject(t *testing.T) {
	tests := []struct {
		name     string
		color    string
		expected Project
	}{
		{
			name:     "applies default color",
			color:    "",
			expected: Project{ID: "id1", Name: "Writing", Color: DefaultProjectColor},
		},
		{
			name:     "keeps explicit color",
			color:    "#FF0000",
			expected: Project{ID: "id1", Name: "Writing", Color: "#FF0000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewProject("id1", "  Writing ", tt.color))
		})
	}
}

func TestSameName(t *testing.T) {
	assert.True(t, SameName("Writing", "writing"))
	assert.True(t, SameName(" Writing", "WRITING "))
	assert.False(t, SameName("Writing", "Writer"))
}

func TestFindProject(t *testing.T) {
	projects := []Project{
		{ID: "1", Name: "Writing"},
		{ID: "2", Name: "Research"},
	}

	assert.Equal(t, 1, FindProjectByName(projects, "research"))
	assert.Equal(t, -1, FindProjectByName(projects, "Design"))
	assert.Equal(t, 0, FindProjectByID(projects, "1"))
	assert.Equal(t, -1, FindProjectByID(projects, "3"))
	assert.Equal(t, "Writing", projects[0].String())
}
