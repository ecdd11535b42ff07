package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugEnabled(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected bool
	}{
		{"empty", "", false},
		{"any value", "1", true},
		{"true", "true", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DW_DEBUG", tt.value)
			assert.Equal(t, tt.expected, DebugEnabled())
		})
	}
}

func TestDebugfAndDebugln(t *testing.T) {
	// Only checks that neither panics in either mode.
	t.Setenv("DW_DEBUG", "")
	Debugf("hidden %s\n", "line")
	Debugln("hidden")

	t.Setenv("DW_DEBUG", "1")
	Debugf("shown %s\n", "line")
	Debugln("shown")
}
