package flatfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepwork/internal/domain"
)

func TestParseDuration(t *testing.T) {
	tests := map[string]int{
		"90":    90,
		" 45 ":  45,
		"90.0":  90,
		"29.6":  30,
		"":      0,
		"abc":   0,
		"1h30m": 0,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseDuration(in), "parseDuration(%q)", in)
	}
}

func TestIsCurrentHeader(t *testing.T) {
	assert.True(t, isCurrentHeader(SessionHeader))
	assert.True(t, isCurrentHeader(append([]string{"\ufeffdate"}, SessionHeader[1:]...)))
	assert.False(t, isCurrentHeader(legacyHeader))
	assert.False(t, isCurrentHeader([]string{"id", "date", "start_time", "end_time", "duration_minutes", "project", "notes"}))
}

func TestEncodeRecord(t *testing.T) {
	row, err := encodeRecord(domain.Session{
		ID:              "x",
		Date:            "2024-01-01",
		DurationMinutes: 5,
		Project:         "a,b",
		Notes:           `say "hi"`,
	})

	require.NoError(t, err)
	assert.Equal(t, "2024-01-01,,,5,\"a,b\",\"say \"\"hi\"\"\",x\n", string(row))
}

func TestDecodeSessions_HeaderDetection(t *testing.T) {
	res, err := decodeSessions([]byte("\ufeffdate,start_time,end_time,duration_minutes,project,notes,id\n2024-01-01,,,1,A,,x\n"))
	require.NoError(t, err)
	assert.True(t, res.header)
	assert.True(t, res.current)
	require.Len(t, res.sessions, 1)
	assert.Equal(t, "x", res.sessions[0].ID)

	res, err = decodeSessions([]byte("2024-01-01,09:00:00,10:00:00,60,date,\n"))
	require.NoError(t, err)
	assert.False(t, res.header, "a single column-like value does not make a header")
	require.Len(t, res.sessions, 1)
	assert.Equal(t, "date", res.sessions[0].Project)

	res, err = decodeSessions([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, res.sessions)
}

func TestMigrateSessionIDs(t *testing.T) {
	n := 0
	gen := func() string {
		n++
		if n == 1 {
			return "a" // collides with an existing id
		}
		return "fresh"
	}
	sessions := []domain.Session{{ID: "a"}, {ID: ""}}

	changed := migrateSessionIDs(sessions, gen)

	assert.True(t, changed)
	assert.Equal(t, "a", sessions[0].ID)
	assert.Equal(t, "fresh", sessions[1].ID)
	assert.False(t, migrateSessionIDs(sessions, gen))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer

	err := WriteCSV(&buf, []domain.Session{{ID: "x", Date: "2024-01-01", StartTime: "09:00:00", EndTime: "10:30:00", DurationMinutes: 90, Project: "Writing", Notes: "draft"}})

	require.NoError(t, err)
	assert.Equal(t, "date,start_time,end_time,duration_minutes,project,notes,id\n2024-01-01,09:00:00,10:30:00,90,Writing,draft,x\n", buf.String())
}
