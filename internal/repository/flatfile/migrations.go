package flatfile

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"deepwork/internal/domain"
	"deepwork/internal/timeutil"
)

// migrateSessionIDs gives every session a unique id. Rows written by the
// six-column layout have none; duplicated ids come from hand edits.
func migrateSessionIDs(sessions []domain.Session, newID func() string) (changed bool) {
	seen := make(map[string]struct{}, len(sessions))
	for i := range sessions {
		id := sessions[i].ID
		if _, dup := seen[id]; id == "" || dup {
			id = newID()
			for {
				if _, dup := seen[id]; !dup {
					break
				}
				id = newID()
			}
			sessions[i].ID = id
			changed = true
		}
		seen[id] = struct{}{}
	}
	return changed
}

// canonicalizeSessions rewrites dates and times entered by hand, such as
// 2024/1/5 or 09:00, into the stored layout and derives the duration of
// sessions that have both times. Values that do not parse are left alone.
func canonicalizeSessions(sessions []domain.Session) (changed bool) {
	for i := range sessions {
		s := sessions[i]
		if date, err := timeutil.CanonicalDate(s.Date); err == nil {
			s.Date = date
		}
		if clock, err := timeutil.CanonicalClock(s.StartTime); s.StartTime != "" && err == nil {
			s.StartTime = clock
		}
		if clock, err := timeutil.CanonicalClock(s.EndTime); s.EndTime != "" && err == nil {
			s.EndTime = clock
		}
		s = s.RecomputeDuration()
		if s != sessions[i] {
			sessions[i] = s
			changed = true
		}
	}
	return changed
}

// projectMigration reports what migrateProjects repaired.
type projectMigration struct {
	corrupt       bool
	assignedIDs   int
	renamed       int
	dropped       int
	clearedColors int
}

func (m projectMigration) changed() bool {
	return m.corrupt || m.assignedIDs > 0 || m.renamed > 0 || m.dropped > 0 || m.clearedColors > 0
}

// migrateProjects decodes the project file leniently. Non-array content is
// treated as an empty list, non-object entries are dropped, missing ids are
// generated and missing or invalid names fall back to UntitledProjectName.
func migrateProjects(data []byte, now time.Time, newID func(time.Time) string) ([]domain.Project, projectMigration) {
	var m projectMigration
	projects := []domain.Project{}

	var raw []json.RawMessage
	if len(bytes.TrimSpace(data)) == 0 {
		m.corrupt = true
		return projects, m
	}
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		m.corrupt = true
		return projects, m
	}

	seen := make(map[string]struct{}, len(raw))
	for _, entry := range raw {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(entry, &obj); err != nil || obj == nil {
			m.dropped++
			continue
		}

		var p domain.Project
		if !decodeString(obj["id"], &p.ID) || strings.TrimSpace(p.ID) == "" {
			p.ID = ""
		}
		if _, dup := seen[p.ID]; p.ID == "" || dup {
			p.ID = uniqueID(seen, now, newID)
			m.assignedIDs++
		}
		seen[p.ID] = struct{}{}

		if !decodeString(obj["name"], &p.Name) || strings.TrimSpace(p.Name) == "" {
			p.Name = domain.UntitledProjectName
			m.renamed++
		}

		if rawColor, ok := obj["color"]; ok && !decodeString(rawColor, &p.Color) {
			p.Color = ""
			m.clearedColors++
		}

		projects = append(projects, p)
	}
	return projects, m
}

func decodeString(raw json.RawMessage, dst *string) bool {
	if raw == nil {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	*dst = s
	return true
}

func uniqueID(seen map[string]struct{}, now time.Time, newID func(time.Time) string) string {
	for {
		id := newID(now)
		if _, dup := seen[id]; !dup {
			return id
		}
	}
}
