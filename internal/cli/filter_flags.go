package cli

import (
	"strings"
	"time"

	"github.com/spf13/pflag"

	"deepwork/internal/domain"
	"deepwork/internal/errors"
	"deepwork/internal/timeutil"
)

// sessionFilterFlags are the filters shared by list and export.
type sessionFilterFlags struct {
	since   string
	project string
}

func (f *sessionFilterFlags) bind(flags *pflag.FlagSet) {
	flags.StringVar(&f.since, "since", "", "Only sessions from this far back (30m, 2h, 1d, 2w, 3mo, 1y)")
	flags.StringVarP(&f.project, "project", "p", "", "Only sessions on this project")
}

// filter builds the session filter relative to now. Sessions are matched by
// calendar day, so --since covers whole days.
func (f *sessionFilterFlags) filter(now time.Time) (domain.SessionFilter, error) {
	var filter domain.SessionFilter
	if f.since != "" {
		d, err := parseTimeShorthand(f.since)
		if err != nil {
			return filter, errors.NewInvalidInputError("since", f.since, "use a duration like 30m, 2h, 1d, 2w, 3mo or 1y")
		}
		from := timeutil.StartOfDay(now.Add(-d))
		filter.From = &from
		filter.To = &now
	}
	if project := strings.TrimSpace(f.project); project != "" {
		filter.Project = &project
	}
	return filter, nil
}
