package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"deepwork/internal/stats"
	"deepwork/internal/timeutil"
)

// theme holds the styles every command renders with.
type theme struct {
	title  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	muted  lipgloss.Style
	up     lipgloss.Style
	down   lipgloss.Style
	border lipgloss.Style
}

func newTheme(noColor bool) theme {
	base := lipgloss.NewStyle()
	if noColor {
		return theme{
			title:  base.Bold(true),
			header: base.Bold(true).Padding(0, 1),
			cell:   base.Padding(0, 1),
			muted:  base,
			up:     base,
			down:   base,
			border: base,
		}
	}
	return theme{
		title:  base.Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		header: base.Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Padding(0, 1),
		cell:   base.Padding(0, 1),
		muted:  base.Foreground(lipgloss.Color("#7A7A7A")),
		up:     base.Foreground(lipgloss.Color("#04B575")),
		down:   base.Foreground(lipgloss.Color("#FF6B6B")),
		border: base.Foreground(lipgloss.Color("#874BFD")),
	}
}

func (a *App) theme() theme {
	return newTheme(a.config == nil || a.config.Display.NoColor)
}

// table renders rows under headers with a rounded border.
func (t theme) table(width int, headers []string, rows [][]string) string {
	tbl := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(t.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return t.header
			}
			return t.cell
		})
	if width > 0 {
		tbl = tbl.Width(width)
	}
	return tbl.Render()
}

// comparisonRows lays out a comparison as label, range and hours rows.
func comparisonRows(c stats.Comparison) [][]string {
	rows := make([][]string, 0, len(c.Past)+1)
	rows = append(rows, []string{c.Current.Label, c.Current.Range, timeutil.FormatHours(c.Current.Hours)})
	for _, w := range c.Past {
		rows = append(rows, []string{w.Label, w.Range, timeutil.FormatHours(w.Hours)})
	}
	return rows
}

// changeLine summarizes the current window against the past average.
func (t theme) changeLine(c stats.Comparison) string {
	avg := fmt.Sprintf("average %s", timeutil.FormatHours(c.Average))
	if !c.HasBaseline {
		return t.muted.Render(avg + ", no baseline yet")
	}
	change := fmt.Sprintf("%+.0f%%", c.ChangePercent)
	switch {
	case c.ChangePercent > 0:
		change = t.up.Render(change)
	case c.ChangePercent < 0:
		change = t.down.Render(change)
	}
	return fmt.Sprintf("%s, %s vs average", t.muted.Render(avg), change)
}

// renderComparison writes one comparison block.
func (t theme) renderComparison(w io.Writer, width int, c stats.Comparison) {
	fmt.Fprintln(w, t.title.Render(strings.ToUpper(string(c.Granularity[:1]))+string(c.Granularity[1:])))
	fmt.Fprintln(w, t.table(width, []string{"Window", "Dates", "Hours"}, comparisonRows(c)))
	fmt.Fprintln(w, t.changeLine(c))
}

// bar draws a proportional bar of at most width cells.
func bar(value, peak float64, width int) string {
	if peak <= 0 || value <= 0 || width <= 0 {
		return ""
	}
	n := int(value / peak * float64(width))
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
