package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dshills/compare-changesets/internal/compare"
	"github.com/dshills/compare-changesets/internal/gitctx"
	"github.com/muesli/termenv"
)

// maxBar caps the width of the +/- histogram in stat output.
const maxBar = 40

// StatWriter outputs a per-file summary in the style of git diff --stat.
type StatWriter struct {
	Color bool
}

func (s *StatWriter) Write(w io.Writer, res *compare.Result) error {
	ew := &errWriter{w: w}
	if len(res.Changes) == 0 {
		ew.println(" 0 files changed")
		return ew.err
	}

	plus, minus := s.painters(w)

	names := make([]string, len(res.Changes))
	nameWidth, maxTotal, countWidth := 0, 0, 1
	for i, ch := range res.Changes {
		names[i] = displayName(ch)
		nameWidth = max(nameWidth, len(names[i]))
		total := ch.Additions + ch.Deletions
		maxTotal = max(maxTotal, total)
		countWidth = max(countWidth, len(fmt.Sprint(total)))
	}

	for i, ch := range res.Changes {
		adds, dels := scale(ch.Additions, maxTotal), scale(ch.Deletions, maxTotal)
		bar := ""
		if adds > 0 {
			bar += plus(strings.Repeat("+", adds))
		}
		if dels > 0 {
			bar += minus(strings.Repeat("-", dels))
		}
		line := fmt.Sprintf(" %-*s | %*d", nameWidth, names[i], countWidth, ch.Additions+ch.Deletions)
		if bar != "" {
			line += " " + bar
		}
		ew.println(line)
	}
	ew.println(summaryLine(res.Summary))
	return ew.err
}

// painters returns the functions that color insertions and deletions.
// Without color they return their input unchanged.
func (s *StatWriter) painters(w io.Writer) (plus, minus func(...string) string) {
	if !s.Color {
		plain := func(strs ...string) string { return strings.Join(strs, " ") }
		return plain, plain
	}
	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(termenv.ANSI)
	return renderer.NewStyle().Foreground(lipgloss.Color("2")).Render,
		renderer.NewStyle().Foreground(lipgloss.Color("1")).Render
}

// scale shrinks n proportionally when the largest change exceeds maxBar,
// keeping at least one column for any non-zero count.
func scale(n, maxTotal int) int {
	if n == 0 || maxTotal <= maxBar {
		return n
	}
	return max(1, n*maxBar/maxTotal)
}

func displayName(ch gitctx.Change) string {
	if ch.Action == gitctx.Renamed && ch.OldPath != "" {
		return ch.OldPath + " => " + ch.Path
	}
	return ch.Path
}

func summaryLine(s compare.Summary) string {
	line := fmt.Sprintf(" %d %s changed", s.Files, plural(s.Files, "file", "files"))
	if s.Additions > 0 || s.Deletions == 0 {
		line += fmt.Sprintf(", %d %s(+)", s.Additions, plural(s.Additions, "insertion", "insertions"))
	}
	if s.Deletions > 0 || s.Additions == 0 {
		line += fmt.Sprintf(", %d %s(-)", s.Deletions, plural(s.Deletions, "deletion", "deletions"))
	}
	return line
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// NameStatusWriter outputs one status letter and path per change, matching
// git diff --name-status.
type NameStatusWriter struct{}

func (n *NameStatusWriter) Write(w io.Writer, res *compare.Result) error {
	ew := &errWriter{w: w}
	for _, ch := range res.Changes {
		if ch.Action == gitctx.Renamed {
			ew.printf("%s\t%s\t%s\n", ch.Action.Letter(), ch.OldPath, ch.Path)
			continue
		}
		ew.printf("%s\t%s\n", ch.Action.Letter(), ch.Path)
	}
	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
