package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/compare-changesets/internal/compare"
	"golang.org/x/term"
)

// Writer writes a result in a specific format.
type Writer interface {
	Write(w io.Writer, res *compare.Result) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string, color bool) (Writer, error) {
	switch format {
	case "stat":
		return &StatWriter{Color: color}, nil
	case "name-status":
		return &NameStatusWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "yaml":
		return &YAMLWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteResult renders res to w in the given format.
func WriteResult(w io.Writer, res *compare.Result, format string, color bool) error {
	writer, err := GetWriter(format, color)
	if err != nil {
		return err
	}
	return writer.Write(w, res)
}

// ColorEnabled resolves a color mode (auto, always, never) for w.
// In auto mode color is used only when w is a terminal.
func ColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
