package output

import (
	"fmt"
	"io"

	"github.com/dshills/compare-changesets/internal/compare"
	"gopkg.in/yaml.v3"
)

// YAMLWriter outputs the full result as YAML.
type YAMLWriter struct{}

func (y *YAMLWriter) Write(w io.Writer, res *compare.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("writing YAML: %w", err)
	}
	return enc.Close()
}
