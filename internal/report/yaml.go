package report

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/chrisdamba/bagsim/internal/simulator"
)

type yamlReport struct {
	Runs []Summary `yaml:"runs"`
}

// WriteYAML renders the same content as WriteText for other tools.
func WriteYAML(w io.Writer, results []*simulator.Result) error {
	var doc yamlReport
	for _, r := range results {
		doc.Runs = append(doc.Runs, Summarize(r))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("error encoding report: %w", err)
	}
	return enc.Close()
}
