package report

import (
	"io"
	"maps"
	"slices"

	"github.com/nao1215/idguard/internal/model"
)

// Writer renders finished checks.
type Writer interface {
	// WriteExposure outputs an exposure check.
	// Returns the number of bytes written and any error encountered.
	WriteExposure(report *model.CombinedReport) (int, error)

	// WriteHygiene outputs a hygiene assessment.
	WriteHygiene(report *model.HygieneReport) (int, error)
}

// MultiWriter writes to multiple Writers, for example the terminal and a file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteExposure outputs the report to all configured Writers.
// Returns the total bytes written. Stops on the first error.
func (m *MultiWriter) WriteExposure(report *model.CombinedReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteExposure(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHygiene outputs the report to all configured Writers.
func (m *MultiWriter) WriteHygiene(report *model.HygieneReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHygiene(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
