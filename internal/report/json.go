// Package report provides output formatters for harness lint results
// in JSON and human-readable text formats.
package report

import (
	"encoding/json"
	"io"

	"github.com/unbound-force/harness/internal/taxonomy"
)

// JSONReport is the top-level JSON output structure.
type JSONReport struct {
	Version  string                `json:"version"`
	Files    []taxonomy.FileReport `json:"files"`
	Metadata taxonomy.Metadata     `json:"metadata"`
}

// WriteJSON writes lint reports as formatted JSON to the writer.
func WriteJSON(w io.Writer, files []taxonomy.FileReport, meta taxonomy.Metadata) error {
	out := make([]taxonomy.FileReport, len(files))
	for i, f := range files {
		if f.Cases == nil {
			f.Cases = []taxonomy.CasePlan{}
		}
		if f.Findings == nil {
			f.Findings = []taxonomy.Finding{}
		}
		out[i] = f
	}
	report := JSONReport{
		Version:  "0.1.0",
		Files:    out,
		Metadata: meta,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
