// Package taxonomy defines the lint finding kinds, the case-plan report
// structures, and stable ID generation for harness lint results.
package taxonomy

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"
)

// FindingKind enumerates what harness lint reports about a case file.
type FindingKind string

// Errors: the file cannot run as written.
const (
	DecodeError     FindingKind = "DecodeError"
	SchemaViolation FindingKind = "SchemaViolation"
	RowError        FindingKind = "RowError"
	SpecError       FindingKind = "SpecError"
)

// Warnings: the file runs but likely not as intended.
const (
	UnknownKey       FindingKind = "UnknownKey"
	EmptyTable       FindingKind = "EmptyTable"
	DuplicateCase    FindingKind = "DuplicateCase"
	CustomComparator FindingKind = "CustomComparator"
)

// Notes: requirements on the suite running the file.
const (
	SuiteMethod    FindingKind = "SuiteMethod"
	RegisteredType FindingKind = "RegisteredType"
	SuiteSubject   FindingKind = "SuiteSubject"
)

// Level is the severity of a finding.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelNote    Level = "note"
)

// Finding is one observation about a case file.
type Finding struct {
	// ID is a stable identifier (cf-XXXXXXXX).
	ID string `json:"id"`

	Kind  FindingKind `json:"kind"`
	Level Level       `json:"level"`

	// Row is the 1-based position in the case table, 0 for the file.
	Row int `json:"row"`

	Message string `json:"message"`
}

// CasePlan is the normalized plan of one row.
type CasePlan struct {
	ID       string         `json:"id"`
	Row      int            `json:"row"`
	Name     string         `json:"name,omitempty"`
	Property string         `json:"property"`
	Plan     map[string]any `json:"plan"`
}

// Label returns the subtest name the row runs under.
func (c CasePlan) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Property
}

// FileReport is the lint result for one case file.
type FileReport struct {
	Path string `json:"path"`

	// Subject is the last subject declared by the file, if any.
	Subject  any        `json:"subject,omitempty"`
	Cases    []CasePlan `json:"cases"`
	Findings []Finding  `json:"findings"`
}

// Count returns the number of findings at level.
func (r FileReport) Count(level Level) int {
	n := 0
	for _, f := range r.Findings {
		if f.Level == level {
			n++
		}
	}
	return n
}

// Failed reports whether the file has errors, or warnings when strict.
func (r FileReport) Failed(strict bool) bool {
	return r.Count(LevelError) > 0 || (strict && r.Count(LevelWarning) > 0)
}

// Add records a finding of kind at row, deriving its level and ID.
func (r *FileReport) Add(kind FindingKind, row int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Findings = append(r.Findings, Finding{
		ID:      GenerateID(r.Path, row, string(kind), msg),
		Kind:    kind,
		Level:   LevelOf(kind),
		Row:     row,
		Message: msg,
	})
}

// Metadata holds lint run metadata.
type Metadata struct {
	HarnessVersion string        `json:"harness_version"`
	GoVersion      string        `json:"go_version"`
	Timestamp      time.Time     `json:"-"`
	Duration       time.Duration `json:"-"`
	Warnings       []string      `json:"warnings"`
}

// MarshalJSON customizes JSON encoding to use duration_ms and
// ISO 8601 timestamp.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type Alias Metadata
	ts := ""
	if !m.Timestamp.IsZero() {
		ts = m.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(&struct {
		Alias
		DurationMS int64  `json:"duration_ms"`
		Timestamp  string `json:"timestamp,omitempty"`
	}{
		Alias:      Alias(m),
		DurationMS: m.Duration.Milliseconds(),
		Timestamp:  ts,
	})
}

// GenerateID produces a stable, deterministic ID for a finding or a
// case. The ID is a sha256 hash truncated to 8 hex characters,
// prefixed with "cf-".
func GenerateID(path string, row int, kind, detail string) string {
	input := fmt.Sprintf("%s:%d:%s:%s", path, row, kind, detail)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("cf-%x", hash[:4])
}
