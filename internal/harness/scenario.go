package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a sequence of query steps over one snapshot.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Snapshot is a JSON or YAML record file. Mutually exclusive with Records.
	Snapshot string `yaml:"snapshot,omitempty"`

	// Records is an inline snapshot in the record file shape.
	Records []any `yaml:"records,omitempty"`

	// Schema is an optional CUE schema directory. When set, records are
	// validated and every step's query is linted.
	Schema string `yaml:"schema,omitempty"`

	// MaxLimit caps pagination limits. Zero means no cap.
	MaxLimit int `yaml:"max_limit,omitempty"`

	// Parallelism and ChunkSize configure the engine's filter pass.
	Parallelism int `yaml:"parallelism,omitempty"`
	ChunkSize   int `yaml:"chunk_size,omitempty"`

	Steps []Step `yaml:"steps"`
}

// Step evaluates one query. Exactly one of Query, Share or Apply is set.
type Step struct {
	Name string `yaml:"name,omitempty"`

	// Query is a request in the JSON request shape.
	Query map[string]any `yaml:"query,omitempty"`

	// Share is a URL query string.
	Share string `yaml:"share,omitempty"`

	// Apply names a query saved by an earlier step.
	Apply string `yaml:"apply,omitempty"`

	// Save persists this step's query under the given name.
	Save string `yaml:"save,omitempty"`

	// Shared sets the shared flag when saving.
	Shared bool `yaml:"shared,omitempty"`

	// Expect is checked against the step outcome. Nil checks nothing.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Kind reports which input the step uses.
func (s Step) Kind() string {
	switch {
	case s.Query != nil:
		return KindQuery
	case s.Share != "":
		return KindShare
	default:
		return KindApply
	}
}

// Expect lists expected outcomes. Unset fields are not checked.
type Expect struct {
	// IDs is the exact page, in order. `ids: []` expects an empty page.
	IDs []string `yaml:"ids,omitempty"`

	Total   *int  `yaml:"total,omitempty"`
	HasMore *bool `yaml:"has_more,omitempty"`

	// Error is the expected query error code, e.g. MALFORMED_PATTERN.
	Error string `yaml:"error,omitempty"`

	// Warnings are the expected lint warning codes, in order.
	Warnings []string `yaml:"warnings,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Relative snapshot
// and schema paths are resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	scenario.Snapshot = resolve(base, scenario.Snapshot)
	scenario.Schema = resolve(base, scenario.Schema)

	if err := validatePaths(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. Unknown fields are rejected.
// Paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Snapshot != "" && s.Records != nil {
		return fmt.Errorf("snapshot and records are mutually exclusive")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.MaxLimit < 0 || s.Parallelism < 0 || s.ChunkSize < 0 {
		return fmt.Errorf("max_limit, parallelism and chunk_size must be >= 0")
	}

	saved := map[string]bool{}
	for i, step := range s.Steps {
		inputs := 0
		if step.Query != nil {
			inputs++
		}
		if step.Share != "" {
			inputs++
		}
		if step.Apply != "" {
			inputs++
		}
		if inputs != 1 {
			return fmt.Errorf("steps[%d]: exactly one of query, share or apply is required", i)
		}
		if step.Apply != "" {
			if step.Save != "" {
				return fmt.Errorf("steps[%d]: apply steps cannot save", i)
			}
			if !saved[step.Apply] {
				return fmt.Errorf("steps[%d]: apply %q refers to no earlier save", i, step.Apply)
			}
		}
		if step.Save != "" {
			if strings.TrimSpace(step.Save) == "" {
				return fmt.Errorf("steps[%d]: save name must not be blank", i)
			}
			saved[step.Save] = true
		}
	}
	return nil
}

func validatePaths(s *Scenario) error {
	if s.Snapshot != "" {
		if _, err := os.Stat(s.Snapshot); err != nil {
			return fmt.Errorf("snapshot file not found: %s", s.Snapshot)
		}
	}
	if s.Schema != "" {
		if _, err := os.Stat(s.Schema); err != nil {
			return fmt.Errorf("schema directory not found: %s", s.Schema)
		}
	}
	return nil
}
