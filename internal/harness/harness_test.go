package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Trace, len(scenario.Steps))
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/saved_query_roundtrip.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := TraceJSON(scenario.Name, first)
	require.NoError(t, err)
	b, err := TraceJSON(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_ReportsExpectationFailures(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: failing
description: "expectations that do not hold"
records:
  - id: A
    attributes: { price: 1 }
steps:
  - query:
      filter:
        price: { greaterThan: 5 }
    expect:
      ids: [A]
      total: 1
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"steps[0]: expected ids [A], got []",
		"steps[0]: expected total 1, got 0",
	}, result.Errors)
}

func TestRun_UnexpectedErrorFails(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: unexpected_error
description: "a rejected query without an error expectation fails"
steps:
  - name: broken
    query:
      filter:
        name: { textContains: "[" }
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "steps[0] (broken): unexpected error MALFORMED_PATTERN")
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	src := `
name: parallel
description: "chunked filtering returns the sequential result"
parallelism: 3
chunk_size: 1
records:
  - { id: a, attributes: { n: 1 } }
  - { id: b, attributes: { n: 2 } }
  - { id: c, attributes: { n: 3 } }
  - { id: d, attributes: { n: 4 } }
  - { id: e }
steps:
  - query:
      filter:
        n: { greaterThanOrEqual: 2 }
      sort: { field: n, direction: descending }
    expect:
      ids: [d, c, b]
`
	scenario, err := ParseScenario([]byte(src))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_MaxLimit(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: max_limit
description: "limits above the cap are rejected"
max_limit: 10
steps:
  - query:
      pagination: { offset: 0, limit: 11 }
    expect:
      error: INVALID_PAGINATION_WINDOW
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_SchemaValidationFailure(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: invalid_records
description: "records that break the schema fail the scenario"
schema: testdata/schema
records:
  - id: nameless
    attributes: { brand: X }
steps:
  - query: {}
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "record nameless")
}

func TestRun_SnapshotLoadError(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: dup
description: "duplicate ids are a setup error"
records:
  - id: A
  - id: A
steps:
  - query: {}
`))
	require.NoError(t, err)

	_, err = Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load snapshot")
}
