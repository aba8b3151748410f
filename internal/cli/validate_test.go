package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_SchemaOnly(t *testing.T) {
	out, _, err := execute(t, "", "validate", "testdata/schema")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema: 7 attribute(s)")
	assert.Contains(t, out, "Basic Info: name, brand, category")
	assert.Contains(t, out, "✓ Valid")
}

func TestValidate_Snapshot(t *testing.T) {
	out, _, err := execute(t, "", "validate", "testdata/schema", "testdata/products.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Records: 3 checked, 0 invalid")
}

func TestValidate_InvalidRecords(t *testing.T) {
	out, _, err := execute(t, "", "validate", "testdata/schema", "testdata/invalid_records.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Records: 2 checked, 1 invalid")
	assert.Contains(t, out, "record nameless")
	assert.NotContains(t, out, "record ok")
}

func TestValidate_InvalidRecordsJSON(t *testing.T) {
	out, _, err := execute(t, "", "--format", "json", "validate", "testdata/schema", "testdata/invalid_records.yaml")
	require.Error(t, err)

	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalid, resp.Error.Code)
}

func TestValidate_QueryLint(t *testing.T) {
	out, _, err := execute(t, "", "validate", "testdata/schema", "--query", "testdata/requests/lint.json")
	require.NoError(t, err)
	assert.Contains(t, out, "UNKNOWN_CHOICE")
	assert.Contains(t, out, "UNKNOWN_FIELD")
	assert.Contains(t, out, "✓ Valid")
}

func TestValidate_QueryLintStrict(t *testing.T) {
	out, _, err := execute(t, "", "--format", "json", "validate", "testdata/schema",
		"--query", "testdata/requests/lint.json", "--strict")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, details["valid"])
	assert.Len(t, details["warnings"], 2)
}

func TestValidate_CleanQuery(t *testing.T) {
	out, _, err := execute(t, "", "--format", "json", "validate", "testdata/schema",
		"--query", "testdata/requests/phones.json", "--strict")
	require.NoError(t, err)

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 7, result.Attributes)
}

func TestValidate_MissingSchemaDir(t *testing.T) {
	_, _, err := execute(t, "", "validate", "testdata/nowhere")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "schema directory not found")
}
