package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the blocks CLI with the given args and returns its
// combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "testdata/demo.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "patch demo is valid")
	assert.Contains(t, out, "3 blocks")
	assert.Contains(t, out, "2 connections")
}

func TestValidateCommandJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", "testdata/demo.yaml")
	require.NoError(t, err)

	var result ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Valid)
	assert.Equal(t, 3, result.Blocks)
	assert.Equal(t, 2, result.Connections)
}

func TestValidateCommandRejectsFanIn(t *testing.T) {
	out, err := execute(t, "validate", "testdata/fan_in.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "invalid")
}

func TestValidateCommandMissingFile(t *testing.T) {
	_, err := execute(t, "validate", "testdata/nope.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestOrderCommand(t *testing.T) {
	out, err := execute(t, "order", "testdata/demo.yaml")
	require.NoError(t, err)

	// Sources precede the sum in the printed order.
	assert.Less(t, indexOfLine(out, "a"), indexOfLine(out, "add"))
	assert.Less(t, indexOfLine(out, "b"), indexOfLine(out, "add"))
	assert.NotContains(t, out, "warning")
}

func TestOrderCommandJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "order", "testdata/demo.yaml")
	require.NoError(t, err)

	var result OrderResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, []string{"a", "b", "add"}, result.Order)
	assert.False(t, result.Cycle)
}

func TestOrderCommandFlagsCycle(t *testing.T) {
	out, err := execute(t, "--format", "json", "order", "testdata/cycle.yaml")
	require.NoError(t, err)

	var result OrderResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Cycle)
	assert.Len(t, result.Order, 2)
	// Text mode mentions the cycle.
	textOut, err := execute(t, "order", "testdata/cycle.yaml")
	require.NoError(t, err)
	assert.Contains(t, textOut, "cycle")
}

func TestRunCommand(t *testing.T) {
	out, err := execute(t, "run", "--ticks", "2", "testdata/demo.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "add (number.sum)")
	assert.Contains(t, out, "sum=30")
}

func TestRunCommandJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "run", "--ticks", "3", "testdata/demo.yaml")
	require.NoError(t, err)

	var result RunResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 3, result.Ticks)
	assert.False(t, result.Cycle)
	require.Len(t, result.Blocks, 3)
	assert.Equal(t, "add", result.Blocks[2].ID)
	assert.Equal(t, 30.0, result.Blocks[2].Outputs["sum"])
}

func TestRunCommandForDuration(t *testing.T) {
	out, err := execute(t, "--format", "json", "run", "--for", "50ms", "testdata/demo.yaml")
	require.NoError(t, err)

	var result RunResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 5, result.Ticks, "50ms at the 10ms tick period is five ticks")
}

func TestRunCommandCycleTolerated(t *testing.T) {
	out, err := execute(t, "--format", "json", "run", "--ticks", "1", "testdata/cycle.yaml")
	require.NoError(t, err)

	var result RunResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Cycle, "cycles execute with a warning, not an error")
}

func TestRunCommandRejectsZeroTicks(t *testing.T) {
	_, err := execute(t, "run", "--ticks", "0", "testdata/demo.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidFormatRejected(t *testing.T) {
	_, err := execute(t, "--format", "xml", "validate", "testdata/demo.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(&ExitError{Code: ExitCommandError, Message: "x"}))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", &ExitError{Code: ExitCommandError, Message: "x"})))
}

// indexOfLine returns the byte offset of the first line containing the
// given block id as a whole field.
func indexOfLine(out, id string) int {
	marker := "  " + id + "\n"
	return bytes.Index([]byte(out), []byte(marker))
}
