package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidParams(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "params")})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ parameters valid")
}

func TestValidateValidParamsJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "params")})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["valid"])

	proto, ok := data["protocol"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "STG", proto["token_symbol"])
	assert.Equal(t, float64(50_000), proto["launch_goal"])
}

func TestValidateVerbose(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Verbose: true}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{filepath.Join("testdata", "params")})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "token_symbol=STG")
	assert.Contains(t, stdout.String(), "claim_rate=20")
	assert.Contains(t, stderr.String(), "Compiled parameters")
}

func TestValidateSemanticErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "params_invalid")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 2 error(s)")

	output := buf.String()
	assert.Contains(t, output, "✗ validation failed")
	assert.Contains(t, output, "claim_rate")
	assert.Contains(t, output, "P101")
	assert.Contains(t, output, "score_percent")
	assert.Contains(t, output, "P104")
}

func TestValidateSemanticErrorsJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "params_invalid")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "P101", resp.Error.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, data["valid"])

	errList, ok := data["errors"].([]interface{})
	require.True(t, ok)
	assert.Len(t, errList, 2)
}

func TestValidateCompileError(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "params_broken")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	output := buf.String()
	assert.Contains(t, output, "✗ validation failed")
	assert.Contains(t, output, "P100")
	assert.Contains(t, output, "token_symbol")
}

func TestValidateMissingDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/params/dir"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "params directory not found")
	assert.Contains(t, buf.String(), ErrCodeParams)
}

func TestValidateNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "protocol.cue")
	require.NoError(t, os.WriteFile(file, []byte(`protocol: {}`), 0o644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{file})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "not a directory")
}

func TestValidateEmptyDirectory(t *testing.T) {
	// An empty directory is a compile failure of the input files, not
	// a command error.
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "no CUE files found")
}

func TestValidateDefaultsOnlyOverride(t *testing.T) {
	dir := t.TempDir()
	content := `protocol: {
	launch_goal:   1_000_000
	owner_funding: 500_000
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "protocol.cue"), []byte(content), 0o644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ parameters valid")
}

func TestValidateFundingShortfall(t *testing.T) {
	dir := t.TempDir()
	content := `protocol: {
	owner_funding: 100
	group_policy: {
		stake_amount: 5_000
	}
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "protocol.cue"), []byte(content), 0o644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "P107")
	assert.Contains(t, buf.String(), "owner_funding")
}
