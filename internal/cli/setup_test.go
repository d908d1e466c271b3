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

func TestSetupRequiresDatabaseFlag(t *testing.T) {
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSetupCommand(rootOpts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.Contains(t, err.Error(), "db")
}

func TestSetupBuildsStandardFixture(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fixture.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSetupCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "✓ standard setup complete (25 events")
	assert.Contains(t, output, dbPath)
	assert.Contains(t, output, "alpha group")
	assert.Contains(t, output, "beta group")
	assert.Contains(t, output, "gamma group")
	assert.Contains(t, output, "delta group")

	_, err := os.Stat(dbPath)
	require.NoError(t, err)
}

func TestSetupJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fixture.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewSetupCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(25), data["events"])
	assert.NotEmpty(t, data["run_id"])

	groups, ok := data["groups"].([]interface{})
	require.True(t, ok)
	require.Len(t, groups, 4)

	first, ok := groups[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alpha group", first["description"])
	assert.NotEmpty(t, first["owner"])
}

func TestSetupVerbose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fixture.db")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Verbose: true}
	cmd := NewSetupCommand(rootOpts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stderr.String(), "Running standard setup")
}

func TestSetupInvalidParams(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fixture.db")

	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSetupCommand(rootOpts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--params", filepath.Join("testdata", "params_invalid")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to initialize chain")
}

func TestSetupParamsOverride(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fixture.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSetupCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--params", filepath.Join("testdata", "params")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ standard setup complete")
}
