package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupFixtureDB runs the setup command into a temporary database and
// returns its path.
func setupFixtureDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "fixture.db")

	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSetupCommand(rootOpts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath})
	require.NoError(t, cmd.Execute())

	return dbPath
}

func TestLedgerMissingDatabase(t *testing.T) {
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewLedgerCommand(rootOpts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope.db")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}

func TestLedgerUnknownTable(t *testing.T) {
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewLedgerCommand(rootOpts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--table", "wallets", filepath.Join(t.TempDir(), "any.db")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown table "wallets"`)
	assert.Contains(t, err.Error(), "accounts|balances|groups|ops")
}

func TestLedgerFullDump(t *testing.T) {
	dbPath := setupFixtureDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewLedgerCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dbPath})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "run: ")
	assert.Contains(t, output, "accounts (5)")
	assert.Contains(t, output, "groups (4)")
	assert.Contains(t, output, "ops (24)")
	assert.Contains(t, output, "launcher1")
	assert.Contains(t, output, "alpha group")
	// Balances resolve holder addresses to account names.
	assert.Contains(t, output, "alice")
}

func TestLedgerSingleTable(t *testing.T) {
	dbPath := setupFixtureDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewLedgerCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--table", "groups", dbPath})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "groups (4)")
	assert.NotContains(t, output, "accounts (")
	assert.NotContains(t, output, "balances (")
	assert.NotContains(t, output, "ops (")
}

func TestLedgerOpsTable(t *testing.T) {
	dbPath := setupFixtureDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewLedgerCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--table", "ops", dbPath})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "ops (24)")
	assert.Contains(t, output, "[1] user.create")
}

func TestLedgerJSON(t *testing.T) {
	dbPath := setupFixtureDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewLedgerCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dbPath})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["run_id"])

	accounts, ok := data["accounts"].([]interface{})
	require.True(t, ok)
	assert.Len(t, accounts, 5)

	groups, ok := data["groups"].([]interface{})
	require.True(t, ok)
	assert.Len(t, groups, 4)

	ops, ok := data["ops"].([]interface{})
	require.True(t, ok)
	assert.Len(t, ops, 24)
}

func TestLedgerJSONSingleTable(t *testing.T) {
	dbPath := setupFixtureDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewLedgerCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--table", "balances", dbPath})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotContains(t, data, "accounts")
	assert.NotContains(t, data, "groups")
	assert.Contains(t, data, "balances")
}

func TestLedgerAfterRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "run.db")

	rootOpts := &RootOptions{Format: "text"}
	runCmd := NewRunCommand(rootOpts)
	runCmd.SetOut(&bytes.Buffer{})
	runCmd.SetArgs([]string{"--db", dbPath, filepath.Join("testdata", "scenario.yaml")})
	require.NoError(t, runCmd.Execute())

	buf := &bytes.Buffer{}
	ledgerCmd := NewLedgerCommand(rootOpts)
	ledgerCmd.SetOut(buf)
	ledgerCmd.SetArgs([]string{"--table", "groups", dbPath})
	require.NoError(t, ledgerCmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "groups (1)")
	assert.Contains(t, output, "alpha group")
}
