package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quayside/chainstage/internal/ledger"
)

// LedgerOptions holds flags for the ledger command.
type LedgerOptions struct {
	*RootOptions
	Table string
}

// ledgerTables lists the dumpable tables in display order.
var ledgerTables = []string{"accounts", "balances", "groups", "ops"}

// LedgerDump is the ledger command's result payload. Only requested
// tables are populated.
type LedgerDump struct {
	Accounts []ledger.AccountRow `json:"accounts,omitempty"`
	Balances []ledger.BalanceRow `json:"balances,omitempty"`
	Groups   []ledger.GroupRow   `json:"groups,omitempty"`
	Ops      []ledger.OpRow      `json:"ops,omitempty"`
	RunID    string              `json:"run_id,omitempty"`
}

// NewLedgerCommand creates the ledger command.
func NewLedgerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LedgerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ledger <db>",
		Short: "Dump ledger state",
		Long: `Dump the state of a chainstage ledger database: accounts, balances,
groups, and the operation log.

Examples:
  chainstage ledger ./fixture.db
  chainstage ledger ./fixture.db --table groups
  chainstage ledger ./fixture.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedgerDump(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "dump a single table (accounts|balances|groups|ops)")

	return cmd
}

func runLedgerDump(opts *LedgerOptions, dbPath string, cmd *cobra.Command) error {
	if opts.Table != "" && !isLedgerTable(opts.Table) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("unknown table %q: must be one of %s", opts.Table, strings.Join(ledgerTables, "|")))
	}

	// Open would create a fresh database; dumping wants an existing one.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", dbPath))
	}

	lgr, err := ledger.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open ledger", err)
	}
	defer closeLedger(lgr)

	ctx := commandContext(cmd)
	dump, err := collectDump(ctx, lgr, opts.Table)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read ledger", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.Format == "json" {
		return formatter.Success(dump)
	}

	printDump(formatter, dump, opts.Table)
	return nil
}

func isLedgerTable(name string) bool {
	for _, t := range ledgerTables {
		if t == name {
			return true
		}
	}
	return false
}

// collectDump reads the requested tables. An empty table name selects
// all of them.
func collectDump(ctx context.Context, lgr *ledger.Ledger, table string) (*LedgerDump, error) {
	dump := &LedgerDump{}
	want := func(name string) bool { return table == "" || table == name }

	var err error
	if want("accounts") {
		if dump.Accounts, err = lgr.ListAccounts(ctx); err != nil {
			return nil, fmt.Errorf("accounts: %w", err)
		}
	}
	if want("balances") {
		if dump.Balances, err = lgr.ListBalances(ctx); err != nil {
			return nil, fmt.Errorf("balances: %w", err)
		}
	}
	if want("groups") {
		if dump.Groups, err = lgr.ListGroups(ctx); err != nil {
			return nil, fmt.Errorf("groups: %w", err)
		}
	}
	if want("ops") {
		if dump.Ops, err = lgr.ListOps(ctx); err != nil {
			return nil, fmt.Errorf("ops: %w", err)
		}
	}

	if runID, err := lgr.GetMeta(ctx, "run_id"); err == nil {
		dump.RunID = runID
	}

	return dump, nil
}

// printDump renders the dump as indented text sections.
func printDump(formatter *OutputFormatter, dump *LedgerDump, table string) {
	w := formatter.Writer
	want := func(name string) bool { return table == "" || table == name }

	if dump.RunID != "" {
		fmt.Fprintf(w, "run: %s\n", dump.RunID)
	}

	if want("accounts") {
		fmt.Fprintf(w, "accounts (%d)\n", len(dump.Accounts))
		for _, a := range dump.Accounts {
			fmt.Fprintf(w, "  %-12s %s created_at=%d\n", a.Name, a.Address, a.CreatedAt)
		}
	}

	if want("balances") {
		fmt.Fprintf(w, "balances (%d)\n", len(dump.Balances))
		names := accountNames(dump.Accounts)
		for _, b := range dump.Balances {
			holder := string(b.Address)
			if name, ok := names[holder]; ok {
				holder = name
			}
			fmt.Fprintf(w, "  %-12s %-10s %d\n", holder, assetLabel(b.Asset), b.Amount)
		}
	}

	if want("groups") {
		fmt.Fprintf(w, "groups (%d)\n", len(dump.Groups))
		for _, g := range dump.Groups {
			fmt.Fprintf(w, "  [%d] %s owner=%s stake=%d join=%d..%d score=%d%%\n",
				g.ID, g.Description, g.Owner, g.StakeAmount, g.MinJoin, g.MaxJoin, g.ScorePercent)
		}
	}

	if want("ops") {
		fmt.Fprintf(w, "ops (%d)\n", len(dump.Ops))
		for _, op := range dump.Ops {
			fmt.Fprintf(w, "  [%d] %s %s\n", op.Seq, op.Op, op.Params)
		}
	}
}

// accountNames maps address strings to account names for display.
func accountNames(accounts []ledger.AccountRow) map[string]string {
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[string(a.Address)] = a.Name
	}
	return names
}

// assetLabel shortens token addresses for the text view; the native
// asset keeps its name.
func assetLabel(asset string) string {
	if asset == ledger.NativeAsset || len(asset) <= 10 {
		return asset
	}
	return asset[:10]
}
