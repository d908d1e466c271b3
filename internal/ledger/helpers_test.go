package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/quayside/chainstage/internal/actor"
)

// createTestLedger creates a new file-backed ledger in a temp dir.
func createTestLedger(t *testing.T) *Ledger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

// createTestAccount registers an account, failing the test on error.
func createTestAccount(t *testing.T, l *Ledger, name string) actor.Address {
	t.Helper()
	addr := actor.DeriveAddress(name)
	inserted, err := l.CreateAccount(context.Background(), addr, name, 100)
	if err != nil {
		t.Fatalf("CreateAccount(%q) failed: %v", name, err)
	}
	if !inserted {
		t.Fatalf("CreateAccount(%q) reported duplicate in fresh ledger", name)
	}
	return addr
}
