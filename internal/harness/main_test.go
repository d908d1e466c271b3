package harness_test

import (
	"testing"

	"go.uber.org/goleak"
)

// Scenario runs open SQLite handles and spin up database/sql pools;
// verify every test releases them.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
