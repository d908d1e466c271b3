package harness

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/quayside/chainstage/internal/actor"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
// This prevents SQL injection via identifier interpolation.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			if event.Actor != "" {
				fmt.Fprintf(&buf, "  [%d] %s actor=%s\n", event.Seq, event.Op, event.Actor)
			} else {
				fmt.Fprintf(&buf, "  [%d] %s\n", event.Seq, event.Op)
			}
		}
	}

	return buf.String()
}

// matchEvent reports whether a trace event satisfies the assertion's
// op, optional actor filter, and args subset.
func matchEvent(event TraceEvent, assertion Assertion) bool {
	if event.Op != assertion.Op {
		return false
	}
	if assertion.Actor != "" && event.Actor != assertion.Actor {
		return false
	}
	return matchArgs(event.Args, assertion.Args)
}

// matchArgs checks if actual args contain all expected args (subset match).
// Extra keys in actual are ignored. Expected values that cannot be
// represented as trace values (floats, nulls) never match.
func matchArgs(actual actor.Object, expected map[string]interface{}) bool {
	for key, expectedRaw := range expected {
		actualVal, exists := actual[key]
		if !exists {
			return false
		}
		expectedVal, err := actor.ToValue(expectedRaw)
		if err != nil {
			return false
		}
		if !actor.Equal(actualVal, expectedVal) {
			return false
		}
	}
	return true
}

// assertTraceContains checks if the trace contains an event matching
// the specified op, actor, and args (subset match).
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if matchEvent(event, assertion) {
			return nil
		}
	}

	expected := fmt.Sprintf("op %s", assertion.Op)
	if assertion.Actor != "" {
		expected += fmt.Sprintf(" by %s", assertion.Actor)
	}
	if len(assertion.Args) > 0 {
		expected += fmt.Sprintf(" with args %v", assertion.Args)
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if ops appear in the specified order.
// Ops don't need to be consecutive (intervening events are allowed);
// only the first occurrence of each op counts.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)

	for i, event := range trace {
		for _, expectedOp := range assertion.Ops {
			if event.Op == expectedOp && positions[expectedOp] == 0 {
				positions[expectedOp] = i + 1 // 1-indexed for readability
			}
		}
	}

	for _, op := range assertion.Ops {
		if positions[op] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all ops present: %v", assertion.Ops),
				Actual:   fmt.Sprintf("missing op: %s", op),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Ops); i++ {
		prev := assertion.Ops[i-1]
		curr := assertion.Ops[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("ops in order: %v", assertion.Ops),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks if events matching the assertion appear
// exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	if assertion.Count == nil {
		return fmt.Errorf("trace_count requires a count")
	}

	count := 0
	for _, event := range trace {
		if matchEvent(event, assertion) {
			count++
		}
	}

	if count != *assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", *assertion.Count, assertion.Op),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertFinalState queries a ledger table with parameterized SQL and
// validates either the matching row count or, for the single matching
// row, a subset of column values.
//
// Security: table and column names are validated against a whitelist
// pattern to prevent SQL injection via identifier interpolation.
func assertFinalState(ctx context.Context, state StateQuerier, assertion Assertion) error {
	if !validIdentifier.MatchString(assertion.Table) {
		return fmt.Errorf("invalid table name %q: must match pattern %s", assertion.Table, validIdentifier.String())
	}

	where, err := normalizeColumns(assertion.Where)
	if err != nil {
		return err
	}

	whereSQL, whereArgs, err := buildWhereClause(where)
	if err != nil {
		return err
	}

	if assertion.Count != nil {
		return assertRowCount(ctx, state, assertion, whereSQL, whereArgs, where)
	}
	return assertRowValues(ctx, state, assertion, whereSQL, whereArgs, where)
}

// assertRowCount compares the number of rows matching the WHERE clause
// against the expected count.
func assertRowCount(ctx context.Context, state StateQuerier, assertion Assertion, whereSQL string, whereArgs []interface{}, where map[string]interface{}) error {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", assertion.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	rows, err := state.Query(ctx, query, whereArgs...)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	defer rows.Close()

	var count int64
	if !rows.Next() {
		return fmt.Errorf("count query returned no rows")
	}
	if err := rows.Scan(&count); err != nil {
		return fmt.Errorf("scan count: %w", err)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("count rows: %w", err)
	}

	if count != int64(*assertion.Count) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%d rows in %s where %s", *assertion.Count, assertion.Table, formatWhereClause(where)),
			Actual:   fmt.Sprintf("%d rows", count),
		}
	}

	return nil
}

// assertRowValues requires exactly one row matching the WHERE clause
// and checks the expected column values (subset semantics).
func assertRowValues(ctx context.Context, state StateQuerier, assertion Assertion, whereSQL string, whereArgs []interface{}, where map[string]interface{}) error {
	expect, err := normalizeColumns(assertion.Expect)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT * FROM %s", assertion.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	rows, err := state.Query(ctx, query, whereArgs...)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("get columns: %w", err)
	}

	if !rows.Next() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Table, formatWhereClause(where)),
			Actual:   "row not found",
		}
	}

	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	if err := rows.Scan(valuePtrs...); err != nil {
		return fmt.Errorf("scan row: %w", err)
	}

	// More than one match means the assertion is ambiguous.
	if rows.Next() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", assertion.Table, formatWhereClause(where)),
			Actual:   "multiple rows matched (assertion is ambiguous)",
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("state rows: %w", err)
	}

	actualRow := make(map[string]interface{})
	for i, col := range columns {
		actualRow[col] = values[i]
	}

	for _, key := range sortedKeys(expect) {
		expectedValue := expect[key]
		actualValue, exists := actualRow[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("column %q to exist", key),
				Actual:   fmt.Sprintf("column %q not present in result columns: %v", key, columns),
			}
		}

		if !stateValuesEqual(expectedValue, actualValue) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("column %q = %v (type %T)", key, expectedValue, expectedValue),
				Actual:   fmt.Sprintf("column %q = %v (type %T)", key, actualValue, actualValue),
			}
		}
	}

	return nil
}

// normalizeColumns rewrites the "_name" convenience keys: a key like
// "owner_name" compares the "owner" column against the address derived
// from the given actor name, so scenarios can say names instead of
// addresses. All other keys pass through unchanged.
func normalizeColumns(m map[string]interface{}) (map[string]interface{}, error) {
	if len(m) == 0 {
		return m, nil
	}

	out := make(map[string]interface{}, len(m))
	for key, value := range m {
		base, found := strings.CutSuffix(key, "_name")
		if !found || base == "" {
			out[key] = value
			continue
		}
		name, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("key %q requires a string actor name, got %T", key, value)
		}
		out[base] = string(actor.DeriveAddress(name))
	}
	return out, nil
}

// buildWhereClause constructs a parameterized WHERE clause.
// Returns SQL fragment, arguments slice, and error. Keys are sorted for
// determinism.
//
// Security: column names are validated against a whitelist pattern to
// prevent SQL injection via identifier interpolation.
func buildWhereClause(where map[string]interface{}) (string, []interface{}, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := sortedKeys(where)

	clauses := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))

	for _, key := range keys {
		if !validIdentifier.MatchString(key) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause: must match pattern %s", key, validIdentifier.String())
		}
		clauses = append(clauses, fmt.Sprintf("%s = ?", key))
		args = append(args, toSQLValue(where[key]))
	}

	return strings.Join(clauses, " AND "), args, nil
}

// toSQLValue converts an interface{} value to a SQL-compatible value.
func toSQLValue(v interface{}) interface{} {
	switch val := v.(type) {
	case string, int, int64, bool:
		return val
	case actor.Address:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]interface{}) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := sortedKeys(where)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stateValuesEqual compares expected and actual values from state tables.
// Handles type coercion for SQLite values which may be returned as
// different types than the scenario literal.
func stateValuesEqual(expected, actual interface{}) bool {
	if expected == nil && actual == nil {
		return true
	}
	if expected == nil || actual == nil {
		return false
	}

	switch exp := expected.(type) {
	case string:
		switch act := actual.(type) {
		case string:
			return exp == act
		case []byte:
			return exp == string(act)
		}
		return false
	case int:
		if actualInt, ok := actual.(int64); ok {
			return int64(exp) == actualInt
		}
		if actualInt, ok := actual.(int); ok {
			return exp == actualInt
		}
		return false
	case int64:
		if actualInt, ok := actual.(int64); ok {
			return exp == actualInt
		}
		return false
	case bool:
		if actualBool, ok := actual.(bool); ok {
			return exp == actualBool
		}
		// SQLite stores booleans as integers (0/1).
		if actualInt, ok := actual.(int64); ok {
			return exp == (actualInt != 0)
		}
		return false
	}

	return false
}

// EvaluateAssertions evaluates all assertions against a trace and the
// ledger state. Returns a slice of error messages for failed assertions.
// state may be nil, in which case final_state assertions fail with an
// explanatory message.
func EvaluateAssertions(ctx context.Context, assertions []Assertion, trace []TraceEvent, state StateQuerier) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(trace, assertion)
		case AssertFinalState:
			if state == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires a ledger", i)
			} else {
				err = assertFinalState(ctx, state, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
