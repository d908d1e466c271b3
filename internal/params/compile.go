package params

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// CompileError represents a parameter compilation error with source
// position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileDir loads every CUE file in dir, unifies them, and extracts
// the protocol parameters from the top-level "protocol" struct.
// Fields absent from the CUE value keep their Default() values.
// Fails on the first error encountered.
func CompileDir(dir string) (*Protocol, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("params directory not found: %s", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("accessing params directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	files, err := findCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning params directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	// Package "_" selects the anonymous package: params files carry no
	// package clause, and cue v0.9 does not load them from a directory
	// argument by default the way v0.11 does.
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir, Package: "_"})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("building CUE value: %w", formatCUEError(err))
	}

	protoVal := value.LookupPath(cue.ParsePath("protocol"))
	if !protoVal.Exists() {
		return nil, &CompileError{
			Field:   "protocol",
			Message: "top-level protocol struct is required",
			Pos:     value.Pos(),
		}
	}

	return CompileProtocol(protoVal)
}

// CompileProtocol extracts a Protocol from a CUE value, starting from
// defaults and overriding each field the value provides.
func CompileProtocol(v cue.Value) (*Protocol, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	p := Default()

	intFields := []struct {
		path string
		dst  *int64
	}{
		{"launch_goal", &p.LaunchGoal},
		{"claim_rate", &p.ClaimRate},
		{"claim_delay", &p.ClaimDelay},
		{"second_half_minimum", &p.SecondHalfMinimum},
		{"owner_funding", &p.OwnerFunding},
		{"group_policy.stake_amount", &p.GroupPolicy.StakeAmount},
		{"group_policy.min_join_amount", &p.GroupPolicy.MinJoinAmount},
		{"group_policy.max_join_amount", &p.GroupPolicy.MaxJoinAmount},
		{"group_policy.join_amount", &p.GroupPolicy.JoinAmount},
		{"group_policy.score_percent", &p.GroupPolicy.ScorePercent},
	}
	for _, f := range intFields {
		if err := lookupInt(v, f.path, f.dst); err != nil {
			return nil, err
		}
	}

	if err := lookupString(v, "token_symbol", &p.TokenSymbol); err != nil {
		return nil, err
	}

	var mode string
	if err := lookupString(v, "funding_mode", &mode); err != nil {
		return nil, err
	}
	if mode != "" {
		p.FundingMode = FundingMode(mode)
	}

	return &p, nil
}

// lookupInt overrides *dst when path exists in v. Floats surface as
// errors from CUE's Int64 accessor.
func lookupInt(v cue.Value, path string, dst *int64) error {
	field := v.LookupPath(cue.ParsePath(path))
	if !field.Exists() {
		return nil
	}
	if k := field.IncompleteKind(); k == cue.FloatKind || k == cue.NumberKind {
		return &CompileError{
			Field:   path,
			Message: "float values are forbidden - use int",
			Pos:     field.Pos(),
		}
	}
	n, err := field.Int64()
	if err != nil {
		return &CompileError{
			Field:   path,
			Message: fmt.Sprintf("expected int: %v", err),
			Pos:     field.Pos(),
		}
	}
	*dst = n
	return nil
}

func lookupString(v cue.Value, path string, dst *string) error {
	field := v.LookupPath(cue.ParsePath(path))
	if !field.Exists() {
		return nil
	}
	s, err := field.String()
	if err != nil {
		return &CompileError{
			Field:   path,
			Message: fmt.Sprintf("expected string: %v", err),
			Pos:     field.Pos(),
		}
	}
	*dst = s
	return nil
}

// findCUEFiles walks dir and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := cueerrors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
