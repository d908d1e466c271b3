package chain

import (
	"errors"
	"fmt"

	"github.com/quayside/chainstage/internal/actor"
)

// RuleCode identifies which protocol rule a rejected operation violated.
type RuleCode string

// Rule violation codes.
const (
	CodeUnknownAccount     RuleCode = "UNKNOWN_ACCOUNT"
	CodeDuplicateAccount   RuleCode = "DUPLICATE_ACCOUNT"
	CodeUnknownToken       RuleCode = "UNKNOWN_TOKEN"
	CodeInsufficientFunds  RuleCode = "INSUFFICIENT_FUNDS"
	CodeMissingStake       RuleCode = "MISSING_STAKE"
	CodeAlreadyStaked      RuleCode = "ALREADY_STAKED"
	CodeDuplicateGroup     RuleCode = "DUPLICATE_GROUP"
	CodeAlreadyContributed RuleCode = "ALREADY_CONTRIBUTED"
	CodeNotClaimable       RuleCode = "NOT_CLAIMABLE"
	CodeInvalidGroup       RuleCode = "INVALID_GROUP"
	CodeInvalidPolicy      RuleCode = "INVALID_POLICY"
)

// RuleError reports a protocol rule violation. Operations that fail a
// rule reject cleanly with one of these; infrastructure failures (SQL
// errors, marshaling) surface as ordinary wrapped errors instead.
type RuleError struct {
	Code    RuleCode      // violation category
	Message string        // human-readable detail
	Account actor.Address // offending account, when known
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	if e.Account != "" {
		return fmt.Sprintf("%s: %s (account=%s)", e.Code, e.Message, e.Account)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsRuleCode reports whether err is (or wraps) a RuleError with the
// given code.
func IsRuleCode(err error, code RuleCode) bool {
	var ruleErr *RuleError
	return errors.As(err, &ruleErr) && ruleErr.Code == code
}

// ruleError builds a RuleError with a formatted message.
func ruleError(code RuleCode, account actor.Address, format string, args ...any) *RuleError {
	return &RuleError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Account: account,
	}
}
