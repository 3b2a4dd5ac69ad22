package calculator

import "fmt"

// ErrorKind classifies a calculator failure.
type ErrorKind string

const (
	KindEmptyShareSet         ErrorKind = "EMPTY_SHARE_SET"
	KindDuplicateShareholder  ErrorKind = "DUPLICATE_SHAREHOLDER"
	KindPercentageSumMismatch ErrorKind = "PERCENTAGE_SUM_MISMATCH"
	KindExactShareOverflow    ErrorKind = "EXACT_SHARE_OVERFLOW"
	KindInvalidAmount         ErrorKind = "INVALID_AMOUNT"
	KindInvalidShareValue     ErrorKind = "INVALID_SHARE_VALUE"

	// KindUnbalancedLedger means balances handed to the planner do not sum
	// to zero. It points at a bug in balance aggregation, not at user input.
	KindUnbalancedLedger ErrorKind = "UNBALANCED_LEDGER"
)

// Sentinels for errors.Is. Only Kind is compared.
var (
	ErrEmptyShareSet         = &Error{Kind: KindEmptyShareSet}
	ErrDuplicateShareholder  = &Error{Kind: KindDuplicateShareholder}
	ErrPercentageSumMismatch = &Error{Kind: KindPercentageSumMismatch}
	ErrExactShareOverflow    = &Error{Kind: KindExactShareOverflow}
	ErrInvalidAmount         = &Error{Kind: KindInvalidAmount}
	ErrInvalidShareValue     = &Error{Kind: KindInvalidShareValue}
	ErrUnbalancedLedger      = &Error{Kind: KindUnbalancedLedger}
)

// Error is a typed calculator failure.
type Error struct {
	Kind ErrorKind
	// Field locates the offending input, e.g. "shares[2].value".
	Field   string
	Message string
	// Value is the offending value rendered as text: the actual percentage
	// sum, the exact-share total, the duplicated person, the ledger sum.
	Value string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Field)
	}
	return msg
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// IsConsistency reports whether the kind signals an internal inconsistency
// rather than bad caller input.
func (k ErrorKind) IsConsistency() bool {
	return k == KindUnbalancedLedger
}

func newError(kind ErrorKind, field, value, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Value:   value,
	}
}
