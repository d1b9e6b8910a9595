package parser

import (
	"errors"
	"fmt"
)

// ErrBankUnspecified is returned when a file is submitted without a bank id.
// There is no auto-detection: the caller must always name the bank.
var ErrBankUnspecified = errors.New("no bank specified")

// UnknownBankError is returned when no parser is registered under the
// requested bank id.
type UnknownBankError struct {
	BankID string
}

func (e *UnknownBankError) Error() string {
	return fmt.Sprintf("no parser registered for bank %q", e.BankID)
}

// ParseError wraps a parser failure with the bank it happened in.
type ParseError struct {
	Bank string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing statement for %s: %v", e.Bank, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
