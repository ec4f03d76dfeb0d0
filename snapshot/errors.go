package snapshot

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned when k, l or m is out of range.
	ErrInvalidParameter = errors.New("snapshot: invalid parameter")
	// ErrUnresolvable is returned when the input has no usable root.
	ErrUnresolvable = errors.New("snapshot: unresolvable input")
	// ErrBudgetUnreachable is returned when the adaptive search exhausts
	// its iteration cap.
	ErrBudgetUnreachable = errors.New("snapshot: token budget unreachable")
)

// ParamError names the offending parameter.
type ParamError struct {
	Name  string
	Value float64
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("snapshot: invalid parameter %s=%v, expects value in [0, 1]", e.Name, e.Value)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParameter }

// BudgetError reports a failed adaptive search.
type BudgetError struct {
	MaxTokens  int
	Attempts   int
	LastTokens int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("snapshot: unable to create snapshot below %d tokens after %d attempts (last %d)",
		e.MaxTokens, e.Attempts, e.LastTokens)
}

func (e *BudgetError) Unwrap() error { return ErrBudgetUnreachable }
