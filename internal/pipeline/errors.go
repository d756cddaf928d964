package pipeline

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed computation.
type ErrorKind int

const (
	KindNoPeriods ErrorKind = iota + 1
	KindNoBalance
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNoPeriods:
		return "no periods"
	case KindNoBalance:
		return "no known cash balance"
	case KindInternal:
		return "internal error"
	default:
		return "unknown"
	}
}

// ComputeError is returned when a projection cannot be produced.
type ComputeError struct {
	Kind   ErrorKind
	Detail string
}

func (e *ComputeError) Error() string {
	if e.Detail == "" {
		return "computation failed: " + e.Kind.String()
	}
	return fmt.Sprintf("computation failed: %s: %s", e.Kind, e.Detail)
}

// Is matches on Kind so the sentinels below work with errors.Is.
func (e *ComputeError) Is(target error) bool {
	var t *ComputeError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	// ErrNoPeriods is returned when the series is empty.
	ErrNoPeriods = &ComputeError{Kind: KindNoPeriods}
	// ErrNoBalance is returned when no period has a known end balance to
	// extrapolate from.
	ErrNoBalance = &ComputeError{Kind: KindNoBalance}
)
