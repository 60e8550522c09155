// Package apperror defines the closed set of failure kinds the service
// surfaces to its delivery layer.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindUpstream covers store and provider failures. It is the zero value
	// so that unclassified errors are treated as upstream failures.
	KindUpstream Kind = iota
	KindInvalidInput
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "upstream"
	}
}

// Error carries a Kind alongside the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func InvalidInput(op, msg string) error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: errors.New(msg)}
}

func Unauthenticated(op, msg string) error {
	return &Error{Kind: KindUnauthenticated, Op: op, Err: errors.New(msg)}
}

// Upstream wraps a store or provider error. A nil err yields nil.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindUpstream, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
