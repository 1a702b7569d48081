// Package errs holds the error taxonomy shared by the lifecycle operations and
// the HTTP layer. Every failure leaving a service is an *Error of one Kind.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindGeocoding  Kind = "geocoding"
	KindPermission Kind = "permission"
	KindNotFound   Kind = "not_found"
)

var (
	ErrAlreadyCleared       = errors.New("shutdown is already cleared")
	ErrConfirmationRequired = errors.New("delete requires explicit confirmation")
	ErrGeometryImmutable    = errors.New("geometry type cannot be changed")
	ErrSelfAccessChange     = errors.New("cannot change your own access level")
)

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Fields  []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil && e.Message != e.Err.Error() {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, &Error{Kind: k}) match on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Message == ""
}

func Validation(op, msg string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: msg, Fields: fields}
}

// ValidationWrap builds a validation error around a sentinel such as ErrAlreadyCleared.
func ValidationWrap(op string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: err.Error(), Err: err}
}

func Geocoding(op, msg string, err error) *Error {
	return &Error{Kind: KindGeocoding, Op: op, Message: msg, Err: err}
}

func Permission(op, msg string) *Error {
	return &Error{Kind: KindPermission, Op: op, Message: msg}
}

func NotFound(op, what string, err error) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf("%s not found", what), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsGeocoding(err error) bool  { return KindOf(err) == KindGeocoding }
func IsPermission(err error) bool { return KindOf(err) == KindPermission }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
