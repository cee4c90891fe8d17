// Package failure defines the error taxonomy shared by the scanner, the
// mutation service and the world store.
//
// Every error that crosses a component boundary is either an *Error carrying
// a Kind, or an unclassified error which callers treat as IOFailure.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed
type Kind string

const (
	NotFound         Kind = "not_found"
	NameTaken        Kind = "name_taken"
	InvalidName      Kind = "invalid_name"
	RootMissing      Kind = "root_missing"
	SelfSubdirectory Kind = "self_subdirectory"
	InvalidClipboard Kind = "invalid_clipboard"
	Corrupt          Kind = "corrupt"
	NotAccessible    Kind = "not_accessible"
	InvalidGraph     Kind = "invalid_graph"
	InvalidArgument  Kind = "invalid_argument"
	IOFailure        Kind = "io_failure"
)

// Error is a classified operation failure
type Error struct {
	Kind Kind
	Op   string
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, msg)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error with a human readable message
func New(kind Kind, op, path, msg string) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Msg: msg}
}

// Wrap classifies an underlying error. A nil err yields nil.
func Wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// IO wraps a residual OS error as IOFailure, keeping an existing
// classification if err already carries one.
func IO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return &Error{Kind: IOFailure, Op: op, Path: path, Err: err}
}

// KindOf reports the kind of err. Unclassified errors are IOFailure.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return IOFailure
}

// Is reports whether err is classified as kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Detail returns the underlying cause message, if any, for diagnostics
func Detail(err error) string {
	var fe *Error
	if errors.As(err, &fe) && fe.Err != nil {
		return fe.Err.Error()
	}
	return ""
}
