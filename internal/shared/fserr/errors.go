// Package fserr defines the stable error taxonomy surfaced to the untrusted
// front-end. Every failure crossing the plugin boundary carries exactly one
// Kind tag so callers can distinguish "does not exist" from "not allowed to
// know" without parsing message text.
package fserr

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind is the stable error classification tag.
type Kind string

const (
	// KindInvalidPath marks malformed input: absolute logical paths,
	// parent-directory segments, or non-file-scheme URLs.
	KindInvalidPath Kind = "invalid_path"

	// KindPathTraversal marks a normalized path that escaped its base root.
	KindPathTraversal Kind = "path_traversal"

	// KindUnresolvableBaseDirectory marks a base-directory token the host
	// platform could not resolve.
	KindUnresolvableBaseDirectory Kind = "unresolvable_base_directory"

	// KindScopeViolation marks a path denied by the scope policy.
	KindScopeViolation Kind = "scope_violation"

	// KindNotFound marks an unknown handle, unknown watch session, or an
	// OS-level not-found.
	KindNotFound Kind = "not_found"

	// KindIOError wraps any other OS failure, tagged with the primitive.
	KindIOError Kind = "io_error"

	// KindShortWrite marks a write that consumed less than the full buffer.
	KindShortWrite Kind = "short_write"
)

// Error is the boundary error type. Primitive names the failing OS call for
// KindIOError and KindNotFound ("open", "rename", "watch", ...); it is empty
// for pre-I/O rejections.
type Error struct {
	Kind      Kind
	Primitive string
	Err       error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return string(e.Kind)
	case e.Primitive != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Primitive, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is treats two boundary errors with the same Kind as equivalent, so
// errors.Is(err, fserr.New(fserr.KindNotFound, nil)) works without
// message comparison.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New builds a boundary error without a primitive tag.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Newf builds a boundary error from a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap tags an OS failure with the primitive that produced it. Not-found
// conditions keep their own kind so the front-end sees them distinctly.
func Wrap(primitive string, err error) *Error {
	kind := KindIOError
	if errors.Is(err, fs.ErrNotExist) {
		kind = KindNotFound
	}
	return &Error{Kind: kind, Primitive: primitive, Err: err}
}

// KindOf extracts the taxonomy tag from any error chain. Unclassified errors
// report KindIOError.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIOError
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
