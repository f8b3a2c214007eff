package errors

import (
	"errors"
	"fmt"
)

// Kind categorises a remote file I/O failure.
type Kind string

// Failure categories. Local validation failures (invalid_combination,
// invalid_seek) are detected before any remote call is made.
const (
	KindAllocation         Kind = "allocation"
	KindSessionStartup     Kind = "session_startup"
	KindInvalidCombination Kind = "invalid_combination"
	KindInvalidSeek        Kind = "invalid_seek"
	KindTransport          Kind = "transport"
	KindFilesystem         Kind = "filesystem"
)

// Error is a categorised remote filesystem failure. It is self-contained:
// it carries the operation and path it relates to and keeps no reference to
// the session or handle that produced it, so it is safe to propagate across
// goroutines.
type Error struct {
	Kind     Kind
	Op       string
	Path     string
	Code     FxCode // valid only for KindFilesystem
	Message  string
	Internal error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	msg := e.Message
	if msg == "" && e.Internal != nil {
		msg = e.Internal.Error()
	}

	switch {
	case e.Kind == KindFilesystem && e.Path != "":
		return fmt.Sprintf("%s %s: %s (%s)", e.Op, e.Path, msg, e.Code)
	case e.Kind == KindFilesystem:
		return fmt.Sprintf("%s: %s (%s)", e.Op, msg, e.Code)
	case e.Path != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	default:
		return msg
	}
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithPath returns a copy of the error annotated with the path involved.
func (e *Error) WithPath(path string) *Error {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Path = path
	return &cpy
}

// NewAllocation reports a failure to create a local or session structure.
func NewAllocation(op string, internal error) *Error {
	return &Error{Kind: KindAllocation, Op: op, Message: "cannot allocate", Internal: internal}
}

// NewSessionStartup reports a handshake-level startup failure.
func NewSessionStartup(op string, internal error) *Error {
	return &Error{Kind: KindSessionStartup, Op: op, Message: "session startup failed", Internal: internal}
}

// NewInvalidCombination reports self-contradictory open flags.
func NewInvalidCombination(op, path, message string) *Error {
	return &Error{Kind: KindInvalidCombination, Op: op, Path: path, Message: message}
}

// NewInvalidSeek reports a seek that would resolve to a negative offset.
func NewInvalidSeek(op, path string) *Error {
	return &Error{Kind: KindInvalidSeek, Op: op, Path: path, Message: "cannot seek before start of file"}
}

// NewTransport reports a failure at the secure-channel layer.
func NewTransport(op, path string, internal error) *Error {
	return &Error{Kind: KindTransport, Op: op, Path: path, Message: "transport failure", Internal: internal}
}

// NewFilesystem reports a remote-filesystem protocol status layered onto the
// transport.
func NewFilesystem(op, path string, code FxCode, internal error) *Error {
	return &Error{
		Kind:     KindFilesystem,
		Op:       op,
		Path:     path,
		Code:     code,
		Message:  "remote filesystem failure",
		Internal: internal,
	}
}

// FromError converts a generic error into an *Error, defaulting to the
// transport category when the error carries no category of its own.
func FromError(op, path string, err error) *Error {
	if err == nil {
		return nil
	}

	var fsErr *Error
	if errors.As(err, &fsErr) {
		return fsErr
	}

	return NewTransport(op, path, err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var fsErr *Error
	if !errors.As(err, &fsErr) {
		return false
	}
	return fsErr.Kind == kind
}

// IsNotExist reports whether err indicates that a remote path does not exist.
func IsNotExist(err error) bool {
	var fsErr *Error
	if !errors.As(err, &fsErr) {
		return false
	}
	return fsErr.Kind == KindFilesystem &&
		(fsErr.Code == FxNoSuchFile || fsErr.Code == FxNoSuchPath)
}

// IsPermissionDenied reports whether err indicates the server refused access.
func IsPermissionDenied(err error) bool {
	var fsErr *Error
	if !errors.As(err, &fsErr) {
		return false
	}
	return fsErr.Kind == KindFilesystem && fsErr.Code == FxPermissionDenied
}

// IsExist reports whether err indicates that a remote path already exists.
func IsExist(err error) bool {
	var fsErr *Error
	if !errors.As(err, &fsErr) {
		return false
	}
	return fsErr.Kind == KindFilesystem && fsErr.Code == FxFileAlreadyExists
}
