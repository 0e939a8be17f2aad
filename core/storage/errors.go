package storage

import (
	"errors"
	"strings"
)

// Error kinds. Every error returned by the engine, its handles and the
// bundled drivers matches exactly one of these with errors.Is.
var (
	ErrUnknownBackend    = errors.New("unknown backend")
	ErrConnection        = errors.New("connection error")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrAlreadyExists     = errors.New("already exists")
	ErrNotFound          = errors.New("not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidState      = errors.New("invalid state")
	ErrIOFailure         = errors.New("i/o failure")
	ErrBrokenPipe        = errors.New("broken pipe")
	ErrProtocolViolation = errors.New("protocol violation")
	ErrWouldBlock        = errors.New("would block")
)

var kinds = []error{
	ErrUnknownBackend,
	ErrConnection,
	ErrPermissionDenied,
	ErrAlreadyExists,
	ErrNotFound,
	ErrInvalidArgument,
	ErrInvalidState,
	ErrIOFailure,
	ErrBrokenPipe,
	ErrProtocolViolation,
	ErrWouldBlock,
}

// Error describes a failed storage operation.
type Error struct {
	// Op is the operation that failed (head, list, read, ...).
	Op string
	// Key is the object key involved, if any.
	Key string
	// Kind is one of the Err* sentinels.
	Kind error
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Key != "" {
		b.WriteString(" ")
		b.WriteString(e.Key)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil && e.Err != e.Kind {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError builds an *Error. An *Error passed as err is returned as is,
// with only a missing key filled in. Otherwise a kind already carried by
// err wins over the given one.
func NewError(op, key string, kind error, err error) *Error {
	if se, ok := err.(*Error); ok {
		if se.Key != "" || key == "" {
			return se
		}
		cp := *se
		cp.Key = key
		return &cp
	}
	if k := KindOf(err); k != nil {
		kind = k
	}
	return &Error{Op: op, Key: key, Kind: kind, Err: err}
}

// KindOf returns the sentinel kind carried by err, or nil when err is nil
// or unclassified.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Classify returns the kind of err, falling back to ErrIOFailure for
// unclassified errors.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if k := KindOf(err); k != nil {
		return k
	}
	return ErrIOFailure
}

// Message renders err for callers on the other side of a process or
// language boundary. An empty string means success.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// KindName returns a stable short name for the kind of err, e.g. "NotFound".
func KindName(err error) string {
	switch Classify(err) {
	case nil:
		return ""
	case ErrUnknownBackend:
		return "UnknownBackend"
	case ErrConnection:
		return "ConnectionError"
	case ErrPermissionDenied:
		return "PermissionDenied"
	case ErrAlreadyExists:
		return "AlreadyExists"
	case ErrNotFound:
		return "NotFound"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrInvalidState:
		return "InvalidState"
	case ErrBrokenPipe:
		return "BrokenPipe"
	case ErrProtocolViolation:
		return "ProtocolViolation"
	case ErrWouldBlock:
		return "WouldBlock"
	default:
		return "IOFailure"
	}
}
