// Package errors defines the typed errors raised while turning raw column bytes
// into Go values. Every error carries a machine-readable Kind so callers can
// tell a malformed value from a failing cast override without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Decode indicates bytes that are malformed for the declared wire type.
	Decode Kind = "decode_error"
	// TypeMismatch indicates an accessor used against an incompatible wire type.
	TypeMismatch Kind = "type_mismatch"
	// Override indicates a failure returned by a caller-supplied cast function.
	Override Kind = "override_error"
	// Charset indicates text that is invalid for the column charset.
	Charset Kind = "charset_error"
	// Canceled indicates the enclosing query was canceled mid result set.
	Canceled Kind = "canceled"
)

// E wraps an error with kind, the column it happened on, and a message.
type E struct {
	Kind    Kind
	Column  string
	Message string
	Err     error
}

func (e *E) Error() string {
	prefix := string(e.Kind)
	switch {
	case e.Column != "" && e.Kind == "":
		prefix = fmt.Sprintf("column %q", e.Column)
	case e.Column != "":
		prefix = fmt.Sprintf("%s: column %q", e.Kind, e.Column)
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	default:
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
}

func (e *E) Unwrap() error { return e.Err }

// Is matches any *E of the same kind, so errors.Is(err, &E{Kind: Decode}) works.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Column == "" && t.Message == "" && t.Err == nil
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Newf builds an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithColumn returns err with the column name attached. A bare *E is copied;
// anything else is wrapped in a new *E carrying the kind found in its chain.
func WithColumn(err error, column string) error {
	if err == nil {
		return nil
	}
	var e *E
	if stderrors.As(err, &e) && e == err {
		if e.Column != "" {
			return err
		}
		c := *e
		c.Column = column
		return &c
	}
	return &E{Kind: KindOf(err), Column: column, Err: err}
}

// KindOf reports the kind of the outermost *E in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether any error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	return stderrors.Is(err, &E{Kind: kind})
}
