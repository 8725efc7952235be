// errors.go -- error taxonomy for densedb
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package densedb

import (
	"errors"
	"fmt"
)

// Kind classifies the cause of an Error.
type Kind int

const (
	// KindIO marks a failed syscall (open, mmap, ftruncate, msync, munmap, close).
	KindIO Kind = iota

	// KindFormat marks a header that does not decode to a valid schema.
	KindFormat

	// KindInvalidArgument marks a caller contract violation detected at the API boundary.
	KindInvalidArgument

	// KindNotFound marks a table name absent from both the cache and the storage directory.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindFormat:
		return "format"
	case KindInvalidArgument:
		return "invalid-argument"
	case KindNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// Error wraps the cause of a failed densedb operation along with the
// operation name, so callers can both pattern-match on Kind and see the
// underlying error via errors.Unwrap.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("densedb: %s: %s", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ioErr(op string, err error) error {
	return &Error{Kind: KindIO, Op: op, Err: err}
}

func formatErr(op string, reason string) error {
	return &Error{Kind: KindFormat, Op: op, Err: errors.New(reason)}
}

func invalidArgErr(op string, reason string) error {
	return &Error{Kind: KindInvalidArgument, Op: op, Err: errors.New(reason)}
}

func notFoundErr(op string, name string) error {
	return &Error{Kind: KindNotFound, Op: op, Err: fmt.Errorf("no such table %q", name)}
}

var (
	// ErrFieldNotFound is returned by Table.Accessor when the field name is
	// not declared in the table's schema. The source this spec is derived
	// from instead returned a sentinel {offset: row_size, size: 0} accessor;
	// we surface an error instead, per the open question in the design notes.
	ErrFieldNotFound = errors.New("densedb: field not found")

	// ErrClosed is returned when an operation is attempted against a Table
	// or Database that has already been torn down.
	ErrClosed = errors.New("densedb: already closed")

	// ErrStillReferenced is returned by Database.Close if any cached table
	// still has outstanding handles.
	ErrStillReferenced = errors.New("densedb: table still referenced")
)
