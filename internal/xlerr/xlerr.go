// Package xlerr defines the error kinds shared by the compound file and BIFF layers.
package xlerr

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat indicates malformed input: bad signature, truncated data or an
	// impossible field value.
	ErrFormat = errors.New("format error")
	// ErrOutOfRange indicates a sector id, chain index or sheet index outside its table.
	ErrOutOfRange = errors.New("out of range")
	// ErrNotFound indicates a named stream or sheet is absent.
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedVersion indicates a substream written in a BIFF version other than BIFF8.
	ErrUnsupportedVersion = errors.New("unsupported version")
	// ErrIO indicates the underlying file could not be opened or read.
	ErrIO = errors.New("i/o error")
)

// Error carries a human readable message together with its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Format returns an ErrFormat error.
func Format(format string, args ...interface{}) *Error {
	return newError(ErrFormat, format, args...)
}

// OutOfRange returns an ErrOutOfRange error.
func OutOfRange(format string, args ...interface{}) *Error {
	return newError(ErrOutOfRange, format, args...)
}

// NotFound returns an ErrNotFound error.
func NotFound(format string, args ...interface{}) *Error {
	return newError(ErrNotFound, format, args...)
}

// Unsupported returns an ErrUnsupportedVersion error.
func Unsupported(format string, args ...interface{}) *Error {
	return newError(ErrUnsupportedVersion, format, args...)
}

// IO returns an ErrIO error.
func IO(format string, args ...interface{}) *Error {
	return newError(ErrIO, format, args...)
}

// UnexpectedEOF is returned whenever a read runs past the end of a stream.
func UnexpectedEOF() *Error {
	return Format("Unexpected end of file.")
}
