package base

import (
	"errors"
	"fmt"
)

var ErrBufferOverread = errors.New("buffer overread")
var ErrBufferOverrun = errors.New("buffer overrun")
var ErrInvalidWidth = errors.New("invalid bit width")
var ErrInvalidSelector = errors.New("invalid bitcount selector")
var ErrValueTooLarge = errors.New("value too large")
var ErrUnsupportedType = errors.New("unsupported type")
var ErrTruncatedInput = errors.New("truncated input")
var ErrOffsetOutOfRange = errors.New("offset out of range")
var ErrSizeTooLarge = errors.New("size too large")
var ErrEmptyInput = errors.New("empty input")
var ErrInvalidName = errors.New("invalid entry name")

// Error is a codec failure pinned to the byte offset and bit index where it was detected.
type Error struct {
	Kind   error
	Offset int
	Bit    uint8
	Detail string
}

func NewError(kind error, offset int, bit uint8, format string, v ...any) *Error {
	return &Error{
		Kind:   kind,
		Offset: offset,
		Bit:    bit,
		Detail: fmt.Sprintf(format, v...),
	}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("0x%08X@%d: %v", e.Offset, e.Bit, e.Kind)
	}
	return fmt.Sprintf("0x%08X@%d: %v: %s", e.Offset, e.Bit, e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Kind
}
