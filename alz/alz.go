// Package alz implements the ALZ container: a 5-byte header followed by either the raw data
// or an LSB-first bit stream of literal and back-reference tokens.
package alz

import (
	"fmt"

	"github.com/cybroslabs/libalz-go/base"
	"go.uber.org/zap"
	"k8s.io/utils/ptr"
)

type Type byte

const (
	TypeRaw         Type = 0 // body is the data itself
	TypeFixedOffset Type = 1 // offsets are 10 raw bits
	TypeVarOffset   Type = 2 // offsets use the varlen code
)

func (t Type) String() string {
	switch t {
	case TypeRaw:
		return "raw"
	case TypeFixedOffset:
		return "fixed-offset"
	case TypeVarOffset:
		return "var-offset"
	}
	return fmt.Sprintf("unknown(%d)", byte(t))
}

func (t Type) valid() bool {
	return t <= TypeVarOffset
}

const (
	WindowSize     = 1024 // farthest distance a match can reach back
	MinMatch       = 2
	MaxMatch       = 1023
	fixedOffsetLen = 10

	tagMatch   = 0
	tagLiteral = 1
)

type Settings struct {
	Type    *Type  // compression type, nil means TypeVarOffset
	MaxSize uint32 // largest decompressed size accepted, 0 means no limit
}

type codec struct {
	typ     Type
	maxsize uint32
	logger  *zap.SugaredLogger
}

func New(settings *Settings) (base.Codec, error) {
	if settings == nil {
		settings = &Settings{}
	}
	t := ptr.Deref(settings.Type, TypeVarOffset)
	if !t.valid() {
		return nil, base.NewError(base.ErrUnsupportedType, 0, 0, "type %d", byte(t))
	}
	return &codec{
		typ:     t,
		maxsize: settings.MaxSize,
		logger:  nil,
	}, nil
}

func (c *codec) SetLogger(logger *zap.SugaredLogger) {
	c.logger = logger
}

func (c *codec) logf(format string, v ...any) {
	if c.logger != nil {
		c.logger.Debugf(format, v...)
	}
}

// Compress packs src into a container of the given type.
func Compress(src []byte, t Type) ([]byte, error) {
	c, err := New(&Settings{Type: ptr.To(t)})
	if err != nil {
		return nil, err
	}
	return c.Compress(src)
}

// Decompress unpacks a container of any type.
func Decompress(src []byte) ([]byte, error) {
	c := codec{typ: TypeVarOffset}
	return c.Decompress(src)
}
