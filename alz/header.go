package alz

import (
	"encoding/binary"

	"github.com/cybroslabs/libalz-go/base"
)

const (
	HeaderSize = 5

	offType = 0x00
	offSize = 0x01
	offData = 0x05
)

type Header struct {
	Type Type
	Size uint32 // exact decompressed length
}

// ParseHeader reads and validates the container header.
func ParseHeader(src []byte) (Header, error) {
	if len(src) < HeaderSize {
		return Header{}, base.NewError(base.ErrTruncatedInput, len(src), 0, "container is %d bytes, header needs %d", len(src), HeaderSize)
	}
	h := Header{
		Type: Type(src[offType]),
		Size: binary.LittleEndian.Uint32(src[offSize:]),
	}
	if !h.Type.valid() {
		return h, base.NewError(base.ErrUnsupportedType, offType, 0, "type %d", src[offType])
	}
	return h, nil
}

// Put stores the header at the start of dst, which must hold at least HeaderSize bytes.
func (h Header) Put(dst []byte) {
	dst[offType] = byte(h.Type)
	binary.LittleEndian.PutUint32(dst[offSize:], h.Size)
}
