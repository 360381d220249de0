package bitstream

import (
	"github.com/cybroslabs/libalz-go/base"
)

// MaxWidth is the largest bit count a single ReadBits/WriteBits call accepts.
const MaxWidth = 32

// Cursor addresses a single bit of a buffer. Bits of a byte are visited from the least significant one.
type Cursor struct {
	Offset int
	Bit    uint8 // 0..7
}

func (c *Cursor) advance(n uint8) {
	t := int(c.Bit) + int(n)
	c.Offset += t >> 3
	c.Bit = uint8(t & 7)
}

func remaining(buf []byte, c Cursor) uint64 {
	if c.Offset >= len(buf) {
		return 0
	}
	return uint64(len(buf)-c.Offset)*8 - uint64(c.Bit)
}

// Reader reads bits from a fixed buffer, never past its end.
type Reader struct {
	buf []byte
	pos Cursor
}

// NewReader starts reading buf at byte offset.
func NewReader(buf []byte, offset int) *Reader {
	return &Reader{
		buf: buf,
		pos: Cursor{Offset: offset},
	}
}

func (r *Reader) Pos() Cursor {
	return r.pos
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() uint64 {
	return remaining(r.buf, r.pos)
}

func (r *Reader) ReadBit() (uint32, error) {
	if r.pos.Offset >= len(r.buf) {
		return 0, base.NewError(base.ErrBufferOverread, r.pos.Offset, r.pos.Bit, "attempted reading 1 bit")
	}

	b := uint32(r.buf[r.pos.Offset]>>r.pos.Bit) & 1
	r.pos.advance(1)
	return b, nil
}

// ReadBits reads n bits, the first one read being the least significant bit of the result.
// Nothing is consumed when the call fails.
func (r *Reader) ReadBits(n uint8) (uint32, error) {
	if n > MaxWidth {
		return 0, base.NewError(base.ErrInvalidWidth, r.pos.Offset, r.pos.Bit, "can not read more than %d bits at a time (attempted reading %d bits)", MaxWidth, n)
	}
	if uint64(n) > r.Remaining() {
		return 0, base.NewError(base.ErrBufferOverread, r.pos.Offset, r.pos.Bit, "attempted reading %d bits", n)
	}

	var v uint32
	var done uint8
	for done < n {
		take := min(n-done, 8-r.pos.Bit)
		chunk := uint32(r.buf[r.pos.Offset]>>r.pos.Bit) & (uint32(1)<<take - 1)
		v |= chunk << done
		done += take
		r.pos.advance(take)
	}
	return v, nil
}

// Writer writes bits into a fixed buffer. Bits outside the ones written are preserved.
type Writer struct {
	buf []byte
	pos Cursor
}

// NewWriter starts writing buf at byte offset.
func NewWriter(buf []byte, offset int) *Writer {
	return &Writer{
		buf: buf,
		pos: Cursor{Offset: offset},
	}
}

func (w *Writer) Pos() Cursor {
	return w.pos
}

// Len returns the number of bytes touched so far, a partially written last byte included.
func (w *Writer) Len() int {
	if w.pos.Bit != 0 {
		return w.pos.Offset + 1
	}
	return w.pos.Offset
}

// Bytes returns the buffer up to Len.
func (w *Writer) Bytes() []byte {
	return w.buf[:w.Len()]
}

func (w *Writer) WriteBit(bit uint32) error {
	if w.pos.Offset >= len(w.buf) {
		return base.NewError(base.ErrBufferOverrun, w.pos.Offset, w.pos.Bit, "attempted writing 1 bit")
	}

	mask := byte(1) << w.pos.Bit
	if bit&1 != 0 {
		w.buf[w.pos.Offset] |= mask
	} else {
		w.buf[w.pos.Offset] &^= mask
	}
	w.pos.advance(1)
	return nil
}

// WriteBits writes the n low bits of v, least significant first. Nothing is written when the call fails.
func (w *Writer) WriteBits(n uint8, v uint32) error {
	if n > MaxWidth {
		return base.NewError(base.ErrInvalidWidth, w.pos.Offset, w.pos.Bit, "can not write more than %d bits at a time (attempted writing %d bits)", MaxWidth, n)
	}
	if uint64(n) > remaining(w.buf, w.pos) {
		return base.NewError(base.ErrBufferOverrun, w.pos.Offset, w.pos.Bit, "attempted writing %d bits", n)
	}

	for n > 0 {
		take := min(n, 8-w.pos.Bit)
		mask := byte(uint32(1)<<take-1) << w.pos.Bit
		w.buf[w.pos.Offset] = w.buf[w.pos.Offset]&^mask | byte(v<<w.pos.Bit)&mask
		v >>= take
		n -= take
		w.pos.advance(take)
	}
	return nil
}
