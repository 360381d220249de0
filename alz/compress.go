package alz

import (
	"math"

	"github.com/cybroslabs/libalz-go/base"
	"github.com/cybroslabs/libalz-go/bitstream"
)

func (c *codec) Compress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, base.NewError(base.ErrEmptyInput, 0, 0, "nothing to compress")
	}
	if uint64(len(src)) > math.MaxUint32 {
		return nil, base.NewError(base.ErrSizeTooLarge, 0, 0, "input is %d bytes, header holds at most %d", len(src), uint32(math.MaxUint32))
	}

	h := Header{Type: c.typ, Size: uint32(len(src))}
	if c.typ == TypeRaw {
		out := make([]byte, HeaderSize+len(src))
		h.Put(out)
		copy(out[offData:], src)
		c.logf("compressed %d -> %d bytes (%v)", len(src), len(out), c.typ)
		return out, nil
	}

	// 2x is above the worst case, 9 bits per literal and at most 29 bits per match of 2+ bytes
	out := make([]byte, HeaderSize+2*len(src))
	h.Put(out)
	w := bitstream.NewWriter(out, offData)

	literals := 0
	matches := 0
	for pos := 0; pos < len(src); {
		offset, length, ok := findMatch(src, pos)
		if ok {
			if err := c.putmatch(w, offset, length); err != nil {
				return nil, err
			}
			pos += length
			matches++
			continue
		}

		if err := w.WriteBit(tagLiteral); err != nil {
			return nil, err
		}
		if err := w.WriteBits(8, uint32(src[pos])); err != nil {
			return nil, err
		}
		pos++
		literals++
	}

	out = w.Bytes()
	c.logf("compressed %d -> %d bytes (%v), %d literals, %d matches", len(src), len(out), c.typ, literals, matches)
	return out, nil
}

func (c *codec) putmatch(w *bitstream.Writer, offset int, length int) error {
	if err := w.WriteBit(tagMatch); err != nil {
		return err
	}
	if c.typ == TypeFixedOffset {
		if err := w.WriteBits(fixedOffsetLen, uint32(offset)); err != nil {
			return err
		}
	} else {
		if err := WriteVarLen(w, uint32(offset)); err != nil {
			return err
		}
	}
	return WriteVarLen(w, uint32(length))
}
