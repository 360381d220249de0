package alz

import (
	"github.com/cybroslabs/libalz-go/base"
	"github.com/cybroslabs/libalz-go/bitstream"
)

// cheapest bits per MaxMatch output bytes: tag, 3-bit offset, 14-bit length
const densestTokenBits = 18

func (c *codec) Decompress(src []byte) ([]byte, error) {
	out, _, err := c.decode(src, nil)
	return out, err
}

// decode runs the token loop, visit (if set) sees every token once it passed validation
func (c *codec) decode(src []byte, visit func(Token)) ([]byte, Header, error) {
	h, err := ParseHeader(src)
	if err != nil {
		return nil, h, err
	}
	if c.maxsize != 0 && h.Size > c.maxsize {
		return nil, h, base.NewError(base.ErrSizeTooLarge, offSize, 0, "decompressed size %d exceeds limit %d", h.Size, c.maxsize)
	}

	if h.Type == TypeRaw {
		body := src[offData:]
		if uint64(len(body)) < uint64(h.Size) {
			return nil, h, base.NewError(base.ErrTruncatedInput, len(src), 0, "raw body is %d bytes, header claims %d", len(body), h.Size)
		}
		out := make([]byte, h.Size)
		copy(out, body)
		c.logf("decompressed %d -> %d bytes (%v)", len(src), len(out), h.Type)
		return out, h, nil
	}

	r := bitstream.NewReader(src, offData)
	if uint64(h.Size)*densestTokenBits > r.Remaining()*MaxMatch {
		return nil, h, base.NewError(base.ErrTruncatedInput, offSize, 0, "decompressed size %d can not come out of %d body bits", h.Size, r.Remaining())
	}

	size := int(h.Size)
	out := make([]byte, size)
	pos := 0
	literals := 0
	matches := 0

	for pos < size {
		at := r.Pos()
		tag, err := r.ReadBit()
		if err != nil {
			return nil, h, err
		}

		if tag == tagLiteral {
			b, err := r.ReadBits(8)
			if err != nil {
				return nil, h, err
			}
			out[pos] = byte(b)
			if visit != nil {
				visit(Token{Pos: at, Out: pos, Literal: true, Value: byte(b)})
			}
			pos++
			literals++
			continue
		}

		var offset uint32
		if h.Type == TypeFixedOffset {
			offset, err = r.ReadBits(fixedOffsetLen)
		} else {
			offset, err = ReadVarLen(r)
		}
		if err != nil {
			return nil, h, err
		}
		length, err := ReadVarLen(r)
		if err != nil {
			return nil, h, err
		}

		p := r.Pos()
		distance := int(offset) + 1
		if distance > pos {
			return nil, h, base.NewError(base.ErrOffsetOutOfRange, p.Offset, p.Bit, "distance %d, %d bytes written", distance, pos)
		}
		if int(length) > size-pos {
			return nil, h, base.NewError(base.ErrSizeTooLarge, p.Offset, p.Bit, "length %d, %d bytes left", length, size-pos)
		}

		// byte by byte, the source may run into bytes this very copy produces
		from := pos - distance
		for k := 0; k < int(length); k++ {
			out[pos+k] = out[from+k]
		}
		if visit != nil {
			visit(Token{Pos: at, Out: pos, Offset: uint16(offset), Length: uint16(length)})
		}
		pos += int(length)
		matches++
	}

	c.logf("decompressed %d -> %d bytes (%v), %d literals, %d matches, %d bits left", len(src), size, h.Type, literals, matches, r.Remaining())
	return out, h, nil
}
