package alz

import (
	"github.com/cybroslabs/libalz-go/base"
	"github.com/cybroslabs/libalz-go/bitstream"
)

// varlen value widths, picked by a unary selector: i zero bits then a one bit
var varlenWidths = [4]uint8{2, 4, 6, 10}

// MaxVarLen is the largest value the varlen code can carry.
const MaxVarLen = 1<<10 - 1

// ReadVarLen decodes one varlen value.
func ReadVarLen(r *bitstream.Reader) (uint32, error) {
	i := 0
	for {
		b, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		if b != 0 {
			break
		}
		i++
		if i >= len(varlenWidths) {
			p := r.Pos()
			return 0, base.NewError(base.ErrInvalidSelector, p.Offset, p.Bit, "four zero selector bits")
		}
	}
	return r.ReadBits(varlenWidths[i])
}

// WriteVarLen encodes v with the narrowest width class that holds it.
func WriteVarLen(w *bitstream.Writer, v uint32) error {
	i := 0
	for v>>varlenWidths[i] != 0 {
		i++
		if i >= len(varlenWidths) {
			p := w.Pos()
			return base.NewError(base.ErrValueTooLarge, p.Offset, p.Bit, "%d needs more than %d bits", v, varlenWidths[len(varlenWidths)-1])
		}
	}
	// selector and value in a single write
	n := uint8(i) + 1 + varlenWidths[i]
	return w.WriteBits(n, v<<(i+1)|1<<i)
}

