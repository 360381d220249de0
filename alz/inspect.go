package alz

import (
	"fmt"

	"github.com/cybroslabs/libalz-go/bitstream"
)

// Token is one decoded unit of a container body.
type Token struct {
	Pos     bitstream.Cursor // position of the tag bit
	Out     int              // output position the token starts at
	Literal bool
	Value   byte   // literal byte
	Offset  uint16 // match distance-1
	Length  uint16 // match length
}

func (t Token) String() string {
	if t.Literal {
		return fmt.Sprintf("0x%08X@%d out=%d literal 0x%02X", t.Pos.Offset, t.Pos.Bit, t.Out, t.Value)
	}
	return fmt.Sprintf("0x%08X@%d out=%d match distance=%d length=%d", t.Pos.Offset, t.Pos.Bit, t.Out, int(t.Offset)+1, t.Length)
}

// Inspect decodes src and returns its tokens. On error, the tokens decoded before the failure
// are returned with it. Raw containers have no tokens.
func Inspect(src []byte) (Header, []Token, error) {
	var tokens []Token
	c := codec{typ: TypeVarOffset}
	_, h, err := c.decode(src, func(t Token) {
		tokens = append(tokens, t)
	})
	return h, tokens, err
}
