package alz

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/cybroslabs/libalz-go/base"
	"go.uber.org/zap"
	"k8s.io/utils/ptr"
)

var allTypes = []Type{TypeRaw, TypeFixedOffset, TypeVarOffset}

func testInputs() map[string][]byte {
	rnd := rand.New(rand.NewSource(7))
	random := make([]byte, 5000)
	rnd.Read(random)

	small := make([]byte, 3000)
	for i := range small {
		small[i] = byte(rnd.Intn(4)) // few symbols, lots of short matches
	}

	every := make([]byte, 256)
	for i := range every {
		every[i] = byte(i)
	}

	return map[string][]byte{
		"one byte":    {0x7F},
		"two bytes":   []byte("ab"),
		"abababab":    []byte("ABABABAB"),
		"text":        bytes.Repeat([]byte("Lorem ipsum dolor sit amet, consectetur adipiscing elit. "), 64),
		"zeros":       make([]byte, 5000),
		"random":      random,
		"small set":   small,
		"every byte":  every,
		"mixed":       append(append(bytes.Repeat([]byte{0xAA}, 1500), random[:700]...), random[:700]...),
		"long period": append(append([]byte{}, random[:1500]...), random[:1500]...),
	}
}

func TestRoundTrip(t *testing.T) {
	for name, input := range testInputs() {
		for _, typ := range allTypes {
			t.Run(fmt.Sprintf("%s/%v", name, typ), func(t *testing.T) {
				enc, err := Compress(input, typ)
				if err != nil {
					t.Fatal(err)
				}
				if enc[0] != byte(typ) || binary.LittleEndian.Uint32(enc[1:]) != uint32(len(input)) {
					t.Fatalf("bad header % x", enc[:HeaderSize])
				}
				dec, err := Decompress(enc)
				if err != nil {
					t.Fatal(err)
				}
				if !bytes.Equal(input, dec) {
					t.Fatalf("lengths: in=%d dec=%d", len(input), len(dec))
				}
			})
		}
	}
}

func TestRawNoExpansion(t *testing.T) {
	for name, input := range testInputs() {
		enc, err := Compress(input, TypeRaw)
		if err != nil {
			t.Fatal(err)
		}
		if len(enc) != len(input)+HeaderSize {
			t.Fatalf("%s: container is %d bytes for %d input bytes", name, len(enc), len(input))
		}
		if !bytes.Equal(enc[HeaderSize:], input) {
			t.Fatalf("%s: raw body differs from input", name)
		}
	}
}

func TestCompressLayout(t *testing.T) {
	tests := []struct {
		typ  Type
		want []byte
	}{
		{TypeVarOffset, []byte{0x02, 0x08, 0x00, 0x00, 0x00, 0x83, 0x0A, 0x59, 0x5D, 0x02}},
		{TypeFixedOffset, []byte{0x01, 0x08, 0x00, 0x00, 0x00, 0x83, 0x0A, 0x09, 0xA0, 0x06, 0x90, 0x00}},
	}
	for _, tt := range tests {
		enc, err := Compress([]byte("ABABABAB"), tt.typ)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(enc, tt.want) {
			t.Errorf("%v: got % x, want % x", tt.typ, enc, tt.want)
		}
	}
}

func TestCompressedTokens(t *testing.T) {
	for name, input := range testInputs() {
		for _, typ := range []Type{TypeFixedOffset, TypeVarOffset} {
			enc, err := Compress(input, typ)
			if err != nil {
				t.Fatal(err)
			}
			_, tokens, err := Inspect(enc)
			if err != nil {
				t.Fatal(err)
			}

			out := 0
			for _, tk := range tokens {
				if tk.Out != out {
					t.Fatalf("%s/%v: token %v starts at %d, want %d", name, typ, tk, tk.Out, out)
				}
				if tk.Literal {
					out++
					continue
				}
				distance := int(tk.Offset) + 1
				if tk.Length < MinMatch || tk.Length > MaxMatch {
					t.Fatalf("%s/%v: match length out of bounds: %v", name, typ, tk)
				}
				if tk.Offset >= WindowSize || distance > tk.Out {
					t.Fatalf("%s/%v: match reaches outside the window: %v", name, typ, tk)
				}
				if int(tk.Length) > distance {
					t.Fatalf("%s/%v: compressor emitted an overlapping match: %v", name, typ, tk)
				}
				out += int(tk.Length)
			}
			if out != len(input) {
				t.Fatalf("%s/%v: tokens cover %d bytes, want %d", name, typ, out, len(input))
			}
		}
	}
}

func TestInspectTokens(t *testing.T) {
	h, tokens, err := Inspect([]byte{0x02, 0x08, 0x00, 0x00, 0x00, 0x83, 0x0A, 0x59, 0x5D, 0x02})
	if err != nil {
		t.Fatal(err)
	}
	if h.Type != TypeVarOffset || h.Size != 8 {
		t.Fatalf("header %+v", h)
	}
	want := []string{
		"0x00000005@0 out=0 literal 0x41",
		"0x00000006@1 out=1 literal 0x42",
		"0x00000007@2 out=2 match distance=2 length=2",
		"0x00000008@1 out=4 match distance=4 length=4",
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens: %v", len(tokens), tokens)
	}
	for i := range want {
		if tokens[i].String() != want[i] {
			t.Errorf("token %d: got %q, want %q", i, tokens[i], want[i])
		}
	}
}

func TestEmptyInput(t *testing.T) {
	for _, typ := range allTypes {
		_, err := Compress(nil, typ)
		if !errors.Is(err, base.ErrEmptyInput) {
			t.Fatalf("%v: want ErrEmptyInput, got %v", typ, err)
		}
	}
}

func TestUnsupportedType(t *testing.T) {
	if _, err := New(&Settings{Type: ptr.To(Type(3))}); !errors.Is(err, base.ErrUnsupportedType) {
		t.Fatalf("want ErrUnsupportedType, got %v", err)
	}
	if _, err := Compress([]byte("abc"), Type(7)); !errors.Is(err, base.ErrUnsupportedType) {
		t.Fatalf("want ErrUnsupportedType, got %v", err)
	}
	if _, err := Decompress([]byte{0x03, 0x00, 0x00, 0x00, 0x00}); !errors.Is(err, base.ErrUnsupportedType) {
		t.Fatalf("want ErrUnsupportedType, got %v", err)
	}
}

func TestDefaultSettings(t *testing.T) {
	for _, s := range []*Settings{nil, {}} {
		c, err := New(s)
		if err != nil {
			t.Fatal(err)
		}
		enc, err := c.Compress([]byte("ABABABAB"))
		if err != nil {
			t.Fatal(err)
		}
		if Type(enc[0]) != TypeVarOffset {
			t.Fatalf("default type is %v", Type(enc[0]))
		}
	}
}

func TestDecompressShortHeader(t *testing.T) {
	for _, src := range [][]byte{nil, {0x02}, {0x02, 0x01, 0x00, 0x00}} {
		if _, err := Decompress(src); !errors.Is(err, base.ErrTruncatedInput) {
			t.Fatalf("% x: want ErrTruncatedInput, got %v", src, err)
		}
	}
}

func TestDecompressRawTruncated(t *testing.T) {
	_, err := Decompress([]byte{0x00, 0x0A, 0x00, 0x00, 0x00, 1, 2, 3})
	if !errors.Is(err, base.ErrTruncatedInput) {
		t.Fatalf("want ErrTruncatedInput, got %v", err)
	}

	// trailing bytes after a raw body are not part of the output
	dec, err := Decompress([]byte{0x00, 0x02, 0x00, 0x00, 0x00, 1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec, []byte{1, 2}) {
		t.Fatalf("got % x", dec)
	}
}

func TestDecompressOffsetOutOfRange(t *testing.T) {
	// match distance 1 length 2 before any output
	dec, err := Decompress([]byte{0x02, 0x02, 0x00, 0x00, 0x00, 0x52})
	if !errors.Is(err, base.ErrOffsetOutOfRange) {
		t.Fatalf("want ErrOffsetOutOfRange, got %v", err)
	}
	if dec != nil {
		t.Fatal("partial output returned")
	}
	var e *base.Error
	if !errors.As(err, &e) || e.Offset != 5 || e.Bit != 7 {
		t.Fatalf("unexpected position in %v", err)
	}
}

func TestDecompressSizeTooLarge(t *testing.T) {
	// literal 'A', then match distance 1 length 4 with only 2 bytes left
	_, err := Decompress([]byte{0x02, 0x03, 0x00, 0x00, 0x00, 0x83, 0x44, 0x02})
	if !errors.Is(err, base.ErrSizeTooLarge) {
		t.Fatalf("want ErrSizeTooLarge, got %v", err)
	}

	// the same stream fits when the header claims 5 bytes
	dec, err := Decompress([]byte{0x02, 0x05, 0x00, 0x00, 0x00, 0x83, 0x44, 0x02})
	if err != nil {
		t.Fatal(err)
	}
	if string(dec) != "AAAAA" {
		t.Fatalf("got %q", dec)
	}
}

func TestDecompressOverlappingMatch(t *testing.T) {
	// literal 'A', then match distance 1 length 5
	dec, err := Decompress([]byte{0x02, 0x06, 0x00, 0x00, 0x00, 0x83, 0xC4, 0x02})
	if err != nil {
		t.Fatal(err)
	}
	if string(dec) != "AAAAAA" {
		t.Fatalf("got %q", dec)
	}
}

func TestDecompressInvalidSelector(t *testing.T) {
	_, err := Decompress([]byte{0x02, 0x04, 0x00, 0x00, 0x00, 0x00})
	if !errors.Is(err, base.ErrInvalidSelector) {
		t.Fatalf("want ErrInvalidSelector, got %v", err)
	}
}

func TestDecompressClaimedSizeTooLarge(t *testing.T) {
	input := []byte("hello world, hello world")
	for _, typ := range []Type{TypeFixedOffset, TypeVarOffset} {
		enc, err := Compress(input, typ)
		if err != nil {
			t.Fatal(err)
		}

		for _, size := range []uint32{uint32(len(input)) + 1, uint32(len(input)) + 100, 0xFFFFFFFF} {
			bad := bytes.Clone(enc)
			binary.LittleEndian.PutUint32(bad[1:], size)
			// zero padding may also read as a broken selector, any positioned error will do
			var e *base.Error
			dec, err := Decompress(bad)
			if !errors.As(err, &e) || dec != nil {
				t.Fatalf("%v size %d: want a codec error, got %v", typ, size, err)
			}
		}

		// unreachable sizes are refused before allocating anything
		bad := bytes.Clone(enc)
		binary.LittleEndian.PutUint32(bad[1:], 0xFFFFFFFF)
		if _, err := Decompress(bad); !errors.Is(err, base.ErrTruncatedInput) {
			t.Fatalf("%v: want ErrTruncatedInput, got %v", typ, err)
		}
	}
}

func TestDecompressTruncatedBody(t *testing.T) {
	enc, err := Compress(bytes.Repeat([]byte("0123456789"), 20), TypeVarOffset)
	if err != nil {
		t.Fatal(err)
	}
	for n := HeaderSize; n < len(enc); n++ {
		if _, err := Decompress(enc[:n]); err == nil {
			t.Fatalf("container cut at %d bytes decoded without error", n)
		}
	}
}

func TestDecompressMaxSize(t *testing.T) {
	enc, err := Compress([]byte("ABABABAB"), TypeVarOffset)
	if err != nil {
		t.Fatal(err)
	}

	c, err := New(&Settings{MaxSize: 4})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decompress(enc); !errors.Is(err, base.ErrSizeTooLarge) {
		t.Fatalf("want ErrSizeTooLarge, got %v", err)
	}

	c, err = New(&Settings{MaxSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decompress(enc); err != nil {
		t.Fatal(err)
	}
}

func TestCodecLogger(t *testing.T) {
	c, err := New(&Settings{Type: ptr.To(TypeFixedOffset)})
	if err != nil {
		t.Fatal(err)
	}
	c.SetLogger(zap.NewNop().Sugar())

	input := bytes.Repeat([]byte("logged"), 10)
	enc, err := c.Compress(input)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := c.Decompress(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(input, dec) {
		t.Fatalf("got %q", dec)
	}
}

func TestHeader(t *testing.T) {
	buf := make([]byte, HeaderSize)
	Header{Type: TypeFixedOffset, Size: 0x01020304}.Put(buf)
	if !bytes.Equal(buf, []byte{0x01, 0x04, 0x03, 0x02, 0x01}) {
		t.Fatalf("got % x", buf)
	}
	h, err := ParseHeader(buf)
	if err != nil {
		t.Fatal(err)
	}
	if h.Type != TypeFixedOffset || h.Size != 0x01020304 {
		t.Fatalf("got %+v", h)
	}
	if TypeVarOffset.String() != "var-offset" || Type(9).String() != "unknown(9)" {
		t.Fatal("unexpected type names")
	}
}
