package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cybroslabs/libalz-go/alz"
	"github.com/cybroslabs/libalz-go/arc"
	"github.com/cybroslabs/libalz-go/base"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/utils/ptr"
)

const usage = `alztool - ALZ container codec

Usage: alztool [-v] [-max N] <mode> <args>

  c[=0|1|2] <input> <output>   compress
  d <input> <output>           decompress
  i <input>                    list the tokens of a container
  x <file.arc> [dir]           extract every entry of an ARC archive

Compression types:
  0 copies the input (uncompressed)
  1 encodes all dictionary offsets as 10-bit values
  2 uses variable-length dictionary offsets (default)
`

var errUsage = errors.New("invalid arguments")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("alztool", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	verbose := fs.Bool("v", false, "log codec details")
	maxsize := fs.Uint64("max", 0, "refuse containers claiming more decompressed bytes than this, 0 means no limit")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	logger := newLogger(stderr, *verbose)
	defer func() { _ = logger.Sync() }()

	err := dispatch(fs.Args(), *maxsize, stdout, logger)
	if errors.Is(err, errUsage) {
		fmt.Fprintf(stderr, "ERROR: %v\n\n", err)
		fs.Usage()
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
	return 0
}

func newLogger(w io.Writer, verbose bool) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core).Sugar()
}

func dispatch(args []string, maxsize uint64, stdout io.Writer, logger *zap.SugaredLogger) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing mode", errUsage)
	}
	if maxsize > math.MaxUint32 {
		return fmt.Errorf("%w: -max is above %d", errUsage, uint32(math.MaxUint32))
	}

	mode := args[0]
	switch {
	case strings.HasPrefix(mode, "c") && len(args) == 3:
		typ, err := parsetype(mode)
		if err != nil {
			return err
		}
		c, err := alz.New(&alz.Settings{Type: typ})
		if err != nil {
			return err
		}
		c.SetLogger(logger)
		if err = transform(c.Compress, args[1], args[2]); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Successfully wrote compressed data.")
	case mode == "d" && len(args) == 3:
		c, err := alz.New(&alz.Settings{MaxSize: uint32(maxsize)})
		if err != nil {
			return err
		}
		c.SetLogger(logger)
		if err = transform(c.Decompress, args[1], args[2]); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Successfully wrote decompressed data.")
	case mode == "i" && len(args) == 2:
		return inspect(args[1], stdout)
	case mode == "x" && (len(args) == 2 || len(args) == 3):
		dir := "."
		if len(args) == 3 {
			dir = args[2]
		}
		return extract(args[1], dir, stdout, logger)
	default:
		return fmt.Errorf("%w: mode %q with %d arguments", errUsage, mode, len(args)-1)
	}
	return nil
}

// parsetype reads the optional "=N" suffix of the compress mode, nil leaves the codec default
func parsetype(mode string) (*alz.Type, error) {
	if mode == "c" {
		return nil, nil
	}
	v, ok := strings.CutPrefix(mode, "c=")
	if !ok {
		return nil, fmt.Errorf("%w: mode %q", errUsage, mode)
	}
	n, err := strconv.ParseUint(v, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ALZ compression type %q", errUsage, v)
	}
	return ptr.To(alz.Type(n)), nil
}

func transform(fn func([]byte) ([]byte, error), in string, out string) error {
	src, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("could not read input file: %w", err)
	}
	dst, err := fn(src)
	if err != nil {
		return err
	}
	if err = os.WriteFile(out, dst, 0o644); err != nil {
		return fmt.Errorf("could not write output file: %w", err)
	}
	return nil
}

func inspect(in string, stdout io.Writer) error {
	src, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("could not read input file: %w", err)
	}
	h, tokens, err := alz.Inspect(src)
	if len(src) >= alz.HeaderSize && !errors.Is(err, base.ErrUnsupportedType) {
		fmt.Fprintf(stdout, "type %v, %d bytes\n", h.Type, h.Size)
	}
	for _, t := range tokens {
		fmt.Fprintln(stdout, t)
	}
	return err
}

func extract(in string, dir string, stdout io.Writer, logger *zap.SugaredLogger) error {
	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("could not open archive: %w", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("could not stat archive: %w", err)
	}

	a, err := arc.Open(f, st.Size())
	if err != nil {
		return err
	}
	a.SetLogger(logger)
	if err = a.Extract(dir); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Successfully extracted %d entries.\n", len(a.Entries))
	return nil
}
