package base

import (
	"go.uber.org/zap"
)

// Codec is a whole-buffer container codec. Each call owns its buffers, a codec keeps no per-call state.
type Codec interface {
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error) // on error, no partial output is returned
	SetLogger(logger *zap.SugaredLogger)
}
