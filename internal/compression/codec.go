package compression

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Codec compresses and decompresses frame payloads.
type Codec interface {
	// Method returns the single-byte codec identifier written into frame headers.
	Method() byte
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte, decompressedSize int) ([]byte, error)
}

const (
	MethodNone byte = 0x02
	MethodLZ4  byte = 0x82
)

// ByMethod returns the codec for a frame method byte.
func ByMethod(method byte) (Codec, error) {
	switch method {
	case MethodLZ4:
		return LZ4Codec{}, nil
	case MethodNone:
		return NoneCodec{}, nil
	default:
		return nil, errors.Newf("unknown compression method: 0x%02x", method)
	}
}

// ByName resolves a configured codec name ("lz4" or "none").
func ByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lz4", "":
		return LZ4Codec{}, nil
	case "none":
		return NoneCodec{}, nil
	default:
		return nil, errors.Newf("unknown compression codec %q", name)
	}
}
