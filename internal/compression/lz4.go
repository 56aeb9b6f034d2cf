package compression

import (
	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4/v4"
)

// lz4MaxRatio bounds how far one LZ4 block can expand: a single sequence
// byte can yield at most 255 output bytes.
const lz4MaxRatio = 255

// LZ4Codec implements LZ4 block compression.
type LZ4Codec struct{}

func (LZ4Codec) Method() byte { return MethodLZ4 }

// Compress returns an empty slice when src is incompressible; the frame
// layer then falls back to storing the payload uncompressed.
func (LZ4Codec) Compress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return []byte{}, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, dst, nil)
	if err != nil {
		return nil, errors.Wrap(err, "lz4 compress")
	}
	return dst[:n], nil
}

func (LZ4Codec) Decompress(src []byte, decompressedSize int) ([]byte, error) {
	if decompressedSize == 0 {
		return []byte{}, nil
	}
	if decompressedSize < 0 || decompressedSize > lz4MaxRatio*len(src) {
		return nil, errors.Newf("lz4 decompress: %d bytes cannot expand to %d", len(src), decompressedSize)
	}
	dst := make([]byte, decompressedSize)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, errors.Wrap(err, "lz4 decompress")
	}
	if n != decompressedSize {
		return nil, errors.Newf("lz4 decompress: expected %d bytes, got %d", decompressedSize, n)
	}
	return dst, nil
}
