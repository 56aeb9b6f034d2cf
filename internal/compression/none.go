package compression

import "github.com/cockroachdb/errors"

// NoneCodec stores payloads as-is.
type NoneCodec struct{}

func (NoneCodec) Method() byte { return MethodNone }

func (NoneCodec) Compress(src []byte) ([]byte, error) {
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst, nil
}

func (NoneCodec) Decompress(src []byte, decompressedSize int) ([]byte, error) {
	if decompressedSize != len(src) {
		return nil, errors.Newf("stored payload is %d bytes, header says %d", len(src), decompressedSize)
	}
	dst := make([]byte, decompressedSize)
	copy(dst, src)
	return dst, nil
}
