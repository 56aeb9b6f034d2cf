package compression

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// Frame layout:
//
//	[magic (2)] [method (1)] [frame_size (4 LE)] [raw_size (4 LE)] [payload...]
//
// frame_size includes the header.
const (
	HeaderSize = 11
	frameMagic = 0x4c46 // "LF"
)

// EncodeFrame compresses data with codec and prepends a frame header.
// Incompressible payloads are stored with MethodNone.
func EncodeFrame(codec Codec, data []byte) ([]byte, error) {
	payload, err := codec.Compress(data)
	if err != nil {
		return nil, err
	}
	method := codec.Method()
	if len(data) > 0 && (len(payload) == 0 || len(payload) >= len(data)) {
		payload = data
		method = MethodNone
	}

	total := HeaderSize + len(payload)
	frame := make([]byte, total)
	binary.LittleEndian.PutUint16(frame[0:2], frameMagic)
	frame[2] = method
	binary.LittleEndian.PutUint32(frame[3:7], uint32(total))
	binary.LittleEndian.PutUint32(frame[7:11], uint32(len(data)))
	copy(frame[HeaderSize:], payload)
	return frame, nil
}

// ReadHeader parses and validates a frame header without decompressing.
func ReadHeader(frame []byte) (method byte, frameSize, rawSize uint32, err error) {
	if len(frame) < HeaderSize {
		return 0, 0, 0, errors.Newf("frame too small: %d bytes", len(frame))
	}
	if magic := binary.LittleEndian.Uint16(frame[0:2]); magic != frameMagic {
		return 0, 0, 0, errors.Newf("bad frame magic 0x%04x", magic)
	}
	frameSize = binary.LittleEndian.Uint32(frame[3:7])
	rawSize = binary.LittleEndian.Uint32(frame[7:11])
	if int64(frameSize) > int64(len(frame)) || frameSize < HeaderSize {
		return 0, 0, 0, errors.Newf("frame size mismatch: header says %d, have %d", frameSize, len(frame))
	}
	return frame[2], frameSize, rawSize, nil
}

// DecodeFrame validates a frame header and returns the decompressed payload.
func DecodeFrame(frame []byte) ([]byte, error) {
	method, total, raw, err := ReadHeader(frame)
	if err != nil {
		return nil, err
	}
	codec, err := ByMethod(method)
	if err != nil {
		return nil, err
	}
	return codec.Decompress(frame[HeaderSize:total], int(raw))
}
