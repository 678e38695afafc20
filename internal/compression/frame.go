package compression

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/HaHaWTH/packetevents/internal/protocol"
)

var (
	ErrUnsupportedCodec = errors.New("unsupported codec")
	ErrBadDataLength    = errors.New("decompressed size does not match data length")
)

// InflateBody decodes a compression-framed body: a Varint uncompressed
// size followed by either the compressed bytes, or, when the size field
// is zero, the plaintext of a frame below the threshold.
func InflateBody(body []byte, codec Codec) ([]byte, error) {
	rd := bytes.NewReader(body)
	dataLen, err := protocol.ReadVarint(rd)
	if err != nil {
		return nil, err
	}
	rest := body[len(body)-rd.Len():]
	if dataLen == 0 {
		return rest, nil
	}
	if dataLen < 0 || dataLen > protocol.MaxFrameSize {
		return nil, fmt.Errorf("compression: %w: %d", ErrBadDataLength, dataLen)
	}
	plain, err := codec.Decompress(rest)
	if err != nil {
		return nil, err
	}
	if len(plain) != int(dataLen) {
		return nil, fmt.Errorf("compression: %w: got %d, declared %d", ErrBadDataLength, len(plain), dataLen)
	}
	return plain, nil
}

// DeflateBody encodes a plaintext body into the compression frame format
// for the given threshold. A negative threshold returns the body
// unchanged (compression disabled).
func DeflateBody(body []byte, threshold int, codec Codec) ([]byte, error) {
	if threshold < 0 {
		return body, nil
	}
	if len(body) < threshold {
		out := make([]byte, 0, len(body)+1)
		out = protocol.AppendVarint(out, 0)
		return append(out, body...), nil
	}
	compressed, err := codec.Compress(body)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(compressed)+protocol.VarintLen(int32(len(body))))
	out = protocol.AppendVarint(out, int32(len(body)))
	return append(out, compressed...), nil
}
