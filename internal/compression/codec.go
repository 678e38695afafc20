// Package compression implements the frame compression codecs and the
// coordinator that corrects interception-stage ordering around the
// host's compression stages.
package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zlib"
)

type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec compresses and decompresses whole frame bodies.
type Codec interface {
	Compressor
	Decompressor
}

// Lookup resolves a codec by config name. It is the one capability probe
// run at startup; an unsupported name is fatal there, call sites never
// re-probe.
func Lookup(name string) (Codec, error) {
	switch name {
	case "", "zlib":
		return zlibCodec{}, nil
	case "snappy":
		return snappyCodec{}, nil
	}
	return nil, fmt.Errorf("compression: %w: %q", ErrUnsupportedCodec, name)
}

type zlibCodec struct{}

func (zlibCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (zlibCodec) Decompress(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type snappyCodec struct{}

func (snappyCodec) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (snappyCodec) Decompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}
