package compression

import (
	"github.com/HaHaWTH/packetevents/internal/buffer"
	"github.com/HaHaWTH/packetevents/internal/connection"
	"github.com/HaHaWTH/packetevents/internal/pipeline"
)

// DecompressStage is the host-owned inbound stage that inflates
// compression-framed bodies into plaintext packet bytes.
type DecompressStage struct {
	conn  *connection.Connection
	codec Codec
}

func NewDecompressStage(conn *connection.Connection, codec Codec) *DecompressStage {
	return &DecompressStage{conn: conn, codec: codec}
}

func (s *DecompressStage) HandleInbound(ctx *pipeline.Context, in *buffer.Buffer) (*buffer.Buffer, error) {
	plain, err := InflateBody(in.Bytes(), s.codec)
	if err != nil {
		return nil, err
	}
	return ctx.Alloc().Buffer().WriteBytes(plain), nil
}

// CompressStage is the host-owned outbound stage that encodes plaintext
// bodies into the compression frame format using the connection's
// threshold.
type CompressStage struct {
	conn  *connection.Connection
	codec Codec
}

func NewCompressStage(conn *connection.Connection, codec Codec) *CompressStage {
	return &CompressStage{conn: conn, codec: codec}
}

func (s *CompressStage) HandleOutbound(ctx *pipeline.Context, in *buffer.Buffer) (*buffer.Buffer, error) {
	body, err := DeflateBody(in.Bytes(), s.conn.State().GetThreshold(), s.codec)
	if err != nil {
		return nil, err
	}
	return ctx.Alloc().Buffer().WriteBytes(body), nil
}
