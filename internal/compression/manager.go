package compression

import (
	"github.com/HaHaWTH/packetevents/internal/buffer"
	"github.com/HaHaWTH/packetevents/internal/connection"
	"github.com/HaHaWTH/packetevents/internal/pipeline"
)

// StageNames are the pipeline stage names the coordinator reasons about:
// the interception decoder/encoder pair and the host's codec pair.
type StageNames struct {
	Decoder    string
	Encoder    string
	Decompress string
	Compress   string
}

// Manager resolves, once per connection, whether the interception stages
// were installed on the wrong side of the host's compression stages, and
// compensates when they were.
type Manager struct {
	codec Codec
	pl    *pipeline.Pipeline
	names StageNames
}

func NewManager(codec Codec, pl *pipeline.Pipeline, names StageNames) *Manager {
	return &Manager{codec: codec, pl: pl, names: names}
}

// HandleOrder is called by the decoder on every inbound pass. It reports
// whether the caller must recompress the buffer before forwarding, which
// is true only on the single corrective pass.
//
// Absence of the host's decompress stage does not latch: the host may
// install it at any point during login, so detection stays lazy until
// the stage is first seen. Once seen, the ordering verdict is final.
func (m *Manager) HandleOrder(conn *connection.Connection, buf *buffer.Buffer) (bool, error) {
	if conn.CompressionHandled() {
		return false, nil
	}
	di := m.pl.IndexOf(m.names.Decompress)
	if di == pipeline.NotFound {
		conn.SetCompressionPhase(connection.CompressionAbsent)
		return false, nil
	}
	conn.MarkCompressionHandled()
	if di > m.pl.IndexOf(m.names.Decoder) {
		// Bytes reach the decoder still compressed. Decompress this frame
		// by hand, then move the interception stages behind the codec pair
		// so later passes see plaintext.
		plain, err := InflateBody(buf.Bytes(), m.codec)
		if err != nil {
			return false, err
		}
		buf.Clear().WriteBytes(plain)
		if err := m.refactor(); err != nil {
			return false, err
		}
		conn.SetCompressionPhase(connection.CompressionCorrected)
		return true, nil
	}
	conn.SetCompressionPhase(connection.CompressionAlreadyCorrect)
	return false, nil
}

// Recompress re-encodes the buffer into the compression frame format for
// the corrective pass's way back out.
func (m *Manager) Recompress(conn *connection.Connection, buf *buffer.Buffer) error {
	body, err := DeflateBody(buf.Bytes(), conn.State().GetThreshold(), m.codec)
	if err != nil {
		return err
	}
	buf.Clear().WriteBytes(body)
	return nil
}

// refactor repositions the interception stages: decoder right after the
// host's decompress stage, encoder right after the host's compress stage
// (outbound passes run in reverse stage order, so "after" in stage order
// is "before" in outbound processing order).
func (m *Manager) refactor() error {
	dec, err := m.pl.Remove(m.names.Decoder)
	if err != nil {
		return err
	}
	enc, err := m.pl.Remove(m.names.Encoder)
	if err != nil {
		return err
	}
	if err := m.pl.AddAfter(m.names.Decompress, m.names.Decoder, dec); err != nil {
		return err
	}
	if m.pl.IndexOf(m.names.Compress) == pipeline.NotFound {
		return m.pl.AddLast(m.names.Encoder, enc)
	}
	return m.pl.AddAfter(m.names.Compress, m.names.Encoder, enc)
}
