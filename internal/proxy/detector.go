package proxy

import (
	"bytes"
	"log/slog"

	"github.com/HaHaWTH/packetevents/internal/compression"
	"github.com/HaHaWTH/packetevents/internal/connection"
	"github.com/HaHaWTH/packetevents/internal/pipeline"
	"github.com/HaHaWTH/packetevents/internal/protocol"
)

// observeInbound drives protocol-phase transitions from client frames.
// It only reads the plaintext; malformed fields are logged and skipped
// rather than failing the relay, the backend will reject the frame on
// its own terms.
func (s *Server) observeInbound(conn *connection.Connection, plain []byte) {
	pkt, err := protocol.ParsePacket(plain)
	if err != nil {
		return
	}
	switch conn.State().Get() {
	case protocol.Handshaking:
		if pkt.ID != protocol.IDHandshake {
			return
		}
		handshake, err := protocol.ParseHandshake(bytes.NewReader(pkt.Payload))
		if err != nil {
			slog.Debug("Malformed handshake", "id", conn.ID(), "error", err)
			return
		}
		slog.Info("Handshake", "id", conn.ID(), "protocolVersion", handshake.ProtocolVersion, "serverAddress", handshake.ServerAddress, "nextState", handshake.NextState)
		switch handshake.NextState {
		case 1:
			conn.State().Set(protocol.Status)
		case 2:
			conn.State().Set(protocol.Login)
		}
	case protocol.Login:
		if pkt.ID != protocol.IDLoginStart {
			return
		}
		loginStart, err := protocol.ParseLoginStart(bytes.NewReader(pkt.Payload))
		if err != nil {
			slog.Debug("Malformed login start", "id", conn.ID(), "error", err)
			return
		}
		slog.Info("Login start", "id", conn.ID(), "username", loginStart.Username, "uuid", loginStart.UUID.String())
	}
}

// observeOutbound drives phase transitions from backend frames. It
// returns the compression threshold announced by this frame, or -1; the
// relay enables compression only after the announcing frame has been
// forwarded uncompressed.
func (s *Server) observeOutbound(conn *connection.Connection, plain []byte) int {
	if conn.State().Get() != protocol.Login {
		return -1
	}
	pkt, err := protocol.ParsePacket(plain)
	if err != nil {
		return -1
	}
	switch pkt.ID {
	case protocol.IDLoginSuccess:
		slog.Info("Login success, switching to Play state", "id", conn.ID())
		conn.State().Set(protocol.Play)
	case protocol.IDSetCompression:
		sc, err := protocol.ParseSetCompression(bytes.NewReader(pkt.Payload))
		if err != nil {
			slog.Debug("Malformed set compression", "id", conn.ID(), "error", err)
			return -1
		}
		return int(sc.Threshold)
	}
	return -1
}

// enableCompression installs the host codec stages. They are appended,
// which lands them after the interception stages installed at attach
// time; the compression manager detects that ordering on the next
// inbound pass and corrects it.
func (s *Server) enableCompression(conn *connection.Connection, pl *pipeline.Pipeline, threshold int) {
	conn.State().SetThreshold(threshold)
	if pl.IndexOf(DecompressName) != pipeline.NotFound {
		return
	}
	if err := pl.AddLast(DecompressName, compression.NewDecompressStage(conn, s.codec)); err != nil {
		slog.Error("Failed to install decompress stage", "id", conn.ID(), "error", err)
		return
	}
	if err := pl.AddLast(CompressName, compression.NewCompressStage(conn, s.codec)); err != nil {
		slog.Error("Failed to install compress stage", "id", conn.ID(), "error", err)
		return
	}
	slog.Info("Compression enabled", "id", conn.ID(), "threshold", threshold)
}
