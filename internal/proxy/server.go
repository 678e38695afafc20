// Package proxy 负责 TCP 连接管理和每连接管道的搭建
// 这是宿主模块：拦截阶段挂在它拥有的管道上
package proxy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/HaHaWTH/packetevents/internal/buffer"
	"github.com/HaHaWTH/packetevents/internal/compression"
	"github.com/HaHaWTH/packetevents/internal/connection"
	"github.com/HaHaWTH/packetevents/internal/event"
	"github.com/HaHaWTH/packetevents/internal/interceptor"
	"github.com/HaHaWTH/packetevents/internal/metrics"
	"github.com/HaHaWTH/packetevents/internal/pipeline"
	"github.com/HaHaWTH/packetevents/internal/protocol"
)

// Host-owned compression stage names. The interception stages may land
// on either side of these; the compression manager sorts that out.
const (
	DecompressName = "decompress"
	CompressName   = "compress"
)

type Server struct {
	listenerAddr string
	backendAddr  string
	codec        compression.Codec
	events       *event.Manager
	metrics      *metrics.AppMetrics // optional
	alloc        *buffer.Allocator
}

func NewServer(listenerAddr, backendAddr string, codec compression.Codec, am *metrics.AppMetrics) *Server {
	return &Server{
		listenerAddr: listenerAddr,
		backendAddr:  backendAddr,
		codec:        codec,
		events:       event.NewManager(),
		metrics:      am,
		alloc:        buffer.NewAllocator(),
	}
}

// Events 返回监听器注册表，调用方在 Start 前注册数据包监听器
func (s *Server) Events() *event.Manager {
	return s.events
}

func (s *Server) Start(ctx context.Context) error {
	slog.Info("Starting intercepting proxy", "listenerAddr", s.listenerAddr, "backendAddr", s.backendAddr)
	netListener, err := net.Listen("tcp", s.listenerAddr)
	if err != nil {
		return err
	}
	defer netListener.Close()
	go func() {
		<-ctx.Done()
		slog.Info("Shutting down proxy server")
		_ = netListener.Close()
	}()
	for {
		clientConn, err := netListener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				slog.Info("Proxy server stopped")
				return nil
			}
			slog.Error("Error accepting connection", "error", err)
			return err
		}
		go s.handleConnection(clientConn)
	}
}

func (s *Server) handleConnection(clientConn net.Conn) {
	// Disable Nagle's algorithm for lower latency
	if tcpConn, ok := clientConn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}

	backendConn, err := net.Dial("tcp", s.backendAddr)
	if err != nil {
		slog.Error("Error connecting to backend", "error", err)
		clientConn.Close()
		return
	}
	if tcpConn, ok := backendConn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}
	defer backendConn.Close()
	defer clientConn.Close()

	conn := connection.New(clientConn.RemoteAddr().String())
	pl, err := s.attach(conn)
	if err != nil {
		// Interception needs exact structural facts about the pipeline;
		// refusing the connection beats running degraded.
		slog.Error("Failed to attach interception stages", "error", err)
		return
	}

	if s.metrics != nil {
		s.metrics.ConnectionsOpen.Inc()
		defer s.metrics.ConnectionsOpen.Dec()
	}
	slog.Info("Intercepting connection", "id", conn.ID(), "client", clientConn.RemoteAddr(), "backend", s.backendAddr)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer clientConn.Close()
		defer backendConn.Close()
		if err := s.relayInbound(clientConn, backendConn, conn, pl); err != nil {
			slog.Error("Error relaying packets C->S", "id", conn.ID(), "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		defer clientConn.Close()
		defer backendConn.Close()
		if err := s.relayOutbound(backendConn, clientConn, conn, pl); err != nil {
			slog.Error("Error relaying packets S->C", "id", conn.ID(), "error", err)
		}
	}()
	wg.Wait()
	slog.Info("Connection closed", "id", conn.ID(), "client", clientConn.RemoteAddr())
}

// attach builds the connection's pipeline with the interception pair
// installed. The host's compression stages do not exist yet; they are
// added when the backend enables compression during login, which is what
// makes the ordering correction necessary at all.
func (s *Server) attach(conn *connection.Connection) (*pipeline.Pipeline, error) {
	pl := pipeline.New(s.alloc)
	cm := compression.NewManager(s.codec, pl, compression.StageNames{
		Decoder:    interceptor.DecoderName,
		Encoder:    interceptor.EncoderName,
		Decompress: DecompressName,
		Compress:   CompressName,
	})
	if err := pl.AddLast(interceptor.DecoderName, interceptor.NewDecoder(conn, cm, s.events, s.metrics)); err != nil {
		return nil, err
	}
	if err := pl.AddLast(interceptor.EncoderName, interceptor.NewEncoder(conn, s.events, s.metrics)); err != nil {
		return nil, err
	}
	return pl, nil
}

// relayInbound reads client frames, runs them through the inbound stages
// and forwards the result to the backend, compressing as the connection
// threshold requires.
func (s *Server) relayInbound(src, dst net.Conn, conn *connection.Connection, pl *pipeline.Pipeline) error {
	for {
		body, err := protocol.ReadFrame(src)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		out, err := pl.FireInbound(s.alloc.Buffer().WriteBytes(body))
		if err != nil {
			return err
		}
		if out == nil {
			continue // a listener cancelled the frame
		}
		plain := out.Bytes()
		s.observeInbound(conn, plain)
		wire, err := compression.DeflateBody(plain, conn.State().GetThreshold(), s.codec)
		if err != nil {
			out.Release()
			return err
		}
		err = protocol.WriteFrame(dst, wire)
		if s.metrics != nil {
			s.metrics.BytesRelayed.WithLabelValues(event.Inbound.String()).Add(float64(len(wire)))
		}
		out.Release()
		if err != nil {
			return err
		}
	}
}

// relayOutbound reads backend frames, presents them to the outbound
// stages as plaintext and forwards the wire-format result to the client.
func (s *Server) relayOutbound(src, dst net.Conn, conn *connection.Connection, pl *pipeline.Pipeline) error {
	for {
		body, err := protocol.ReadFrame(src)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if conn.State().GetThreshold() >= 0 {
			body, err = compression.InflateBody(body, s.codec)
			if err != nil {
				return err
			}
		}
		// Observed on the plaintext, acted on after the frame is written:
		// the frame announcing compression is itself sent uncompressed.
		pendingThreshold := s.observeOutbound(conn, body)
		out, err := pl.FireOutbound(s.alloc.Buffer().WriteBytes(body))
		if err != nil {
			return err
		}
		if out == nil {
			continue
		}
		wire := out.Bytes()
		err = protocol.WriteFrame(dst, wire)
		if s.metrics != nil {
			s.metrics.BytesRelayed.WithLabelValues(event.Outbound.String()).Add(float64(len(wire)))
		}
		out.Release()
		if err != nil {
			return err
		}
		if pendingThreshold >= 0 {
			s.enableCompression(conn, pl, pendingThreshold)
		}
	}
}
