package proxy

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/HaHaWTH/packetevents/internal/compression"
	"github.com/HaHaWTH/packetevents/internal/connection"
	"github.com/HaHaWTH/packetevents/internal/event"
	"github.com/HaHaWTH/packetevents/internal/pipeline"
	"github.com/HaHaWTH/packetevents/internal/protocol"
)

// relayPipes 搭好中继两侧的管道：返回客户端侧、后端侧，以及中继用的两端
func relayPipes(t *testing.T) (client, backend, proxyClient, proxyBackend net.Conn) {
	t.Helper()
	client, proxyClient = net.Pipe()
	proxyBackend, backend = net.Pipe()
	t.Cleanup(func() {
		client.Close()
		backend.Close()
		proxyClient.Close()
		proxyBackend.Close()
	})
	return client, backend, proxyClient, proxyBackend
}

func waitRelay(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("中继退出出错: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("中继未在连接关闭后退出")
	}
}

// TestRelayInboundPassThrough 未启用压缩时入站帧原样转发
func TestRelayInboundPassThrough(t *testing.T) {
	s := newTestServer(t)
	conn := connection.New("127.0.0.1:50200")
	pl, err := s.attach(conn)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	client, backend, proxyClient, proxyBackend := relayPipes(t)

	done := make(chan error, 1)
	go func() {
		done <- s.relayInbound(proxyClient, proxyBackend, conn, pl)
	}()

	body := []byte{0x10, 0x01, 0x02}
	if err := protocol.WriteFrame(client, body); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	got, err := protocol.ReadFrame(backend)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Errorf("后端收到 %x, 期望 %x", got, body)
	}

	client.Close()
	waitRelay(t, done)
}

// TestRelayInboundCancelled 被监听器取消的帧不会到达后端
func TestRelayInboundCancelled(t *testing.T) {
	s := newTestServer(t)
	s.events.Register(event.Inbound, func(e *event.PacketEvent) { e.Cancel() })
	conn := connection.New("127.0.0.1:50201")
	pl, err := s.attach(conn)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	client, backend, proxyClient, proxyBackend := relayPipes(t)

	done := make(chan error, 1)
	go func() {
		done <- s.relayInbound(proxyClient, proxyBackend, conn, pl)
	}()

	if err := protocol.WriteFrame(client, []byte{0x10}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	// 后端不应收到任何字节；用带超时的读来证明
	backend.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, err := protocol.ReadFrame(backend); err == nil {
		t.Error("取消的帧不应被转发到后端")
	}

	client.Close()
	waitRelay(t, done)
}

// TestRelayOutboundCompressionSequence 压缩启用时序：
// 宣告帧本身未压缩转发，其后的帧走压缩线格式
func TestRelayOutboundCompressionSequence(t *testing.T) {
	s := newTestServer(t)
	conn := connection.New("127.0.0.1:50202")
	conn.State().Set(protocol.Login)
	pl, err := s.attach(conn)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	client, backend, proxyClient, proxyBackend := relayPipes(t)

	done := make(chan error, 1)
	go func() {
		done <- s.relayOutbound(proxyBackend, proxyClient, conn, pl)
	}()

	// 第一帧：SetCompression(threshold=64)，此时连接尚未压缩
	announce := packetBytes(t, protocol.IDSetCompression, func(b *bytes.Buffer) {
		_ = protocol.WriteVarint(b, 64)
	})
	if err := protocol.WriteFrame(backend, announce); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	got, err := protocol.ReadFrame(client)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !bytes.Equal(got, announce) {
		t.Errorf("宣告帧应原样转发, 收到 %x", got)
	}

	// 第二帧：超过阈值的压缩帧，中继应解压观察后再以线格式送出
	plain := append([]byte{0x41}, bytes.Repeat([]byte{0x55}, 120)...)
	wire, err := compression.DeflateBody(plain, 64, s.codec)
	if err != nil {
		t.Fatal(err)
	}
	if err := protocol.WriteFrame(backend, wire); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	gotWire, err := protocol.ReadFrame(client)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	gotPlain, err := compression.InflateBody(gotWire, s.codec)
	if err != nil {
		t.Fatalf("客户端收到的帧应是压缩线格式: %v", err)
	}
	if !bytes.Equal(gotPlain, plain) {
		t.Errorf("解压后 = %x, 期望 %x", gotPlain, plain)
	}

	if got := conn.State().GetThreshold(); got != 64 {
		t.Errorf("阈值 = %d, 期望 64", got)
	}
	if pl.IndexOf(DecompressName) == pipeline.NotFound {
		t.Error("压缩阶段应在宣告帧之后安装")
	}

	backend.Close()
	waitRelay(t, done)
}

// TestRelayOutboundListenerSeesPlaintext 出站监听器看到的是明文帧体
func TestRelayOutboundListenerSeesPlaintext(t *testing.T) {
	s := newTestServer(t)
	var seen [][]byte
	s.events.Register(event.Outbound, func(e *event.PacketEvent) {
		seen = append(seen, append([]byte(nil), e.Buffer.Bytes()...))
	})
	conn := connection.New("127.0.0.1:50203")
	pl, err := s.attach(conn)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	client, backend, proxyClient, proxyBackend := relayPipes(t)

	done := make(chan error, 1)
	go func() {
		done <- s.relayOutbound(proxyBackend, proxyClient, conn, pl)
	}()

	body := []byte{0x26, 0x00, 0x01}
	if err := protocol.WriteFrame(backend, body); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if _, err := protocol.ReadFrame(client); err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}

	backend.Close()
	waitRelay(t, done)

	if len(seen) != 1 || !bytes.Equal(seen[0], body) {
		t.Errorf("监听器看到 %x, 期望恰好一帧 %x", seen, body)
	}
}
