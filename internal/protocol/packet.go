// Package protocol 负责帧与协议字段的编解码
// 外层帧格式：[Varint 长度][帧体]，压缩属于 compression 包的职责
package protocol

import (
	"bytes"
	"errors"
	"io"
)

const MaxFrameSize = 2097152 // 2MB

// Packet is one decoded frame body: a Varint packet ID followed by the
// raw payload.
type Packet struct {
	ID      int32
	Payload []byte
}

// ReadFrame reads one length-prefixed frame body from r. The body is
// returned as-is; whether it is compressed depends on the connection.
func ReadFrame(r io.Reader) ([]byte, error) {
	frameLen, err := ReadVarint(r)
	if err != nil {
		return nil, err
	}
	if frameLen <= 0 {
		return nil, ErrInvalidFrame
	}
	if frameLen > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	body := make([]byte, frameLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, errors.Join(ErrInvalidFrame, err)
	}
	return body, nil
}

// WriteFrame writes body to w with the outer Varint length prefix.
func WriteFrame(w io.Writer, body []byte) error {
	if len(body) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	if err := WriteVarint(w, int32(len(body))); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

// ParsePacket splits a plaintext frame body into packet ID and payload.
func ParsePacket(body []byte) (*Packet, error) {
	rd := bytes.NewReader(body)
	id, err := ReadVarint(rd)
	if err != nil {
		return nil, errors.Join(ErrInvalidFrame, err)
	}
	payload, _ := io.ReadAll(rd)
	return &Packet{
		ID:      id,
		Payload: payload,
	}, nil
}
