package protocol

import "io"

// Login-phase packet IDs the phase detector cares about.
const (
	IDHandshake      int32 = 0x00 // serverbound, handshaking
	IDLoginStart     int32 = 0x00 // serverbound, login
	IDLoginSuccess   int32 = 0x02 // clientbound, login
	IDSetCompression int32 = 0x03 // clientbound, login
)

type LoginStart struct {
	Username string
	UUID     UUID
}

func ParseLoginStart(r io.Reader) (*LoginStart, error) {
	username, err := ReadString(r)
	if err != nil {
		return nil, err
	}
	uuid, err := ReadUUID(r)
	if err != nil {
		return nil, err
	}
	return &LoginStart{
		Username: username,
		UUID:     uuid,
	}, nil
}

type SetCompression struct {
	Threshold int32
}

func ParseSetCompression(r io.Reader) (*SetCompression, error) {
	threshold, err := ReadVarint(r)
	if err != nil {
		return nil, err
	}
	return &SetCompression{Threshold: threshold}, nil
}
