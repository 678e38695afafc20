package compression

import (
	"bytes"
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		codec   string
		wantErr bool
	}{
		{"默认zlib", "", false},
		{"zlib", "zlib", false},
		{"snappy", "snappy", false},
		{"未知编解码器", "lz4", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Lookup(tt.codec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Lookup(%q) error = %v, wantErr %v", tt.codec, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedCodec) {
					t.Errorf("错误 = %v, 期望 ErrUnsupportedCodec", err)
				}
				return
			}
			if c == nil {
				t.Fatal("Lookup 返回 nil codec")
			}
		})
	}
}

// TestCodecRoundTrip 每个编解码器压缩后解压应得到原数据
func TestCodecRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("hello"),
		bytes.Repeat([]byte("packetevents "), 64),
		{0x00},
	}
	for _, name := range []string{"zlib", "snappy"} {
		codec, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		for _, p := range payloads {
			compressed, err := codec.Compress(p)
			if err != nil {
				t.Fatalf("%s Compress: %v", name, err)
			}
			plain, err := codec.Decompress(compressed)
			if err != nil {
				t.Fatalf("%s Decompress: %v", name, err)
			}
			if !bytes.Equal(plain, p) {
				t.Errorf("%s 往返失败: 得到 %d 字节, 期望 %d 字节", name, len(plain), len(p))
			}
		}
	}
}

func TestDecompressGarbage(t *testing.T) {
	for _, name := range []string{"zlib", "snappy"} {
		codec, _ := Lookup(name)
		if _, err := codec.Decompress([]byte{0xDE, 0xAD, 0xBE, 0xEF}); err == nil {
			t.Errorf("%s 解压无效数据应返回错误", name)
		}
	}
}
