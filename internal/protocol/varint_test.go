package protocol

import (
	"bytes"
	"errors"
	"testing"
)

// TestWriteVarint 表驱动测试 Varint 编码
func TestWriteVarint(t *testing.T) {
	tests := []struct {
		name     string
		input    int32
		expected []byte
	}{
		{"零值", 0, []byte{0x00}},
		{"小正数", 1, []byte{0x01}},
		{"单字节最大值", 127, []byte{0x7F}},
		{"两字节", 128, []byte{0x80, 0x01}},
		{"255", 255, []byte{0xFF, 0x01}},
		{"300", 300, []byte{0xAC, 0x02}},
		{"2097151", 2097151, []byte{0xFF, 0xFF, 0x7F}},
		{"负数", -1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := WriteVarint(buf, tt.input); err != nil {
				t.Fatalf("WriteVarint(%d) error = %v", tt.input, err)
			}
			if !bytes.Equal(buf.Bytes(), tt.expected) {
				t.Errorf("WriteVarint(%d) = %v, 期望 %v", tt.input, buf.Bytes(), tt.expected)
			}
			if got := VarintLen(tt.input); got != len(tt.expected) {
				t.Errorf("VarintLen(%d) = %d, 期望 %d", tt.input, got, len(tt.expected))
			}
			if got := AppendVarint(nil, tt.input); !bytes.Equal(got, tt.expected) {
				t.Errorf("AppendVarint(%d) = %v, 期望 %v", tt.input, got, tt.expected)
			}
		})
	}
}

// TestReadVarint 表驱动测试 Varint 解码
func TestReadVarint(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected int32
		wantErr  bool
	}{
		{"零值", []byte{0x00}, 0, false},
		{"单字节最大值", []byte{0x7F}, 127, false},
		{"两字节", []byte{0x80, 0x01}, 128, false},
		{"300", []byte{0xAC, 0x02}, 300, false},
		{"负数", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}, -1, false},
		{"空输入", []byte{}, 0, true},
		{"截断输入", []byte{0x80}, 0, true},
		{"过长输入", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadVarint(bytes.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadVarint() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("ReadVarint() = %d, 期望 %d", got, tt.expected)
			}
		})
	}
}

func TestReadVarintTooLong(t *testing.T) {
	_, err := ReadVarint(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}))
	if !errors.Is(err, ErrVarIntTooLong) {
		t.Errorf("错误 = %v, 期望 ErrVarIntTooLong", err)
	}
}

// TestVarintRoundTrip 编码后再解码应得到原值
func TestVarintRoundTrip(t *testing.T) {
	values := []int32{0, 1, 127, 128, 255, 300, 25565, 2097151, -1}
	for _, v := range values {
		buf := &bytes.Buffer{}
		if err := WriteVarint(buf, v); err != nil {
			t.Fatalf("WriteVarint(%d): %v", v, err)
		}
		got, err := ReadVarint(buf)
		if err != nil || got != v {
			t.Errorf("往返 %d = (%d, %v)", v, got, err)
		}
	}
}
