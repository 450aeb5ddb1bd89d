// ABOUTME: Tests for the device PCM encoder
// ABOUTME: Covers format validation, byte order and saturation
package encode

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
)

func TestNewPCM(t *testing.T) {
	tests := []struct {
		name    string
		format  audio.Format
		wantErr bool
	}{
		{"16-bit", audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: 16}, false},
		{"24-bit", audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: 24}, true},
		{"compressed codec", audio.Format{Codec: "opus", SampleRate: 48000, Channels: 2, BitDepth: 16}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPCM(tt.format)
			if tt.wantErr != (err != nil) {
				t.Fatalf("NewPCM error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("expected ErrUnsupportedFormat, got %v", err)
			}
		})
	}
}

func TestPCMEncode(t *testing.T) {
	enc, err := NewPCM(audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 1, BitDepth: 16})
	if err != nil {
		t.Fatalf("NewPCM: %v", err)
	}
	defer enc.Close()

	tests := []struct {
		name   string
		sample int32
		want   int16
	}{
		{"silence", 0, 0},
		{"positive", 0x123400, 0x1234},
		{"negative", -0x567800, -0x5678},
		{"full scale", 0x7fff00, 0x7fff},
		{"above range saturates", 0x1000000, 0x7fff},
		{"below range saturates", -0x1000000, -0x8000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := enc.Encode([]int32{tt.sample})
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if len(out) != 2 {
				t.Fatalf("expected 2 bytes, got %d", len(out))
			}
			if got := int16(binary.LittleEndian.Uint16(out)); got != tt.want {
				t.Errorf("Encode(%#x) = %#x, want %#x", tt.sample, got, tt.want)
			}
		})
	}
}
