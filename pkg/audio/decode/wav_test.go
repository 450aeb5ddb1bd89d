// ABOUTME: Tests for the WAV streaming source
// ABOUTME: Writes fixtures with go-audio/wav and decodes them back
package decode

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV writes a 16-bit WAV fixture and returns its path
func writeWAV(t *testing.T, sampleRate, channels int, data []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to close encoder: %v", err)
	}
	return path
}

func ramp(n int) []int {
	data := make([]int, n)
	for i := range data {
		data[i] = (i % 200) * 100
	}
	return data
}

func TestOpenWAV(t *testing.T) {
	data := ramp(1600)
	path := writeWAV(t, 16000, 1, data)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}
	defer f.Close()

	src, err := Open(f)
	if err != nil {
		t.Fatalf("failed to open source: %v", err)
	}
	defer src.Close()

	format := src.Format()
	if format.Codec != "wav" || format.SampleRate != 16000 || format.Channels != 1 || format.BitDepth != 16 {
		t.Fatalf("unexpected format %v", format)
	}

	if frames := src.Frames(); frames != 1600 {
		t.Errorf("expected 1600 frames, got %d", frames)
	}

	samples := readAll(t, src)
	if len(samples) != len(data) {
		t.Fatalf("expected %d samples, got %d", len(data), len(samples))
	}
	for i := range data {
		if samples[i] != int32(data[i])<<8 {
			t.Fatalf("sample %d: expected %d, got %d", i, int32(data[i])<<8, samples[i])
		}
	}
}

func TestWAVSeekFrame(t *testing.T) {
	data := ramp(1000)
	path := writeWAV(t, 8000, 1, data)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}
	defer f.Close()

	src, err := Open(f)
	if err != nil {
		t.Fatalf("failed to open source: %v", err)
	}

	seeker, ok := src.(Seeker)
	if !ok {
		t.Fatal("expected WAV source to implement Seeker")
	}
	if err := seeker.SeekFrame(500); err != nil {
		t.Fatalf("seek failed: %v", err)
	}

	samples := readAll(t, src)
	if len(samples) != 500 {
		t.Fatalf("expected 500 samples after seek, got %d", len(samples))
	}
	if samples[0] != int32(data[500])<<8 {
		t.Errorf("expected first sample %d, got %d", int32(data[500])<<8, samples[0])
	}
}

func TestOpenWAVFromPlainReader(t *testing.T) {
	data := ramp(400)
	path := writeWAV(t, 16000, 2, data)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}

	// hide the Seek method to force the in-memory path
	plain := struct{ io.Reader }{bytes.NewReader(raw)}
	src, err := Open(plain)
	if err != nil {
		t.Fatalf("failed to open source: %v", err)
	}

	if src.Format().Channels != 2 {
		t.Errorf("expected 2 channels, got %d", src.Format().Channels)
	}
	if samples := readAll(t, src); len(samples) != len(data) {
		t.Errorf("expected %d samples, got %d", len(data), len(samples))
	}
}

func TestNewWAVRejectsGarbage(t *testing.T) {
	_, err := NewWAV(bytes.NewReader([]byte("RIFF\x04\x00\x00\x00WAVE")))
	if err == nil {
		t.Fatal("expected error for truncated wav")
	}
}

func readAll(t *testing.T, src Source) []int32 {
	t.Helper()

	var out []int32
	buf := make([]int32, 256)
	for {
		n, err := src.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if n == 0 {
			return out
		}
	}
}
