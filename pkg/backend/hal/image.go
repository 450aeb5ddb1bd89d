// ABOUTME: Decodes a resource into an in-memory PCM image at the device format
// ABOUTME: The image tracks its read offset so the play head can be derived
package hal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio/encode"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio/resample"
)

// ErrEmptyImage is returned for resources that decode to no audio
var ErrEmptyImage = errors.New("resource contains no audio")

// image is a seekable S16LE PCM buffer
type image struct {
	format audio.Format
	data   []byte

	mu     sync.Mutex
	offset int64
}

// loadImage decodes the file at uri and converts it to format
func loadImage(uri string, format audio.Format) (*image, error) {
	path := strings.TrimPrefix(uri, "file://")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	src, err := decode.Open(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	defer src.Close()

	data, err := render(src, format)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	return &image{format: format, data: data}, nil
}

// render reads src to the end, converting every chunk to format
func render(src decode.Source, format audio.Format) ([]byte, error) {
	in := src.Format()
	enc, err := encode.NewPCM(format)
	if err != nil {
		return nil, err
	}

	var resampler *resample.Resampler
	if in.SampleRate != format.SampleRate {
		resampler = resample.New(in.SampleRate, format.SampleRate, in.Channels)
	}

	var out bytes.Buffer
	buf := make([]int32, 4096*in.Channels)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			samples := buf[:n]
			if resampler != nil {
				converted := make([]int32, resampler.OutputSamplesNeeded(n)+in.Channels)
				samples = converted[:resampler.Resample(samples, converted)]
			}
			samples = resample.Remix(samples, in.Channels, format.Channels)

			pcm, encErr := enc.Encode(samples)
			if encErr != nil {
				return nil, fmt.Errorf("encode failed: %w", encErr)
			}
			out.Write(pcm)
		}
		if errors.Is(err, io.EOF) {
			return out.Bytes(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode failed: %w", err)
		}
	}
}

func (im *image) Read(p []byte) (int, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if im.offset >= int64(len(im.data)) {
		return 0, io.EOF
	}
	n := copy(p, im.data[im.offset:])
	im.offset += int64(n)
	return n, nil
}

func (im *image) Seek(offset int64, whence int) (int64, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += im.offset
	case io.SeekEnd:
		offset += int64(len(im.data))
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if offset < 0 {
		return 0, fmt.Errorf("negative position %d", offset)
	}
	if offset > int64(len(im.data)) {
		offset = int64(len(im.data))
	}
	im.offset = offset
	return offset, nil
}

// Offset returns how far the device has read
func (im *image) Offset() int64 {
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.offset
}

// Size returns the image length in bytes
func (im *image) Size() int64 { return int64(len(im.data)) }

// msToOffset converts a time to a frame-aligned byte offset
func (im *image) msToOffset(ms int64) int64 {
	frame := int64(im.format.FrameSize())
	frames := ms * int64(im.format.SampleRate) / 1000
	return frames * frame
}

// offsetToMs converts a byte offset to a time
func (im *image) offsetToMs(offset int64) int64 {
	bytesPerSecond := int64(im.format.FrameSize()) * int64(im.format.SampleRate)
	if bytesPerSecond == 0 {
		return 0
	}
	return offset * 1000 / bytesPerSecond
}
