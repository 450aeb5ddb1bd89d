// ABOUTME: Container sniffing and decoder selection
// ABOUTME: Picks WAV, FLAC, MP3, Ogg Vorbis or Ogg Opus from the stream header
package decode

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

const sniffSize = 512

// Sniff names the codec found in a stream header, or "" when unrecognized
func Sniff(header []byte) string {
	switch {
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return "wav"
	case bytes.HasPrefix(header, []byte("fLaC")):
		return "flac"
	case bytes.HasPrefix(header, []byte("OggS")):
		if bytes.Contains(header, []byte("OpusHead")) {
			return "opus"
		}
		if bytes.Contains(header, []byte("\x01vorbis")) {
			return "vorbis"
		}
		return ""
	case bytes.HasPrefix(header, []byte("ID3")):
		return "mp3"
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		return "mp3"
	}
	return ""
}

// Open sniffs r and returns a streaming source for it.
// Seekable readers keep their seekability so the returned source can implement Seeker.
func Open(r io.Reader) (Source, error) {
	var header []byte

	if rs, ok := r.(io.ReadSeeker); ok {
		buf := make([]byte, sniffSize)
		n, err := io.ReadFull(rs, buf)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		header = buf[:n]
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to rewind: %w", err)
		}
	} else {
		br := bufio.NewReaderSize(r, 4096)
		peeked, err := br.Peek(sniffSize)
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		header = peeked
		r = br
	}

	codec := Sniff(header)
	switch codec {
	case "wav":
		return NewWAV(r)
	case "flac":
		return NewFLAC(r)
	case "mp3":
		return NewMP3(r)
	case "vorbis":
		return NewVorbis(r)
	case "opus":
		return NewOpus(r, opusChannels(header))
	}
	return nil, ErrUnknownFormat
}

// opusChannels reads the channel count out of the OpusHead identification packet
func opusChannels(header []byte) int {
	i := bytes.Index(header, []byte("OpusHead"))
	if i < 0 || i+9 >= len(header) {
		return 2
	}
	ch := int(header[i+9])
	if ch < 1 || ch > 2 {
		return 2
	}
	return ch
}
