package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// WAVHeaderSize is the size of the canonical RIFF/WAVE header.
const WAVHeaderSize = 44

const pcmFormat = 1

// Format describes linear PCM sample layout.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// SpeechFormat is 16 kHz mono PCM16.
var SpeechFormat = Format{SampleRate: 16000, Channels: 1, BitsPerSample: 16}

func (f Format) blockAlign() int {
	return f.Channels * f.BitsPerSample / 8
}

// ByteRate is the number of payload bytes per second of audio.
func (f Format) ByteRate() int {
	return f.SampleRate * f.blockAlign()
}

type wavHeader struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

// WriteWAVHeader writes a 44-byte header describing dataSize bytes of PCM.
func WriteWAVHeader(w io.Writer, f Format, dataSize uint32) error {
	if f.SampleRate <= 0 || f.Channels <= 0 || f.BitsPerSample <= 0 || f.BitsPerSample%8 != 0 {
		return fmt.Errorf("invalid pcm format: %+v", f)
	}
	h := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   pcmFormat,
		NumChannels:   uint16(f.Channels),
		SampleRate:    uint32(f.SampleRate),
		ByteRate:      uint32(f.ByteRate()),
		BlockAlign:    uint16(f.blockAlign()),
		BitsPerSample: uint16(f.BitsPerSample),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}
	return binary.Write(w, binary.LittleEndian, &h)
}

var errNotWAV = errors.New("not a canonical pcm wav file")

// ReadWAVHeader parses a canonical header and returns its format and payload size.
func ReadWAVHeader(r io.Reader) (Format, uint32, error) {
	var h wavHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return Format{}, 0, fmt.Errorf("read wav header: %w", err)
	}
	if string(h.ChunkID[:]) != "RIFF" || string(h.Format[:]) != "WAVE" ||
		string(h.Subchunk1ID[:]) != "fmt " || string(h.Subchunk2ID[:]) != "data" ||
		h.AudioFormat != pcmFormat {
		return Format{}, 0, errNotWAV
	}
	return Format{
		SampleRate:    int(h.SampleRate),
		Channels:      int(h.NumChannels),
		BitsPerSample: int(h.BitsPerSample),
	}, h.Subchunk2Size, nil
}
