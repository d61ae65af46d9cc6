package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestWriteWAVHeaderLayout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteWAVHeader(&buf, SpeechFormat, 32000); err != nil {
		t.Fatalf("write header: %v", err)
	}
	b := buf.Bytes()
	if len(b) != WAVHeaderSize {
		t.Fatalf("expected %d header bytes, got %d", WAVHeaderSize, len(b))
	}

	le := binary.LittleEndian
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" || string(b[12:16]) != "fmt " || string(b[36:40]) != "data" {
		t.Fatalf("unexpected chunk ids: %q", b)
	}
	checks := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"chunk size", le.Uint32(b[4:8]), 36 + 32000},
		{"fmt size", le.Uint32(b[16:20]), 16},
		{"audio format", uint32(le.Uint16(b[20:22])), 1},
		{"channels", uint32(le.Uint16(b[22:24])), 1},
		{"sample rate", le.Uint32(b[24:28]), 16000},
		{"byte rate", le.Uint32(b[28:32]), 32000},
		{"block align", uint32(le.Uint16(b[32:34])), 2},
		{"bits per sample", uint32(le.Uint16(b[34:36])), 16},
		{"data size", le.Uint32(b[40:44]), 32000},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s: got %d want %d", c.name, c.got, c.want)
		}
	}
}

func TestReadWAVHeaderRoundTripsFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteWAVHeader(&buf, SpeechFormat, 640); err != nil {
		t.Fatalf("write header: %v", err)
	}
	format, size, err := ReadWAVHeader(&buf)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if format != SpeechFormat || size != 640 {
		t.Fatalf("unexpected header: %+v %d", format, size)
	}

	if _, _, err := ReadWAVHeader(bytes.NewReader(make([]byte, WAVHeaderSize))); err == nil {
		t.Fatalf("expected zeroed header to be rejected")
	}
}

func TestWriteWAVHeaderRejectsInvalidFormat(t *testing.T) {
	t.Parallel()

	if err := WriteWAVHeader(&bytes.Buffer{}, Format{SampleRate: 16000, Channels: 1, BitsPerSample: 12}, 0); err == nil {
		t.Fatalf("expected non byte-aligned samples to be rejected")
	}
}
