package mp3

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// testFrame builds one valid MPEG1 Layer III frame: 64kbps, 32kHz, mono.
// Frame size is exactly 288 bytes and carries 1152 samples (36ms).
func testFrame() []byte {
	frame := make([]byte, 288)
	frame[0] = 0xFF
	frame[1] = 0xFB
	frame[2] = 0x58
	frame[3] = 0xC0
	return frame
}

func writeStream(t *testing.T, frames int, leadingTag, trailingTag []byte) string {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(leadingTag)
	for range frames {
		buf.Write(testFrame())
	}
	buf.Write(trailingTag)

	path := filepath.Join(t.TempDir(), "test.mp3")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// id3v2Tag builds an empty ID3v2.4 tag with the given payload size.
func id3v2Tag(payload int) []byte {
	tag := make([]byte, 10+payload)
	copy(tag, "ID3")
	tag[3] = 4
	tag[6] = byte(payload >> 21 & 0x7F)
	tag[7] = byte(payload >> 14 & 0x7F)
	tag[8] = byte(payload >> 7 & 0x7F)
	tag[9] = byte(payload & 0x7F)
	return tag
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name        string
		frames      int
		leadingTag  []byte
		trailingTag []byte
		wantMs      int64
	}{
		{"plain stream", 100, nil, nil, 3600},
		{"with id3v2 tag", 50, id3v2Tag(64), nil, 1800},
		{"with id3v1 tag", 50, nil, append([]byte("TAG"), make([]byte, 125)...), 1800},
		{"single frame", 1, nil, nil, 36},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeStream(t, tt.frames, tt.leadingTag, tt.trailingTag)

			info, err := Probe(path)
			if err != nil {
				t.Fatalf("Probe() error = %v", err)
			}

			if info.Frames != tt.frames {
				t.Errorf("Frames = %d, want %d", info.Frames, tt.frames)
			}
			if info.Samples != int64(tt.frames)*1152 {
				t.Errorf("Samples = %d, want %d", info.Samples, tt.frames*1152)
			}
			if info.DurationMs != tt.wantMs {
				t.Errorf("DurationMs = %d, want %d", info.DurationMs, tt.wantMs)
			}
			if info.SampleRate != 32000 {
				t.Errorf("SampleRate = %d, want 32000", info.SampleRate)
			}
			if info.Channels != 1 {
				t.Errorf("Channels = %d, want 1", info.Channels)
			}
		})
	}
}

func TestProbeNoFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.mp3")
	if err := os.WriteFile(path, []byte("not an mp3 file at all"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Probe(path); err == nil {
		t.Error("Probe() should fail on a file without MPEG frames")
	}
}

func TestAppendFramesStripsTags(t *testing.T) {
	path := writeStream(t, 10, id3v2Tag(32), append([]byte("TAG"), make([]byte, 125)...))

	var out bytes.Buffer
	info, err := AppendFrames(&out, path)
	if err != nil {
		t.Fatalf("AppendFrames() error = %v", err)
	}

	if info.Frames != 10 {
		t.Errorf("Frames = %d, want 10", info.Frames)
	}
	if out.Len() != 10*288 {
		t.Errorf("copied %d bytes, want %d", out.Len(), 10*288)
	}
	// The copy must start at a frame header, not at the tag
	if out.Bytes()[0] != 0xFF || out.Bytes()[1] != 0xFB {
		t.Error("copied data does not start with a frame header")
	}
}

func TestAppendFramesConcatenation(t *testing.T) {
	a := writeStream(t, 5, nil, nil)
	b := writeStream(t, 7, id3v2Tag(16), nil)

	var out bytes.Buffer
	infoA, err := AppendFrames(&out, a)
	if err != nil {
		t.Fatal(err)
	}
	infoB, err := AppendFrames(&out, b)
	if err != nil {
		t.Fatal(err)
	}

	total := infoA.DurationMs + infoB.DurationMs
	if total != 12*36 {
		t.Errorf("total duration = %dms, want %dms", total, 12*36)
	}

	// Re-probe the concatenated stream: duration must equal the sum
	merged := filepath.Join(t.TempDir(), "merged.mp3")
	if err := os.WriteFile(merged, out.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	info, err := Probe(merged)
	if err != nil {
		t.Fatal(err)
	}
	if info.DurationMs != total {
		t.Errorf("merged duration = %dms, want %dms", info.DurationMs, total)
	}
}

func TestParseFrameHeader(t *testing.T) {
	tests := []struct {
		name string
		hdr  []byte
		ok   bool
	}{
		{"valid mpeg1 layer3", []byte{0xFF, 0xFB, 0x58, 0xC0}, true},
		{"no sync", []byte{0x00, 0xFB, 0x58, 0xC0}, false},
		{"free bitrate", []byte{0xFF, 0xFB, 0x08, 0xC0}, false},
		{"bad bitrate index", []byte{0xFF, 0xFB, 0xF8, 0xC0}, false},
		{"bad sample rate index", []byte{0xFF, 0xFB, 0x5C, 0xC0}, false},
		{"reserved version", []byte{0xFF, 0xEB, 0x58, 0xC0}, false},
		{"too short", []byte{0xFF, 0xFB}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := parseFrameHeader(tt.hdr)
			if ok != tt.ok {
				t.Errorf("parseFrameHeader() ok = %v, want %v", ok, tt.ok)
			}
		})
	}
}
