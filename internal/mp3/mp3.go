// Package mp3 walks MPEG audio frame headers to measure exact durations
// from decoded sample counts and to copy raw audio frames between files.
package mp3

import (
	"fmt"
	"io"
	"os"
)

// Info holds the technical facts gathered from one frame walk.
type Info struct {
	SampleRate int
	Channels   int
	Frames     int
	Samples    int64
	DurationMs int64
}

// Layer III bitrates in kbps, indexed by the header bitrate field.
// Index 0 (free) and 15 are invalid.
var bitrateV1L3 = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320}
var bitrateV2L3 = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160}

var sampleRatesV1 = [3]int{44100, 48000, 32000}
var sampleRatesV2 = [3]int{22050, 24000, 16000}
var sampleRatesV25 = [3]int{11025, 12000, 8000}

type frameHeader struct {
	size            int
	samplesPerFrame int
	sampleRate      int
	channels        int
}

// Probe measures an MP3 file without copying any data.
func Probe(path string) (*Info, error) {
	return walk(path, nil)
}

// AppendFrames writes every audio frame of path to w, skipping ID3v2 and
// ID3v1 tags, and returns the measurements for the appended audio.
func AppendFrames(w io.Writer, path string) (*Info, error) {
	return walk(path, w)
}

func walk(path string, w io.Writer) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	off := id3v2Size(data)
	end := len(data)
	if end-off >= 128 && string(data[end-128:end-125]) == "TAG" {
		end -= 128 // trailing ID3v1 tag
	}

	info := &Info{}
	for off+4 <= end {
		hdr, ok := parseFrameHeader(data[off:])
		if !ok {
			// Resync byte by byte; edge providers sometimes pad streams.
			off++
			continue
		}
		if off+hdr.size > end {
			break // truncated final frame
		}

		if w != nil {
			if _, err := w.Write(data[off : off+hdr.size]); err != nil {
				return nil, fmt.Errorf("append frame: %w", err)
			}
		}

		if info.Frames == 0 {
			info.SampleRate = hdr.sampleRate
			info.Channels = hdr.channels
		}
		info.Frames++
		info.Samples += int64(hdr.samplesPerFrame)
		off += hdr.size
	}

	if info.Frames == 0 {
		return nil, fmt.Errorf("%s: no MPEG audio frames found", path)
	}

	info.DurationMs = info.Samples * 1000 / int64(info.SampleRate)
	return info, nil
}

// parseFrameHeader decodes a 4-byte MPEG Layer III frame header.
func parseFrameHeader(b []byte) (frameHeader, bool) {
	if len(b) < 4 || b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return frameHeader{}, false
	}

	version := (b[1] >> 3) & 0x3 // 0 = MPEG2.5, 2 = MPEG2, 3 = MPEG1
	layer := (b[1] >> 1) & 0x3   // 1 = Layer III
	if version == 1 || layer != 1 {
		return frameHeader{}, false
	}

	bitrateIdx := b[2] >> 4
	sampleIdx := (b[2] >> 2) & 0x3
	padding := int(b[2]>>1) & 0x1
	if bitrateIdx == 0 || bitrateIdx == 15 || sampleIdx == 3 {
		return frameHeader{}, false
	}

	var bitrate, sampleRate, samplesPerFrame int
	switch version {
	case 3: // MPEG1
		bitrate = bitrateV1L3[bitrateIdx]
		sampleRate = sampleRatesV1[sampleIdx]
		samplesPerFrame = 1152
	case 2: // MPEG2
		bitrate = bitrateV2L3[bitrateIdx]
		sampleRate = sampleRatesV2[sampleIdx]
		samplesPerFrame = 576
	default: // MPEG2.5
		bitrate = bitrateV2L3[bitrateIdx]
		sampleRate = sampleRatesV25[sampleIdx]
		samplesPerFrame = 576
	}

	channels := 2
	if b[3]>>6 == 3 {
		channels = 1
	}

	size := samplesPerFrame / 8 * bitrate * 1000 / sampleRate
	size += padding
	if size < 4 {
		return frameHeader{}, false
	}

	return frameHeader{
		size:            size,
		samplesPerFrame: samplesPerFrame,
		sampleRate:      sampleRate,
		channels:        channels,
	}, true
}

// id3v2Size returns the byte length of a leading ID3v2 tag, or 0.
func id3v2Size(data []byte) int {
	if len(data) < 10 || string(data[0:3]) != "ID3" {
		return 0
	}

	size := int(data[6]&0x7F)<<21 | int(data[7]&0x7F)<<14 | int(data[8]&0x7F)<<7 | int(data[9]&0x7F)
	total := 10 + size
	if data[5]&0x10 != 0 {
		total += 10 // footer present
	}
	if total > len(data) {
		return 0
	}
	return total
}
