// Package id3 writes ID3v2.4 chapter navigation metadata (CHAP frames
// plus one CTOC table-of-contents frame) into MP3 files.
package id3

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/nguyentantai21042004/audiobook-flow/internal/domain"
)

const (
	frameChapter = "CHAP"
	frameTOC     = "CTOC"
	frameTitle   = "TIT2"

	tocElementID = "toc"
	tocLabel     = "Audiobook Chapters"

	// CTOC flags: top-level entry whose children are ordered.
	tocFlagTopLevel = 0x01
	tocFlagOrdered  = 0x02

	encodingUTF8 = 0x03

	// Byte offsets are unused; players rely on the millisecond times.
	offsetUnused = 0xFFFFFFFF
)

// Chapter is one navigable range to embed. Element ids are assigned in
// slice order: chap001, chap002, ...
type Chapter struct {
	Title   string
	StartMs int64
	EndMs   int64
}

// WriteChapters embeds chapter and table-of-contents frames into the MP3
// at path. Existing CHAP/CTOC frames are replaced, never duplicated;
// all other frames of an existing tag are preserved. Failures wrap
// domain.TagEncodeError and leave the audio data untouched.
func WriteChapters(path string, chapters []Chapter) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &domain.TagEncodeError{Path: path, Err: err}
	}

	kept, tagLen, err := readKeptFrames(data)
	if err != nil {
		return &domain.TagEncodeError{Path: path, Err: err}
	}

	body := make([]byte, 0, 1024)
	for _, f := range kept {
		body = append(body, encodeFrame(f.id, f.payload)...)
	}

	childIDs := make([]string, len(chapters))
	for i, ch := range chapters {
		elementID := fmt.Sprintf("chap%03d", i+1)
		childIDs[i] = elementID
		body = append(body, encodeFrame(frameChapter, chapterPayload(elementID, ch))...)
	}
	body = append(body, encodeFrame(frameTOC, tocPayload(childIDs))...)

	tag := make([]byte, 0, 10+len(body))
	tag = append(tag, 'I', 'D', '3', 4, 0, 0)
	tag = append(tag, synchsafe(len(body))...)
	tag = append(tag, body...)

	out := make([]byte, 0, len(tag)+len(data)-tagLen)
	out = append(out, tag...)
	out = append(out, data[tagLen:]...)

	tmp := path + ".tag.tmp"
	if err := os.WriteFile(tmp, out, 0644); err != nil {
		return &domain.TagEncodeError{Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &domain.TagEncodeError{Path: path, Err: err}
	}

	return nil
}

// ReadChapters parses the chapter frames of an MP3's ID3v2 tag, in
// element-id order as listed by the file.
func ReadChapters(path string) ([]Chapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	frames, _, err := readFrames(data)
	if err != nil {
		return nil, err
	}

	var chapters []Chapter
	for _, f := range frames {
		if f.id != frameChapter {
			continue
		}
		ch, ok := parseChapterPayload(f.payload)
		if !ok {
			continue
		}
		chapters = append(chapters, ch)
	}

	return chapters, nil
}

// chapterPayload builds a CHAP frame body: element id, millisecond
// range, unused byte offsets, and an embedded TIT2 title sub-frame.
func chapterPayload(elementID string, ch Chapter) []byte {
	payload := make([]byte, 0, len(elementID)+17+len(ch.Title)+20)
	payload = append(payload, elementID...)
	payload = append(payload, 0)
	payload = binary.BigEndian.AppendUint32(payload, uint32(ch.StartMs))
	payload = binary.BigEndian.AppendUint32(payload, uint32(ch.EndMs))
	payload = binary.BigEndian.AppendUint32(payload, offsetUnused)
	payload = binary.BigEndian.AppendUint32(payload, offsetUnused)
	payload = append(payload, encodeFrame(frameTitle, textPayload(ch.Title))...)
	return payload
}

// tocPayload builds the CTOC frame body: fixed element id, top-level and
// ordered flags, the ordered child id list, and the fixed label sub-frame.
func tocPayload(childIDs []string) []byte {
	payload := make([]byte, 0, 64)
	payload = append(payload, tocElementID...)
	payload = append(payload, 0)
	payload = append(payload, tocFlagTopLevel|tocFlagOrdered)
	payload = append(payload, byte(len(childIDs)))
	for _, id := range childIDs {
		payload = append(payload, id...)
		payload = append(payload, 0)
	}
	payload = append(payload, encodeFrame(frameTitle, textPayload(tocLabel))...)
	return payload
}

func textPayload(text string) []byte {
	payload := make([]byte, 0, 1+len(text))
	payload = append(payload, encodingUTF8)
	payload = append(payload, text...)
	return payload
}

func encodeFrame(id string, payload []byte) []byte {
	frame := make([]byte, 0, 10+len(payload))
	frame = append(frame, id...)
	frame = append(frame, synchsafe(len(payload))...)
	frame = append(frame, 0, 0)
	frame = append(frame, payload...)
	return frame
}

func parseChapterPayload(payload []byte) (Chapter, bool) {
	nul := -1
	for i, b := range payload {
		if b == 0 {
			nul = i
			break
		}
	}
	if nul < 0 || len(payload) < nul+17 {
		return Chapter{}, false
	}

	ch := Chapter{
		StartMs: int64(binary.BigEndian.Uint32(payload[nul+1:])),
		EndMs:   int64(binary.BigEndian.Uint32(payload[nul+5:])),
	}

	// Embedded sub-frames; the title lives in the first TIT2.
	sub, _, err := parseFrameList(payload[nul+17:], 4)
	if err == nil {
		for _, f := range sub {
			if f.id == frameTitle && len(f.payload) > 1 {
				ch.Title = string(f.payload[1:])
				break
			}
		}
	}

	return ch, true
}

type rawFrame struct {
	id      string
	payload []byte
}

// readKeptFrames returns the existing tag's frames minus chapter and
// table-of-contents frames, plus the total length of the existing tag.
func readKeptFrames(data []byte) ([]rawFrame, int, error) {
	frames, tagLen, err := readFrames(data)
	if err != nil {
		return nil, 0, err
	}

	kept := frames[:0]
	for _, f := range frames {
		if f.id == frameChapter || f.id == frameTOC {
			continue
		}
		kept = append(kept, f)
	}
	return kept, tagLen, nil
}

// readFrames parses a leading ID3v2.3/2.4 tag. A file without a tag
// yields no frames and tagLen 0; a new tag area is created on write.
func readFrames(data []byte) ([]rawFrame, int, error) {
	if len(data) < 10 || string(data[0:3]) != "ID3" {
		return nil, 0, nil
	}

	version := data[3]
	if version != 3 && version != 4 {
		return nil, 0, fmt.Errorf("unsupported ID3v2.%d tag", version)
	}

	size := unsynchsafe(data[6:10])
	tagLen := 10 + size
	if data[5]&0x10 != 0 {
		tagLen += 10 // footer
	}
	if tagLen > len(data) {
		return nil, 0, fmt.Errorf("ID3v2 tag size %d exceeds file size", tagLen)
	}

	frames, _, err := parseFrameList(data[10:10+size], version)
	if err != nil {
		return nil, 0, err
	}
	return frames, tagLen, nil
}

func parseFrameList(data []byte, version byte) ([]rawFrame, int, error) {
	var frames []rawFrame
	off := 0

	for off+10 <= len(data) {
		if data[off] == 0 {
			break // padding
		}

		id := string(data[off : off+4])
		var size int
		if version == 4 {
			size = unsynchsafe(data[off+4 : off+8])
		} else {
			size = int(binary.BigEndian.Uint32(data[off+4 : off+8]))
		}

		off += 10
		if size < 0 || off+size > len(data) {
			return nil, 0, fmt.Errorf("frame %s overruns tag", id)
		}

		frames = append(frames, rawFrame{id: id, payload: data[off : off+size]})
		off += size
	}

	return frames, off, nil
}

func synchsafe(n int) []byte {
	return []byte{
		byte(n >> 21 & 0x7F),
		byte(n >> 14 & 0x7F),
		byte(n >> 7 & 0x7F),
		byte(n & 0x7F),
	}
}

func unsynchsafe(b []byte) int {
	return int(b[0]&0x7F)<<21 | int(b[1]&0x7F)<<14 | int(b[2]&0x7F)<<7 | int(b[3]&0x7F)
}
