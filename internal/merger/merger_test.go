package merger

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nguyentantai21042004/audiobook-flow/internal/domain"
	"github.com/nguyentantai21042004/audiobook-flow/internal/logger"
	"github.com/nguyentantai21042004/audiobook-flow/internal/mp3"
)

// testFrame builds one valid MPEG1 Layer III frame: 64kbps, 32kHz,
// mono. 288 bytes, 1152 samples, 36ms.
func testFrame() []byte {
	frame := make([]byte, 288)
	frame[0] = 0xFF
	frame[1] = 0xFB
	frame[2] = 0x58
	frame[3] = 0xC0
	return frame
}

func writeFragment(t *testing.T, dir, name string, frames int) string {
	t.Helper()

	var buf bytes.Buffer
	for range frames {
		buf.Write(testFrame())
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMergeBoundaries(t *testing.T) {
	dir := t.TempDir()
	inputs := []Input{
		{ChapterID: "ch1", Title: "One", Path: writeFragment(t, dir, "ch1.mp3", 100)},
		{ChapterID: "ch2", Title: "Two", Path: writeFragment(t, dir, "ch2.mp3", 50)},
		{ChapterID: "ch3", Title: "Three", Path: writeFragment(t, dir, "ch3.mp3", 25)},
	}
	out := filepath.Join(dir, "master.mp3")

	m := New(logger.New("error"), nil, "")
	result, err := m.Merge(context.Background(), inputs, out)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}

	if len(result.Boundaries) != 3 {
		t.Fatalf("got %d boundaries, want 3", len(result.Boundaries))
	}

	// 100, 50, 25 frames at 36ms each.
	wantDur := []int64{3600, 1800, 900}
	var offset int64
	for i, b := range result.Boundaries {
		if b.StartMs != offset {
			t.Errorf("boundary %d StartMs = %d, want %d", i, b.StartMs, offset)
		}
		if b.DurationMs != wantDur[i] {
			t.Errorf("boundary %d DurationMs = %d, want %d", i, b.DurationMs, wantDur[i])
		}
		if b.EndMs != b.StartMs+b.DurationMs {
			t.Errorf("boundary %d EndMs = %d, want %d", i, b.EndMs, b.StartMs+b.DurationMs)
		}
		offset = b.EndMs
	}
	if result.TotalDurationMs != offset {
		t.Errorf("TotalDurationMs = %d, want %d", result.TotalDurationMs, offset)
	}

	// The merged file decodes to the same total duration.
	info, err := mp3.Probe(out)
	if err != nil {
		t.Fatalf("Probe(master) returned error: %v", err)
	}
	if info.DurationMs != result.TotalDurationMs {
		t.Errorf("master duration = %dms, want %dms", info.DurationMs, result.TotalDurationMs)
	}
	if info.Frames != 175 {
		t.Errorf("master frames = %d, want 175", info.Frames)
	}
}

func TestMergeSkipsMissingFragment(t *testing.T) {
	dir := t.TempDir()
	inputs := []Input{
		{ChapterID: "ch1", Title: "One", Path: writeFragment(t, dir, "ch1.mp3", 100)},
		{ChapterID: "ch2", Title: "Two", Path: filepath.Join(dir, "missing.mp3")},
		{ChapterID: "ch3", Title: "Three", Path: writeFragment(t, dir, "ch3.mp3", 50)},
	}
	out := filepath.Join(dir, "master.mp3")

	m := New(logger.New("error"), nil, "")
	result, err := m.Merge(context.Background(), inputs, out)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}

	if len(result.Boundaries) != 2 {
		t.Fatalf("got %d boundaries, want 2", len(result.Boundaries))
	}
	if result.Boundaries[0].ChapterID != "ch1" || result.Boundaries[1].ChapterID != "ch3" {
		t.Fatalf("unexpected boundary chapters: %+v", result.Boundaries)
	}
	// ch3 shifts earlier to fill the gap.
	if result.Boundaries[1].StartMs != 3600 {
		t.Errorf("ch3 StartMs = %d, want 3600", result.Boundaries[1].StartMs)
	}
	if result.TotalDurationMs != 5400 {
		t.Errorf("TotalDurationMs = %d, want 5400", result.TotalDurationMs)
	}
}

func TestMergeAllMissing(t *testing.T) {
	dir := t.TempDir()
	inputs := []Input{
		{ChapterID: "ch1", Path: filepath.Join(dir, "a.mp3")},
		{ChapterID: "ch2", Path: filepath.Join(dir, "b.mp3")},
	}

	m := New(logger.New("error"), nil, "")
	_, err := m.Merge(context.Background(), inputs, filepath.Join(dir, "master.mp3"))

	var composeErr *domain.ComposeError
	if !errors.As(err, &composeErr) {
		t.Fatalf("Merge error = %v, want *domain.ComposeError", err)
	}
	if composeErr.Stage != "audio" {
		t.Errorf("Stage = %q, want %q", composeErr.Stage, "audio")
	}
}

func TestMergeLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	inputs := []Input{
		{ChapterID: "ch1", Title: "One", Path: writeFragment(t, dir, "ch1.mp3", 10)},
	}
	out := filepath.Join(dir, "master.mp3")

	m := New(logger.New("error"), nil, "")
	if _, err := m.Merge(context.Background(), inputs, out); err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "ch1.mp3" && e.Name() != "master.mp3" {
			t.Errorf("unexpected leftover file: %s", e.Name())
		}
	}
}
