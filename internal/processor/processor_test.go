package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/audiobook-flow/internal/batch"
	"github.com/nguyentantai21042004/audiobook-flow/internal/config"
	"github.com/nguyentantai21042004/audiobook-flow/internal/id3"
	"github.com/nguyentantai21042004/audiobook-flow/internal/logger"
	"github.com/nguyentantai21042004/audiobook-flow/internal/tts"
)

// fakeEngine writes a real MP3 stream (100 frames at 36ms each, 3600ms)
// plus a one-cue subtitle track per chapter.
type fakeEngine struct {
	failAll bool
}

func (f *fakeEngine) Generate(_ context.Context, req tts.Request) error {
	if f.failAll {
		return errors.New("synthesis unavailable")
	}

	var buf bytes.Buffer
	for range 100 {
		frame := make([]byte, 288)
		frame[0] = 0xFF
		frame[1] = 0xFB
		frame[2] = 0x58
		frame[3] = 0xC0
		buf.Write(frame)
	}
	if err := os.WriteFile(req.AudioPath, buf.Bytes(), 0644); err != nil {
		return err
	}

	srt := "1\n00:00:00,000 --> 00:00:03,600\nHello there.\n"
	return os.WriteFile(req.SubtitlePath, []byte(srt), 0644)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Paths.Input = dir
	cfg.Paths.Output = filepath.Join(dir, "out")
	cfg.Batch.MaxRetries = 2
	return cfg
}

func writeManifest(t *testing.T, dir string, chapters int) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("book:\n  title: Test Book\n  author: Someone\nchapters:\n")
	for i := 1; i <= chapters; i++ {
		fmt.Fprintf(&b, "  - id: ch%d\n    title: Chapter %d\n    text: Hello from chapter %d.\n", i, i, i)
	}

	path := filepath.Join(dir, "book.yaml")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	manPath := writeManifest(t, cfg.Paths.Input, 3)

	p := New(cfg, &fakeEngine{}, nil, logger.New("error"))
	if err := p.Process(context.Background(), manPath); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	outRoot := filepath.Join(cfg.Paths.Output, "Test Book")
	masterAudio := filepath.Join(outRoot, "audio", "master_audiobook.mp3")
	masterSub := filepath.Join(outRoot, "subtitles", "master_subtitle.srt")

	if _, err := os.Stat(masterAudio); err != nil {
		t.Fatalf("master audio missing: %v", err)
	}

	chapters, err := id3.ReadChapters(masterAudio)
	if err != nil {
		t.Fatalf("ReadChapters returned error: %v", err)
	}
	if len(chapters) != 3 {
		t.Fatalf("got %d embedded chapters, want 3", len(chapters))
	}
	for i, ch := range chapters {
		wantStart := int64(i) * 3600
		if ch.StartMs != wantStart {
			t.Errorf("chapter %d StartMs = %d, want %d", i, ch.StartMs, wantStart)
		}
		if ch.EndMs != wantStart+3600 {
			t.Errorf("chapter %d EndMs = %d, want %d", i, ch.EndMs, wantStart+3600)
		}
	}

	data, err := os.ReadFile(masterSub)
	if err != nil {
		t.Fatalf("master subtitle missing: %v", err)
	}
	content := string(data)

	// Each chapter contributed one cue, renumbered and shifted by the
	// preceding chapters' exact audio durations.
	for _, want := range []string{
		"1\n00:00:00,000 --> 00:00:03,600",
		"2\n00:00:03,600 --> 00:00:07,200",
		"3\n00:00:07,200 --> 00:00:10,800",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("master subtitle missing %q:\n%s", want, content)
		}
	}
}

func TestProcessAllChaptersFail(t *testing.T) {
	cfg := testConfig(t)
	cfg.Batch.MaxRetries = 1 // no backoff, keeps the test fast
	manPath := writeManifest(t, cfg.Paths.Input, 2)

	p := New(cfg, &fakeEngine{failAll: true}, nil, logger.New("error"))
	err := p.Process(context.Background(), manPath)
	if !errors.Is(err, batch.ErrAllChaptersFailed) {
		t.Fatalf("Process error = %v, want batch.ErrAllChaptersFailed", err)
	}
}

func TestProcessMissingManifest(t *testing.T) {
	cfg := testConfig(t)

	p := New(cfg, &fakeEngine{}, nil, logger.New("error"))
	err := p.Process(context.Background(), filepath.Join(cfg.Paths.Input, "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0s"},
		{59000, "59s"},
		{61000, "1m 1s"},
		{3723000, "1h 2m 3s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.ms); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}
