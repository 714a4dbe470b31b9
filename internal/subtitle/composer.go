// Package subtitle composes per-chapter SRT files into one time-aligned
// master track by shifting every cue by its chapter's cumulative offset.
package subtitle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/audiobook-flow/internal/domain"
	"github.com/nguyentantai21042004/audiobook-flow/internal/logger"
)

// Entry is one chapter's contribution: its subtitle file and the exact
// decoded duration of its audio. Durations must be the same values the
// audio concatenator measured, so subtitle offsets land exactly on the
// chapter boundaries of the merged audiobook.
type Entry struct {
	ChapterID    string
	SubtitlePath string
	DurationMs   int64
}

// Cue is one subtitle entry used when rendering generated tracks.
type Cue struct {
	StartMs int64
	EndMs   int64
	Text    string
}

var blockSplitRe = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)

type Composer struct {
	logger logger.Logger
}

// NewComposer creates a new Composer instance
func NewComposer(log logger.Logger) *Composer {
	return &Composer{logger: log}
}

// ComposeFile writes the master subtitle track for the given chapters,
// returning the number of cues written.
func (c *Composer) ComposeFile(ctx context.Context, entries []Entry, outputPath string) (int, error) {
	content, count, err := c.compose(ctx, entries)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return 0, &domain.ComposeError{Stage: "subtitle", Err: err}
	}
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return 0, &domain.ComposeError{Stage: "subtitle", Err: err}
	}

	c.logger.Info(ctx, "Master subtitle written: %s (%d cues, %d chapters)",
		outputPath, count, len(entries))
	return count, nil
}

func (c *Composer) compose(ctx context.Context, entries []Entry) (string, int, error) {
	var master []string
	index := 1
	var offsetMs int64

	for _, entry := range entries {
		content, err := os.ReadFile(entry.SubtitlePath)
		if err != nil {
			// The chapter's audio still occupies its time range, so its
			// duration must advance the offset even when the file is gone.
			c.logger.Warn(ctx, "Subtitle file missing for chapter %s, skipping: %v",
				entry.ChapterID, err)
			offsetMs += entry.DurationMs
			continue
		}

		blocks := adjustBlocks(string(content), offsetMs, index)
		master = append(master, blocks...)
		index += len(blocks)
		offsetMs += entry.DurationMs
	}

	if len(master) == 0 {
		return "", 0, &domain.ComposeError{
			Stage: "subtitle",
			Err:   fmt.Errorf("no chapter contributed a valid subtitle block"),
		}
	}

	return strings.Join(master, "\n\n") + "\n", index - 1, nil
}

// adjustBlocks shifts every well-formed block of one chapter's SRT
// content by offsetMs and renumbers from startIndex. Malformed blocks
// are dropped silently.
func adjustBlocks(content string, offsetMs int64, startIndex int) []string {
	blocks := blockSplitRe.Split(strings.TrimSpace(content), -1)
	adjusted := make([]string, 0, len(blocks))
	index := startIndex

	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}

		// The timing line is the first line containing the arrow, so
		// blocks without an index line still parse.
		timingAt := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				timingAt = i
				break
			}
		}
		if timingAt < 0 {
			continue
		}

		parts := strings.SplitN(lines[timingAt], "-->", 2)
		start, okStart := ParseTimestamp(strings.TrimSpace(parts[0]))
		end, okEnd := ParseTimestamp(strings.TrimSpace(parts[1]))
		if !okStart || !okEnd {
			continue
		}

		rebuilt := fmt.Sprintf("%d\n%s --> %s", index,
			FormatTimestamp(start+offsetMs), FormatTimestamp(end+offsetMs))
		if timingAt+1 < len(lines) {
			rebuilt += "\n" + strings.Join(lines[timingAt+1:], "\n")
		}

		adjusted = append(adjusted, rebuilt)
		index++
	}

	return adjusted
}

// Render formats generated cues as an SRT document with 1-based indices.
func Render(cues []Cue) string {
	blocks := make([]string, 0, len(cues))
	for i, cue := range cues {
		blocks = append(blocks, fmt.Sprintf("%d\n%s --> %s\n%s",
			i+1, FormatTimestamp(cue.StartMs), FormatTimestamp(cue.EndMs), cue.Text))
	}
	return strings.Join(blocks, "\n\n") + "\n"
}
