package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// ChapterTask is one unit of synthesis work: a chapter (or part of one)
// with the text to voice.
type ChapterTask struct {
	ID    string
	Title string
	Part  int
	Text  string
}

// BaseName derives the on-disk name for this chapter's artifacts,
// filtered down to characters that are safe across filesystems.
func (t ChapterTask) BaseName() string {
	raw := fmt.Sprintf("%s_%s_Part%d", t.ID, t.Title, t.Part)

	var b strings.Builder
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// ChapterResult records the outcome of one chapter's synthesis. Paths
// are where the artifacts were written; on failure they have been
// removed and Err carries the final error.
type ChapterResult struct {
	ChapterID    string
	Title        string
	AudioPath    string
	SubtitlePath string
	Success      bool
	Attempts     int
	Err          error
}

// Boundary is one chapter's placement inside the merged audiobook, in
// milliseconds from the start of the master file.
type Boundary struct {
	ChapterID  string
	Title      string
	StartMs    int64
	EndMs      int64
	DurationMs int64
}
