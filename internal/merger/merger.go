package merger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/audiobook-flow/internal/domain"
	"github.com/nguyentantai21042004/audiobook-flow/internal/logger"
	"github.com/nguyentantai21042004/audiobook-flow/internal/mp3"
	"github.com/nguyentantai21042004/audiobook-flow/pkg/executor"
)

// Input is one chapter fragment to place in the master file, in order.
type Input struct {
	ChapterID string
	Title     string
	Path      string
}

// Result describes the merged master file. Boundaries holds one entry
// per fragment that was actually merged, with exact decoded timings.
type Result struct {
	OutputPath      string
	Boundaries      []domain.Boundary
	TotalDurationMs int64
}

// Merger joins chapter fragments into a single MP3 by frame copy. When
// a target bitrate is set, the joined file is re-encoded through ffmpeg
// so the output has one uniform stream.
type Merger struct {
	logger   logger.Logger
	executor executor.Executor
	bitrate  string
}

func New(log logger.Logger, exec executor.Executor, bitrate string) *Merger {
	return &Merger{logger: log, executor: exec, bitrate: bitrate}
}

// Merge concatenates the inputs into outputPath. A missing fragment is
// skipped with a warning; its chapter gets no boundary and the chapters
// after it shift earlier. At least one fragment must survive.
func (m *Merger) Merge(ctx context.Context, inputs []Input, outputPath string) (*Result, error) {
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".merge-*.mp3")
	if err != nil {
		return nil, &domain.ComposeError{Stage: "audio", Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	result := &Result{OutputPath: outputPath}
	var offset int64

	for _, in := range inputs {
		if _, statErr := os.Stat(in.Path); statErr != nil {
			m.logger.Warn(ctx, "Skipping chapter %s: %v", in.ChapterID,
				fmt.Errorf("%s: %w", in.Path, domain.ErrInputMissing))
			continue
		}

		info, appendErr := mp3.AppendFrames(tmp, in.Path)
		if appendErr != nil {
			tmp.Close()
			return nil, &domain.ComposeError{
				Stage: "audio",
				Err:   fmt.Errorf("append %s: %w", in.Path, appendErr),
			}
		}

		result.Boundaries = append(result.Boundaries, domain.Boundary{
			ChapterID:  in.ChapterID,
			Title:      in.Title,
			StartMs:    offset,
			EndMs:      offset + info.DurationMs,
			DurationMs: info.DurationMs,
		})
		offset += info.DurationMs
		m.logger.Debug(ctx, "Merged chapter %s: %dms at offset %dms", in.ChapterID, info.DurationMs, result.Boundaries[len(result.Boundaries)-1].StartMs)
	}

	if closeErr := tmp.Close(); closeErr != nil {
		return nil, &domain.ComposeError{Stage: "audio", Err: closeErr}
	}

	if len(result.Boundaries) == 0 {
		return nil, &domain.ComposeError{
			Stage: "audio",
			Err:   errors.New("no fragments available to merge"),
		}
	}
	result.TotalDurationMs = offset

	if m.bitrate != "" {
		if err := m.reencode(ctx, tmpPath, outputPath); err != nil {
			return nil, &domain.ComposeError{Stage: "audio", Err: err}
		}
		return result, nil
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		return nil, &domain.ComposeError{Stage: "audio", Err: err}
	}
	return result, nil
}

// reencode rewrites the frame-copied file as one uniform stream. The
// boundary timings are preserved: ffmpeg keeps the sample count, only
// the frame layout changes.
func (m *Merger) reencode(ctx context.Context, src, dst string) error {
	m.logger.Info(ctx, "Re-encoding master file at %s", m.bitrate)
	_, err := m.executor.Execute(ctx, "ffmpeg",
		"-i", src,
		"-c:a", "libmp3lame",
		"-b:a", m.bitrate,
		"-y", dst,
	)
	return err
}
