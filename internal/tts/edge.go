package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/audiobook-flow/internal/logger"
	"github.com/nguyentantai21042004/audiobook-flow/pkg/executor"
)

type implEdge struct {
	binary   string
	executor executor.Executor
	logger   logger.Logger
}

// NewEdge creates an Engine backed by the edge-tts command line tool.
// The tool streams audio and word boundary events from the provider and
// writes both the MP3 and the SRT file itself.
func NewEdge(binary string, exec executor.Executor, log logger.Logger) Engine {
	return &implEdge{
		binary:   binary,
		executor: exec,
		logger:   log,
	}
}

func (e *implEdge) Generate(ctx context.Context, req Request) error {
	if err := ensureParentDirs(req.AudioPath, req.SubtitlePath); err != nil {
		return err
	}

	args := []string{
		"--voice", VoiceID(req.Voice),
		"--rate", FormatRate(req.Rate),
		"--pitch", FormatPitch(req.Pitch),
		"--volume", FormatVolume(req.Volume),
		"--text", CleanText(req.Text),
		"--write-media", req.AudioPath,
	}
	if req.SubtitlePath != "" {
		args = append(args, "--write-subtitles", req.SubtitlePath)
	}

	e.logger.Debug(ctx, "edge-tts voice=%s rate=%s -> %s",
		VoiceID(req.Voice), FormatRate(req.Rate), filepath.Base(req.AudioPath))

	if _, err := e.executor.Execute(ctx, e.binary, args...); err != nil {
		return fmt.Errorf("edge-tts generate: %w", err)
	}

	// The tool exits zero even when the stream produced nothing.
	stat, err := os.Stat(req.AudioPath)
	if err != nil || stat.Size() == 0 {
		return fmt.Errorf("edge-tts produced no audio for %s", filepath.Base(req.AudioPath))
	}

	return nil
}

func ensureParentDirs(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return nil
}
