package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/audiobook-flow/internal/batch"
	"github.com/nguyentantai21042004/audiobook-flow/internal/domain"
	"github.com/nguyentantai21042004/audiobook-flow/internal/id3"
	"github.com/nguyentantai21042004/audiobook-flow/internal/manifest"
	"github.com/nguyentantai21042004/audiobook-flow/internal/merger"
	"github.com/nguyentantai21042004/audiobook-flow/internal/subtitle"
)

const (
	masterAudioName    = "master_audiobook.mp3"
	masterSubtitleName = "master_subtitle.srt"
)

// Process runs the manifest end to end. Failed chapters are reported
// and skipped; the run errors only when nothing could be synthesized or
// the merge itself fails.
func (p *implProcessor) Process(ctx context.Context, manifestPath string) error {
	man, err := manifest.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	outRoot := filepath.Join(p.cfg.Paths.Output, man.BaseName())
	audioDir := filepath.Join(outRoot, "audio")
	subtitleDir := filepath.Join(outRoot, "subtitles")
	for _, dir := range []string{audioDir, subtitleDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	tasks := man.Tasks()
	p.logger.Info(ctx, "Processing %s: %d chapters -> %s", man.Book.Title, len(tasks), outRoot)

	orchestrator := batch.New(p.engine, batch.Options{
		MaxRetries:        p.cfg.Batch.MaxRetries,
		InterChapterDelay: time.Duration(p.cfg.Batch.InterChapterDelayMS) * time.Millisecond,
		AudioDir:          audioDir,
		SubtitleDir:       subtitleDir,
		Voice:             p.cfg.TTS.Voice,
		Rate:              p.cfg.TTS.Rate,
		Pitch:             p.cfg.TTS.Pitch,
		Volume:            p.cfg.TTS.Volume,
		Sink:              batch.LoggerSink(ctx, p.logger),
		Logger:            p.logger,
	})

	results, counts, err := orchestrator.Run(ctx, tasks)
	if err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}
	p.logger.Info(ctx, "Batch finished: %d succeeded, %d failed of %d",
		counts.Succeeded, counts.Failed, counts.Total)

	if counts.Succeeded == 0 {
		return fmt.Errorf("%s: %w", man.Book.Title, batch.ErrAllChaptersFailed)
	}

	masterAudio := filepath.Join(audioDir, masterAudioName)
	mergeResult, err := p.mergeAudio(ctx, results, masterAudio)
	if err != nil {
		return err
	}

	p.composeSubtitles(ctx, results, mergeResult.Boundaries, filepath.Join(subtitleDir, masterSubtitleName))
	p.tagChapters(ctx, masterAudio, mergeResult.Boundaries)

	p.logger.Info(ctx, "Audiobook complete: %s (%s)", masterAudio, formatDuration(mergeResult.TotalDurationMs))
	return nil
}

func (p *implProcessor) mergeAudio(ctx context.Context, results []domain.ChapterResult, outputPath string) (*merger.Result, error) {
	inputs := make([]merger.Input, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		inputs = append(inputs, merger.Input{
			ChapterID: r.ChapterID,
			Title:     r.Title,
			Path:      r.AudioPath,
		})
	}

	m := merger.New(p.logger, p.executor, p.cfg.Merge.Bitrate)
	result, err := m.Merge(ctx, inputs, outputPath)
	if err != nil {
		return nil, fmt.Errorf("merge audio: %w", err)
	}
	return result, nil
}

// composeSubtitles builds the master track from the merge boundaries so
// every cue lands at its chapter's exact audio offset. A failure here
// degrades the run, it does not abort it.
func (p *implProcessor) composeSubtitles(ctx context.Context, results []domain.ChapterResult, boundaries []domain.Boundary, outputPath string) {
	subtitleByChapter := make(map[string]string, len(results))
	for _, r := range results {
		if r.Success {
			subtitleByChapter[r.ChapterID] = r.SubtitlePath
		}
	}

	entries := make([]subtitle.Entry, 0, len(boundaries))
	for _, b := range boundaries {
		entries = append(entries, subtitle.Entry{
			ChapterID:    b.ChapterID,
			SubtitlePath: subtitleByChapter[b.ChapterID],
			DurationMs:   b.DurationMs,
		})
	}

	composer := subtitle.NewComposer(p.logger)
	if _, err := composer.ComposeFile(ctx, entries, outputPath); err != nil {
		var composeErr *domain.ComposeError
		if errors.As(err, &composeErr) {
			p.logger.Warn(ctx, "Master subtitle skipped: %v", err)
			return
		}
		p.logger.Error(ctx, "Master subtitle failed: %v", err)
	}
}

func (p *implProcessor) tagChapters(ctx context.Context, masterAudio string, boundaries []domain.Boundary) {
	chapters := make([]id3.Chapter, 0, len(boundaries))
	for _, b := range boundaries {
		chapters = append(chapters, id3.Chapter{
			Title:   b.Title,
			StartMs: b.StartMs,
			EndMs:   b.EndMs,
		})
	}

	if err := id3.WriteChapters(masterAudio, chapters); err != nil {
		p.logger.Warn(ctx, "Chapter tags skipped: %v", err)
		return
	}
	p.logger.Info(ctx, "Embedded %d chapter markers", len(chapters))
}

// formatDuration renders milliseconds as "1h 2m 3s" for summary lines.
func formatDuration(ms int64) string {
	total := ms / 1000
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
