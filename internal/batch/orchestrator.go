package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/audiobook-flow/internal/domain"
	"github.com/nguyentantai21042004/audiobook-flow/internal/tts"
)

// ErrAllChaptersFailed reports a batch where no chapter succeeded; the
// merge stages are skipped in that case.
var ErrAllChaptersFailed = errors.New("all chapters failed")

// Run processes chapters in order with bounded retries and exponential
// backoff. Per-chapter failure never aborts the batch; the returned
// error is non-nil only when the context is cancelled.
func (o *implOrchestrator) Run(ctx context.Context, tasks []domain.ChapterTask) ([]domain.ChapterResult, Counts, error) {
	runID := uuid.NewString()
	total := len(tasks)
	results := make([]domain.ChapterResult, 0, total)
	counts := Counts{Total: total}

	for i, task := range tasks {
		// Cancellation is cooperative: checked between chapters, an
		// in-flight generation call is never preempted.
		select {
		case <-ctx.Done():
			return results, counts, ctx.Err()
		default:
		}

		o.sink(Event{Type: EventChapterStart, RunID: runID, ChapterID: task.ID,
			Title: task.Title, Index: i + 1, Total: total})

		result, err := o.runChapter(ctx, runID, task)
		if err != nil {
			// Only context errors escape a chapter run.
			return results, counts, err
		}

		if result.Success {
			counts.Succeeded++
			o.sink(Event{Type: EventChapterDone, RunID: runID, ChapterID: task.ID,
				Title: task.Title, Attempt: result.Attempts})
		} else {
			counts.Failed++
			o.sink(Event{Type: EventChapterFailed, RunID: runID, ChapterID: task.ID,
				Title: task.Title, Attempt: result.Attempts, Err: result.Err})
		}
		results = append(results, result)

		o.sink(Event{Type: EventProgress, RunID: runID, Index: i + 1, Total: total})

		// Fixed pause between successful chapters so the provider's
		// rate limits are respected; a failed chapter already spent
		// its backoff waits.
		if result.Success && i < total-1 && o.opts.InterChapterDelay > 0 {
			if err := o.sleep(ctx, o.opts.InterChapterDelay); err != nil {
				return results, counts, err
			}
		}
	}

	return results, counts, nil
}

// runChapter walks one chapter through the retry state machine.
func (o *implOrchestrator) runChapter(ctx context.Context, runID string, task domain.ChapterTask) (domain.ChapterResult, error) {
	base := task.BaseName()
	result := domain.ChapterResult{
		ChapterID:    task.ID,
		Title:        task.Title,
		AudioPath:    filepath.Join(o.opts.AudioDir, base+".mp3"),
		SubtitlePath: filepath.Join(o.opts.SubtitleDir, base+".srt"),
	}

	state := StatePending
	var lastErr error

	for attempt := 0; attempt < o.opts.MaxRetries; attempt++ {
		state = advance(state, StateAttempting)
		result.Attempts = attempt + 1
		o.sink(Event{Type: EventAttempt, RunID: runID, ChapterID: task.ID,
			Title: task.Title, Attempt: attempt + 1})

		err := o.engine.Generate(ctx, tts.Request{
			Text:         task.Text,
			Voice:        o.opts.Voice,
			Rate:         o.opts.Rate,
			Pitch:        o.opts.Pitch,
			Volume:       o.opts.Volume,
			AudioPath:    result.AudioPath,
			SubtitlePath: result.SubtitlePath,
		})
		if err == nil {
			state = advance(state, StateSucceeded)
			result.Success = true
			return result, nil
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		lastErr = err

		if attempt < o.opts.MaxRetries-1 {
			wait := time.Duration(1<<attempt) * time.Second
			o.sink(Event{Type: EventRetryWait, RunID: runID, ChapterID: task.ID,
				Title: task.Title, Attempt: attempt + 1, Wait: wait, Err: err})
			// Backoff is an interruptible suspension point.
			if err := o.sleep(ctx, wait); err != nil {
				return result, err
			}
			state = advance(state, StatePending)
		} else {
			state = advance(state, StateFailed)
		}
	}

	result.Err = &domain.GenerationError{
		ChapterID: task.ID,
		Title:     task.Title,
		Attempts:  result.Attempts,
		Err:       lastErr,
	}

	// Later stages treat a failed chapter as absent; drop partial files.
	os.Remove(result.AudioPath)
	os.Remove(result.SubtitlePath)

	return result, nil
}

func advance(from, to State) State {
	if !validTransition(from, to) {
		return from
	}
	return to
}
