package batch

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/audiobook-flow/internal/logger"
)

// EventType classifies progress messages emitted while a batch runs.
type EventType string

const (
	EventChapterStart  EventType = "chapter_start"
	EventAttempt       EventType = "attempt"
	EventRetryWait     EventType = "retry_wait"
	EventChapterDone   EventType = "chapter_done"
	EventChapterFailed EventType = "chapter_failed"
	EventProgress      EventType = "progress"
	EventMilestone     EventType = "milestone"
)

// Event is one progress update pushed to the caller's sink. The batch
// never exposes shared mutable state; everything a caller can observe
// arrives as one of these values.
type Event struct {
	Type      EventType
	RunID     string
	ChapterID string
	Title     string
	Index     int
	Total     int
	Attempt   int
	Wait      time.Duration
	Message   string
	Err       error
}

// Sink receives batch events. It is called from the batch goroutine, in
// order; implementations must not block for long.
type Sink func(Event)

// LoggerSink adapts the pipeline logger into an event sink producing
// human-readable progress lines.
func LoggerSink(ctx context.Context, log logger.Logger) Sink {
	return func(e Event) {
		switch e.Type {
		case EventChapterStart:
			log.Info(ctx, "[%d/%d] Processing chapter: %s", e.Index, e.Total, e.Title)
		case EventAttempt:
			log.Debug(ctx, "Chapter %s attempt %d", e.ChapterID, e.Attempt)
		case EventRetryWait:
			log.Warn(ctx, "Chapter %s failed: %v", e.ChapterID, e.Err)
			log.Info(ctx, "Retrying attempt %d in %s...", e.Attempt+1, e.Wait)
		case EventChapterDone:
			log.Info(ctx, "Chapter done: %s", e.Title)
		case EventChapterFailed:
			log.Error(ctx, "Chapter FAILED after %d attempts: %s: %v", e.Attempt, e.Title, e.Err)
		case EventProgress:
			log.Info(ctx, "Progress: %d / %d", e.Index, e.Total)
		case EventMilestone:
			log.Info(ctx, "%s", e.Message)
		}
	}
}
