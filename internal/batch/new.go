package batch

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/audiobook-flow/internal/logger"
	"github.com/nguyentantai21042004/audiobook-flow/internal/tts"
)

// Options configures one batch run.
type Options struct {
	MaxRetries        int
	InterChapterDelay time.Duration
	AudioDir          string
	SubtitleDir       string
	Voice             string
	Rate              int
	Pitch             int
	Volume            int
	Sink              Sink
	Logger            logger.Logger
}

type implOrchestrator struct {
	engine tts.Engine
	opts   Options
	sink   Sink
	logger logger.Logger

	// sleep is ctx-aware so backoff waits stay cancellable; tests
	// replace it to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an Orchestrator instance
func New(engine tts.Engine, opts Options) Orchestrator {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}

	sink := opts.Sink
	if sink == nil {
		sink = func(Event) {}
	}

	return &implOrchestrator{
		engine: engine,
		opts:   opts,
		sink:   sink,
		logger: opts.Logger,
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
