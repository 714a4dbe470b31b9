package processor

import (
	"github.com/nguyentantai21042004/audiobook-flow/internal/config"
	"github.com/nguyentantai21042004/audiobook-flow/internal/logger"
	"github.com/nguyentantai21042004/audiobook-flow/internal/tts"
	"github.com/nguyentantai21042004/audiobook-flow/pkg/executor"
)

type implProcessor struct {
	cfg      *config.Config
	engine   tts.Engine
	executor executor.Executor
	logger   logger.Logger
}

// New creates a Processor instance
func New(cfg *config.Config, engine tts.Engine, exec executor.Executor, log logger.Logger) Processor {
	return &implProcessor{
		cfg:      cfg,
		engine:   engine,
		executor: exec,
		logger:   log,
	}
}
