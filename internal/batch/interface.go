package batch

import (
	"context"

	"github.com/nguyentantai21042004/audiobook-flow/internal/domain"
)

// Counts summarizes a finished batch.
type Counts struct {
	Total     int
	Succeeded int
	Failed    int
}

// Orchestrator drives fragment generation for an ordered chapter list.
// Chapters run strictly one at a time; a chapter that exhausts its
// retries is recorded as failed and the batch continues.
type Orchestrator interface {
	Run(ctx context.Context, tasks []domain.ChapterTask) ([]domain.ChapterResult, Counts, error)
}
