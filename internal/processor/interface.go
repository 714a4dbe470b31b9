package processor

import "context"

// Processor runs the full pipeline for one manifest file: chapter
// synthesis, audio merge, chapter tagging and master subtitle
// composition.
type Processor interface {
	Process(ctx context.Context, manifestPath string) error
}
