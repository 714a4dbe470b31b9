package domain

import (
	"errors"
	"fmt"
)

// ErrInputMissing marks a source file (audio fragment or subtitle
// track) expected on disk but not found.
var ErrInputMissing = errors.New("input file missing")

// GenerationError is the terminal failure of one chapter after every
// retry was spent.
type GenerationError struct {
	ChapterID string
	Title     string
	Attempts  int
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("chapter %s (%s) failed after %d attempts: %v", e.ChapterID, e.Title, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ComposeError reports a failure assembling a master artifact. Stage is
// "audio" or "subtitle".
type ComposeError struct {
	Stage string
	Err   error
}

func (e *ComposeError) Error() string {
	return fmt.Sprintf("compose %s: %v", e.Stage, e.Err)
}

func (e *ComposeError) Unwrap() error { return e.Err }

// TagEncodeError reports a failure writing chapter metadata into the
// merged file.
type TagEncodeError struct {
	Path string
	Err  error
}

func (e *TagEncodeError) Error() string {
	return fmt.Sprintf("tag %s: %v", e.Path, e.Err)
}

func (e *TagEncodeError) Unwrap() error { return e.Err }
