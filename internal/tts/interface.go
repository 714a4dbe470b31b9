package tts

import "context"

// Request describes one fragment generation call: the chapter text plus
// the destination paths for its audio and subtitle artifacts.
type Request struct {
	Text         string
	Voice        string
	Rate         int // -50 to +50 percent
	Pitch        int // -50 to +50 Hz
	Volume       int // 0 to 100
	AudioPath    string
	SubtitlePath string
}

// Engine defines the interface for speech synthesis providers
type Engine interface {
	Generate(ctx context.Context, req Request) error
}
