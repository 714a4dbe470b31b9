package tts

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/audiobook-flow/internal/logger"
	"github.com/nguyentantai21042004/audiobook-flow/internal/mp3"
	"github.com/nguyentantai21042004/audiobook-flow/internal/subtitle"
	"github.com/nguyentantai21042004/audiobook-flow/pkg/executor"
)

// Gemini returns raw 16-bit PCM at 24kHz mono.
const geminiPCMSampleRate = 24000

type implGemini struct {
	apiKeys    []string
	currentKey int
	model      string
	executor   executor.Executor
	logger     logger.Logger
}

// NewGemini creates an Engine that synthesizes speech through the Gemini
// audio models, rotating through the supplied API keys on quota errors.
// The provider has no subtitle stream, so cue timings are distributed
// over the measured audio duration, weighted by sentence length.
func NewGemini(apiKeys []string, model string, exec executor.Executor, log logger.Logger) Engine {
	return &implGemini{
		apiKeys:  apiKeys,
		model:    model,
		executor: exec,
		logger:   log,
	}
}

func (g *implGemini) Generate(ctx context.Context, req Request) error {
	if err := ensureParentDirs(req.AudioPath, req.SubtitlePath); err != nil {
		return err
	}

	text := CleanText(req.Text)

	pcm, err := g.synthesize(ctx, text, VoiceID(req.Voice))
	if err != nil {
		return err
	}

	// Encode the raw PCM stream to MP3 without touching disk twice.
	args := []string{
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", geminiPCMSampleRate),
		"-ac", "1",
		"-i", "-",
		"-b:a", "48k",
		"-y",
		req.AudioPath,
	}
	if _, err := g.executor.ExecuteInput(ctx, pcm, "ffmpeg", args...); err != nil {
		return fmt.Errorf("ffmpeg encode: %w", err)
	}

	if req.SubtitlePath == "" {
		return nil
	}

	info, err := mp3.Probe(req.AudioPath)
	if err != nil {
		return fmt.Errorf("probe generated audio: %w", err)
	}

	cues := sentenceCues(text, info.DurationMs)
	if err := os.WriteFile(req.SubtitlePath, []byte(subtitle.Render(cues)), 0644); err != nil {
		return fmt.Errorf("write subtitles: %w", err)
	}

	return nil
}

// synthesize requests audio content, rotating API keys on 429 / quota
// errors the same way summary generation does.
func (g *implGemini) synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}

	attempts := len(g.apiKeys)
	var lastErr error

	for range attempts {
		key := g.apiKeys[g.currentKey]

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			g.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(text), cfg)
		if err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", g.currentKey+1)
				g.rotateKey()
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("generate audio: %w", err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			for _, part := range result.Candidates[0].Content.Parts {
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					return part.InlineData.Data, nil
				}
			}
		}

		return nil, fmt.Errorf("empty audio response from Gemini")
	}

	return nil, fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *implGemini) rotateKey() {
	g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
}

var sentenceRe = regexp.MustCompile(`[^.!?…]+[.!?…]*`)

// sentenceCues splits text into sentences and assigns each a slice of
// the total duration proportional to its length.
func sentenceCues(text string, totalMs int64) []subtitle.Cue {
	sentences := sentenceRe.FindAllString(text, -1)

	var parts []string
	total := 0
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		parts = append(parts, s)
		total += len([]rune(s))
	}

	if len(parts) == 0 || total == 0 {
		return []subtitle.Cue{{StartMs: 0, EndMs: totalMs, Text: strings.TrimSpace(text)}}
	}

	cues := make([]subtitle.Cue, 0, len(parts))
	var cursor int64
	for i, s := range parts {
		end := cursor + totalMs*int64(len([]rune(s)))/int64(total)
		if i == len(parts)-1 {
			end = totalMs // absorb integer division remainder
		}
		cues = append(cues, subtitle.Cue{StartMs: cursor, EndMs: end, Text: s})
		cursor = end
	}

	return cues
}
