package tts

import (
	"fmt"
	"regexp"
	"strings"
)

// Voice is one known narration voice.
type Voice struct {
	Name string // display name
	ID   string // provider voice id
}

// Known Vietnamese narration voices, in menu order.
var voices = []Voice{
	{Name: "HoaiMy (Nữ)", ID: "vi-VN-HoaiMyNeural"},
	{Name: "NamMinh (Nam)", ID: "vi-VN-NamMinhNeural"},
}

// Voices returns the known voice table.
func Voices() []Voice {
	out := make([]Voice, len(voices))
	copy(out, voices)
	return out
}

// VoiceID maps a display name to its provider voice id. Unknown names
// pass through unchanged so raw provider ids keep working.
func VoiceID(name string) string {
	for _, v := range voices {
		if v.Name == name {
			return v.ID
		}
	}
	return name
}

// FormatRate clamps a rate percentage to [-50, 50] and renders it the
// way the provider expects ("+10%", "-5%").
func FormatRate(percent int) string {
	return fmt.Sprintf("%+d%%", clamp(percent, -50, 50))
}

// FormatPitch clamps a pitch shift to [-50, 50] Hz.
func FormatPitch(hz int) string {
	return fmt.Sprintf("%+dHz", clamp(hz, -50, 50))
}

// FormatVolume converts an absolute 0-100 volume to the provider's
// relative form: 100 is "+0%", lower values attenuate.
func FormatVolume(percent int) string {
	return fmt.Sprintf("%+d%%", clamp(percent, 0, 100)-100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText prepares raw chapter text for synthesis: collapses runs of
// whitespace and strips control characters that confuse providers.
func CleanText(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r >= 0x20 || r == ' ' {
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String())
}
