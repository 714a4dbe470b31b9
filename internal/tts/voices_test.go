package tts

import "testing"

func TestVoiceID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"known display name", "HoaiMy (Nữ)", "vi-VN-HoaiMyNeural"},
		{"second display name", "NamMinh (Nam)", "vi-VN-NamMinhNeural"},
		{"raw id passes through", "vi-VN-HoaiMyNeural", "vi-VN-HoaiMyNeural"},
		{"unknown passes through", "en-US-AriaNeural", "en-US-AriaNeural"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VoiceID(tt.in); got != tt.want {
				t.Errorf("VoiceID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "+0%"},
		{10, "+10%"},
		{-5, "-5%"},
		{80, "+50%"},
		{-80, "-50%"},
	}

	for _, tt := range tests {
		if got := FormatRate(tt.in); got != tt.want {
			t.Errorf("FormatRate(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPitch(t *testing.T) {
	if got := FormatPitch(12); got != "+12Hz" {
		t.Errorf("FormatPitch(12) = %q", got)
	}
	if got := FormatPitch(-100); got != "-50Hz" {
		t.Errorf("FormatPitch(-100) = %q", got)
	}
}

func TestFormatVolume(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{100, "+0%"},
		{50, "-50%"},
		{0, "-100%"},
		{150, "+0%"},
	}

	for _, tt := range tests {
		if got := FormatVolume(tt.in); got != tt.want {
			t.Errorf("FormatVolume(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapse whitespace", "a  b\t\tc\n\nd", "a b c d"},
		{"trim", "  xin chào  ", "xin chào"},
		{"keeps vietnamese", "Truyện thử nghiệm!", "Truyện thử nghiệm!"},
		{"strips control chars", "a\x00b\x07c", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSentenceCues(t *testing.T) {
	cues := sentenceCues("Câu một. Câu hai dài hơn nhiều! Câu ba?", 10000)

	if len(cues) != 3 {
		t.Fatalf("cues = %d, want 3", len(cues))
	}
	if cues[0].StartMs != 0 {
		t.Errorf("first cue starts at %d, want 0", cues[0].StartMs)
	}
	if cues[len(cues)-1].EndMs != 10000 {
		t.Errorf("last cue ends at %d, want 10000", cues[len(cues)-1].EndMs)
	}
	for i := 1; i < len(cues); i++ {
		if cues[i].StartMs != cues[i-1].EndMs {
			t.Errorf("cue %d start %d != previous end %d", i, cues[i].StartMs, cues[i-1].EndMs)
		}
	}
}

func TestSentenceCuesNoPunctuation(t *testing.T) {
	cues := sentenceCues("một đoạn không dấu câu", 3000)

	if len(cues) != 1 {
		t.Fatalf("cues = %d, want 1", len(cues))
	}
	if cues[0].StartMs != 0 || cues[0].EndMs != 3000 {
		t.Errorf("cue = %+v, want full span", cues[0])
	}
}
