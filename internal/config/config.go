package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	TTS     TTSConfig     `yaml:"tts"`
	Merge   MergeConfig   `yaml:"merge"`
	Batch   BatchConfig   `yaml:"batch"`
	Paths   PathsConfig   `yaml:"paths"`
	Logging LoggingConfig `yaml:"logging"`
}

type TTSConfig struct {
	Engine     string       `yaml:"engine"`      // "edge" or "gemini"
	BinaryPath string       `yaml:"binary_path"` // edge-tts executable
	Voice      string       `yaml:"voice"`
	Rate       int          `yaml:"rate"`   // -50 to +50 percent
	Pitch      int          `yaml:"pitch"`  // -50 to +50 Hz
	Volume     int          `yaml:"volume"` // 0 to 100
	Gemini     GeminiConfig `yaml:"gemini"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
}

type MergeConfig struct {
	// Bitrate re-encodes the merged audiobook through ffmpeg when set
	// (e.g. "128k"). Empty keeps the source frames untouched.
	Bitrate string `yaml:"bitrate"`
}

type BatchConfig struct {
	MaxRetries          int `yaml:"max_retries"`
	InterChapterDelayMS int `yaml:"inter_chapter_delay_ms"`
}

type PathsConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and validates a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Paths.Input == "" {
		return fmt.Errorf("paths.input is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}

	if c.TTS.Engine == "" {
		c.TTS.Engine = "edge"
	}
	if c.TTS.Engine != "edge" && c.TTS.Engine != "gemini" {
		return fmt.Errorf("tts.engine must be \"edge\" or \"gemini\", got %q", c.TTS.Engine)
	}
	if c.TTS.Engine == "gemini" && len(c.TTS.Gemini.APIKeys) == 0 {
		return fmt.Errorf("tts.gemini.api_keys is required for the gemini engine")
	}

	if c.TTS.BinaryPath == "" {
		c.TTS.BinaryPath = "edge-tts"
	}
	if c.TTS.Voice == "" {
		c.TTS.Voice = "vi-VN-HoaiMyNeural"
	}
	if c.TTS.Volume == 0 {
		c.TTS.Volume = 100
	}
	if c.TTS.Gemini.Model == "" {
		c.TTS.Gemini.Model = "gemini-2.5-flash-preview-tts"
	}
	if c.Batch.MaxRetries == 0 {
		c.Batch.MaxRetries = 3
	}
	if c.Batch.InterChapterDelayMS == 0 {
		c.Batch.InterChapterDelayMS = 500
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
