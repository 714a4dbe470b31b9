package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/audiobook-flow/internal/config"
	"github.com/nguyentantai21042004/audiobook-flow/internal/logger"
	"github.com/nguyentantai21042004/audiobook-flow/internal/processor"
	"github.com/nguyentantai21042004/audiobook-flow/internal/tts"
	"github.com/nguyentantai21042004/audiobook-flow/pkg/executor"
)

// appContext holds lazily-built pipeline dependencies shared by the
// subcommands.
type appContext struct {
	configFlag *string
}

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := &appContext{configFlag: &configFlag}

	rootCmd := &cobra.Command{
		Use:           "audiobook",
		Short:         "Audiobook composition pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "config.yaml", "Configuration file path")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newVoicesCommand())
	rootCmd.AddCommand(newChaptersCommand())

	return rootCmd
}

func (c *appContext) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*c.configFlag)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// buildProcessor wires the engine selected by the config into a
// ready-to-run processor.
func (c *appContext) buildProcessor() (*config.Config, processor.Processor, logger.Logger, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	log := logger.New(cfg.Logging.Level)
	exec := executor.New()

	var engine tts.Engine
	switch cfg.TTS.Engine {
	case "gemini":
		engine = tts.NewGemini(cfg.TTS.Gemini.APIKeys, cfg.TTS.Gemini.Model, exec, log)
	default:
		engine = tts.NewEdge(cfg.TTS.BinaryPath, exec, log)
	}

	return cfg, processor.New(cfg, engine, exec, log), log, nil
}
