package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/forge3d/forge/engine/renderer"
)

var (
	logLevelFlag   string
	configPathFlag string
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "forge",
		Short:         "forge renders 3D scenes",
		Long:          "forge is a forward renderer built on WebGPU with a configurable frame pipeline.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(logLevelFlag)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level})))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&configPathFlag, "config", "", "path to a YAML renderer config file")

	root.AddCommand(newDemoCommand())
	root.AddCommand(newConfigCommand())

	return root
}

// parseLevel maps a level name to its slog value.
//
// Parameters:
//   - s: level name, case-insensitive
//
// Returns:
//   - slog.Level: the parsed level
//   - error: non-nil when the name is not recognized
func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// loadConfig assembles the renderer config from defaults, the environment,
// and the optional --config YAML file, in that order of precedence.
func loadConfig() (renderer.Config, error) {
	_ = godotenv.Load()

	cfg, err := renderer.ConfigFromEnv()
	if err != nil {
		return cfg, fmt.Errorf("failed to read config from environment: %w", err)
	}
	if configPathFlag != "" {
		if err := cfg.MergeYAMLFile(configPathFlag); err != nil {
			return cfg, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
