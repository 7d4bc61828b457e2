// Package commands implements the graphlearn command line.
package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"graphlearn/internal/config"
	"graphlearn/internal/di"
	"graphlearn/internal/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configDir   string
	environment string
	sessionPath string
	watchConfig bool
)

var rootCmd = &cobra.Command{
	Use:   "graphlearn",
	Short: "Headless client for the graph learning platform",
	Long: `graphlearn browses, studies and edits knowledge graphs hosted on the
graph learning platform from the terminal.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", config.DirFromEnv(), "Directory holding base.yaml and <env>.yaml")
	rootCmd.PersistentFlags().StringVar(&environment, "env", string(config.EnvironmentFromEnv()), "Environment: development, staging, production, test")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", "", "Session database path (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&watchConfig, "watch-config", false, "Reload the log level when config files change")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// loadConfig applies the layered configuration and command line overrides.
func loadConfig() (*config.Config, *config.Loader, error) {
	loader := config.NewLoader(configDir, config.Environment(environment)).
		WithDotenv(filepath.Join(configDir, ".env"))
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	if sessionPath != "" {
		cfg.Session.Path = sessionPath
	}
	return cfg, loader, nil
}

// bootstrap builds the dependency container for a command.
func bootstrap(cmd *cobra.Command) (*di.Container, func(), error) {
	cfg, loader, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	notifier := ui.NewTerminalNotifier(cmd.InOrStdin(), cmd.OutOrStdout())
	container, cleanup, err := di.InitializeContainer(cmd.Context(), cfg, notifier)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize container: %w", err)
	}

	stop := func() {}
	if watchConfig {
		watcher, err := config.NewWatcher(loader, cfg, container.Logger.Named("config"))
		if err != nil {
			container.Logger.Warn("Config watcher unavailable", zap.Error(err))
		} else {
			container.Watch(watcher)
			stop = watcher.Stop
		}
	}

	container.Logger.Debug("Client initialized",
		zap.Strings("config_sources", cfg.LoadedFrom),
		zap.String("templates", cfg.Templates.Source),
	)
	return container, func() {
		stop()
		cleanup()
		_ = container.Logger.Sync()
	}, nil
}
