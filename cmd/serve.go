package cmd

import (
	"context"
	"os"

	"interview_prep_backend/internal/app"
	"interview_prep_backend/pkg/configwatcher"
	"interview_prep_backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().Bool("watch-config", true, "Reload analytics tunables when the config file changes")
}

func runServe(cmd *cobra.Command) error {
	cfg, file, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		return err
	}

	watch := true
	if f := cmd.Flags().Lookup("watch-config"); f != nil {
		watch, _ = cmd.Flags().GetBool("watch-config")
	}
	if _, statErr := os.Stat(file); watch && statErr == nil {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := configwatcher.WatchConfig(ctx, file, application.ApplyConfig); err != nil {
				logger.L().Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	return application.Run()
}
