package cmd

import (
	"interview_prep_backend/internal/app"
	"interview_prep_backend/pkg/database"
	"interview_prep_backend/pkg/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		db, err := app.OpenStore(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()
		return database.Migrate(db)
	},
}
