package cmd

import (
	"fmt"

	"interview_prep_backend/internal/analytics"
	"interview_prep_backend/internal/app"
	"interview_prep_backend/internal/repository"
	"interview_prep_backend/internal/service"
	"interview_prep_backend/pkg/database"
	"interview_prep_backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute cached session aggregates from the feedback log",
	Long: "Replays every feedback record and overwrites the stored metrics, category performance, " +
		"insights and learning path of each session. Use --session to rebuild a single session.",
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
		if err := database.Migrate(db); err != nil {
			return err
		}

		engine := analytics.NewEngine(analytics.Tunables{
			TrendThreshold: cfg.Analytics.TrendThreshold,
			InsightListCap: cfg.Analytics.InsightListCap,
		})
		// 重算不调用评估器
		svc := service.NewInterviewService(db,
			repository.NewSessionRepository(db),
			repository.NewFeedbackRepository(db),
			nil, engine, nil, nil)

		ctx := cmd.Context()
		if id, _ := cmd.Flags().GetString("session"); id != "" {
			s, err := svc.RebuildSession(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rebuilt session %s: %d answers, overall %d\n",
				s.ID, s.AnsweredQuestions, s.PerformanceMetrics.OverallScore)
			return nil
		}

		n, err := svc.RebuildAll(ctx)
		if err != nil {
			logger.L().Error("Rebuild aborted", zap.Int("rebuilt", n), zap.Error(err))
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rebuilt %d sessions\n", n)
		return nil
	},
}

func init() {
	rebuildCmd.Flags().String("session", "", "Rebuild only this session id")
}
