package cmd

import (
	"path/filepath"

	"interview_prep_backend/internal/config"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "interview-prep",
	Short:        "Interview practice backend",
	Long:         "HTTP service that scores interview answers and reports performance analytics per session and per user.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "configs", "Config directory or YAML file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(rebuildCmd)
}

// loadConfig 读取 --config 指定的配置，同时返回实际的文件路径
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, "", err
	}
	file := path
	if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
		file = filepath.Join(path, "config.yaml")
	}
	return cfg, file, nil
}
