package cmd

import (
	"github.com/spf13/cobra"

	"crmtasks/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the task API, the today dashboard and the realtime feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return app.Run(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
