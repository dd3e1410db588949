package cmd

import (
	"github.com/spf13/cobra"

	"crmtasks/internal/app"
	"crmtasks/internal/migrations"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status|version|reset]",
	Short:     "Apply or inspect database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status", "version", "reset"},
	RunE: func(cmd *cobra.Command, args []string) error {
		command := "up"
		if len(args) == 1 {
			command = args[0]
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := app.OpenDB(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		return migrations.Run(db.DB, command)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
