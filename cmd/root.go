package cmd

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"crmtasks/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "crmtasks",
	Short:         "CRM follow-up task service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default $CONFIG_PATH or "+config.DefaultPath+")")
}

// loadConfig reads .env (if any) before the YAML config so env overrides apply.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}
	return config.LoadConfig(configPath)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("[cmd][err] %v", err)
		os.Exit(1)
	}
}
