package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"crmtasks/internal/authz"
	"crmtasks/internal/middleware"
)

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key <service-key>",
	Short: "Print the bcrypt hash to put in auth.service_key_hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(hash))
		return nil
	},
}

var (
	tokenUserID int
	tokenRoleID int
	tokenTenant string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed access token with auth.jwt_secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is not configured")
		}
		tok, err := middleware.IssueToken([]byte(cfg.Auth.JWTSecret), tokenUserID, tokenRoleID, tokenTenant, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().IntVar(&tokenUserID, "user", 1, "user id claim")
	tokenCmd.Flags().IntVar(&tokenRoleID, "role", authz.RoleSales, "role id claim")
	tokenCmd.Flags().StringVar(&tokenTenant, "tenant", "", "tenant id claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(hashKeyCmd, tokenCmd)
}
