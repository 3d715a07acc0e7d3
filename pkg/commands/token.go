package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

func init() {
	var subject string
	var ttl time.Duration

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin JWT for the /internal API",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}
			if config.Auth.JwtSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			token, err := utils.GenerateAdminToken(config.Auth.JwtSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&subject, "subject", "operator", "Token subject")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
