package commands

import (
	"github.com/spf13/cobra"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/router"
)

func init() {
	detectCmd := &cobra.Command{
		Use:   "detect",
		Short: "Print the detected environment as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}
			detector, err := router.NewDetector(config)
			if err != nil {
				return err
			}
			return printJSON(detector.Detect())
		},
	}
	rootCmd.AddCommand(detectCmd)
}
