package commands

import (
	"github.com/spf13/cobra"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/router"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/services"
)

func init() {
	probeCmd := &cobra.Command{
		Use:   "probe [urls...]",
		Short: "Probe backends (default: the detected environment's candidates)",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			urls := args
			if len(urls) == 0 {
				detector, err := router.NewDetector(config)
				if err != nil {
					return err
				}
				urls = detector.Detect().Backends
			}

			health := services.NewHealthService(services.WithProbeTimeout(config.Health.Timeout))
			return printJSON(health.CheckMultipleEndpoints(cmd.Context(), urls))
		},
	}
	rootCmd.AddCommand(probeCmd)
}
