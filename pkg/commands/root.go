package commands

import (
	"encoding/json"
	"os"

	"github.com/prometheus/common/version"
	"github.com/spf13/cobra"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/configs"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

var (
	flagLogLevel string
	loadedConfig *configs.EnvConfig
)

// rootCmd는 리졸버 CLI 진입점입니다
var rootCmd = &cobra.Command{
	Use:           "resolver",
	Short:         "Dynamic backend resolver",
	Long:          "Detect the runtime environment, pick the healthiest backend and forward requests with failover.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := configs.LoadConfig()
		if err != nil {
			return err
		}
		level := config.Log.Level
		if flagLogLevel != "" {
			level = flagLogLevel
		}
		utils.InitLogger(level, config.Log.File)
		loadedConfig = config
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level override (debug|info|warn|error)")
	rootCmd.Version = version.Version
}

// Execute는 CLI를 실행합니다
func Execute() error {
	defer func() { _ = utils.Sync() }()
	return rootCmd.Execute()
}

func loadConfig() (*configs.EnvConfig, error) {
	if loadedConfig != nil {
		return loadedConfig, nil
	}
	return configs.LoadConfig()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
