package commands

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/common/version"
	"github.com/spf13/cobra"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/router"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the resolver HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			printSystemInfo()
			utils.Infof("리졸버 시작 중 (%s)", version.Info())

			resolver := router.NewResolverService(config, version.Version)
			if err := resolver.Start(cmd.Context()); err != nil {
				return err
			}

			// 우아한 종료 처리
			signalCh := make(chan os.Signal, 1)
			signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(signalCh)

			<-signalCh
			utils.Info("종료 신호 감지. 서버를 종료합니다...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := resolver.Shutdown(ctx); err != nil {
				return err
			}
			utils.Info("서버가 안전하게 종료되었습니다.")
			return nil
		},
	}
	rootCmd.AddCommand(serveCmd)
}

// 시스템 정보 출력
func printSystemInfo() {
	utils.Infof("시스템 정보: %s/%s", runtime.GOOS, runtime.GOARCH)
	utils.Infof("Go 버전: %s, 코어 수: %d", runtime.Version(), runtime.NumCPU())
	utils.Debugf("GOMAXPROCS: %d", runtime.GOMAXPROCS(0))
}
