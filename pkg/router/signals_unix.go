//go:build !windows

package router

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

// watchMonitoringSignals는 SIGUSR1로 헬스 모니터링을 멈추고 SIGUSR2로 재개합니다
func (rs *ResolverService) watchMonitoringSignals(stopCh <-chan struct{}) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(signalCh)

	for {
		select {
		case sig := <-signalCh:
			switch sig {
			case syscall.SIGUSR1:
				utils.Info("SIGUSR1 수신, 헬스 모니터링 일시 중지")
				rs.health.PauseMonitoring()
			case syscall.SIGUSR2:
				utils.Info("SIGUSR2 수신, 헬스 모니터링 재개")
				rs.health.ResumeMonitoring()
			}
		case <-stopCh:
			return
		}
	}
}
