//go:build windows

package router

func (rs *ResolverService) watchMonitoringSignals(stopCh <-chan struct{}) {
	<-stopCh
}
