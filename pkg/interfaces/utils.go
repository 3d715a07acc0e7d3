package interfaces

type Utils interface {
	// Path related
	IsInternalPath(path string) bool

	// Logging related
	Info(msg string)
	Infof(format string, args ...any)
	Error(msg string)
	Errorf(format string, args ...any)
	Warn(msg string)
	Warnf(format string, args ...any)
	Debug(msg string)
	Debugf(format string, args ...any)

	// Generate related
	GenerateRequestId() string
}
