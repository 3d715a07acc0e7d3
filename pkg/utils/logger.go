package utils

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// 로그 레벨 정의
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"

	// 기본 로거 인스턴스
	logger   = NewLogger(LevelInfo, "")
	loggerMu sync.RWMutex
)

// Logger는 애플리케이션의 로깅을 담당하는 구조체입니다
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger는 새로운 로거 인스턴스를 생성합니다
// file이 지정되면 콘솔과 함께 회전 로그 파일에도 기록합니다
func NewLogger(level string, file string) *Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	atomicLevel := zap.NewAtomicLevelAt(parseLevel(level))

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stdout), atomicLevel),
	}
	if file != "" {
		writer := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // MB
			MaxBackups: 7,
			MaxAge:     30, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(writer), atomicLevel))
	}

	return &Logger{sugar: zap.New(zapcore.NewTee(cores...)).Sugar()}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn, "warning":
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// InitLogger는 전역 로거를 설정값으로 다시 만듭니다
func InitLogger(level string, file string) {
	next := NewLogger(level, file)

	loggerMu.Lock()
	previous := logger
	logger = next
	loggerMu.Unlock()

	_ = previous.Sync()
}

// Sync는 버퍼에 남은 로그를 기록합니다
func Sync() error {
	return current().Sync()
}

func current() *Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// Sync는 버퍼에 남은 로그를 기록합니다
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// Debug는 디버그 레벨 로그를 출력합니다
func (l *Logger) Debug(message string) {
	l.sugar.Debug(message)
}

// Debugf는 형식화된 디버그 레벨 로그를 출력합니다
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info는 정보 레벨 로그를 출력합니다
func (l *Logger) Info(message string) {
	l.sugar.Info(message)
}

// Infof는 형식화된 정보 레벨 로그를 출력합니다
func (l *Logger) Infof(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn은 경고 레벨 로그를 출력합니다
func (l *Logger) Warn(message string) {
	l.sugar.Warn(message)
}

// Warnf는 형식화된 경고 레벨 로그를 출력합니다
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error는 오류 레벨 로그를 출력합니다
func (l *Logger) Error(message string) {
	l.sugar.Error(message)
}

// Errorf는 형식화된 오류 레벨 로그를 출력합니다
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Fatal은 치명적 오류 로그를 출력하고 프로그램을 종료합니다
func (l *Logger) Fatal(message string) {
	l.sugar.Fatal(message)
}

// Fatalf는 형식화된 치명적 오류 로그를 출력하고 프로그램을 종료합니다
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.Fatal(fmt.Sprintf(format, args...))
}

// 전역 메서드들

func Debug(message string)                      { current().Debug(message) }
func Debugf(format string, args ...interface{}) { current().Debugf(format, args...) }
func Info(message string)                       { current().Info(message) }
func Infof(format string, args ...interface{})  { current().Infof(format, args...) }
func Warn(message string)                       { current().Warn(message) }
func Warnf(format string, args ...interface{})  { current().Warnf(format, args...) }
func Error(message string)                      { current().Error(message) }
func Errorf(format string, args ...interface{}) { current().Errorf(format, args...) }
func Fatal(message string)                      { current().Fatal(message) }
func Fatalf(format string, args ...interface{}) { current().Fatalf(format, args...) }
