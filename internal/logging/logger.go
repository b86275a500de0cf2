package logging

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Logger is the logging interface passed through the tracker components.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
}

// Init configures the process-wide logger. Unknown levels fall back to info.
func Init(level string) {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	l, err := log.ParseLevel(level)
	if err != nil {
		l = log.InfoLevel
	}
	log.SetLevel(l)
}

// L returns the shared process logger.
func L() *log.Logger { return log.StandardLogger() }

// NewDefaultLogger returns the shared logger behind the Logger interface,
// for components constructed without an explicit logger.
func NewDefaultLogger() Logger {
	return log.StandardLogger()
}
