package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var log = New("info", "json", os.Stdout)

// New builds a logrus logger. Unknown levels fall back to info.
func New(level, format string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	if format == "text" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	l.SetOutput(out)
	return l
}

// Init replaces the process logger
func Init(level, format string) {
	log = New(level, format, os.Stdout)
}

// Get returns the process logger
func Get() *logrus.Logger {
	return log
}

// SetOutput redirects the process logger, mostly for tests
func SetOutput(out io.Writer) {
	log.SetOutput(out)
}

// LogError writes err with the module/function it came from and optional payload data
func LogError(moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	log.WithFields(fields).Error(err.Error())
}
