// Package logging holds the process-wide logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the shared logger. It writes text to stderr at warn level until
// SetLevel is called.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return l
}

// ParseLevel maps a level name to a logrus level.
// Trace and panic levels are not exposed.
func ParseLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "", "warning", "warn":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	case "fatal":
		return logrus.FatalLevel, nil
	}
	return logrus.WarnLevel, fmt.Errorf("bad log level %q", level)
}

// SetLevel sets the shared logger's level by name.
func SetLevel(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	Log.SetLevel(lvl)
	return nil
}

// Silence discards log output unless debug logging is on. It returns a
// function restoring the previous writer.
func Silence() func() {
	if Log.IsLevelEnabled(logrus.DebugLevel) {
		return func() {}
	}
	prev := Log.Out
	Log.SetOutput(io.Discard)
	return func() { Log.SetOutput(prev) }
}
