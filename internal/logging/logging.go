package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options selects the logger level and output format.
type Options struct {
	Level  string // logrus level name, "info" when empty
	Format string // "json" or "text"
	Out    io.Writer
}

// Setup returns a logger configured from opts.
func Setup(opts Options) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		var err error
		level, err = logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	var formatter logrus.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyLevel: "loglevel",
		},
	}
	if strings.EqualFold(opts.Format, "text") {
		formatter = &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
	}

	return &logrus.Logger{
		Formatter: formatter,
		Out:       out,
		Hooks:     make(logrus.LevelHooks),
		Level:     level,
	}, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}
