package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oidcd/oidcd/pkg/log"
)

// newLogger builds the ambient Logger every command uses, grounded on dex's
// logrus-based cmd/dex logger construction: a single process-wide
// *logrus.Logger configured from the two config/flag knobs (level, format)
// and wrapped in pkg/log.LogrusLogger so the rest of the codebase depends
// only on the Logger interface, never on logrus directly.
func newLogger(level, format string) (log.Logger, error) {
	l := logrus.New()

	lvl, err := logrus.ParseLevel(orDefault(level, "info"))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	l.SetLevel(lvl)

	switch strings.ToLower(orDefault(format, "text")) {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("log format must be one of text, json: %q", format)
	}

	return log.NewLogrusLogger(l), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
