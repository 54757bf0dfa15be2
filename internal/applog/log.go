// Package applog provides the structured logging backend used across the
// endpoint: a single leveled backend from which every component obtains
// its own per-module *logging.Logger.
package applog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/op/go-logging.v1"
)

// Backend wraps a logging.LeveledBackend writing to a single destination
// at a single configured level, shared by every module logger the
// endpoint creates.
type Backend struct {
	backend logging.LeveledBackend
	w       io.Writer
}

// New builds a Backend writing to w (os.Stdout if nil) at the named level
// ("ERROR", "WARNING", "NOTICE", "INFO", "DEBUG").
func New(w io.Writer, level string) (*Backend, error) {
	lvl, err := levelFromString(level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stdout
	}

	logFmt := logging.MustStringFormatter("%{time:15:04:05.000} %{level:.4s} %{module}: %{message}")
	base := logging.NewLogBackend(w, "", 0)
	formatted := logging.NewBackendFormatter(base, logFmt)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(lvl, "")

	return &Backend{backend: leveled, w: w}, nil
}

// GetLogger returns a per-module logger that writes through the backend.
func (b *Backend) GetLogger(module string) *logging.Logger {
	l := logging.MustGetLogger(module)
	l.SetBackend(b.backend)
	return l
}

func levelFromString(l string) (logging.Level, error) {
	switch strings.ToUpper(l) {
	case "ERROR":
		return logging.ERROR, nil
	case "WARNING":
		return logging.WARNING, nil
	case "NOTICE":
		return logging.NOTICE, nil
	case "INFO", "":
		return logging.INFO, nil
	case "DEBUG":
		return logging.DEBUG, nil
	default:
		return logging.CRITICAL, fmt.Errorf("applog: invalid level: %q", l)
	}
}
