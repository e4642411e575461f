// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/shopchat/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// logTarget says where a command's logs may go.
type logTarget int

const (
	// logToStderr is for line-mode commands: stderr, and only with --debug.
	logToStderr logTarget = iota
	// logToFile is for the TUI, which owns the terminal.
	logToFile
)

// newLogger builds the root logger. A configured log file is always used;
// the TUI falls back to ~/.shopchat/shopchat.log. Line-mode commands also log
// to stderr when debug is set. With no destination the logger is disabled.
func newLogger(cfg *config.Config, target logTarget, debug bool, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if debug {
		level = zerolog.DebugLevel
	}

	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)

	path := cfg.Log.File
	if path == "" && target == logToFile {
		if path, err = config.DefaultLogPath(); err != nil {
			return zerolog.Nop(), closer, err
		}
	}
	if path != "" {
		f, err := openLogFile(path)
		if err != nil {
			return zerolog.Nop(), closer, err
		}
		writers = append(writers, f)
		closer = f
	}
	if debug && target == logToStderr {
		writers = append(writers, zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen})
	}

	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}
	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

// openLogFile opens path for appending.
// SECURITY: Log files may contain user messages; created 0600.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
