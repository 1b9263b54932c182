package main

import (
	"io"
	"log/slog"
)

// NewLogger returns a text slog.Logger writing to w and installs it as the
// default, so capture backends logging through slog share it.
func NewLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}
