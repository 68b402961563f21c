// Package logger provides structured JSON logging using log/slog, with an
// optional rotating file sink.
package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Init creates a structured logger for the given service and installs it as
// the slog default. Output is JSON on stdout; when logFile is non-empty the
// same stream also goes to a size-rotated file.
func Init(service string, level slog.Level, logFile string) *slog.Logger {
	var w io.Writer = os.Stdout
	if logFile != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		})
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	log := slog.New(handler).With(slog.String("service", service))
	slog.SetDefault(log)
	return log
}
