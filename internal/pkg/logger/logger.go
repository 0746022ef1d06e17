// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextKey names a request or task value copied onto log records.
type ContextKey string

const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyClientIP  ContextKey = "client_ip"
	ContextKeyMethod    ContextKey = "method"
	ContextKeyPath      ContextKey = "path"
	ContextKeyTaskType  ContextKey = "task_type"
	ContextKeyTaskID    ContextKey = "task_id"
)

// LogConfig configures the process logger. FilePath, when set, receives a
// JSON copy of every record at or above Level.
type LogConfig struct {
	Level          string
	Format         string
	Output         string
	AddSource      bool
	Environment    string
	ServiceName    string
	ServiceVersion string
	FilePath       string
}

// SetupLogger builds the process logger from the level and format flags
// plus SERVICE_NAME, SERVICE_VERSION, APP_ENV and LOG_FILE, and installs it
// as the slog default.
func SetupLogger(level string, format string) *slog.Logger {
	l := newLogger(&LogConfig{
		Level:          level,
		Format:         format,
		Output:         "stdout",
		AddSource:      level == "debug",
		ServiceName:    os.Getenv("SERVICE_NAME"),
		ServiceVersion: os.Getenv("SERVICE_VERSION"),
		Environment:    os.Getenv("APP_ENV"),
		FilePath:       os.Getenv("LOG_FILE"),
	}, writerFor(os.Getenv("LOG_OUTPUT")))
	slog.SetDefault(l)
	return l
}

func newLogger(config *LogConfig, w io.Writer) *slog.Logger {
	level := parseLevel(config.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: config.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return replaceAttr(config.Format, a)
		},
	}

	var h slog.Handler
	if config.Format == "text" {
		h = NewPrettyTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	if f := openLogFile(config.FilePath); f != nil {
		h = NewMultiHandler(h, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	}
	h = NewSanitizationHandler(NewContextHandler(h, config))

	var static []slog.Attr
	for key, val := range map[string]string{
		"app":     config.ServiceName,
		"version": config.ServiceVersion,
		"env":     config.Environment,
	} {
		if val != "" {
			static = append(static, slog.String(key, val))
		}
	}
	if len(static) > 0 {
		h = h.WithAttrs(static)
	}
	return slog.New(h)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func writerFor(output string) io.Writer {
	if output == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}

func openLogFile(path string) io.Writer {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil
	}
	return f
}

// replaceAttr normalizes time to UTC, renames level to severity for JSON
// and renders *_ms durations as milliseconds.
func replaceAttr(format string, a slog.Attr) slog.Attr {
	switch {
	case a.Key == slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.UTC().Format(time.RFC3339Nano))
		}
	case a.Key == slog.LevelKey && format != "text":
		a.Key = "severity"
	case strings.HasSuffix(a.Key, "_ms"):
		if d, ok := a.Value.Any().(time.Duration); ok {
			a.Value = slog.Float64Value(float64(d.Milliseconds()))
		}
	}
	return a
}

func defaultContextKeys() []ContextKey {
	return []ContextKey{
		ContextKeyRequestID,
		ContextKeyClientIP,
		ContextKeyMethod,
		ContextKeyPath,
		ContextKeyTaskType,
		ContextKeyTaskID,
	}
}

func extractContextAttrs(ctx context.Context, keys []ContextKey) []any {
	var attrs []any
	for _, key := range keys {
		name := string(key)
		switch v := ctx.Value(key).(type) {
		case nil:
		case string:
			if v != "" {
				attrs = append(attrs, slog.String(name, v))
			}
		case uuid.UUID:
			attrs = append(attrs, slog.String(name, v.String()))
		default:
			attrs = append(attrs, slog.Any(name, v))
		}
	}
	return attrs
}

// WithRequestID stores a request id for log enrichment.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

// RequestIDFromContext returns the request id stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

// WithTask stores the asynq task being processed for log enrichment.
func WithTask(ctx context.Context, taskType, taskID string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyTaskType, taskType)
	return context.WithValue(ctx, ContextKeyTaskID, taskID)
}
