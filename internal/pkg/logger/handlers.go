// internal/pkg/logger/handlers.go
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

const redacted = "***REDACTED***"

// ContextHandler appends the request and task values carried by the
// context to every record.
type ContextHandler struct {
	next   slog.Handler
	config *LogConfig
}

func NewContextHandler(next slog.Handler, config *LogConfig) *ContextHandler {
	return &ContextHandler{next: next, config: config}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	attrs := extractContextAttrs(ctx, defaultContextKeys())
	if len(attrs) == 0 {
		return h.next.Handle(ctx, record)
	}

	enriched := record.Clone()
	for _, a := range attrs {
		if attr, ok := a.(slog.Attr); ok {
			enriched.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, enriched)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewContextHandler(h.next.WithAttrs(attrs), h.config)
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return NewContextHandler(h.next.WithGroup(name), h.config)
}

// SanitizationHandler keeps credentials out of the logs: connection strings
// have their password masked, AWS key ids and secret-looking attributes are
// replaced outright.
type SanitizationHandler struct {
	next slog.Handler
}

var (
	sensitiveKeys = []string{
		"password", "passwd", "secret", "token", "api_key", "access_key",
		"authorization", "credential",
	}
	dsnPasswordRe = regexp.MustCompile(`((?:postgres|postgresql|redis|rediss)://[^:/@\s]+:)[^@\s]+@`)
	keyValueRe    = regexp.MustCompile(`(?i)\b(password|secret|token|api[-_]?key)\s*[:=]\s*["']?[^"'\s&]+`)
	awsKeyIDRe    = regexp.MustCompile(`\b(AKIA|ASIA)[0-9A-Z]{16}\b`)
)

func NewSanitizationHandler(next slog.Handler) *SanitizationHandler {
	return &SanitizationHandler{next: next}
}

func (h *SanitizationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SanitizationHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, scrub(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.next.Handle(ctx, clean)
}

func (h *SanitizationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = sanitizeAttr(a)
	}
	return NewSanitizationHandler(h.next.WithAttrs(clean))
}

func (h *SanitizationHandler) WithGroup(name string) slog.Handler {
	return NewSanitizationHandler(h.next.WithGroup(name))
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return slog.String(a.Key, redacted)
		}
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, scrub(a.Value.String()))
	case slog.KindGroup:
		group := a.Value.Group()
		clean := make([]any, len(group))
		for i, g := range group {
			clean[i] = sanitizeAttr(g)
		}
		return slog.Group(a.Key, clean...)
	}
	return a
}

func scrub(s string) string {
	s = dsnPasswordRe.ReplaceAllString(s, "${1}"+redacted+"@")
	s = keyValueRe.ReplaceAllString(s, "$1="+redacted)
	return awsKeyIDRe.ReplaceAllString(s, redacted)
}

// MultiHandler writes each record to every handler enabled for its level.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, next := range h.handlers {
		if next.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, next := range h.handlers {
		if next.Enabled(ctx, record.Level) {
			errs = append(errs, next.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	return h.each(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h *MultiHandler) each(fn func(slog.Handler) slog.Handler) *MultiHandler {
	out := make([]slog.Handler, len(h.handlers))
	for i, next := range h.handlers {
		out[i] = fn(next)
	}
	return &MultiHandler{handlers: out}
}

// PrettyTextHandler prints one colored line per record for local runs.
type PrettyTextHandler struct {
	*slog.TextHandler
	mu *sync.Mutex
	w  io.Writer
}

func NewPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyTextHandler {
	return &PrettyTextHandler{
		TextHandler: slog.NewTextHandler(w, opts),
		mu:          &sync.Mutex{},
		w:           w,
	}
}

var levelColors = map[slog.Level]string{
	slog.LevelDebug: "\033[37m",
	slog.LevelInfo:  "\033[34m",
	slog.LevelWarn:  "\033[33m",
	slog.LevelError: "\033[31m",
}

const (
	colorReset = "\033[0m"
	colorKey   = "\033[36m"
)

func (h *PrettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s %-5s%s %s",
		levelColors[r.Level], r.Time.Format("15:04:05.000"), r.Level.String(), colorReset, r.Message)
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s%s%s=%v", colorKey, a.Key, colorReset, a.Value)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}
