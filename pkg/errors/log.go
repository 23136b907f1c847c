package errors

import (
	"log/slog"
	"os"
)

// LogHandler is an ErrorHandler that writes structured records through slog.
// With a nil Logger it logs text records to stderr.
type LogHandler struct {
	// Logger receives the records. Nil means a stderr text logger.
	Logger *slog.Logger
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

func (h *LogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// HandleError logs a SelectError.
func (h *LogHandler) HandleError(err *SelectError) {
	if err == nil {
		return
	}
	h.logger().Error("storesync error",
		slog.String("op", err.Op),
		slog.String("kind", err.Kind.String()),
		slog.Any("err", err.Err),
	)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []any{slog.String("op", err.Op), slog.Any("value", err.Value)}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, slog.String("stack", err.StackTrace))
	}
	h.logger().Error("storesync panic", attrs...)
}

// HandleBuildError logs a BuildError.
func (h *LogHandler) HandleBuildError(err *BuildError) {
	if err == nil {
		return
	}
	attrs := []any{slog.String("component", err.Component), slog.String("err", err.Error())}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, slog.String("stack", err.StackTrace))
	}
	h.logger().Error("storesync build error", attrs...)
}

// HandleDiagnostic logs a development diagnostic at warn level.
func (h *LogHandler) HandleDiagnostic(d *Diagnostic) {
	if d == nil {
		return
	}
	attrs := []any{
		slog.String("check", d.Kind.String()),
		slog.String("selector", d.Selector),
	}
	if h.Verbose && d.StackTrace != "" {
		attrs = append(attrs, slog.String("stack", d.StackTrace))
	}
	h.logger().Warn(d.Message, attrs...)
}

// Collector is an ErrorHandler that keeps everything it receives.
// It is meant for tests and tooling that assert on diagnostics.
type Collector struct {
	Errors      []*SelectError
	Panics      []*PanicError
	BuildErrors []*BuildError
	Diagnostics []*Diagnostic
}

func (c *Collector) HandleError(err *SelectError)     { c.Errors = append(c.Errors, err) }
func (c *Collector) HandlePanic(err *PanicError)      { c.Panics = append(c.Panics, err) }
func (c *Collector) HandleBuildError(err *BuildError) { c.BuildErrors = append(c.BuildErrors, err) }
func (c *Collector) HandleDiagnostic(d *Diagnostic)   { c.Diagnostics = append(c.Diagnostics, d) }

// Count returns how many diagnostics of kind were collected.
func (c *Collector) Count(kind DiagnosticKind) int {
	n := 0
	for _, d := range c.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
