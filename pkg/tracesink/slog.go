package tracesink

import (
	"context"
	"log/slog"

	"github.com/go-drift/storesync/pkg/selector"
)

// SlogFactory returns a TraceFactory logging every event at debug level.
// A nil logger uses slog.Default.
func SlogFactory(logger *slog.Logger) selector.TraceFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return func(name string) selector.Trace {
		return &SlogTrace{logger: logger.With("selector", name)}
	}
}

// SlogTrace logs instrumentation events with log/slog.
type SlogTrace struct {
	logger *slog.Logger
}

func (t *SlogTrace) log(event string, attrs ...slog.Attr) {
	if !t.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	t.logger.LogAttrs(context.Background(), slog.LevelDebug, "selector trace", append([]slog.Attr{slog.String("event", event)}, attrs...)...)
}

// SelectorUnmount logs the end of the binding record.
func (t *SlogTrace) SelectorUnmount() { t.log(EventSelectorUnmount) }

// SelectorCallStart logs the start of a projection call.
func (t *SlogTrace) SelectorCallStart() { t.log(EventSelectorCallStart) }

// SelectorCallEnd logs the end of a projection call.
func (t *SlogTrace) SelectorCallEnd() { t.log(EventSelectorCallEnd) }

// EqualityFn logs an equality decision with its result.
func (t *SlogTrace) EqualityFn(equal bool) {
	t.log(EventEqualityFn, slog.Bool("result", equal))
}

// SnapshotCompare logs a snapshot identity comparison with its result.
func (t *SlogTrace) SnapshotCompare(same bool) {
	t.log(EventSnapshotCompare, slog.Bool("result", same))
}

// Subscribe logs the binding subscribing to the store.
func (t *SlogTrace) Subscribe() { t.log(EventSubscribe) }

// SubscribeCleanup logs the binding unsubscribing.
func (t *SlogTrace) SubscribeCleanup() { t.log(EventSubscribeCleanup) }

// StoreChange logs a store notification.
func (t *SlogTrace) StoreChange() { t.log(EventStoreChange) }

// GetSnapshot logs a snapshot read.
func (t *SlogTrace) GetSnapshot() { t.log(EventGetSnapshot) }

// Multi fans every event out to the traces of all factories. Nil factories
// are skipped.
func Multi(factories ...selector.TraceFactory) selector.TraceFactory {
	return func(name string) selector.Trace {
		var traces multiTrace
		for _, f := range factories {
			if f == nil {
				continue
			}
			if t := f(name); t != nil {
				traces = append(traces, t)
			}
		}
		return traces
	}
}

type multiTrace []selector.Trace

func (m multiTrace) SelectorUnmount() {
	for _, t := range m {
		t.SelectorUnmount()
	}
}

func (m multiTrace) SelectorCallStart() {
	for _, t := range m {
		t.SelectorCallStart()
	}
}

func (m multiTrace) SelectorCallEnd() {
	for _, t := range m {
		t.SelectorCallEnd()
	}
}

func (m multiTrace) EqualityFn(equal bool) {
	for _, t := range m {
		t.EqualityFn(equal)
	}
}

func (m multiTrace) SnapshotCompare(same bool) {
	for _, t := range m {
		t.SnapshotCompare(same)
	}
}

func (m multiTrace) Subscribe() {
	for _, t := range m {
		t.Subscribe()
	}
}

func (m multiTrace) SubscribeCleanup() {
	for _, t := range m {
		t.SubscribeCleanup()
	}
}

func (m multiTrace) StoreChange() {
	for _, t := range m {
		t.StoreChange()
	}
}

func (m multiTrace) GetSnapshot() {
	for _, t := range m {
		t.GetSnapshot()
	}
}
