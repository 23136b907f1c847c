// Package tracesink provides selector.Trace implementations: an in-memory
// Recorder for tests and tooling, a log/slog sink, and a fan-out.
package tracesink

import (
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/go-drift/storesync/pkg/selector"
)

// Event names, one per selector.Trace method.
const (
	EventSelectorUnmount   = "selectorUnmount"
	EventSelectorCallStart = "selectorCallStart"
	EventSelectorCallEnd   = "selectorCallEnd"
	EventEqualityFn        = "equalityFn"
	EventSnapshotCompare   = "snapshotCompare"
	EventSubscribe         = "subscribe"
	EventSubscribeCleanup  = "subscribeCleanup"
	EventStoreChange       = "storeChange"
	EventGetSnapshot       = "getSnapshot"
)

// Event is one recorded instrumentation callback.
type Event struct {
	// Record identifies the binding record that produced the event.
	Record string `json:"record" yaml:"record"`
	// Selector is the binding's diagnostic label.
	Selector string `json:"selector" yaml:"selector"`
	Name     string `json:"event" yaml:"event"`
	// Result is set for EventEqualityFn and EventSnapshotCompare.
	Result *bool `json:"result,omitempty" yaml:"result,omitempty"`
}

func (e Event) String() string {
	if e.Result == nil {
		return e.Selector + " " + e.Name
	}
	return e.Selector + " " + e.Name + "=" + strconv.FormatBool(*e.Result)
}

// Record describes one trace created by the Recorder's factory.
type Record struct {
	ID       string `json:"id" yaml:"id"`
	Selector string `json:"selector" yaml:"selector"`
}

// IDGenerator produces record IDs.
type IDGenerator func() string

// UUIDv7 returns time-sortable record IDs.
func UUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Sequential returns an IDGenerator producing prefix-1, prefix-2, ...
// for deterministic output.
func Sequential(prefix string) IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}

// Recorder keeps every event of every trace it created, in order.
//
// Thread-safety: Recorder is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	newID   IDGenerator
	events  []Event
	records []Record
}

// NewRecorder creates a Recorder. A nil gen uses UUIDv7.
func NewRecorder(gen IDGenerator) *Recorder {
	if gen == nil {
		gen = UUIDv7
	}
	return &Recorder{newID: gen}
}

// Factory returns a TraceFactory whose traces record into r.
func (r *Recorder) Factory() selector.TraceFactory {
	return func(name string) selector.Trace {
		rec := Record{ID: r.newID(), Selector: name}
		r.mu.Lock()
		r.records = append(r.records, rec)
		r.mu.Unlock()
		return &recordingTrace{recorder: r, record: rec}
	}
}

// Events returns a copy of the events recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Records returns a copy of the records created so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), r.records...)
}

// Names returns the event names recorded so far, in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.Name
	}
	return names
}

// Reset drops recorded events. Records are kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *Recorder) add(rec Record, name string, result *bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{
		Record:   rec.ID,
		Selector: rec.Selector,
		Name:     name,
		Result:   result,
	})
}

type recordingTrace struct {
	recorder *Recorder
	record   Record
}

func (t *recordingTrace) emit(name string)               { t.recorder.add(t.record, name, nil) }
func (t *recordingTrace) emitResult(name string, v bool) { t.recorder.add(t.record, name, &v) }

func (t *recordingTrace) SelectorUnmount()          { t.emit(EventSelectorUnmount) }
func (t *recordingTrace) SelectorCallStart()        { t.emit(EventSelectorCallStart) }
func (t *recordingTrace) SelectorCallEnd()          { t.emit(EventSelectorCallEnd) }
func (t *recordingTrace) EqualityFn(equal bool)     { t.emitResult(EventEqualityFn, equal) }
func (t *recordingTrace) SnapshotCompare(same bool) { t.emitResult(EventSnapshotCompare, same) }
func (t *recordingTrace) Subscribe()                { t.emit(EventSubscribe) }
func (t *recordingTrace) SubscribeCleanup()         { t.emit(EventSubscribeCleanup) }
func (t *recordingTrace) StoreChange()              { t.emit(EventStoreChange) }
func (t *recordingTrace) GetSnapshot()              { t.emit(EventGetSnapshot) }
