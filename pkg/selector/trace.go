package selector

// Trace receives instrumentation events from one binding. Implementations
// must be synchronous and must not call back into the binding; their
// results never influence selections or control flow.
type Trace interface {
	// SelectorUnmount fires when the binding's (selector, name) record is
	// replaced or the binding unmounts.
	SelectorUnmount()
	// SelectorCallStart and SelectorCallEnd bracket every projection call.
	SelectorCallStart()
	SelectorCallEnd()
	// EqualityFn reports the result of each equality function call.
	EqualityFn(equal bool)
	// SnapshotCompare reports whether a snapshot was identical to the
	// memoized one.
	SnapshotCompare(same bool)
	// Subscribe fires when the binding subscribes to the store.
	Subscribe()
	// SubscribeCleanup fires when that subscription is torn down.
	SubscribeCleanup()
	// StoreChange fires for every store notification the binding receives.
	StoreChange()
	// GetSnapshot fires whenever the runtime reads the current selection.
	GetSnapshot()
}

// TraceFactory creates the Trace for a binding. name is the binding's
// diagnostic label.
type TraceFactory func(name string) Trace

// NopTrace ignores every event.
type NopTrace struct{}

func (NopTrace) SelectorUnmount()     {}
func (NopTrace) SelectorCallStart()   {}
func (NopTrace) SelectorCallEnd()     {}
func (NopTrace) EqualityFn(bool)      {}
func (NopTrace) SnapshotCompare(bool) {}
func (NopTrace) Subscribe()           {}
func (NopTrace) SubscribeCleanup()    {}
func (NopTrace) StoreChange()         {}
func (NopTrace) GetSnapshot()         {}

func newTrace(factory TraceFactory, name string) Trace {
	if factory == nil {
		return NopTrace{}
	}
	if t := factory(name); t != nil {
		return t
	}
	return NopTrace{}
}
