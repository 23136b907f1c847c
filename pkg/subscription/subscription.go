// Package subscription fans store change notifications out to many
// consumers.
//
// A Subscription listens to a store (or to a parent Subscription) only while
// something needs it. Consumers register leaf listeners with AddNestedSub;
// the first leaf (or an explicit TrySubscribe) attaches the subscription to
// its source, and removing the last one detaches it again. Leaves are
// notified in registration order.
package subscription

import "sync"

// Subscribable is any change source a Subscription can attach to.
type Subscribable interface {
	Subscribe(listener func()) (unsubscribe func())
}

// Subscription is a reference-counted, nested change fan-out.
//
// OnStateChange is invoked for every notification from the source. A root
// subscription owned by a provider sets it to NotifyNestedSubs.
type Subscription struct {
	OnStateChange func()

	mu             sync.Mutex
	source         Subscribable
	parent         *Subscription
	unsubscribe    func()
	listeners      *listenerList
	activations    int
	selfSubscribed bool
}

// New returns an inactive subscription on store. When parent is non-nil the
// subscription attaches to parent instead of store.
func New(store Subscribable, parent *Subscription) *Subscription {
	return &Subscription{source: store, parent: parent}
}

// AddNestedSub registers a leaf listener and activates the subscription.
// The returned function removes the leaf and releases the activation. It is
// safe to call more than once.
func (s *Subscription) AddNestedSub(listener func()) func() {
	s.TrySubscribe()

	s.mu.Lock()
	node := s.listeners.add(listener)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.listeners != nil {
				s.listeners.remove(node)
			}
			s.mu.Unlock()
			s.TryUnsubscribe()
		})
	}
}

// Subscribe is AddNestedSub. It lets a Subscription stand in wherever a
// plain change source is expected.
func (s *Subscription) Subscribe(listener func()) func() {
	return s.AddNestedSub(listener)
}

// NotifyNestedSubs calls every leaf listener in registration order.
// Leaves added while notifying wait for the next round; leaves removed while
// notifying are skipped if they have not been called yet.
func (s *Subscription) NotifyNestedSubs() {
	s.mu.Lock()
	var pending []*listenerNode
	if s.listeners != nil {
		pending = s.listeners.nodes()
	}
	s.mu.Unlock()

	for _, node := range pending {
		s.mu.Lock()
		fn := node.fn
		s.mu.Unlock()
		if fn != nil {
			fn()
		}
	}
}

// HandleChangeWrapper forwards a source notification to OnStateChange.
func (s *Subscription) HandleChangeWrapper() {
	if fn := s.OnStateChange; fn != nil {
		fn()
	}
}

// IsSubscribed reports whether the owner has activated the subscription via
// TrySubscribeSelf.
func (s *Subscription) IsSubscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selfSubscribed
}

// IsAttached reports whether the subscription currently listens to its
// source.
func (s *Subscription) IsAttached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsubscribe != nil
}

// TrySubscribe adds one activation, attaching to the source on the first.
func (s *Subscription) TrySubscribe() {
	s.mu.Lock()
	s.activations++
	if s.unsubscribe != nil {
		s.mu.Unlock()
		return
	}
	s.listeners = &listenerList{}
	// Placeholder so re-entrant activations during attach do not attach twice.
	s.unsubscribe = func() {}
	s.mu.Unlock()

	var unsub func()
	if s.parent != nil {
		unsub = s.parent.AddNestedSub(s.HandleChangeWrapper)
	} else {
		unsub = s.source.Subscribe(s.HandleChangeWrapper)
	}

	s.mu.Lock()
	s.unsubscribe = unsub
	s.mu.Unlock()
}

// TryUnsubscribe releases one activation, detaching from the source when
// none remain.
func (s *Subscription) TryUnsubscribe() {
	s.mu.Lock()
	if s.activations > 0 {
		s.activations--
	}
	if s.unsubscribe == nil || s.activations > 0 {
		s.mu.Unlock()
		return
	}
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.listeners.clear()
	s.listeners = nil
	s.mu.Unlock()

	unsub()
}

// TrySubscribeSelf activates the subscription on behalf of its owner. It is
// a no-op when the owner already holds an activation.
func (s *Subscription) TrySubscribeSelf() {
	s.mu.Lock()
	if s.selfSubscribed {
		s.mu.Unlock()
		return
	}
	s.selfSubscribed = true
	s.mu.Unlock()
	s.TrySubscribe()
}

// TryUnsubscribeSelf releases the owner's activation.
func (s *Subscription) TryUnsubscribeSelf() {
	s.mu.Lock()
	if !s.selfSubscribed {
		s.mu.Unlock()
		return
	}
	s.selfSubscribed = false
	s.mu.Unlock()
	s.TryUnsubscribe()
}

// ListenerCount returns the number of registered leaves.
func (s *Subscription) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listeners == nil {
		return 0
	}
	return s.listeners.len
}
