package subscription

type listenerNode struct {
	fn         func()
	prev, next *listenerNode
}

// listenerList is a doubly linked list so removal is O(1) and iteration
// preserves registration order.
type listenerList struct {
	first, last *listenerNode
	len         int
}

// add is nil-safe: adding to a nil list returns a detached node so a leaf
// registered on an inactive subscription is simply dropped.
func (l *listenerList) add(fn func()) *listenerNode {
	node := &listenerNode{fn: fn}
	if l == nil {
		return node
	}
	node.prev = l.last
	if l.last != nil {
		l.last.next = node
	} else {
		l.first = node
	}
	l.last = node
	l.len++
	return node
}

func (l *listenerList) remove(node *listenerNode) {
	if node.fn == nil {
		return
	}
	if node.prev != nil {
		node.prev.next = node.next
	} else if l.first == node {
		l.first = node.next
	} else {
		// Not a member (list was cleared and recreated).
		return
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.last = node.prev
	}
	node.fn = nil
	node.prev, node.next = nil, nil
	l.len--
}

// nodes returns the current members. remove and clear nil a node's fn, so
// callers holding the slice can tell which members left.
func (l *listenerList) nodes() []*listenerNode {
	out := make([]*listenerNode, 0, l.len)
	for n := l.first; n != nil; n = n.next {
		out = append(out, n)
	}
	return out
}

func (l *listenerList) clear() {
	for n := l.first; n != nil; {
		next := n.next
		n.fn = nil
		n.prev, n.next = nil, nil
		n = next
	}
	l.first, l.last = nil, nil
	l.len = 0
}
