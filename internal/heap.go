package internal

// RuleHeap is the pending batch: rules bucketed by depth, FIFO inside a bucket.
type RuleHeap struct {
	min   int
	max   int
	count int

	buckets []*heapNode // [depth]head

	lookup map[*Rule]*heapNode // for O(1) removal
}

type heapNode struct {
	rule *Rule

	next *heapNode
	prev *heapNode
}

func NewHeap(depth int) *RuleHeap {
	return &RuleHeap{
		buckets: make([]*heapNode, depth+1),
		lookup:  make(map[*Rule]*heapNode),
	}
}

func (h *RuleHeap) Len() int { return h.count }

func (h *RuleHeap) Has(rule *Rule) bool {
	_, ok := h.lookup[rule]
	return ok
}

// Insert queues rule, ignoring it if already pending.
func (h *RuleHeap) Insert(rule *Rule) {
	if h.Has(rule) {
		return
	}

	entry := &heapNode{rule: rule}
	h.lookup[rule] = entry
	h.count++

	depth := rule.depth
	for len(h.buckets) <= depth {
		h.buckets = append(h.buckets, nil)
	}

	if h.buckets[depth] == nil {
		h.buckets[depth] = entry
		entry.prev = entry // loop to self
		entry.next = nil
	} else {
		head := h.buckets[depth]
		tail := head.prev

		tail.next = entry
		entry.prev = tail
		entry.next = nil
		head.prev = entry
	}

	if h.count == 1 || depth < h.min {
		h.min = depth
	}
	if depth > h.max {
		h.max = depth
	}
}

func (h *RuleHeap) Remove(rule *Rule) {
	entry, ok := h.lookup[rule]
	if !ok {
		return
	}
	delete(h.lookup, rule)
	h.count--

	depth := rule.depth

	// single node
	if entry.prev == entry {
		h.buckets[depth] = nil
		return
	}

	// multiple nodes
	head := h.buckets[depth]
	if entry == head {
		h.buckets[depth] = entry.next
	} else {
		entry.prev.next = entry.next
	}

	next := entry.next
	if next == nil {
		next = h.buckets[depth]
	}
	next.prev = entry.prev
}

// Pop removes and returns the oldest rule of the lowest depth, nil when empty.
func (h *RuleHeap) Pop() *Rule {
	if h.count == 0 {
		h.min, h.max = 0, 0
		return nil
	}

	for ; h.min <= h.max; h.min++ {
		if entry := h.buckets[h.min]; entry != nil {
			h.Remove(entry.rule)
			return entry.rule
		}
	}

	return nil
}

// Clear drops every pending rule.
func (h *RuleHeap) Clear() {
	clear(h.buckets)
	clear(h.lookup)
	h.min, h.max, h.count = 0, 0, 0
}
