package internal

// Batcher tracks nested Store.Batch calls. Writes made inside a batch are
// applied right away but routed and notified once, when the outermost
// batch returns.
type Batcher struct {
	depth int
	// set by a write made while batching
	dirty bool
}

func NewBatcher() *Batcher {
	return &Batcher{}
}

func (b *Batcher) IsBatching() bool {
	return b.depth > 0
}

// Touch records a write made inside the current batch.
func (b *Batcher) Touch() {
	if b.depth > 0 {
		b.dirty = true
	}
}

// Run calls fn one batch deeper. It reports whether fn closed the outermost
// batch after writing something, in which case the caller settles the store.
func (b *Batcher) Run(fn func()) (settle bool) {
	b.depth++
	defer func() {
		b.depth--
		if b.depth == 0 {
			settle = b.dirty
			b.dirty = false
		}
	}()

	fn()
	return false
}
