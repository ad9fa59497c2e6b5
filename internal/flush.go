package internal

// Flush is handed to a rule while it executes. It reads and writes the
// store from inside the drain, where the store lock is already held.
type Flush struct {
	store *Store
	rule  *Rule
}

// Rule returns the name of the executing rule.
func (f *Flush) Rule() string { return f.rule.Name }

func (f *Flush) Get(name string) any {
	return f.store.state.Value(name)
}

func (f *Flush) State() map[string]any {
	return f.store.state.Snapshot()
}

// Set writes outputs; rules reading them join the pending batch.
func (f *Flush) Set(partial map[string]any) {
	f.store.apply(partial)
}

// Pending returns how many rules are still queued in this flush.
func (f *Flush) Pending() int {
	return f.store.router.Pending()
}
