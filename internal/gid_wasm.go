//go:build wasm

package internal

// goid has no wasm support, so every goroutine reports the same id and
// counts as the store holder. A store used from js/wasm must be driven from
// a single goroutine: rules and subscribers must not block waiting on other
// goroutines that write to the same store, and the Deferred policy, whose
// timer runs on its own goroutine, should be avoided there.
func getGID() int64 {
	return 1
}
