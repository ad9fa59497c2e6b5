package internal

import "slices"

// Owner holds the lifecycle hooks of a store.
type Owner struct {
	// cleanup functions to be called when the owner is disposed
	cleanups []func()

	// error handlers
	catchers []func(any)

	disposed bool
}

func NewOwner() *Owner {
	return &Owner{
		cleanups: make([]func(), 0),
	}
}

func (o *Owner) OnCleanup(fn func()) {
	o.cleanups = append(o.cleanups, fn)
}

func (o *Owner) OnError(fn func(any)) {
	o.catchers = append(o.catchers, fn)
}

func (o *Owner) Catchers() []func(any) {
	return slices.Clone(o.catchers)
}

// Dispose runs the cleanup functions, only the first time it is called.
func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true

	for i := 0; i < len(o.cleanups); i++ {
		o.cleanups[i]()
	}
	o.cleanups = nil
}
