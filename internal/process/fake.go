package process

import (
	"context"
	"sync"
)

// FakeRunner records invocations and delegates to Handler. It is meant for
// tests in packages that depend on a Runner.
type FakeRunner struct {
	mu      sync.Mutex
	Calls   []Command
	Handler func(ctx context.Context, cmd Command) (*Result, error)
}

// Run records cmd and calls Handler, or succeeds with empty output
func (f *FakeRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, cmd)
	f.mu.Unlock()

	if f.Handler == nil {
		return &Result{}, nil
	}
	return f.Handler(ctx, cmd)
}

// CallCount returns the number of recorded invocations
func (f *FakeRunner) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
