package interop

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Binding Table
// ---------------------------------------------------------------------------

// BindingTable holds every wrapper resolved for one compilation unit,
// keyed by binding identity, plus the resolution failures collected along
// the way. Wrappers are immutable, so readers need no locking once
// resolution has finished.
type BindingTable struct {
	// ID identifies the compilation unit that produced the table.
	ID string

	mu       sync.Mutex
	wrappers map[BindingKey]Wrapper
	failures []*ResolutionFailure
}

// NewBindingTable creates an empty table with a fresh compilation unit id.
func NewBindingTable() *BindingTable {
	return &BindingTable{
		ID:       uuid.NewString(),
		wrappers: make(map[BindingKey]Wrapper),
	}
}

// Add stores a resolved wrapper under its binding identity.
func (t *BindingTable) Add(key BindingKey, w Wrapper) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wrappers[key] = w
}

// Wrapper returns the wrapper for a binding identity, if resolved.
func (t *BindingTable) Wrapper(key BindingKey) (Wrapper, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.wrappers[key]
	return w, ok
}

// Len returns the number of resolved bindings.
func (t *BindingTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.wrappers)
}

// Failures returns the collected resolution failures in request order.
func (t *BindingTable) Failures() []*ResolutionFailure {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*ResolutionFailure, len(t.failures))
	copy(out, t.failures)
	return out
}

func (t *BindingTable) addFailure(f *ResolutionFailure) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures = append(t.failures, f)
}

// ---------------------------------------------------------------------------
// Parallel Resolution
// ---------------------------------------------------------------------------

// ResolveAll resolves every request into the table. Independent bindings
// have no data dependency on each other, so requests fan out across up to
// `workers` goroutines. Resolution failures are collected (in request
// order) rather than aborting, so one compile run surfaces every interop
// error; internal descriptor errors and catalog backend errors abort
// immediately.
func (t *BindingTable) ResolveAll(r *Resolver, reqs []*BindingRequest, workers int) error {
	if workers < 1 {
		workers = 1
	}
	if workers > len(reqs) {
		workers = len(reqs)
	}

	outcomes := make([]outcome, len(reqs))

	var wg sync.WaitGroup
	jobs := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = resolveOne(r, reqs[i])
			}
		}()
	}
	for i := range reqs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// merge sequentially so failure order tracks request order regardless
	// of scheduling
	for i, o := range outcomes {
		if o.err != nil {
			return o.err
		}
		if o.failure != nil {
			t.addFailure(o.failure)
			continue
		}
		t.Add(reqs[i].Key(), o.wrapper)
	}
	return nil
}

// outcome is the result of resolving one request, staged so results can
// be merged in request order.
type outcome struct {
	wrapper Wrapper
	failure *ResolutionFailure
	err     error
}

func resolveOne(r *Resolver, req *BindingRequest) (o outcome) {
	m, err := r.Resolve(req)
	if err != nil {
		var rf *ResolutionFailure
		if errors.As(err, &rf) {
			o.failure = rf
		} else {
			o.err = err
		}
		return o
	}
	o.wrapper, o.err = BuildWrapper(req, m)
	return o
}
