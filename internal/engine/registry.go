package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/petrijr/sessionflow/pkg/api"
)

// Registry maps action names to workflows.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]api.Workflow
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]api.Workflow),
	}
}

// Register adds wf under name. Names must be unique.
func (r *Registry) Register(name string, wf api.Workflow) error {
	if name == "" {
		return errors.New("workflow name is required")
	}
	if wf == nil {
		return fmt.Errorf("workflow %q has nil function", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("workflow already registered: %s", name)
	}
	r.byName[name] = wf
	return nil
}

// Get returns the workflow registered under name.
func (r *Registry) Get(name string) (api.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wf, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", api.ErrUnknownWorkflow, name)
	}
	return wf, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
