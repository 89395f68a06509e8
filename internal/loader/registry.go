package loader

import (
	"fmt"
	"sync"

	"github.com/hyeniworld/loaderkit/internal/domain"
)

// Registry manages available loader installers
type Registry struct {
	mu         sync.RWMutex
	installers map[domain.LoaderVariant]Installer
}

// NewRegistry creates a new installer registry
func NewRegistry(installers ...Installer) *Registry {
	r := &Registry{
		installers: make(map[domain.LoaderVariant]Installer),
	}
	for _, inst := range installers {
		r.Register(inst)
	}
	return r
}

// Register adds an installer, replacing any previous one for its variant
func (r *Registry) Register(inst Installer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.installers[inst.Variant()] = inst
}

// Get retrieves the installer for variant
func (r *Registry) Get(variant domain.LoaderVariant) (Installer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.installers[variant]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported loader type: %s", domain.ErrUnsupportedVariant, variant)
	}
	return inst, nil
}

// List returns all registered installers in variant display order
func (r *Registry) List() []Installer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	installers := make([]Installer, 0, len(r.installers))
	for _, v := range domain.Variants {
		if inst, ok := r.installers[v]; ok {
			installers = append(installers, inst)
		}
	}
	return installers
}
