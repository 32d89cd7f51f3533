package source

import (
	"fmt"
	"sort"
	"sync"

	"github.com/entropool/entropool/pool"
)

// Registry resolves source kinds to collectors. The kind enumeration is
// closed; the registry is the single extension seam for wiring new
// adapters into a binary.
type Registry struct {
	mu         sync.RWMutex
	collectors map[pool.SourceKind]Collector
}

func NewRegistry() *Registry {
	return &Registry{collectors: map[pool.SourceKind]Collector{}}
}

// Register registers a collector under its own kind.
func (r *Registry) Register(c Collector) error {
	if c == nil {
		return fmt.Errorf("source: nil collector")
	}
	kind := c.Kind()
	switch kind {
	case pool.SourceHardwareChallenge, pool.SourceDice, pool.SourceHardwareNoise, pool.SourceSystemRNG:
	case pool.SourceComposite:
		// Composite pools come out of the combiner, never a collector.
		return fmt.Errorf("source: composite is not collectable")
	default:
		return fmt.Errorf("source: unknown kind %s", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.collectors[kind]; exists {
		return fmt.Errorf("source: collector for %s already registered", kind)
	}
	r.collectors[kind] = c
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(c Collector) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Lookup returns the collector for kind, if registered.
func (r *Registry) Lookup(kind pool.SourceKind) (Collector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collectors[kind]
	return c, ok
}

// Kinds returns the registered kinds in numeric order.
func (r *Registry) Kinds() []pool.SourceKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]pool.SourceKind, 0, len(r.collectors))
	for kind := range r.collectors {
		out = append(out, kind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
