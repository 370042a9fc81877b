package transform

import (
	"fmt"
	"log/slog"
	"sync"

	"galleyd/internal/config"
)

// Registry resolves configured transformer names to implementations and
// keeps the per-class pipelines built from them.
type Registry struct {
	mu           sync.RWMutex
	transformers map[string]Transformer
	byClass      map[string][]Transformer
}

// NewRegistry returns a registry with the built-in transformers
// registered. Nothing is bound to a document class until Bind runs.
func NewRegistry() *Registry {
	r := &Registry{
		transformers: make(map[string]Transformer),
		byClass:      make(map[string][]Transformer),
	}
	r.Register("embed-images", &EmbedImages{})
	r.Register("embed-media", &EmbedMedia{})
	return r
}

// Register adds a named transformer. Registering an existing name
// replaces it.
func (r *Registry) Register(name string, t Transformer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transformers[name] = t
}

// Bind resolves the class bindings in cfg against the registered
// transformers. An unknown name fails the whole bind and leaves the
// previous bindings in place.
func (r *Registry) Bind(cfg *config.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byClass := make(map[string][]Transformer)

	for _, transformConfig := range cfg.Transforms {
		for _, name := range transformConfig.Transformers {
			t, ok := r.transformers[name]
			if !ok {
				return fmt.Errorf("unknown transformer: %s", name)
			}
			byClass[transformConfig.Class] = append(byClass[transformConfig.Class], t)
			slog.Info("Bound transformer", "class", transformConfig.Class, "name", name)
		}
	}

	r.byClass = byClass
	return nil
}

// ForClass returns the transformers bound to a document class, in
// configuration order.
func (r *Registry) ForClass(class string) []Transformer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byClass[class]
}
