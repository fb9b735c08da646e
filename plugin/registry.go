package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ledgerkit/sdk/tool"
)

// ErrDuplicatePlugin indicates a plugin with the same id is already registered.
var ErrDuplicatePlugin = fmt.Errorf("plugin already registered")

// Registry manages plugin lifecycle within one session: registration with
// initialization, ordered tool aggregation, and teardown that stays total
// even when individual plugins misbehave.
//
// The identity map is guarded by a mutex; plugin hooks (Initialize, Tools,
// Cleanup) run outside the lock because they may block on I/O.
type Registry struct {
	logger  *slog.Logger
	pctx    *Context
	mu      sync.RWMutex
	plugins map[string]Plugin
	order   []string
}

// NewRegistry creates a registry that shares pctx with every plugin it
// registers. A nil pctx gets an empty context; a nil logger falls back to
// slog.Default().
func NewRegistry(pctx *Context) *Registry {
	if pctx == nil {
		pctx = &Context{}
	}
	logger := pctx.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:  logger,
		pctx:    pctx,
		plugins: make(map[string]Plugin),
	}
}

// Register initializes the plugin with the shared context and inserts it
// under its id. Registering an id that is already present fails with
// ErrDuplicatePlugin and never replaces the prior entry.
func (r *Registry) Register(ctx context.Context, p Plugin) error {
	id := p.ID()
	if id == "" {
		return fmt.Errorf("plugin id is required")
	}

	r.mu.RLock()
	_, exists := r.plugins[id]
	r.mu.RUnlock()
	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, id)
	}

	// Initialize outside the lock; it may suspend on plugin setup.
	if err := p.Initialize(ctx, r.pctx); err != nil {
		return fmt.Errorf("initialize plugin %s: %w", id, err)
	}

	r.mu.Lock()
	if _, exists := r.plugins[id]; exists {
		r.mu.Unlock()
		// A concurrent registration won the race. The rejected instance was
		// already initialized, so release its resources before discarding it.
		r.cleanup(ctx, p)
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, id)
	}
	r.plugins[id] = p
	r.order = append(r.order, id)
	r.mu.Unlock()

	r.logger.Info("Plugin registered",
		slog.String("id", id),
		slog.String("name", p.Name()),
	)
	return nil
}

// Get returns the plugin registered under id. The second return reports
// whether it was found; absence is not an error.
func (r *Registry) Get(id string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[id]
	return p, ok
}

// All returns a snapshot of the registered plugins in registration order.
func (r *Registry) All() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Plugin, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.plugins[id])
	}
	return all
}

// AllTools concatenates the tools of every registered plugin, in registration
// order and each plugin's own tool order. A plugin whose Tools call fails
// propagates the failure to the caller.
func (r *Registry) AllTools(ctx context.Context) ([]tool.Tool, error) {
	var tools []tool.Tool
	for _, p := range r.All() {
		pluginTools, err := p.Tools(ctx)
		if err != nil {
			return nil, fmt.Errorf("tools of plugin %s: %w", p.ID(), err)
		}
		tools = append(tools, pluginTools...)
	}
	return tools, nil
}

// Unregister removes the plugin registered under id, invoking its Cleanup
// first. It returns false if no such plugin exists. Cleanup failures are
// logged and do not prevent removal.
func (r *Registry) Unregister(ctx context.Context, id string) bool {
	r.mu.RLock()
	p, ok := r.plugins[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	r.cleanup(ctx, p)

	r.mu.Lock()
	delete(r.plugins, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.logger.Info("Plugin unregistered", slog.String("id", id))
	return true
}

// UnregisterAll unregisters every registered plugin, leaving the registry
// empty. Cleanup failures on individual plugins do not abort the sweep.
func (r *Registry) UnregisterAll(ctx context.Context) {
	r.mu.RLock()
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	r.mu.RUnlock()

	for _, id := range ids {
		r.Unregister(ctx, id)
	}
}

// cleanup runs a plugin's Cleanup inside its own failure boundary: error
// returns and panics alike are logged and absorbed, so one broken plugin
// cannot leak its siblings or crash the shutdown path.
func (r *Registry) cleanup(ctx context.Context, p Plugin) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Error during plugin cleanup",
				slog.String("id", p.ID()),
				slog.Any("panic", rec),
			)
		}
	}()

	if err := p.Cleanup(ctx); err != nil {
		r.logger.Error("Error during plugin cleanup",
			slog.String("id", p.ID()),
			slog.Any("error", err),
		)
	}
}
