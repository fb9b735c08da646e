package plugin

import (
	"context"
	"log/slog"

	"github.com/ledgerkit/sdk/tool"
)

// Plugin is a named, versioned bundle that produces a set of tools against a
// shared context. Identity fields are fixed at construction and immutable.
type Plugin interface {
	// ID returns the unique identifier for the plugin.
	ID() string

	// Name returns the human-readable plugin name.
	Name() string

	// Description returns a human-readable description of the plugin's purpose.
	Description() string

	// Version returns the semantic version of the plugin.
	Version() string

	// Author returns the plugin author.
	Author() string

	// Initialize prepares the plugin for use with the shared context.
	// It is called exactly once per registration and may perform
	// asynchronous setup.
	Initialize(ctx context.Context, pctx *Context) error

	// Tools returns the tools this plugin provides. The registry may call
	// this multiple times; given the same context the result is the same.
	Tools(ctx context.Context) ([]tool.Tool, error)

	// Cleanup releases the plugin's resources. Failures are absorbed and
	// logged by the registry; they never block removal.
	Cleanup(ctx context.Context) error
}

// Descriptor describes a plugin's identity.
type Descriptor struct {
	// ID is the unique identifier for the plugin.
	ID string

	// Name is the human-readable plugin name.
	Name string

	// Description explains the plugin's purpose.
	Description string

	// Version is the semantic version of the plugin.
	Version string

	// Author is the plugin author.
	Author string
}

// ToDescriptor extracts a plugin's identity without touching its implementation.
func ToDescriptor(p Plugin) Descriptor {
	return Descriptor{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Version:     p.Version(),
		Author:      p.Author(),
	}
}

// Context is the shared configuration handed to every plugin registered in
// one registry instance. It is owned by the registry's creator and never
// mutated by plugins.
type Context struct {
	// Logger is the structured logger plugins should log through.
	Logger *slog.Logger

	// Config holds per-plugin configuration, keyed however the host chooses
	// (conventionally by plugin id).
	Config map[string]any
}

// Base supplies the identity accessors and no-op Initialize/Cleanup so
// concrete plugins only implement Tools. Embed it with the descriptor filled
// in:
//
//	type accountPlugin struct {
//		plugin.Base
//	}
//
//	func New() *accountPlugin {
//		return &accountPlugin{Base: plugin.Base{Descriptor: plugin.Descriptor{
//			ID: "account", Name: "Account Plugin", Version: "1.0.0",
//		}}}
//	}
type Base struct {
	Descriptor Descriptor
}

func (b *Base) ID() string          { return b.Descriptor.ID }
func (b *Base) Name() string        { return b.Descriptor.Name }
func (b *Base) Description() string { return b.Descriptor.Description }
func (b *Base) Version() string     { return b.Descriptor.Version }
func (b *Base) Author() string      { return b.Descriptor.Author }

// Initialize is a no-op; override it for plugins that need setup.
func (b *Base) Initialize(ctx context.Context, pctx *Context) error { return nil }

// Cleanup is a no-op; override it for plugins that hold resources.
func (b *Base) Cleanup(ctx context.Context) error { return nil }
