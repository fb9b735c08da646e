package plugin

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/sdk/tool"
)

// fakePlugin records lifecycle calls and yields a fixed set of tools.
type fakePlugin struct {
	Base
	tools        []tool.Tool
	toolsErr     error
	initErr      error
	cleanupErr   error
	cleanupPanic bool
	initCalls    int
	cleanupCalls int
}

func newFakePlugin(id string, toolMethods ...string) *fakePlugin {
	p := &fakePlugin{
		Base: Base{Descriptor: Descriptor{
			ID:      id,
			Name:    id + " plugin",
			Version: "1.0.0",
			Author:  "tests",
		}},
	}
	for _, m := range toolMethods {
		p.tools = append(p.tools, tool.Tool{Method: m, Name: m})
	}
	return p
}

func (p *fakePlugin) Initialize(ctx context.Context, pctx *Context) error {
	p.initCalls++
	return p.initErr
}

func (p *fakePlugin) Tools(ctx context.Context) ([]tool.Tool, error) {
	if p.toolsErr != nil {
		return nil, p.toolsErr
	}
	return p.tools, nil
}

func (p *fakePlugin) Cleanup(ctx context.Context) error {
	p.cleanupCalls++
	if p.cleanupPanic {
		panic("cleanup blew up")
	}
	return p.cleanupErr
}

// newTestRegistry returns a registry whose log output is captured in buf.
func newTestRegistry() (*Registry, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, nil))
	return NewRegistry(&Context{Logger: logger}), buf
}

func TestRegisterAndGet(t *testing.T) {
	t.Parallel()

	r, buf := newTestRegistry()
	ctx := context.Background()

	ids := []string{"account", "token", "topic", "contract"}
	plugins := make(map[string]*fakePlugin, len(ids))
	for _, id := range ids {
		p := newFakePlugin(id)
		plugins[id] = p
		require.NoError(t, r.Register(ctx, p))
		assert.Equal(t, 1, p.initCalls, "initialize called exactly once for %s", id)
	}

	assert.Len(t, r.All(), len(ids))
	for _, id := range ids {
		got, ok := r.Get(id)
		require.True(t, ok)
		assert.Same(t, Plugin(plugins[id]), got)
	}
	assert.Contains(t, buf.String(), "Plugin registered")
}

func TestRegisterDuplicate(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry()
	ctx := context.Background()

	first := newFakePlugin("account")
	second := newFakePlugin("account")

	require.NoError(t, r.Register(ctx, first))
	err := r.Register(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicatePlugin)

	// The first-registered instance must still be the one retrievable.
	got, ok := r.Get("account")
	require.True(t, ok)
	assert.Same(t, Plugin(first), got)
	assert.Len(t, r.All(), 1)
}

func TestRegisterInitializeFailure(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry()
	p := newFakePlugin("broken")
	p.initErr = errors.New("warm-up failed")

	err := r.Register(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warm-up failed")

	_, ok := r.Get("broken")
	assert.False(t, ok, "a plugin that failed to initialize must not be registered")
}

func TestRegisterEmptyID(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry()
	err := r.Register(context.Background(), newFakePlugin(""))
	assert.Error(t, err)
}

func TestAllToolsOrder(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry()
	ctx := context.Background()

	p1 := newFakePlugin("p1", "transfer_native")
	p2 := newFakePlugin("p2", "transfer_token", "approve_token")
	require.NoError(t, r.Register(ctx, p1))
	require.NoError(t, r.Register(ctx, p2))

	tools, err := r.AllTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 3)
	assert.Equal(t, "transfer_native", tools[0].Method)
	assert.Equal(t, "transfer_token", tools[1].Method)
	assert.Equal(t, "approve_token", tools[2].Method)
}

func TestAllToolsPropagatesFailure(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry()
	ctx := context.Background()

	healthy := newFakePlugin("healthy", "a_tool")
	broken := newFakePlugin("broken")
	broken.toolsErr = errors.New("sub-client not warmed")
	require.NoError(t, r.Register(ctx, healthy))
	require.NoError(t, r.Register(ctx, broken))

	_, err := r.AllTools(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestUnregisterMissing(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry()
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, newFakePlugin("account")))
	assert.False(t, r.Unregister(ctx, "nope"))
	assert.Len(t, r.All(), 1, "registry state unchanged after unregistering a missing id")
}

func TestUnregister(t *testing.T) {
	t.Parallel()

	r, buf := newTestRegistry()
	ctx := context.Background()

	p := newFakePlugin("account")
	require.NoError(t, r.Register(ctx, p))

	assert.True(t, r.Unregister(ctx, "account"))
	assert.Equal(t, 1, p.cleanupCalls, "cleanup invoked exactly once")

	_, ok := r.Get("account")
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "Plugin unregistered")
}

func TestUnregisterCleanupError(t *testing.T) {
	t.Parallel()

	r, buf := newTestRegistry()
	ctx := context.Background()

	p := newFakePlugin("account")
	p.cleanupErr = errors.New("connection already closed")
	require.NoError(t, r.Register(ctx, p))

	assert.True(t, r.Unregister(ctx, "account"), "cleanup failure must not prevent removal")
	_, ok := r.Get("account")
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "Error during plugin cleanup")
}

func TestUnregisterCleanupPanic(t *testing.T) {
	t.Parallel()

	r, buf := newTestRegistry()
	ctx := context.Background()

	p := newFakePlugin("account")
	p.cleanupPanic = true
	require.NoError(t, r.Register(ctx, p))

	assert.True(t, r.Unregister(ctx, "account"))
	_, ok := r.Get("account")
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "Error during plugin cleanup")
}

func TestUnregisterAll(t *testing.T) {
	t.Parallel()

	r, buf := newTestRegistry()
	ctx := context.Background()

	a := newFakePlugin("a")
	a.cleanupErr = errors.New("a is broken")
	b := newFakePlugin("b")
	require.NoError(t, r.Register(ctx, a))
	require.NoError(t, r.Register(ctx, b))

	r.UnregisterAll(ctx)

	assert.Empty(t, r.All())
	assert.Equal(t, 1, a.cleanupCalls)
	assert.Equal(t, 1, b.cleanupCalls, "a failing sibling must not abort the sweep")
	assert.Contains(t, buf.String(), "Error during plugin cleanup")
}

func TestToDescriptor(t *testing.T) {
	t.Parallel()

	p := newFakePlugin("account")
	d := ToDescriptor(p)
	assert.Equal(t, "account", d.ID)
	assert.Equal(t, "account plugin", d.Name)
	assert.Equal(t, "1.0.0", d.Version)
	assert.Equal(t, "tests", d.Author)
}

func TestBaseDefaults(t *testing.T) {
	t.Parallel()

	b := &Base{Descriptor: Descriptor{ID: "base"}}
	assert.NoError(t, b.Initialize(context.Background(), &Context{}))
	assert.NoError(t, b.Cleanup(context.Background()))
}
