package sdk

import (
	"context"
	"encoding/base64"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	coretypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ledgerkit/sdk/chain"
	"github.com/ledgerkit/sdk/exec"
	"github.com/ledgerkit/sdk/plugins/account"
)

func newTestKit(t *testing.T, opts ...Option) *Kit {
	t.Helper()
	opts = append([]Option{
		WithClient(chain.NewOffline("offline", big.NewInt(1337))),
		WithMode(exec.ModeReturnBytes),
	}, opts...)
	kit, err := NewKit(opts...)
	require.NoError(t, err)
	return kit
}

func TestNewKitDefaults(t *testing.T) {
	t.Parallel()

	kit := newTestKit(t)
	_, err := uuid.Parse(kit.SessionID())
	assert.NoError(t, err, "session id is a uuid")
	assert.NotNil(t, kit.Client())
	assert.NotNil(t, kit.Plugins())
}

func TestNewKitRequiresClientOrConfig(t *testing.T) {
	t.Parallel()

	_, err := NewKit()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewKitFromConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "ledgerkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
network:
  name: local
  rpc_url: http://localhost:8545
  chain_id: 1337
mode: bytes
gas_limit: 300000
`), 0o644))

	// The supplied client keeps the kit from dialing the endpoint.
	kit, err := NewKit(
		WithConfigFile(path),
		WithClient(chain.NewOffline("offline", big.NewInt(1337))),
	)
	require.NoError(t, err)
	assert.Equal(t, exec.ModeReturnBytes, kit.execCtx.Mode)
	assert.Equal(t, uint64(300000), kit.execCtx.GasLimit)
	assert.False(t, kit.ownsClient)
}

func TestNewKitBadConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledgerkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network:\n  name: local\n"), 0o644))

	_, err := NewKit(WithConfigFile(path))
	require.Error(t, err)
	assert.ErrorIs(t, err, &KitError{Kind: KindConfiguration})
}

func TestInvoke(t *testing.T) {
	t.Parallel()

	kit := newTestKit(t)
	require.NoError(t, kit.RegisterPlugin(context.Background(), account.New()))

	res, err := kit.Invoke(context.Background(), "transfer_native", map[string]any{
		"to":     "0x00000000000000000000000000000000000000aa",
		"amount": 0.5,
	})
	require.NoError(t, err)
	require.Equal(t, exec.StatusSuccess, res.Raw.Status, res.Message)
	require.NotEmpty(t, res.Raw.UnsignedTx)

	data, err := base64.StdEncoding.DecodeString(res.Raw.UnsignedTx)
	require.NoError(t, err)
	var tx coretypes.Transaction
	require.NoError(t, tx.UnmarshalBinary(data))
	assert.Equal(t, "500000000000000000", tx.Value().String())
}

func TestInvokeWithTracer(t *testing.T) {
	t.Parallel()

	tracer := noop.NewTracerProvider().Tracer("test")
	kit := newTestKit(t, WithTracer(tracer))
	require.NoError(t, kit.RegisterPlugin(context.Background(), account.New()))

	res, err := kit.Invoke(context.Background(), "transfer_native", map[string]any{
		"to":     "0x00000000000000000000000000000000000000aa",
		"amount": 1,
	})
	require.NoError(t, err)
	assert.Equal(t, exec.StatusSuccess, res.Raw.Status, res.Message)
}

func TestInvokeUnknownTool(t *testing.T) {
	t.Parallel()

	kit := newTestKit(t)
	_, err := kit.Invoke(context.Background(), "no_such_tool", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestInvokeInvalidParameters(t *testing.T) {
	t.Parallel()

	kit := newTestKit(t)
	require.NoError(t, kit.RegisterPlugin(context.Background(), account.New()))

	res, err := kit.Invoke(context.Background(), "transfer_native", map[string]any{
		"recipient": "0x00000000000000000000000000000000000000aa",
	})
	require.NoError(t, err, "validation failures are results, not errors")
	assert.Equal(t, exec.StatusFailed, res.Raw.Status)
	assert.Contains(t, res.Message, "Invalid parameters")
}

func TestTools(t *testing.T) {
	t.Parallel()

	kit := newTestKit(t)
	require.NoError(t, kit.RegisterPlugin(context.Background(), account.New()))

	tools, err := kit.Tools(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, tools)
	assert.Equal(t, "transfer_native", tools[0].Method)
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	kit := newTestKit(t)
	require.NoError(t, kit.RegisterPlugin(context.Background(), account.New()))

	require.NoError(t, kit.Shutdown(context.Background()))
	assert.Empty(t, kit.Plugins().All())
}
