package sdk

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/ledgerkit/sdk/chain"
	"github.com/ledgerkit/sdk/config"
	"github.com/ledgerkit/sdk/exec"
	"github.com/ledgerkit/sdk/plugin"
	"github.com/ledgerkit/sdk/tool"
)

// Kit is the main SDK entry point. It owns the chain client, the plugin
// registry, and the execution settings shared by every tool invocation.
//
// A Kit coordinates between:
//   - Plugins: packages of related tools registered under a unique id
//   - Tools: named operations invoked with JSON-typed parameters
//   - The chain client: the network collaborator tools execute against
//
// Example:
//
//	kit, err := sdk.NewKit(
//	    sdk.WithConfigFile("ledgerkit.yaml"),
//	    sdk.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer kit.Shutdown(context.Background())
type Kit struct {
	sessionID  string
	logger     *slog.Logger
	tracer     trace.Tracer
	client     *chain.Client
	ownsClient bool
	registry   *plugin.Registry
	execCtx    exec.Context
}

// NewKit creates a new kit instance from the provided options, optionally
// loading a ledgerkit.yaml file first. Explicit options take precedence over
// file settings.
func NewKit(opts ...Option) (*Kit, error) {
	cfg := &kitConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	ownsClient := false
	pluginConfigs := map[string]map[string]any{}
	if cfg.configPath != "" {
		fileCfg, err := config.Load(cfg.configPath)
		if err != nil {
			return nil, NewConfigurationError("NewKit", err)
		}
		pluginConfigs = fileCfg.Plugins

		if !cfg.modeSet {
			mode, err := exec.ParseMode(fileCfg.Mode)
			if err != nil {
				return nil, NewConfigurationError("NewKit", err)
			}
			cfg.mode = mode
		}
		if cfg.gasLimit == 0 {
			cfg.gasLimit = fileCfg.GasLimit
		}
		if cfg.client == nil {
			client, err := dialFromConfig(fileCfg)
			if err != nil {
				return nil, err
			}
			cfg.client = client
			ownsClient = true
		}
	}

	if cfg.client == nil {
		return nil, NewConfigurationError("NewKit",
			fmt.Errorf("%w: a chain client or config file is required", ErrInvalidConfig))
	}

	k := &Kit{
		sessionID:  uuid.New().String(),
		logger:     cfg.logger,
		tracer:     cfg.tracer,
		client:     cfg.client,
		ownsClient: ownsClient,
		execCtx: exec.Context{
			Mode:     cfg.mode,
			Operator: cfg.client.Operator(),
			GasLimit: cfg.gasLimit,
		},
	}
	k.registry = plugin.NewRegistry(&plugin.Context{
		Logger: cfg.logger,
		Config: flattenPluginConfigs(pluginConfigs),
	})

	k.logger.Info("kit created",
		slog.String("session_id", k.sessionID),
		slog.String("network", k.client.Name()),
		slog.String("mode", k.execCtx.Mode.String()),
	)
	return k, nil
}

// dialFromConfig connects to the network named by the configuration file,
// wiring in the operator signer when one is configured.
func dialFromConfig(fileCfg *config.Config) (*chain.Client, error) {
	var signer chain.Signer
	key, err := fileCfg.OperatorKey()
	if err != nil {
		return nil, NewConfigurationError("NewKit", err)
	}
	if key != "" {
		signer, err = chain.NewKeySignerFromHex(key)
		if err != nil {
			return nil, NewConfigurationError("NewKit", err)
		}
	}

	client, err := chain.Dial(context.Background(), chain.Config{
		Name:    fileCfg.Network.Name,
		RPCURL:  fileCfg.Network.RPCURL,
		ChainID: fileCfg.ChainID(),
		Signer:  signer,
	})
	if err != nil {
		return nil, NewNetworkError("NewKit", err)
	}
	return client, nil
}

// flattenPluginConfigs converts the file's per-plugin blocks into the
// id-keyed map the plugin context carries.
func flattenPluginConfigs(configs map[string]map[string]any) map[string]any {
	flat := make(map[string]any, len(configs))
	for id, block := range configs {
		flat[id] = block
	}
	return flat
}

// SessionID returns the unique identifier of this kit instance.
func (k *Kit) SessionID() string {
	return k.sessionID
}

// Client returns the chain client tools execute against.
func (k *Kit) Client() *chain.Client {
	return k.client
}

// Plugins returns the plugin registry for registering and discovering plugins.
func (k *Kit) Plugins() *plugin.Registry {
	return k.registry
}

// RegisterPlugin initializes the plugin and adds it to the registry.
// Registering a plugin whose id is already taken fails without replacing
// the existing plugin.
func (k *Kit) RegisterPlugin(ctx context.Context, p plugin.Plugin) error {
	return k.registry.Register(ctx, p)
}

// Tools returns every tool exposed by the registered plugins, in
// registration order.
func (k *Kit) Tools(ctx context.Context) ([]tool.Tool, error) {
	tools, err := k.registry.AllTools(ctx)
	if err != nil {
		return nil, NewExecutionError("Kit.Tools", err)
	}
	return tools, nil
}

// Invoke executes the tool registered under the given method name.
//
// Parameter validation failures and transaction failures are reported in the
// returned Result with a failed status, not as errors. The error return is
// reserved for conditions outside the tool's control, such as an unknown
// method name.
func (k *Kit) Invoke(ctx context.Context, method string, params map[string]any) (tool.Result, error) {
	if k.tracer != nil {
		var span trace.Span
		ctx, span = k.tracer.Start(ctx, "Kit.Invoke")
		defer span.End()
	}

	t, err := k.findTool(ctx, method)
	if err != nil {
		return tool.Result{}, err
	}

	if err := t.Parameters.Validate(params); err != nil {
		k.logger.Warn("tool parameters rejected",
			slog.String("method", method),
			slog.String("error", err.Error()),
		)
		return tool.Failure("Invalid parameters", err), nil
	}

	ec := k.execCtx
	result := t.Execute(ctx, k.client, &ec, params)

	k.logger.Info("tool invoked",
		slog.String("method", method),
		slog.String("status", string(result.Raw.Status)),
	)
	return result, nil
}

// findTool scans the registered plugins for the tool with the given method.
func (k *Kit) findTool(ctx context.Context, method string) (tool.Tool, error) {
	tools, err := k.registry.AllTools(ctx)
	if err != nil {
		return tool.Tool{}, NewExecutionError("Kit.Invoke", err)
	}
	for _, t := range tools {
		if t.Method == method {
			return t, nil
		}
	}
	return tool.Tool{}, NewNotFoundError("Kit.Invoke", ErrToolNotFound).
		WithContext(map[string]any{"method": method})
}

// Shutdown unregisters every plugin, running their cleanup hooks, and closes
// the chain client if the kit created it. Cleanup failures are logged and do
// not interrupt the shutdown.
func (k *Kit) Shutdown(ctx context.Context) error {
	k.logger.Info("shutting down kit", slog.String("session_id", k.sessionID))

	k.registry.UnregisterAll(ctx)
	if k.ownsClient {
		k.client.Close()
	}
	return nil
}
