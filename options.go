package sdk

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/ledgerkit/sdk/chain"
	"github.com/ledgerkit/sdk/exec"
)

// Option configures a Kit.
type Option func(*kitConfig)

// kitConfig holds configuration for a Kit instance.
type kitConfig struct {
	configPath string
	logger     *slog.Logger
	tracer     trace.Tracer
	client     *chain.Client
	mode       exec.Mode
	modeSet    bool
	gasLimit   uint64
}

// WithConfigFile sets the ledgerkit.yaml path for the kit. The file supplies
// the network endpoint, execution mode, gas limit, and per-plugin settings.
// Settings from explicit options take precedence over the file.
func WithConfigFile(path string) Option {
	return func(c *kitConfig) {
		c.configPath = path
	}
}

// WithLogger sets a custom logger for the kit.
// If not provided, a default logger will be created.
func WithLogger(logger *slog.Logger) Option {
	return func(c *kitConfig) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for distributed tracing.
// Each tool invocation runs inside its own span when a tracer is set.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *kitConfig) {
		c.tracer = tracer
	}
}

// WithClient supplies an already constructed chain client. The kit will not
// dial the configured network and will not close the client on shutdown.
func WithClient(client *chain.Client) Option {
	return func(c *kitConfig) {
		c.client = client
	}
}

// WithMode selects the execution mode for every tool invocation.
// ModeSubmit signs and submits transactions; ModeReturnBytes returns the
// unsigned transaction for external signing.
func WithMode(mode exec.Mode) Option {
	return func(c *kitConfig) {
		c.mode = mode
		c.modeSet = true
	}
}

// WithGasLimit caps the gas limit on every constructed transaction.
// Zero leaves the limit to estimation or the built-in default.
func WithGasLimit(limit uint64) Option {
	return func(c *kitConfig) {
		c.gasLimit = limit
	}
}
