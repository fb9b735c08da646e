// Package sdk provides the LedgerKit SDK for building ledger tooling on top
// of plugins, tools, and a shared chain client.
//
// # Overview
//
// LedgerKit organizes ledger operations as tools grouped into plugins. A
// plugin packages related tools under a unique id with lifecycle hooks for
// initialization and cleanup. The Kit is the entry point: it owns the chain
// client, the plugin registry, and the execution mode shared by every
// invocation.
//
// # Creating a Kit
//
//	kit, err := sdk.NewKit(
//	    sdk.WithConfigFile("ledgerkit.yaml"),
//	    sdk.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer kit.Shutdown(context.Background())
//
// The configuration file names the network endpoint, the execution mode, and
// per-plugin settings. A preconstructed client can be supplied instead with
// WithClient.
//
// # Registering plugins and invoking tools
//
//	if err := kit.RegisterPlugin(ctx, account.New()); err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := kit.Invoke(ctx, "transfer_native", map[string]any{
//	    "to":     "0x...",
//	    "amount": 0.5,
//	})
//
// Tool failures caused by invalid parameters or rejected transactions are
// reported in the Result with a failed status and a human-readable message.
// The error return is reserved for conditions outside the tool's control,
// such as an unknown method name.
//
// # Execution modes
//
// Transaction tools complete in one of two modes. In ModeSubmit the kit
// signs each transaction with the operator key, submits it, and waits for
// the receipt. In ModeReturnBytes the kit returns the unsigned transaction
// bytes, base64 encoded, for an external holder of the keys to sign and
// submit. The mode is fixed per kit and never decided by individual tools.
//
// # Subpackages
//
//   - chain: the network client, transaction construction, and signing
//   - exec: execution modes and the strategy that completes transactions
//   - plugin: the plugin contract and registry
//   - tool: the tool type and the transaction tool pipeline
//   - schema: JSON schema definition and validation for tool parameters
//   - params: parameter normalization helpers for tool inputs
//   - config: ledgerkit.yaml loading
//   - plugins/...: the built-in account, token, topic, and contract plugins
package sdk
