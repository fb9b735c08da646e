package tool

import (
	"context"

	coretypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/ledgerkit/sdk/chain"
	"github.com/ledgerkit/sdk/exec"
	"github.com/ledgerkit/sdk/schema"
)

// BuildFunc normalizes validated parameters and constructs the unsigned
// transaction for a tool. It runs before strategy selection and is the only
// per-tool transaction logic; everything after it is shared.
type BuildFunc func(ctx context.Context, client *chain.Client, ec *exec.Context, p map[string]any) (*coretypes.Transaction, error)

// FormatFunc is the per-tool result post-processor: a pure function from a
// successful RawResult to a human-readable message. It must not inspect
// context or perform I/O.
type FormatFunc func(raw exec.RawResult) string

// TxSpec describes a transaction-producing tool.
type TxSpec struct {
	Method      string
	Name        string
	Description string
	Parameters  schema.JSON

	// FailureLabel prefixes the message of every failed Result, e.g.
	// "Failed to transfer tokens".
	FailureLabel string

	Build  BuildFunc
	Format FormatFunc
}

// NewTransaction builds a Tool whose execute function follows the uniform
// pipeline: validate parameters, build the unsigned transaction, hand it to
// the strategy selected by the execution mode, and post-process the result.
// Every failure along the way becomes a failed Result carrying the tool's
// failure label and the error detail.
func NewTransaction(spec TxSpec) Tool {
	return Tool{
		Method:      spec.Method,
		Name:        spec.Name,
		Description: spec.Description,
		Parameters:  spec.Parameters,
		Execute: func(ctx context.Context, client *chain.Client, ec *exec.Context, p map[string]any) Result {
			if err := spec.Parameters.Validate(p); err != nil {
				return Failure(spec.FailureLabel, err)
			}

			tx, err := spec.Build(ctx, client, ec, p)
			if err != nil {
				return Failure(spec.FailureLabel, err)
			}

			strategy, err := exec.ForMode(ec.Mode)
			if err != nil {
				return Failure(spec.FailureLabel, err)
			}

			raw, err := strategy.Apply(ctx, tx, client)
			if err != nil {
				return Failure(spec.FailureLabel, err)
			}
			if raw.Status != exec.StatusSuccess {
				return Result{
					Raw:     raw,
					Message: spec.FailureLabel + ": " + raw.Err,
				}
			}

			return Result{Raw: raw, Message: spec.Format(raw)}
		},
	}
}
