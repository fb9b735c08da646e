package exec

import (
	"context"
	"fmt"

	coretypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/ledgerkit/sdk/chain"
)

// Status is the outcome classification of a transaction attempt.
type Status string

const (
	// StatusSuccess indicates the operation completed (submitted and
	// confirmed, or encoded for out-of-band signing).
	StatusSuccess Status = "success"

	// StatusFailed indicates the operation was rejected, reverted, or
	// could not be completed.
	StatusFailed Status = "failed"
)

// RawResult is the mode-agnostic outcome of a transaction attempt. It is a
// superset of the fields any operation might populate; fields not listed for
// an operation are left at their zero value.
//
// Field applicability:
//   - Status, Err: every operation.
//   - TransactionHash, BlockNumber, GasUsed: submit mode, confirmed transactions.
//   - ContractAddress: contract and token deployments (submit mode).
//   - Account, Amount: balance and transfer operations.
//   - UnsignedTx: return-bytes mode only (base64-encoded RLP).
type RawResult struct {
	Status          Status `json:"status"`
	Err             string `json:"error,omitempty"`
	TransactionHash string `json:"transactionHash,omitempty"`
	BlockNumber     uint64 `json:"blockNumber,omitempty"`
	GasUsed         uint64 `json:"gasUsed,omitempty"`
	ContractAddress string `json:"contractAddress,omitempty"`
	Account         string `json:"account,omitempty"`
	Amount          string `json:"amount,omitempty"`
	UnsignedTx      string `json:"unsignedTx,omitempty"`
}

// Failed returns a failure RawResult carrying the given error detail.
func Failed(err error) RawResult {
	return RawResult{Status: StatusFailed, Err: err.Error()}
}

// Strategy completes a constructed, unsigned transaction. Both strategies
// accept the same arguments and return the same RawResult shape, which keeps
// every tool's execute function strategy-agnostic.
type Strategy interface {
	// Apply completes the transaction. SDK-level failures (rejection,
	// revert, timeout) are reported inside the RawResult, not as an error;
	// the error return is reserved for programming mistakes such as a nil
	// transaction.
	Apply(ctx context.Context, tx *coretypes.Transaction, client *chain.Client) (RawResult, error)
}

// ForMode maps an execution mode to its strategy. Adding a mode without a
// case here is a compile-visible omission rather than a stray string
// comparison at call sites.
func ForMode(mode Mode) (Strategy, error) {
	switch mode {
	case ModeSubmit:
		return submitStrategy{}, nil
	case ModeReturnBytes:
		return bytesStrategy{}, nil
	default:
		return nil, fmt.Errorf("exec: no strategy for mode %s", mode)
	}
}
