package exec

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	coretypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/ledgerkit/sdk/chain"
)

// submitStrategy signs the transaction, broadcasts it, and waits for the
// receipt. The network round trip is the only suspension point.
type submitStrategy struct{}

func (submitStrategy) Apply(ctx context.Context, tx *coretypes.Transaction, client *chain.Client) (RawResult, error) {
	if tx == nil {
		return RawResult{}, errors.New("exec: nil transaction")
	}
	if client == nil {
		return RawResult{}, errors.New("exec: submit mode requires a client")
	}

	signed, err := client.SignTx(tx)
	if err != nil {
		return Failed(fmt.Errorf("sign transaction: %w", err)), nil
	}

	receipt, err := client.SubmitTransaction(ctx, signed)
	if err != nil {
		return Failed(err), nil
	}

	result := RawResult{
		TransactionHash: receipt.TxHash.Hex(),
		BlockNumber:     receipt.BlockNumber.Uint64(),
		GasUsed:         receipt.GasUsed,
	}
	if receipt.ContractAddress != (common.Address{}) {
		result.ContractAddress = receipt.ContractAddress.Hex()
	}

	if receipt.Status == coretypes.ReceiptStatusSuccessful {
		result.Status = StatusSuccess
	} else {
		result.Status = StatusFailed
		result.Err = "transaction reverted"
	}
	return result, nil
}
