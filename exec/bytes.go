package exec

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	coretypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/ledgerkit/sdk/chain"
)

// bytesStrategy serializes the unsigned transaction to a transportable form
// instead of submitting it. The client's submission path is never touched,
// so this strategy works without any network connectivity.
type bytesStrategy struct{}

func (bytesStrategy) Apply(ctx context.Context, tx *coretypes.Transaction, client *chain.Client) (RawResult, error) {
	if tx == nil {
		return RawResult{}, errors.New("exec: nil transaction")
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return Failed(fmt.Errorf("encode transaction: %w", err)), nil
	}

	return RawResult{
		Status:     StatusSuccess,
		UnsignedTx: base64.StdEncoding.EncodeToString(raw),
	}, nil
}
