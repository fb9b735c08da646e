package chain

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/backends"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var testChainID = big.NewInt(1337)

// newTestClient spins up a simulated backend with a funded operator account.
func newTestClient(t *testing.T) *Client {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	signer, err := NewKeySigner(key)
	require.NoError(t, err)

	alloc := core.GenesisAlloc{
		signer.Address(): {Balance: big.NewInt(1_000_000_000_000_000_000)},
	}
	backend := backends.NewSimulatedBackend(alloc, 8_000_000)

	client := NewSimulated("simulated", testChainID, backend, signer)
	t.Cleanup(client.Close)
	return client
}

func TestClientBalanceAndNonce(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := newTestClient(t)

	balance, err := client.BalanceAt(ctx, client.Operator())
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1_000_000_000_000_000_000), balance)

	nonce, err := client.PendingNonce(ctx, client.Operator())
	require.NoError(t, err)
	require.Equal(t, uint64(0), nonce)
}

func TestClientSubmitTransfer(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := newTestClient(t)
	recipient := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	tx, err := client.NewTransaction(ctx, TxParams{
		To:    &recipient,
		Value: big.NewInt(1_000),
	})
	require.NoError(t, err)

	signed, err := client.SignTx(tx)
	require.NoError(t, err)

	receipt, err := client.SubmitTransaction(ctx, signed)
	require.NoError(t, err)
	require.Equal(t, uint64(1), receipt.Status)
	require.Equal(t, signed.Hash(), receipt.TxHash)

	balance, err := client.BalanceAt(ctx, recipient)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1_000), balance)
}

func TestClientOfflineConstruction(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)

	tx, err := client.NewTransaction(context.Background(), TxParams{
		To:      &common.Address{},
		Value:   big.NewInt(42),
		Offline: true,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(0), tx.Nonce())
	require.Equal(t, uint64(DefaultGasLimit), tx.Gas())
	require.Equal(t, testChainID, tx.ChainId())
}

func TestClientSuggestFees(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	tip, feeCap, err := client.SuggestFees(ctx)
	require.NoError(t, err)
	require.NotNil(t, tip)
	require.NotNil(t, feeCap)
	require.True(t, feeCap.Cmp(tip) >= 0, "fee cap should cover the tip")
}

func TestClientClosed(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	client.Close()

	_, err := client.BalanceAt(context.Background(), common.Address{})
	require.Error(t, err)

	_, err = client.CallContract(context.Background(), ethereum.CallMsg{})
	require.Error(t, err)

	_, err = client.FilterLogs(context.Background(), ethereum.FilterQuery{})
	require.Error(t, err)
}

func TestClientCloseConcurrentReads(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				// Once Close lands these return the closed-client error;
				// either way they must not race with Close.
				_, _ = client.BalanceAt(ctx, common.Address{})
				_, _, _ = client.SuggestFees(ctx)
			}
		}()
	}
	client.Close()
	wg.Wait()

	_, err := client.PendingNonce(ctx, common.Address{})
	require.Error(t, err)
}

func TestNewKeySignerFromHex(t *testing.T) {
	t.Parallel()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := common.Bytes2Hex(crypto.FromECDSA(key))

	signer, err := NewKeySignerFromHex(hexKey)
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), signer.Address())

	_, err = NewKeySignerFromHex("not-a-key")
	require.Error(t, err)
}
