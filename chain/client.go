package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/backends"
	"github.com/ethereum/go-ethereum/common"
	coretypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// DefaultGasLimit is used for offline transaction construction when the
// caller does not supply a gas limit and the network cannot be asked for
// an estimate.
const DefaultGasLimit = 400_000

// defaultGasTipCap is the fallback priority fee (1 gwei) for offline
// construction.
var defaultGasTipCap = big.NewInt(1_000_000_000)

// Backend is the subset of the go-ethereum client surface the kit relies on.
// Both *ethclient.Client and the simulated backend satisfy it.
type Backend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*coretypes.Header, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *coretypes.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*coretypes.Receipt, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]coretypes.Log, error)
}

// committer is implemented by backends that require explicit block
// production, such as the simulated backend used in tests.
type committer interface {
	Commit() common.Hash
}

// Config describes how to construct a ledger client.
type Config struct {
	Name    string
	RPCURL  string
	ChainID *big.Int
	Signer  Signer
}

// Client is the network collaborator for tool execution. It wraps a
// go-ethereum backend together with the operator's transaction signer and
// provides the single transaction-construction path shared by both
// execution modes.
type Client struct {
	name      string
	rpcClient *gethrpc.Client
	backend   Backend
	signer    Signer
	chainID   *big.Int
	mu        sync.Mutex
}

// Dial connects to the configured RPC endpoint and returns a ready client.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	rpcURL := strings.TrimSpace(cfg.RPCURL)
	if rpcURL == "" {
		return nil, errors.New("chain: rpc url is required")
	}

	rpcClient, err := gethrpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %s: %w", rpcURL, err)
	}
	eth := ethclient.NewClient(rpcClient)

	chainID := cfg.ChainID
	if chainID == nil {
		chainID, err = eth.ChainID(ctx)
		if err != nil {
			rpcClient.Close()
			return nil, fmt.Errorf("chain: query chain id: %w", err)
		}
	}

	return &Client{
		name:      cfg.Name,
		rpcClient: rpcClient,
		backend:   eth,
		signer:    cfg.Signer,
		chainID:   new(big.Int).Set(chainID),
	}, nil
}

// NewOffline returns a client with no network backend. It supports only
// offline transaction construction, which is all the return-bytes execution
// mode needs.
func NewOffline(name string, chainID *big.Int) *Client {
	return &Client{
		name:    name,
		chainID: new(big.Int).Set(chainID),
	}
}

// NewSimulated wraps a go-ethereum simulated backend for testing purposes.
func NewSimulated(name string, chainID *big.Int, backend *backends.SimulatedBackend, signer Signer) *Client {
	return &Client{
		name:    name,
		backend: backend,
		signer:  signer,
		chainID: new(big.Int).Set(chainID),
	}
}

// Name returns the configured network name.
func (c *Client) Name() string {
	return c.name
}

// ChainID returns the chain identifier the client was configured for.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Operator returns the address of the configured signer, or the zero
// address if no signer is attached.
func (c *Client) Operator() common.Address {
	if c.signer == nil {
		return common.Address{}
	}
	return c.signer.Address()
}

// Close releases network connections held by the client.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rpcClient != nil {
		c.rpcClient.Close()
		c.rpcClient = nil
	}
	c.backend = nil
}

// activeBackend returns the backend under the lock, so concurrent readers
// observe Close consistently.
func (c *Client) activeBackend() (Backend, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backend == nil {
		return nil, errors.New("chain: client is closed")
	}
	return c.backend, nil
}

// BalanceAt returns the current balance of the given account in wei.
func (c *Client) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	backend, err := c.activeBackend()
	if err != nil {
		return nil, err
	}
	balance, err := backend.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("chain: balance of %s: %w", account.Hex(), err)
	}
	return balance, nil
}

// PendingNonce returns the next nonce for the given account, including
// pending transactions.
func (c *Client) PendingNonce(ctx context.Context, account common.Address) (uint64, error) {
	backend, err := c.activeBackend()
	if err != nil {
		return 0, err
	}
	nonce, err := backend.PendingNonceAt(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("chain: nonce of %s: %w", account.Hex(), err)
	}
	return nonce, nil
}

// SuggestFees returns a gas tip cap and fee cap derived from the latest
// header's base fee.
func (c *Client) SuggestFees(ctx context.Context) (gasTipCap, gasFeeCap *big.Int, err error) {
	backend, err := c.activeBackend()
	if err != nil {
		return nil, nil, err
	}

	gasTipCap, err = backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("chain: suggest gas tip: %w", err)
	}

	head, err := backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("chain: latest header: %w", err)
	}

	gasFeeCap = new(big.Int).Set(gasTipCap)
	if head.BaseFee != nil {
		// fee cap = 2*baseFee + tip, the usual headroom for base fee growth
		gasFeeCap = new(big.Int).Add(
			new(big.Int).Mul(head.BaseFee, big.NewInt(2)),
			gasTipCap,
		)
	}
	return gasTipCap, gasFeeCap, nil
}

// TxParams describes the transaction to construct. Nonce and GasLimit are
// optional overrides; when zero they are resolved from the network (or
// defaulted in offline mode).
type TxParams struct {
	To       *common.Address // nil for contract creation
	Value    *big.Int
	Data     []byte
	Nonce    uint64
	GasLimit uint64

	// Offline skips all network lookups. The resulting transaction carries
	// a zero nonce and fallback fees unless overridden; an external signer
	// is expected to complete those fields before submission.
	Offline bool
}

// NewTransaction builds an unsigned dynamic-fee transaction. This is the
// single construction path used by every tool regardless of execution mode.
func (c *Client) NewTransaction(ctx context.Context, params TxParams) (*coretypes.Transaction, error) {
	value := params.Value
	if value == nil {
		value = new(big.Int)
	}

	nonce := params.Nonce
	gasLimit := params.GasLimit
	gasTipCap := defaultGasTipCap
	gasFeeCap := defaultGasTipCap

	if !params.Offline {
		backend, err := c.activeBackend()
		if err != nil {
			return nil, err
		}
		if c.signer == nil {
			return nil, errors.New("chain: no signer configured")
		}

		if params.Nonce == 0 {
			nonce, err = c.PendingNonce(ctx, c.signer.Address())
			if err != nil {
				return nil, err
			}
		}
		gasTipCap, gasFeeCap, err = c.SuggestFees(ctx)
		if err != nil {
			return nil, err
		}
		if gasLimit == 0 {
			gasLimit, err = backend.EstimateGas(ctx, ethereum.CallMsg{
				From:  c.signer.Address(),
				To:    params.To,
				Value: value,
				Data:  params.Data,
			})
			if err != nil {
				return nil, fmt.Errorf("chain: estimate gas: %w", err)
			}
		}
	} else if gasLimit == 0 {
		gasLimit = DefaultGasLimit
	}

	return coretypes.NewTx(&coretypes.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: gasTipCap,
		GasFeeCap: gasFeeCap,
		Gas:       gasLimit,
		To:        params.To,
		Value:     value,
		Data:      params.Data,
	}), nil
}

// SignTx signs the transaction with the client's configured signer.
func (c *Client) SignTx(tx *coretypes.Transaction) (*coretypes.Transaction, error) {
	if c.signer == nil {
		return nil, errors.New("chain: no signer configured")
	}
	return c.signer.SignTx(tx, c.chainID)
}

// SubmitTransaction broadcasts a signed transaction and waits for it to be
// mined, returning the receipt. Timeout behavior is governed entirely by ctx.
func (c *Client) SubmitTransaction(ctx context.Context, tx *coretypes.Transaction) (*coretypes.Receipt, error) {
	backend, err := c.activeBackend()
	if err != nil {
		return nil, err
	}

	if err := backend.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("chain: send transaction: %w", err)
	}
	return waitForReceipt(ctx, backend, tx.Hash())
}

// waitForReceipt polls the backend until the transaction is mined. For
// simulated backends, blocks are committed between polls.
func waitForReceipt(ctx context.Context, backend Backend, hash common.Hash) (*coretypes.Receipt, error) {
	if commit, ok := backend.(committer); ok {
		commit.Commit()
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		receipt, err := backend.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("chain: transaction receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if commit, ok := backend.(committer); ok {
				commit.Commit()
			}
		}
	}
}

// CallContract executes a read-only contract call.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	backend, err := c.activeBackend()
	if err != nil {
		return nil, err
	}
	out, err := backend.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("chain: call contract: %w", err)
	}
	return out, nil
}

// FilterLogs returns logs matching the given filter query.
func (c *Client) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]coretypes.Log, error) {
	backend, err := c.activeBackend()
	if err != nil {
		return nil, err
	}
	logs, err := backend.FilterLogs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("chain: filter logs: %w", err)
	}
	return logs, nil
}
