// Package account provides tools for native balance transfers and account
// queries.
package account

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	coretypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/ledgerkit/sdk/chain"
	"github.com/ledgerkit/sdk/exec"
	"github.com/ledgerkit/sdk/params"
	"github.com/ledgerkit/sdk/plugin"
	"github.com/ledgerkit/sdk/schema"
	"github.com/ledgerkit/sdk/tool"
)

// Plugin bundles the account tools.
type Plugin struct {
	plugin.Base
}

// New returns the account plugin.
func New() *Plugin {
	return &Plugin{Base: plugin.Base{Descriptor: plugin.Descriptor{
		ID:          "account",
		Name:        "Account Plugin",
		Description: "Native transfers, balance and nonce queries",
		Version:     "1.0.0",
		Author:      "LedgerKit",
	}}}
}

// Tools returns the account tool set.
func (p *Plugin) Tools(ctx context.Context) ([]tool.Tool, error) {
	return []tool.Tool{
		transferNativeTool(),
		getBalanceTool(),
		getNonceTool(),
	}, nil
}

func transferNativeTool() tool.Tool {
	return tool.NewTransaction(tool.TxSpec{
		Method:      "transfer_native",
		Name:        "Transfer Native",
		Description: "Transfers the chain's native currency to another account",
		Parameters: schema.Object(map[string]schema.JSON{
			"to":     schema.StringWithDesc("Recipient address (0x-prefixed hex)"),
			"amount": schema.NumberWithDesc("Amount in ether"),
		}, "to", "amount"),
		FailureLabel: "Failed to transfer native currency",
		Build: func(ctx context.Context, client *chain.Client, ec *exec.Context, p map[string]any) (*coretypes.Transaction, error) {
			to, err := params.Address(p, "to")
			if err != nil {
				return nil, err
			}
			amount, err := params.EtherAmount(p, "amount")
			if err != nil {
				return nil, err
			}
			return client.NewTransaction(ctx, chain.TxParams{
				To:       &to,
				Value:    amount,
				GasLimit: ec.GasLimit,
				Offline:  ec.Mode == exec.ModeReturnBytes,
			})
		},
		Format: func(raw exec.RawResult) string {
			if raw.UnsignedTx != "" {
				return "Transfer transaction prepared for external signing."
			}
			return fmt.Sprintf("Transfer confirmed. Transaction hash: %s", raw.TransactionHash)
		},
	})
}

// accountArg resolves the account to query: the explicit "account"
// parameter when present, otherwise the operator address from the
// execution context or the client's signer.
func accountArg(client *chain.Client, ec *exec.Context, p map[string]any) (common.Address, error) {
	if _, ok := p["account"]; ok {
		return params.Address(p, "account")
	}
	if ec.Operator != (common.Address{}) {
		return ec.Operator, nil
	}
	if op := client.Operator(); op != (common.Address{}) {
		return op, nil
	}
	return common.Address{}, fmt.Errorf("missing parameter %q and no operator is configured", "account")
}

func getBalanceTool() tool.Tool {
	return tool.Tool{
		Method:      "get_balance",
		Name:        "Get Balance",
		Description: "Returns the native-currency balance of an account, defaulting to the operator",
		Parameters: schema.Object(map[string]schema.JSON{
			"account": schema.StringWithDesc("Account address (0x-prefixed hex); defaults to the operator"),
		}),
		Execute: func(ctx context.Context, client *chain.Client, ec *exec.Context, p map[string]any) tool.Result {
			const label = "Failed to get balance"
			account, err := accountArg(client, ec, p)
			if err != nil {
				return tool.Failure(label, err)
			}
			balance, err := client.BalanceAt(ctx, account)
			if err != nil {
				return tool.Failure(label, err)
			}
			return tool.Result{
				Raw: exec.RawResult{
					Status:  exec.StatusSuccess,
					Account: account.Hex(),
					Amount:  balance.String(),
				},
				Message: fmt.Sprintf("Balance of %s: %s ether", account.Hex(), params.FormatEther(balance)),
			}
		},
	}
}

func getNonceTool() tool.Tool {
	return tool.Tool{
		Method:      "get_nonce",
		Name:        "Get Nonce",
		Description: "Returns the next transaction nonce of an account, including pending transactions",
		Parameters: schema.Object(map[string]schema.JSON{
			"account": schema.StringWithDesc("Account address (0x-prefixed hex); defaults to the operator"),
		}),
		Execute: func(ctx context.Context, client *chain.Client, ec *exec.Context, p map[string]any) tool.Result {
			const label = "Failed to get nonce"
			account, err := accountArg(client, ec, p)
			if err != nil {
				return tool.Failure(label, err)
			}
			nonce, err := client.PendingNonce(ctx, account)
			if err != nil {
				return tool.Failure(label, err)
			}
			return tool.Result{
				Raw: exec.RawResult{
					Status:  exec.StatusSuccess,
					Account: account.Hex(),
					Amount:  fmt.Sprintf("%d", nonce),
				},
				Message: fmt.Sprintf("Next nonce of %s: %d", account.Hex(), nonce),
			}
		},
	}
}
