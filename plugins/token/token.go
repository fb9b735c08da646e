// Package token provides ERC-20 token tools: transfers, approvals, and
// balance queries built on ABI-packed contract calls.
package token

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	coretypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/ledgerkit/sdk/chain"
	"github.com/ledgerkit/sdk/exec"
	"github.com/ledgerkit/sdk/params"
	"github.com/ledgerkit/sdk/plugin"
	"github.com/ledgerkit/sdk/schema"
	"github.com/ledgerkit/sdk/tool"
)

// erc20ABI covers the subset of the ERC-20 interface the tools use.
const erc20ABI = `[
	{"name":"transfer","type":"function","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"approve","type":"function","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"balanceOf","type":"function","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}
]`

// Plugin bundles the ERC-20 token tools. The ABI is parsed once during
// Initialize and reused across tool constructions.
type Plugin struct {
	plugin.Base
	abi abi.ABI
}

// New returns the token plugin.
func New() *Plugin {
	return &Plugin{Base: plugin.Base{Descriptor: plugin.Descriptor{
		ID:          "token",
		Name:        "Token Plugin",
		Description: "ERC-20 transfers, approvals, and balance queries",
		Version:     "1.0.0",
		Author:      "LedgerKit",
	}}}
}

// Initialize parses the ERC-20 ABI the tools pack calls with.
func (p *Plugin) Initialize(ctx context.Context, pctx *plugin.Context) error {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return fmt.Errorf("parse erc20 abi: %w", err)
	}
	p.abi = parsed
	return nil
}

// Tools returns the token tool set.
func (p *Plugin) Tools(ctx context.Context) ([]tool.Tool, error) {
	if len(p.abi.Methods) == 0 {
		return nil, fmt.Errorf("token plugin is not initialized")
	}
	return []tool.Tool{
		p.callTool("transfer_token", "Transfer Token",
			"Transfers ERC-20 tokens to another account",
			"Failed to transfer tokens", "transfer", "to"),
		p.callTool("approve_token", "Approve Token",
			"Approves another account to spend ERC-20 tokens",
			"Failed to approve tokens", "approve", "spender"),
		p.balanceTool(),
	}, nil
}

// callTool builds a transaction tool for a packed (address, uint256) ERC-20
// method such as transfer or approve.
func (p *Plugin) callTool(method, name, description, failureLabel, abiMethod, addressParam string) tool.Tool {
	return tool.NewTransaction(tool.TxSpec{
		Method:      method,
		Name:        name,
		Description: description,
		Parameters: schema.Object(map[string]schema.JSON{
			"token":      schema.StringWithDesc("Token contract address (0x-prefixed hex)"),
			addressParam: schema.StringWithDesc("Counterparty address (0x-prefixed hex)"),
			"amount":     schema.StringWithDesc("Token amount in base units (decimal or 0x-prefixed hex)"),
		}, "token", addressParam, "amount"),
		FailureLabel: failureLabel,
		Build: func(ctx context.Context, client *chain.Client, ec *exec.Context, args map[string]any) (*coretypes.Transaction, error) {
			token, err := params.Address(args, "token")
			if err != nil {
				return nil, err
			}
			counterparty, err := params.Address(args, addressParam)
			if err != nil {
				return nil, err
			}
			amount, err := params.BigInt(args, "amount")
			if err != nil {
				return nil, err
			}

			data, err := p.abi.Pack(abiMethod, counterparty, amount)
			if err != nil {
				return nil, fmt.Errorf("pack %s call: %w", abiMethod, err)
			}
			return client.NewTransaction(ctx, chain.TxParams{
				To:       &token,
				Data:     data,
				GasLimit: ec.GasLimit,
				Offline:  ec.Mode == exec.ModeReturnBytes,
			})
		},
		Format: func(raw exec.RawResult) string {
			if raw.UnsignedTx != "" {
				return fmt.Sprintf("%s transaction prepared for external signing.", name)
			}
			return fmt.Sprintf("%s confirmed. Transaction hash: %s", name, raw.TransactionHash)
		},
	})
}

func (p *Plugin) balanceTool() tool.Tool {
	return tool.Tool{
		Method:      "token_balance",
		Name:        "Token Balance",
		Description: "Returns the ERC-20 token balance of an account",
		Parameters: schema.Object(map[string]schema.JSON{
			"token":   schema.StringWithDesc("Token contract address (0x-prefixed hex)"),
			"account": schema.StringWithDesc("Account address (0x-prefixed hex)"),
		}, "token", "account"),
		Execute: func(ctx context.Context, client *chain.Client, ec *exec.Context, args map[string]any) tool.Result {
			const label = "Failed to get token balance"
			token, err := params.Address(args, "token")
			if err != nil {
				return tool.Failure(label, err)
			}
			account, err := params.Address(args, "account")
			if err != nil {
				return tool.Failure(label, err)
			}

			data, err := p.abi.Pack("balanceOf", account)
			if err != nil {
				return tool.Failure(label, err)
			}
			out, err := client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data})
			if err != nil {
				return tool.Failure(label, err)
			}

			results, err := p.abi.Unpack("balanceOf", out)
			if err != nil || len(results) != 1 {
				return tool.Failure(label, fmt.Errorf("unpack balanceOf result: %v", err))
			}
			balance, ok := results[0].(*big.Int)
			if !ok {
				return tool.Failure(label, fmt.Errorf("unexpected balanceOf result type %T", results[0]))
			}

			return tool.Result{
				Raw: exec.RawResult{
					Status:  exec.StatusSuccess,
					Account: account.Hex(),
					Amount:  balance.String(),
				},
				Message: fmt.Sprintf("Token balance of %s on %s: %s", account.Hex(), token.Hex(), balance.String()),
			}
		},
	}
}
