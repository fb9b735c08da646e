// Package contract provides tools for deploying contracts, executing state
// changes, and reading contract state through ABI-described calls.
package contract

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	coretypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/ledgerkit/sdk/chain"
	"github.com/ledgerkit/sdk/exec"
	"github.com/ledgerkit/sdk/params"
	"github.com/ledgerkit/sdk/plugin"
	"github.com/ledgerkit/sdk/schema"
	"github.com/ledgerkit/sdk/tool"
)

// Plugin bundles the contract tools.
type Plugin struct {
	plugin.Base
}

// New returns the contract plugin.
func New() *Plugin {
	return &Plugin{Base: plugin.Base{Descriptor: plugin.Descriptor{
		ID:          "contract",
		Name:        "Contract Plugin",
		Description: "Contract deployment, execution, and read-only calls",
		Version:     "1.0.0",
		Author:      "LedgerKit",
	}}}
}

// Tools returns the contract tool set.
func (p *Plugin) Tools(ctx context.Context) ([]tool.Tool, error) {
	return []tool.Tool{
		deployTool(),
		executeTool(),
		callTool(),
	}, nil
}

func deployTool() tool.Tool {
	return tool.NewTransaction(tool.TxSpec{
		Method:      "deploy_contract",
		Name:        "Deploy Contract",
		Description: "Deploys a contract from its compiled bytecode",
		Parameters: schema.Object(map[string]schema.JSON{
			"bytecode": schema.StringWithDesc("Compiled contract bytecode (hex, 0x prefix optional)"),
		}, "bytecode"),
		FailureLabel: "Failed to deploy contract",
		Build: func(ctx context.Context, client *chain.Client, ec *exec.Context, p map[string]any) (*coretypes.Transaction, error) {
			bytecode, err := params.Bytes(p, "bytecode")
			if err != nil {
				return nil, err
			}
			if len(bytecode) == 0 {
				return nil, fmt.Errorf("bytecode must not be empty")
			}
			return client.NewTransaction(ctx, chain.TxParams{
				To:       nil, // contract creation
				Data:     bytecode,
				GasLimit: ec.GasLimit,
				Offline:  ec.Mode == exec.ModeReturnBytes,
			})
		},
		Format: func(raw exec.RawResult) string {
			if raw.UnsignedTx != "" {
				return "Deployment transaction prepared for external signing."
			}
			return fmt.Sprintf("Contract deployed at %s. Transaction hash: %s",
				raw.ContractAddress, raw.TransactionHash)
		},
	})
}

// packCall parses the supplied ABI fragment, coerces the JSON-typed
// arguments to the method's declared input types, and packs the call.
func packCall(abiJSON, method string, args []any) ([]byte, *abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, nil, fmt.Errorf("parse abi: %w", err)
	}
	m, ok := parsed.Methods[method]
	if !ok {
		return nil, nil, fmt.Errorf("method %s not in abi", method)
	}
	if len(args) != len(m.Inputs) {
		return nil, nil, fmt.Errorf("method %s expects %d argument(s), got %d", method, len(m.Inputs), len(args))
	}

	coerced := make([]any, len(args))
	for i, arg := range args {
		coerced[i], err = coerceArg(m.Inputs[i].Type, arg)
		if err != nil {
			return nil, nil, fmt.Errorf("argument %d of %s: %w", i, method, err)
		}
	}

	data, err := parsed.Pack(method, coerced...)
	if err != nil {
		return nil, nil, fmt.Errorf("pack %s call: %w", method, err)
	}
	return data, &parsed, nil
}

// checkIntRange rejects values outside the declared integer width. Without
// this, conversion to the fixed-width Go types would silently wrap and pack
// different calldata than the caller asked for.
func checkIntRange(n *big.Int, t abi.Type) error {
	if t.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > t.Size {
			return fmt.Errorf("%s does not fit uint%d", n, t.Size)
		}
		return nil
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
	max := new(big.Int).Sub(limit, big.NewInt(1))
	min := new(big.Int).Neg(limit)
	if n.Cmp(min) < 0 || n.Cmp(max) > 0 {
		return fmt.Errorf("%s does not fit int%d", n, t.Size)
	}
	return nil
}

// coerceArg converts a JSON-decoded value into the Go type abi.Pack expects
// for the given ABI type.
func coerceArg(t abi.Type, value any) (any, error) {
	switch t.T {
	case abi.AddressTy:
		s, ok := value.(string)
		if !ok || !common.IsHexAddress(s) {
			return nil, fmt.Errorf("%v is not a valid address", value)
		}
		return common.HexToAddress(s), nil
	case abi.UintTy, abi.IntTy:
		n, err := params.BigInt(map[string]any{"v": value}, "v")
		if err != nil {
			return nil, err
		}
		if err := checkIntRange(n, t); err != nil {
			return nil, err
		}
		// abi.Pack wants fixed-width Go integers below 65 bits
		if t.T == abi.UintTy {
			switch t.Size {
			case 8:
				return uint8(n.Uint64()), nil
			case 16:
				return uint16(n.Uint64()), nil
			case 32:
				return uint32(n.Uint64()), nil
			case 64:
				return n.Uint64(), nil
			default:
				return n, nil
			}
		}
		switch t.Size {
		case 8:
			return int8(n.Int64()), nil
		case 16:
			return int16(n.Int64()), nil
		case 32:
			return int32(n.Int64()), nil
		case 64:
			return n.Int64(), nil
		default:
			return n, nil
		}
	case abi.BoolTy:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%v is not a boolean", value)
		}
		return b, nil
	case abi.StringTy:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%v is not a string", value)
		}
		return s, nil
	case abi.BytesTy:
		return params.Bytes(map[string]any{"v": value}, "v")
	default:
		return nil, fmt.Errorf("unsupported abi type %s", t.String())
	}
}

func executeTool() tool.Tool {
	return tool.NewTransaction(tool.TxSpec{
		Method:      "execute_contract",
		Name:        "Execute Contract",
		Description: "Sends a state-changing contract call described by an ABI fragment",
		Parameters: schema.Object(map[string]schema.JSON{
			"contract": schema.StringWithDesc("Contract address (0x-prefixed hex)"),
			"abi":      schema.StringWithDesc("JSON ABI fragment containing the method"),
			"method":   schema.StringWithDesc("Method name to invoke"),
			"args":     schema.Array(schema.Any()),
		}, "contract", "abi", "method"),
		FailureLabel: "Failed to execute contract",
		Build: func(ctx context.Context, client *chain.Client, ec *exec.Context, p map[string]any) (*coretypes.Transaction, error) {
			contractAddr, err := params.Address(p, "contract")
			if err != nil {
				return nil, err
			}
			abiJSON, err := params.String(p, "abi")
			if err != nil {
				return nil, err
			}
			method, err := params.String(p, "method")
			if err != nil {
				return nil, err
			}
			args, _ := p["args"].([]any)

			data, _, err := packCall(abiJSON, method, args)
			if err != nil {
				return nil, err
			}
			return client.NewTransaction(ctx, chain.TxParams{
				To:       &contractAddr,
				Data:     data,
				GasLimit: ec.GasLimit,
				Offline:  ec.Mode == exec.ModeReturnBytes,
			})
		},
		Format: func(raw exec.RawResult) string {
			if raw.UnsignedTx != "" {
				return "Contract call prepared for external signing."
			}
			return fmt.Sprintf("Contract call confirmed. Transaction hash: %s", raw.TransactionHash)
		},
	})
}

func callTool() tool.Tool {
	return tool.Tool{
		Method:      "call_contract",
		Name:        "Call Contract",
		Description: "Executes a read-only contract call and returns the decoded result",
		Parameters: schema.Object(map[string]schema.JSON{
			"contract": schema.StringWithDesc("Contract address (0x-prefixed hex)"),
			"abi":      schema.StringWithDesc("JSON ABI fragment containing the method"),
			"method":   schema.StringWithDesc("Method name to call"),
			"args":     schema.Array(schema.Any()),
		}, "contract", "abi", "method"),
		Execute: func(ctx context.Context, client *chain.Client, ec *exec.Context, p map[string]any) tool.Result {
			const label = "Failed to call contract"
			contractAddr, err := params.Address(p, "contract")
			if err != nil {
				return tool.Failure(label, err)
			}
			abiJSON, err := params.String(p, "abi")
			if err != nil {
				return tool.Failure(label, err)
			}
			method, err := params.String(p, "method")
			if err != nil {
				return tool.Failure(label, err)
			}
			args, _ := p["args"].([]any)

			data, parsed, err := packCall(abiJSON, method, args)
			if err != nil {
				return tool.Failure(label, err)
			}
			out, err := client.CallContract(ctx, ethereum.CallMsg{To: &contractAddr, Data: data})
			if err != nil {
				return tool.Failure(label, err)
			}
			values, err := parsed.Unpack(method, out)
			if err != nil {
				return tool.Failure(label, fmt.Errorf("unpack %s result: %w", method, err))
			}

			return tool.Result{
				Raw: exec.RawResult{
					Status:  exec.StatusSuccess,
					Account: contractAddr.Hex(),
					Amount:  fmt.Sprintf("%v", values),
				},
				Message: fmt.Sprintf("Call to %s.%s returned: %v", contractAddr.Hex(), method, values),
			}
		},
	}
}
