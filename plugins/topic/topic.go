// Package topic provides tools for message topics: publishing messages as
// calldata-carrying transactions and querying event logs by topic.
package topic

import (
	"context"
	"fmt"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	coretypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/ledgerkit/sdk/chain"
	"github.com/ledgerkit/sdk/exec"
	"github.com/ledgerkit/sdk/params"
	"github.com/ledgerkit/sdk/plugin"
	"github.com/ledgerkit/sdk/schema"
	"github.com/ledgerkit/sdk/tool"
)

// Plugin bundles the topic tools.
type Plugin struct {
	plugin.Base
}

// New returns the topic plugin.
func New() *Plugin {
	return &Plugin{Base: plugin.Base{Descriptor: plugin.Descriptor{
		ID:          "topic",
		Name:        "Topic Plugin",
		Description: "Message publication and event-log topic queries",
		Version:     "1.0.0",
		Author:      "LedgerKit",
	}}}
}

// Tools returns the topic tool set.
func (p *Plugin) Tools(ctx context.Context) ([]tool.Tool, error) {
	return []tool.Tool{
		submitMessageTool(),
		filterLogsTool(),
	}, nil
}

func submitMessageTool() tool.Tool {
	return tool.NewTransaction(tool.TxSpec{
		Method:      "submit_message",
		Name:        "Submit Message",
		Description: "Publishes a message to a topic address as transaction calldata",
		Parameters: schema.Object(map[string]schema.JSON{
			"topic":   schema.StringWithDesc("Topic address the message is sent to (0x-prefixed hex)"),
			"message": schema.StringWithDesc("Message payload"),
		}, "topic", "message"),
		FailureLabel: "Failed to submit message",
		Build: func(ctx context.Context, client *chain.Client, ec *exec.Context, p map[string]any) (*coretypes.Transaction, error) {
			topic, err := params.Address(p, "topic")
			if err != nil {
				return nil, err
			}
			message, err := params.String(p, "message")
			if err != nil {
				return nil, err
			}
			return client.NewTransaction(ctx, chain.TxParams{
				To:       &topic,
				Data:     []byte(message),
				GasLimit: ec.GasLimit,
				Offline:  ec.Mode == exec.ModeReturnBytes,
			})
		},
		Format: func(raw exec.RawResult) string {
			if raw.UnsignedTx != "" {
				return "Message transaction prepared for external signing."
			}
			return fmt.Sprintf("Message submitted. Transaction hash: %s", raw.TransactionHash)
		},
	})
}

func filterLogsTool() tool.Tool {
	return tool.Tool{
		Method:      "filter_logs",
		Name:        "Filter Logs",
		Description: "Returns event logs emitted by an address, optionally narrowed to a topic hash",
		Parameters: schema.Object(map[string]schema.JSON{
			"address": schema.StringWithDesc("Emitting contract address (0x-prefixed hex)"),
			"topic":   schema.StringWithDesc("Optional topic hash to match (0x-prefixed hex)"),
		}, "address"),
		Execute: func(ctx context.Context, client *chain.Client, ec *exec.Context, p map[string]any) tool.Result {
			const label = "Failed to filter logs"
			address, err := params.Address(p, "address")
			if err != nil {
				return tool.Failure(label, err)
			}

			query := ethereum.FilterQuery{Addresses: []common.Address{address}}
			if topicHex, err := params.OptionalString(p, "topic", ""); err != nil {
				return tool.Failure(label, err)
			} else if topicHex != "" {
				query.Topics = [][]common.Hash{{common.HexToHash(topicHex)}}
			}

			logs, err := client.FilterLogs(ctx, query)
			if err != nil {
				return tool.Failure(label, err)
			}

			return tool.Result{
				Raw: exec.RawResult{
					Status:  exec.StatusSuccess,
					Account: address.Hex(),
					Amount:  fmt.Sprintf("%d", len(logs)),
				},
				Message: fmt.Sprintf("Found %d log(s) emitted by %s", len(logs), address.Hex()),
			}
		},
	}
}
