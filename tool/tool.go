package tool

import (
	"context"
	"fmt"

	"github.com/ledgerkit/sdk/chain"
	"github.com/ledgerkit/sdk/exec"
	"github.com/ledgerkit/sdk/schema"
)

// ExecuteFunc runs a tool against the given client with the given execution
// settings. Errors are converted into failed Results rather than returned,
// so a single tool invocation never crashes its caller.
type ExecuteFunc func(ctx context.Context, client *chain.Client, ec *exec.Context, p map[string]any) Result

// Tool is a single named, schema-described unit of ledger work. Tools are
// stateless values; plugins construct them fresh on every request.
type Tool struct {
	// Method is the invocation identifier, unique within a tool set.
	Method string

	// Name is the human-readable tool name.
	Name string

	// Description explains what the tool does, for discovery by callers.
	Description string

	// Parameters is the JSON schema describing the tool's inputs.
	Parameters schema.JSON

	// Execute runs the tool.
	Execute ExecuteFunc
}

// Result pairs the raw outcome of an operation with a human-readable
// message. Message is always non-empty, including on failure.
type Result struct {
	Raw     exec.RawResult `json:"raw"`
	Message string         `json:"message"`
}

// Failure builds a failed Result from a fixed failure label and the caught
// error's detail.
func Failure(label string, err error) Result {
	return Result{
		Raw:     exec.Failed(err),
		Message: fmt.Sprintf("%s: %s", label, err),
	}
}
