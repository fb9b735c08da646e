package exec

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Mode selects how a constructed transaction is completed.
type Mode int

const (
	// ModeSubmit signs the transaction with the client's signer, broadcasts
	// it, and waits for the receipt.
	ModeSubmit Mode = iota

	// ModeReturnBytes skips submission and returns the encoded unsigned
	// transaction so an external signer can complete it out of band.
	ModeReturnBytes
)

// String returns the mode's configuration name.
func (m Mode) String() string {
	switch m {
	case ModeSubmit:
		return "submit"
	case ModeReturnBytes:
		return "bytes"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "submit", "":
		return ModeSubmit, nil
	case "bytes":
		return ModeReturnBytes, nil
	default:
		return 0, fmt.Errorf("exec: unknown execution mode %q", s)
	}
}

// Context carries the per-call execution settings threaded through every
// tool invocation. It is never mutated mid-call.
type Context struct {
	// Mode selects the execution strategy.
	Mode Mode

	// Operator is the default account for account-scoped queries when a
	// tool call omits one. The zero address means no default; transaction
	// signing always uses the client's signer.
	Operator common.Address

	// GasLimit optionally caps gas for constructed transactions. Zero means
	// estimate (submit mode) or default (return-bytes mode).
	GasLimit uint64
}
