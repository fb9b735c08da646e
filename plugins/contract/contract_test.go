package contract

import (
	"context"
	"encoding/base64"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	coretypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/sdk/chain"
	"github.com/ledgerkit/sdk/exec"
)

const setterABI = `[{"name":"set","type":"function","inputs":[{"name":"who","type":"address"},{"name":"value","type":"uint256"}],"outputs":[]}]`

func TestTools(t *testing.T) {
	t.Parallel()

	p := New()
	tools, err := p.Tools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 3)
	assert.Equal(t, "deploy_contract", tools[0].Method)
	assert.Equal(t, "execute_contract", tools[1].Method)
	assert.Equal(t, "call_contract", tools[2].Method)
}

func TestDeployContractReturnBytes(t *testing.T) {
	t.Parallel()

	p := New()
	tools, err := p.Tools(context.Background())
	require.NoError(t, err)

	client := chain.NewOffline("offline", big.NewInt(1337))
	res := tools[0].Execute(context.Background(), client, &exec.Context{Mode: exec.ModeReturnBytes}, map[string]any{
		"bytecode": "0x6027600c60003960276000f3",
	})
	require.Equal(t, exec.StatusSuccess, res.Raw.Status, res.Message)

	data, err := base64.StdEncoding.DecodeString(res.Raw.UnsignedTx)
	require.NoError(t, err)
	var tx coretypes.Transaction
	require.NoError(t, tx.UnmarshalBinary(data))
	assert.Nil(t, tx.To(), "deployment transaction has no recipient")
	assert.NotEmpty(t, tx.Data())
}

func TestDeployContractEmptyBytecode(t *testing.T) {
	t.Parallel()

	p := New()
	tools, err := p.Tools(context.Background())
	require.NoError(t, err)

	client := chain.NewOffline("offline", big.NewInt(1337))
	res := tools[0].Execute(context.Background(), client, &exec.Context{Mode: exec.ModeReturnBytes}, map[string]any{
		"bytecode": "0x",
	})
	assert.Equal(t, exec.StatusFailed, res.Raw.Status)
	assert.Contains(t, res.Message, "Failed to deploy contract")
}

func TestExecuteContractReturnBytes(t *testing.T) {
	t.Parallel()

	p := New()
	tools, err := p.Tools(context.Background())
	require.NoError(t, err)

	client := chain.NewOffline("offline", big.NewInt(1337))
	target := "0x0000000000000000000000000000000000000042"
	who := "0x00000000000000000000000000000000000000aa"

	res := tools[1].Execute(context.Background(), client, &exec.Context{Mode: exec.ModeReturnBytes}, map[string]any{
		"contract": target,
		"abi":      setterABI,
		"method":   "set",
		"args":     []any{who, "77"},
	})
	require.Equal(t, exec.StatusSuccess, res.Raw.Status, res.Message)

	data, err := base64.StdEncoding.DecodeString(res.Raw.UnsignedTx)
	require.NoError(t, err)
	var tx coretypes.Transaction
	require.NoError(t, tx.UnmarshalBinary(data))
	require.NotNil(t, tx.To())
	assert.Equal(t, common.HexToAddress(target), *tx.To())

	// The calldata must decode back to set(who, 77).
	parsed, err := abi.JSON(strings.NewReader(setterABI))
	require.NoError(t, err)
	method, err := parsed.MethodById(tx.Data()[:4])
	require.NoError(t, err)
	assert.Equal(t, "set", method.Name)

	args, err := method.Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.Equal(t, common.HexToAddress(who), args[0].(common.Address))
	assert.Equal(t, big.NewInt(77), args[1].(*big.Int))
}

func TestExecuteContractArgMismatch(t *testing.T) {
	t.Parallel()

	p := New()
	tools, err := p.Tools(context.Background())
	require.NoError(t, err)

	client := chain.NewOffline("offline", big.NewInt(1337))
	res := tools[1].Execute(context.Background(), client, &exec.Context{Mode: exec.ModeReturnBytes}, map[string]any{
		"contract": "0x0000000000000000000000000000000000000042",
		"abi":      setterABI,
		"method":   "set",
		"args":     []any{"0x00000000000000000000000000000000000000aa"},
	})
	assert.Equal(t, exec.StatusFailed, res.Raw.Status)
	assert.Contains(t, res.Message, "Failed to execute contract")
}

func TestCoerceArg(t *testing.T) {
	t.Parallel()

	addrType, err := abi.NewType("address", "", nil)
	require.NoError(t, err)
	uintType, err := abi.NewType("uint256", "", nil)
	require.NoError(t, err)
	boolType, err := abi.NewType("bool", "", nil)
	require.NoError(t, err)

	v, err := coerceArg(addrType, "0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	assert.IsType(t, common.Address{}, v)

	v, err = coerceArg(uintType, float64(9))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(9), v.(*big.Int))

	v, err = coerceArg(boolType, true)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = coerceArg(addrType, "garbage")
	assert.Error(t, err)
}

func TestCoerceArgIntegerRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		abiType string
		value   any
		wantErr bool
	}{
		{name: "uint8 max", abiType: "uint8", value: float64(255)},
		{name: "uint8 overflow", abiType: "uint8", value: float64(300), wantErr: true},
		{name: "uint8 negative", abiType: "uint8", value: "-1", wantErr: true},
		{name: "uint64 max", abiType: "uint64", value: "18446744073709551615"},
		{name: "uint64 overflow", abiType: "uint64", value: "18446744073709551616", wantErr: true},
		{name: "uint256 negative", abiType: "uint256", value: "-5", wantErr: true},
		{name: "int8 min", abiType: "int8", value: float64(-128)},
		{name: "int8 max", abiType: "int8", value: float64(127)},
		{name: "int8 underflow", abiType: "int8", value: float64(-129), wantErr: true},
		{name: "int8 overflow", abiType: "int8", value: float64(128), wantErr: true},
		{name: "int32 overflow", abiType: "int32", value: "2147483648", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, err := abi.NewType(tt.abiType, "", nil)
			require.NoError(t, err)

			_, err = coerceArg(typ, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "does not fit")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPackCallRejectsOutOfRangeArg(t *testing.T) {
	t.Parallel()

	const levelABI = `[{"name":"setLevel","type":"function","inputs":[{"name":"level","type":"uint8"}],"outputs":[]}]`

	// An in-range argument packs fine.
	data, _, err := packCall(levelABI, "setLevel", []any{float64(44)})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	// An out-of-range argument must fail rather than wrap into the
	// calldata of a different call.
	_, _, err = packCall(levelABI, "setLevel", []any{float64(300)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not fit uint8")
}
