package chain

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	coretypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer produces signed transactions for the operator account. Key storage
// and custody are the host's concern; the kit only ever sees this interface.
type Signer interface {
	// Address returns the operator account the signer signs for.
	Address() common.Address

	// SignTx signs the given transaction for the given chain.
	SignTx(tx *coretypes.Transaction, chainID *big.Int) (*coretypes.Transaction, error)
}

// keySigner signs with an in-memory ECDSA private key.
type keySigner struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewKeySigner returns a Signer backed by the given private key.
func NewKeySigner(key *ecdsa.PrivateKey) (Signer, error) {
	if key == nil {
		return nil, errors.New("chain: private key is required")
	}
	return &keySigner{
		key:  key,
		addr: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// NewKeySignerFromHex parses a hex-encoded private key and returns a Signer.
func NewKeySignerFromHex(hexKey string) (Signer, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, err
	}
	return NewKeySigner(key)
}

func (s *keySigner) Address() common.Address {
	return s.addr
}

func (s *keySigner) SignTx(tx *coretypes.Transaction, chainID *big.Int) (*coretypes.Transaction, error) {
	return coretypes.SignTx(tx, coretypes.LatestSignerForChainID(chainID), s.key)
}
