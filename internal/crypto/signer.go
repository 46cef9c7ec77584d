package crypto

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// TxSigner signs Polygon transactions with a secp256k1 private key held in
// memory for the lifetime of one run.
type TxSigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	signer     types.Signer
}

// NewTxSigner creates a TxSigner from a hex-encoded private key (with or
// without 0x prefix) and the target chain ID (137 for Polygon mainnet).
func NewTxSigner(privateKeyHex string, chainID int64) (*TxSigner, error) {
	keyHex := strings.TrimPrefix(privateKeyHex, "0x")
	pk, err := ethcrypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("crypto/signer: invalid private key: %w", err)
	}

	return &TxSigner{
		privateKey: pk,
		address:    ethcrypto.PubkeyToAddress(pk.PublicKey),
		signer:     types.LatestSignerForChainID(big.NewInt(chainID)),
	}, nil
}

// Address returns the Ethereum address derived from the signer's private key.
func (s *TxSigner) Address() common.Address {
	return s.address
}

// SignTx signs the transaction for the configured chain.
func (s *TxSigner) SignTx(tx *types.Transaction) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, s.signer, s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("crypto/signer: signing transaction: %w", err)
	}
	return signed, nil
}
