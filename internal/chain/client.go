// Package chain wraps the Polygon JSON-RPC connection used for wallet
// topology probes and redemption dispatch.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

// receiptPollInterval is the delay between receipt polls while waiting for
// a transaction to be mined.
const receiptPollInterval = 2 * time.Second

// Client is a thin wrapper around ethclient.Client scoped to the
// operations the redemption cycle needs. All methods take a context; the
// caller applies per-call timeouts.
type Client struct {
	eth     *ethclient.Client
	chainID *big.Int
}

// New dials the RPC endpoint. The connection is lazy; Health performs the
// first real round trip.
func New(ctx context.Context, rpcURL string, chainID int64) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %s: %w", rpcURL, err)
	}
	return &Client{
		eth:     eth,
		chainID: big.NewInt(chainID),
	}, nil
}

// ChainID returns the configured chain ID.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Health verifies the node is reachable and serves the expected chain.
// Returns domain.ErrRPCUnavailable on any failure so callers can skip the
// cycle cleanly.
func (c *Client) Health(ctx context.Context) error {
	got, err := c.eth.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain: health: %w: %v", domain.ErrRPCUnavailable, err)
	}
	if got.Cmp(c.chainID) != 0 {
		return fmt.Errorf("chain: health: %w: node serves chain %s, want %s",
			domain.ErrRPCUnavailable, got, c.chainID)
	}
	return nil
}

// IsContract reports whether the address has deployed bytecode at the
// latest block.
func (c *Client) IsContract(ctx context.Context, addr common.Address) (bool, error) {
	code, err := c.eth.CodeAt(ctx, addr, nil)
	if err != nil {
		return false, fmt.Errorf("chain: code at %s: %w", addr.Hex(), err)
	}
	return len(code) > 0, nil
}

// ReadOwnerSlot reads a 32-byte storage slot of addr and returns the
// address packed in its low 20 bytes. A zero return means the slot is
// empty.
func (c *Client) ReadOwnerSlot(ctx context.Context, addr common.Address, slot common.Hash) (common.Address, error) {
	raw, err := c.eth.StorageAt(ctx, addr, slot, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("chain: storage at %s slot %s: %w", addr.Hex(), slot.Hex(), err)
	}
	return common.BytesToAddress(raw), nil
}

// Call executes a read-only eth_call against the latest block.
func (c *Client) Call(ctx context.Context, from, to common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{
		From: from,
		To:   &to,
		Data: data,
	}
	out, err := c.eth.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("chain: call %s: %w", to.Hex(), err)
	}
	return out, nil
}

// PendingNonceAt returns the next nonce for the account, including pending
// transactions.
func (c *Client) PendingNonceAt(ctx context.Context, addr common.Address) (uint64, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, addr)
	if err != nil {
		return 0, fmt.Errorf("chain: pending nonce for %s: %w", addr.Hex(), err)
	}
	return nonce, nil
}

// SuggestGasPrice returns the node's suggested legacy gas price.
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain: suggest gas price: %w", err)
	}
	return price, nil
}

// EstimateGas estimates the gas for a call from addr. Failures are
// expected for nested proxy calls and should be handled with the
// configured ceiling rather than aborting.
func (c *Client) EstimateGas(ctx context.Context, from, to common.Address, data []byte) (uint64, error) {
	msg := ethereum.CallMsg{
		From: from,
		To:   &to,
		Data: data,
	}
	gas, err := c.eth.EstimateGas(ctx, msg)
	if err != nil {
		return 0, fmt.Errorf("chain: estimate gas for %s: %w", to.Hex(), err)
	}
	return gas, nil
}

// SendTransaction broadcasts a signed transaction.
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.eth.SendTransaction(ctx, tx); err != nil {
		return fmt.Errorf("chain: send transaction %s: %w", tx.Hash().Hex(), err)
	}
	return nil
}

// WaitReceipt polls for the receipt of hash until the context expires. The
// caller bounds the wait with a deadline context.
func (c *Client) WaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("chain: wait receipt %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close releases the underlying RPC connection.
func (c *Client) Close() error {
	c.eth.Close()
	return nil
}
