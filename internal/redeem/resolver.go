package redeem

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

// DefaultOwnerSlot is the storage slot holding the owner contract address
// in the current Polymarket proxy-wallet implementation.
var DefaultOwnerSlot = common.Hash{}

// ChainReader is the read-only chain surface the resolver needs.
type ChainReader interface {
	IsContract(ctx context.Context, addr common.Address) (bool, error)
	ReadOwnerSlot(ctx context.Context, addr common.Address, slot common.Hash) (common.Address, error)
	Call(ctx context.Context, from, to common.Address, data []byte) ([]byte, error)
}

// Resolver determines the on-chain topology of the position-holding wallet.
// The profile is re-resolved from scratch every cycle; wallet contracts can
// be upgraded between runs.
type Resolver struct {
	chain     ChainReader
	ownerSlot common.Hash
	logger    *slog.Logger
}

// NewResolver creates a Resolver probing the given owner storage slot.
func NewResolver(chain ChainReader, ownerSlot common.Hash, logger *slog.Logger) *Resolver {
	return &Resolver{
		chain:     chain,
		ownerSlot: ownerSlot,
		logger:    logger,
	}
}

// Resolve classifies wallet as EOA, proxied, or ambiguous.
//
// An address without bytecode is an EOA. An address with bytecode whose
// owner slot holds a non-zero address is proxied through that owner; a
// zero or unreadable slot means the wallet implementation is not the one
// this resolver understands, and the profile is marked ambiguous.
func (r *Resolver) Resolve(ctx context.Context, wallet common.Address) (domain.WalletProfile, error) {
	isContract, err := r.chain.IsContract(ctx, wallet)
	if err != nil {
		return domain.WalletProfile{}, fmt.Errorf("redeem: resolve %s: %w", wallet.Hex(), err)
	}

	if !isContract {
		r.logger.Debug("wallet resolved", "wallet", wallet.Hex(), "kind", domain.WalletEOA)
		return domain.WalletProfile{Address: wallet, Kind: domain.WalletEOA}, nil
	}

	owner, err := r.chain.ReadOwnerSlot(ctx, wallet, r.ownerSlot)
	if err != nil {
		r.logger.Warn("owner slot unreadable, treating wallet as ambiguous",
			"wallet", wallet.Hex(), "slot", r.ownerSlot.Hex(), "error", err)
		return domain.WalletProfile{Address: wallet, Kind: domain.WalletAmbiguous}, nil
	}

	if owner == (common.Address{}) {
		r.logger.Warn("owner slot is zero, treating wallet as ambiguous",
			"wallet", wallet.Hex(), "slot", r.ownerSlot.Hex())
		return domain.WalletProfile{Address: wallet, Kind: domain.WalletAmbiguous}, nil
	}

	r.logger.Debug("wallet resolved",
		"wallet", wallet.Hex(), "kind", domain.WalletProxied, "owner_contract", owner.Hex())
	return domain.WalletProfile{
		Address:       wallet,
		Kind:          domain.WalletProxied,
		OwnerContract: owner,
	}, nil
}

// VerifyCapability checks that signer can drive the owner contract by
// simulating an empty proxy batch via eth_call. A revert means the signer
// is not an authorized operator of the owner contract, and every dispatch
// through it would fail; callers should abort the cycle rather than burn
// gas per market.
func (r *Resolver) VerifyCapability(ctx context.Context, profile domain.WalletProfile, signer common.Address, emptyBatch []byte) error {
	if profile.Kind != domain.WalletProxied {
		return nil
	}

	if _, err := r.chain.Call(ctx, signer, profile.OwnerContract, emptyBatch); err != nil {
		return fmt.Errorf("redeem: %w: signer=%s wallet=%s owner=%s: %v",
			domain.ErrNotDispatchOwner, signer.Hex(), profile.Address.Hex(), profile.OwnerContract.Hex(), err)
	}
	return nil
}
