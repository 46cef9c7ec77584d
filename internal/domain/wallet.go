package domain

import "github.com/ethereum/go-ethereum/common"

// WalletKind describes the resolved on-chain topology of the wallet that
// holds the positions.
type WalletKind string

const (
	// WalletEOA is a plain externally-owned account; redemption calls go
	// straight from the signing key to the settlement contract.
	WalletEOA WalletKind = "eoa"

	// WalletProxied is a contract wallet whose owner contract was
	// discovered in the well-known storage slot; redemption calls are
	// double-wrapped through the owner contract and the wallet.
	WalletProxied WalletKind = "proxied"

	// WalletAmbiguous is a contract wallet whose owner slot was zero or
	// unreadable. The wallet implementation may have changed; callers must
	// either abort (strict mode) or attempt a best-effort direct call.
	WalletAmbiguous WalletKind = "ambiguous"
)

// WalletProfile is the per-cycle resolution of a wallet address. It is
// re-resolved from scratch on every cycle and never cached across runs.
type WalletProfile struct {
	Address       common.Address
	Kind          WalletKind
	OwnerContract common.Address // set only when Kind == WalletProxied
}

// IsContract reports whether the address has deployed bytecode.
func (w WalletProfile) IsContract() bool {
	return w.Kind != WalletEOA
}
