package redeem

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

// fakeChain is an in-memory ChainReader.
type fakeChain struct {
	code      map[common.Address]bool
	slots     map[common.Address]common.Address
	slotErr   error
	callErr   error
	callCount int
}

func (f *fakeChain) IsContract(_ context.Context, addr common.Address) (bool, error) {
	return f.code[addr], nil
}

func (f *fakeChain) ReadOwnerSlot(_ context.Context, addr common.Address, _ common.Hash) (common.Address, error) {
	if f.slotErr != nil {
		return common.Address{}, f.slotErr
	}
	return f.slots[addr], nil
}

func (f *fakeChain) Call(_ context.Context, _, _ common.Address, _ []byte) ([]byte, error) {
	f.callCount++
	if f.callErr != nil {
		return nil, f.callErr
	}
	return nil, nil
}

func TestResolveEOA(t *testing.T) {
	chain := &fakeChain{code: map[common.Address]bool{}}
	r := NewResolver(chain, DefaultOwnerSlot, testLogger())

	profile, err := r.Resolve(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, domain.WalletEOA, profile.Kind)
	assert.Equal(t, testWallet, profile.Address)
	assert.False(t, profile.IsContract())
}

func TestResolveProxied(t *testing.T) {
	chain := &fakeChain{
		code:  map[common.Address]bool{testWallet: true},
		slots: map[common.Address]common.Address{testWallet: testOwner},
	}
	r := NewResolver(chain, DefaultOwnerSlot, testLogger())

	profile, err := r.Resolve(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, domain.WalletProxied, profile.Kind)
	assert.Equal(t, testOwner, profile.OwnerContract)
}

func TestResolveAmbiguousZeroSlot(t *testing.T) {
	chain := &fakeChain{
		code:  map[common.Address]bool{testWallet: true},
		slots: map[common.Address]common.Address{},
	}
	r := NewResolver(chain, DefaultOwnerSlot, testLogger())

	profile, err := r.Resolve(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, domain.WalletAmbiguous, profile.Kind)
	assert.Equal(t, common.Address{}, profile.OwnerContract)
}

func TestResolveAmbiguousSlotError(t *testing.T) {
	chain := &fakeChain{
		code:    map[common.Address]bool{testWallet: true},
		slotErr: errors.New("missing trie node"),
	}
	r := NewResolver(chain, DefaultOwnerSlot, testLogger())

	profile, err := r.Resolve(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, domain.WalletAmbiguous, profile.Kind)
}

func TestVerifyCapability(t *testing.T) {
	proxied := domain.WalletProfile{
		Address:       testWallet,
		Kind:          domain.WalletProxied,
		OwnerContract: testOwner,
	}

	t.Run("authorized signer passes", func(t *testing.T) {
		chain := &fakeChain{}
		r := NewResolver(chain, DefaultOwnerSlot, testLogger())
		err := r.VerifyCapability(context.Background(), proxied, testSigner, []byte{0x01})
		require.NoError(t, err)
		assert.Equal(t, 1, chain.callCount)
	})

	t.Run("revert names all three addresses", func(t *testing.T) {
		chain := &fakeChain{callErr: errors.New("execution reverted")}
		r := NewResolver(chain, DefaultOwnerSlot, testLogger())
		err := r.VerifyCapability(context.Background(), proxied, testSigner, []byte{0x01})
		require.ErrorIs(t, err, domain.ErrNotDispatchOwner)
		assert.Contains(t, err.Error(), testSigner.Hex())
		assert.Contains(t, err.Error(), testWallet.Hex())
		assert.Contains(t, err.Error(), testOwner.Hex())
	})

	t.Run("skipped for non-proxied wallets", func(t *testing.T) {
		chain := &fakeChain{callErr: errors.New("execution reverted")}
		r := NewResolver(chain, DefaultOwnerSlot, testLogger())
		eoa := domain.WalletProfile{Address: testWallet, Kind: domain.WalletEOA}
		require.NoError(t, r.VerifyCapability(context.Background(), eoa, testSigner, []byte{0x01}))
		assert.Zero(t, chain.callCount)
	})
}
