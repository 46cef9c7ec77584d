package redeem

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

// Polygon mainnet settlement addresses.
var (
	// ConditionalTokens is the Gnosis Conditional Tokens Framework contract
	// that holds outcome balances and pays out redemptions.
	ConditionalTokens = common.HexToAddress("0x4D97DCd97eC945f40cF65F87097ACe5EA0476045")

	// CollateralUSDC is the bridged USDC token markets settle in.
	CollateralUSDC = common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
)

const (
	ctfABIJSON = `[{"name":"redeemPositions","type":"function","inputs":[
		{"name":"collateralToken","type":"address"},
		{"name":"parentCollectionId","type":"bytes32"},
		{"name":"conditionId","type":"bytes32"},
		{"name":"indexSets","type":"uint256[]"}],"outputs":[]}]`

	walletABIJSON = `[{"name":"execTransaction","type":"function","inputs":[
		{"name":"to","type":"address"},
		{"name":"value","type":"uint256"},
		{"name":"data","type":"bytes"},
		{"name":"operation","type":"uint8"},
		{"name":"safeTxGas","type":"uint256"},
		{"name":"baseGas","type":"uint256"},
		{"name":"gasPrice","type":"uint256"},
		{"name":"gasToken","type":"address"},
		{"name":"refundReceiver","type":"address"},
		{"name":"signatures","type":"bytes"}],"outputs":[{"name":"success","type":"bool"}]}]`

	ownerABIJSON = `[{"name":"proxy","type":"function","inputs":[
		{"name":"calls","type":"tuple[]","components":[
			{"name":"typeCode","type":"uint8"},
			{"name":"to","type":"address"},
			{"name":"value","type":"uint256"},
			{"name":"data","type":"bytes"}]}],"outputs":[]}]`
)

// Builder encodes redemption calls for the three wallet topologies. It is
// stateless after construction and safe to reuse across markets.
type Builder struct {
	ctf        abi.ABI
	wallet     abi.ABI
	owner      abi.ABI
	ctfAddr    common.Address
	collateral common.Address
}

// NewBuilder parses the settlement ABIs. ABI parse failures indicate a
// programming error and surface at startup.
func NewBuilder() (*Builder, error) {
	ctf, err := abi.JSON(strings.NewReader(ctfABIJSON))
	if err != nil {
		return nil, fmt.Errorf("redeem: parse conditional tokens ABI: %w", err)
	}
	wallet, err := abi.JSON(strings.NewReader(walletABIJSON))
	if err != nil {
		return nil, fmt.Errorf("redeem: parse wallet ABI: %w", err)
	}
	owner, err := abi.JSON(strings.NewReader(ownerABIJSON))
	if err != nil {
		return nil, fmt.Errorf("redeem: parse owner contract ABI: %w", err)
	}
	return &Builder{
		ctf:        ctf,
		wallet:     wallet,
		owner:      owner,
		ctfAddr:    ConditionalTokens,
		collateral: CollateralUSDC,
	}, nil
}

// Build constructs the redemption call for one market against the resolved
// wallet profile. signer is the dispatching key's address, needed for the
// pre-validated signature in the ambiguous best-effort shape.
//
// Frame shapes by topology:
//
//	eoa:       signer -> ctf.redeemPositions
//	ambiguous: signer -> wallet.execTransaction -> ctf.redeemPositions
//	proxied:   signer -> owner.proxy -> wallet.execTransaction -> ctf.redeemPositions
func (b *Builder) Build(profile domain.WalletProfile, market domain.RedeemableMarket, signer common.Address) (domain.RedemptionCall, error) {
	redeemData, err := b.redeemCalldata(market)
	if err != nil {
		return domain.RedemptionCall{}, err
	}
	inner := domain.CallFrame{
		Operation: domain.OperationCall,
		To:        b.ctfAddr,
		Value:     big.NewInt(0),
		Data:      redeemData,
	}

	switch profile.Kind {
	case domain.WalletEOA:
		return domain.RedemptionCall{
			Market: market,
			Frames: []domain.CallFrame{inner},
		}, nil

	case domain.WalletAmbiguous:
		// Best effort: the signer calls execTransaction on the contract
		// wallet directly, presenting itself as the pre-validated owner.
		execData, err := b.execCalldata(inner, signer)
		if err != nil {
			return domain.RedemptionCall{}, err
		}
		return domain.RedemptionCall{
			Market: market,
			Frames: []domain.CallFrame{
				{Operation: domain.OperationCall, To: profile.Address, Value: big.NewInt(0), Data: execData},
				inner,
			},
			Unverified: true,
		}, nil

	case domain.WalletProxied:
		execData, err := b.execCalldata(inner, profile.OwnerContract)
		if err != nil {
			return domain.RedemptionCall{}, err
		}
		middle := domain.CallFrame{
			Operation: domain.OperationCall,
			To:        profile.Address,
			Value:     big.NewInt(0),
			Data:      execData,
		}
		proxyData, err := b.proxyCalldata([]domain.CallFrame{middle})
		if err != nil {
			return domain.RedemptionCall{}, err
		}
		return domain.RedemptionCall{
			Market: market,
			Frames: []domain.CallFrame{
				{Operation: domain.OperationCall, To: profile.OwnerContract, Value: big.NewInt(0), Data: proxyData},
				middle,
				inner,
			},
		}, nil

	default:
		return domain.RedemptionCall{}, fmt.Errorf("redeem: unknown wallet kind %q", profile.Kind)
	}
}

// EmptyBatch returns proxy([]) calldata, used as a read-only capability
// probe against the owner contract before dispatching.
func (b *Builder) EmptyBatch() ([]byte, error) {
	data, err := b.owner.Pack("proxy", []proxyCall{})
	if err != nil {
		return nil, fmt.Errorf("redeem: pack empty proxy batch: %w", err)
	}
	return data, nil
}

// redeemCalldata encodes ctf.redeemPositions for the market. The parent
// collection ID is always the root (zero) collection on Polymarket.
func (b *Builder) redeemCalldata(market domain.RedeemableMarket) ([]byte, error) {
	var conditionID common.Hash
	idBytes := common.FromHex(market.ConditionID)
	if len(idBytes) != common.HashLength {
		return nil, fmt.Errorf("redeem: condition id %q is not 32 bytes", market.ConditionID)
	}
	copy(conditionID[:], idBytes)

	indexSets := make([]*big.Int, 0, len(market.IndexSets))
	for _, s := range market.IndexSets {
		indexSets = append(indexSets, new(big.Int).SetUint64(s))
	}

	data, err := b.ctf.Pack("redeemPositions", b.collateral, [32]byte{}, [32]byte(conditionID), indexSets)
	if err != nil {
		return nil, fmt.Errorf("redeem: pack redeemPositions for %s: %w", market.ConditionID, err)
	}
	return data, nil
}

// execCalldata wraps the inner frame in wallet.execTransaction with a
// pre-validated signature naming owner as the approving party:
// leftpad(owner, 32) || 32 zero bytes || 0x01.
func (b *Builder) execCalldata(inner domain.CallFrame, owner common.Address) ([]byte, error) {
	sig := make([]byte, 0, 65)
	sig = append(sig, common.LeftPadBytes(owner.Bytes(), 32)...)
	sig = append(sig, make([]byte, 32)...)
	sig = append(sig, 0x01)

	zero := big.NewInt(0)
	data, err := b.wallet.Pack("execTransaction",
		inner.To,
		inner.Value,
		inner.Data,
		uint8(inner.Operation),
		zero, zero, zero,
		common.Address{}, common.Address{},
		sig,
	)
	if err != nil {
		return nil, fmt.Errorf("redeem: pack execTransaction: %w", err)
	}
	return data, nil
}

// proxyCall mirrors the owner contract's call-struct tuple for ABI packing.
type proxyCall struct {
	TypeCode uint8          `abi:"typeCode"`
	To       common.Address `abi:"to"`
	Value    *big.Int       `abi:"value"`
	Data     []byte         `abi:"data"`
}

// proxyCalldata encodes owner.proxy with the given frames as the batch.
func (b *Builder) proxyCalldata(frames []domain.CallFrame) ([]byte, error) {
	calls := make([]proxyCall, 0, len(frames))
	for _, f := range frames {
		calls = append(calls, proxyCall{
			TypeCode: uint8(f.Operation),
			To:       f.To,
			Value:    f.Value,
			Data:     f.Data,
		})
	}
	data, err := b.owner.Pack("proxy", calls)
	if err != nil {
		return nil, fmt.Errorf("redeem: pack proxy batch: %w", err)
	}
	return data, nil
}
