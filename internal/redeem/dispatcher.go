package redeem

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

// TxBackend is the transaction surface of the chain client the dispatcher
// needs.
type TxBackend interface {
	PendingNonceAt(ctx context.Context, addr common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, from, to common.Address, data []byte) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	WaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Signer signs transactions for a single key.
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction) (*types.Transaction, error)
}

// DispatchStatus is the terminal state of one dispatch attempt.
type DispatchStatus string

const (
	// DispatchSuccess: the transaction was mined with receipt status 1.
	DispatchSuccess DispatchStatus = "success"

	// DispatchReverted: the transaction was mined but reverted on chain.
	DispatchReverted DispatchStatus = "reverted"

	// DispatchFailed: the transaction never reached a receipt (send error
	// or confirmation timeout).
	DispatchFailed DispatchStatus = "failed"
)

// DispatchResult records the outcome of dispatching one redemption call.
type DispatchResult struct {
	Market     domain.RedeemableMarket
	Status     DispatchStatus
	TxHash     common.Hash
	GasUsed    uint64
	Unverified bool
	Err        error
}

// DispatcherConfig tunes gas handling and confirmation.
type DispatcherConfig struct {
	// GasBufferPct is added on top of a successful gas estimate.
	GasBufferPct int

	// GasCeiling is the fixed gas limit used when estimation fails, which
	// is routine for nested proxy calls.
	GasCeiling uint64

	// ConfirmTimeout bounds the receipt wait per transaction.
	ConfirmTimeout time.Duration
}

// Dispatcher signs and sends redemption calls sequentially, fetching a
// fresh pending nonce per send so an external wallet using the same key
// does not collide.
type Dispatcher struct {
	backend TxBackend
	signer  Signer
	cfg     DispatcherConfig
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(backend TxBackend, signer Signer, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		backend: backend,
		signer:  signer,
		cfg:     cfg,
		logger:  logger,
	}
}

// Dispatch sends one redemption call and waits for its receipt. The
// returned result is always populated; Err is set for reverted and failed
// outcomes. Dispatch never panics on chain errors: a failed market must
// not stop the remaining markets in the cycle.
func (d *Dispatcher) Dispatch(ctx context.Context, call domain.RedemptionCall) DispatchResult {
	res := DispatchResult{
		Market:     call.Market,
		Unverified: call.Unverified,
	}

	from := d.signer.Address()
	to := call.Target()
	data := call.Calldata()

	gasLimit := d.gasLimit(ctx, from, to, data, call.Market.ConditionID)

	nonce, err := d.backend.PendingNonceAt(ctx, from)
	if err != nil {
		res.Status = DispatchFailed
		res.Err = fmt.Errorf("redeem: dispatch %s: %w", call.Market.ConditionID, err)
		return res
	}

	gasPrice, err := d.backend.SuggestGasPrice(ctx)
	if err != nil {
		res.Status = DispatchFailed
		res.Err = fmt.Errorf("redeem: dispatch %s: %w", call.Market.ConditionID, err)
		return res
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    big.NewInt(0),
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := d.signer.SignTx(tx)
	if err != nil {
		res.Status = DispatchFailed
		res.Err = fmt.Errorf("redeem: dispatch %s: %w", call.Market.ConditionID, err)
		return res
	}
	res.TxHash = signed.Hash()

	if err := d.backend.SendTransaction(ctx, signed); err != nil {
		res.Status = DispatchFailed
		res.Err = fmt.Errorf("redeem: dispatch %s: %w", call.Market.ConditionID, err)
		return res
	}

	d.logger.Info("redemption sent",
		"condition_id", call.Market.ConditionID,
		"tx", res.TxHash.Hex(),
		"nonce", nonce,
		"gas_limit", gasLimit,
		"frames", len(call.Frames),
		"unverified", call.Unverified)

	waitCtx, cancel := context.WithTimeout(ctx, d.cfg.ConfirmTimeout)
	defer cancel()

	receipt, err := d.backend.WaitReceipt(waitCtx, res.TxHash)
	if err != nil {
		res.Status = DispatchFailed
		res.Err = fmt.Errorf("redeem: confirm %s: %w", call.Market.ConditionID, err)
		return res
	}

	res.GasUsed = receipt.GasUsed
	if receipt.Status != types.ReceiptStatusSuccessful {
		res.Status = DispatchReverted
		res.Err = fmt.Errorf("redeem: %s: transaction %s reverted", call.Market.ConditionID, res.TxHash.Hex())
		return res
	}

	res.Status = DispatchSuccess
	return res
}

// gasLimit estimates gas for the call and applies the configured buffer.
// Estimation failures fall back to the fixed ceiling: nodes frequently
// refuse to estimate nested proxy calls that execute fine.
func (d *Dispatcher) gasLimit(ctx context.Context, from, to common.Address, data []byte, conditionID string) uint64 {
	est, err := d.backend.EstimateGas(ctx, from, to, data)
	if err != nil {
		d.logger.Warn("gas estimation failed, using ceiling",
			"condition_id", conditionID,
			"ceiling", d.cfg.GasCeiling,
			"error", err)
		return d.cfg.GasCeiling
	}
	return est + est*uint64(d.cfg.GasBufferPct)/100
}
