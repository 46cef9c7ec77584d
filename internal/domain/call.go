package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CallOperation is the proxy-call operation type (0 = CALL, 1 = DELEGATECALL).
type CallOperation uint8

const (
	OperationCall         CallOperation = 0
	OperationDelegateCall CallOperation = 1
)

// CallFrame is one (operation, target, value, data) level of a redemption
// call. Frames nest: frame N's Data is the encoded invocation that carries
// frame N+1.
type CallFrame struct {
	Operation CallOperation
	To        common.Address
	Value     *big.Int
	Data      []byte
}

// RedemptionCall is the transaction-call tree built for one redeemable
// market. Frames are ordered outermost first: Frames[0] is what the signing
// key invokes directly. The dispatcher owns a RedemptionCall for the
// duration of one send and discards it afterwards.
type RedemptionCall struct {
	Market RedeemableMarket
	Frames []CallFrame

	// Unverified marks a best-effort call against an ambiguous contract
	// wallet; the dispatcher logs the outcome as unverified.
	Unverified bool
}

// Target returns the address the signer invokes.
func (c RedemptionCall) Target() common.Address {
	return c.Frames[0].To
}

// Calldata returns the payload the signer sends.
func (c RedemptionCall) Calldata() []byte {
	return c.Frames[0].Data
}
