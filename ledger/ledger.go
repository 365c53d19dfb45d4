// Package ledger locates payment transactions by their order reference.
// The reference travels as an extra account key on the payment
// instruction, so a signature lookup on the reference account finds the
// transaction without knowing its hash.
package ledger

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/vitwit/payflow/types"
)

// ErrReferenceNotFound reports that no transaction tagged with the
// reference is visible yet. While a payment awaits finality this is the
// expected steady state, not a failure.
var ErrReferenceNotFound = errors.New("no transaction found for reference")

// Result describes the transaction found for an order reference.
type Result struct {
	Signature solana.Signature
	Level     types.ConfirmationLevel
	Slot      uint64
}

// Lookup queries the ledger for a transaction tagged with a reference.
type Lookup interface {
	FindReference(ctx context.Context, ref solana.PublicKey) (*Result, error)
}

// signatureClient is the slice of the RPC surface the lookup needs.
type signatureClient interface {
	GetSignaturesForAddressWithOpts(
		ctx context.Context,
		account solana.PublicKey,
		opts *rpc.GetSignaturesForAddressOpts,
	) ([]*rpc.TransactionSignature, error)
}

// SolanaLedger implements Lookup over a Solana RPC endpoint.
type SolanaLedger struct {
	client signatureClient
}

var _ Lookup = (*SolanaLedger)(nil)

func NewSolanaLedger(rpcURL string) *SolanaLedger {
	return &SolanaLedger{client: rpc.New(rpcURL)}
}

// FindReference looks up the oldest signature involving the reference
// account. One reference tags exactly one payment attempt, so the oldest
// signature is the payment.
func (l *SolanaLedger) FindReference(ctx context.Context, ref solana.PublicKey) (*Result, error) {
	limit := 10
	sigs, err := l.client.GetSignaturesForAddressWithOpts(ctx, ref, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, err
	}

	if len(sigs) == 0 {
		return nil, ErrReferenceNotFound
	}

	// Results come newest first.
	oldest := sigs[len(sigs)-1]
	if oldest == nil {
		return nil, ErrReferenceNotFound
	}

	return &Result{
		Signature: oldest.Signature,
		Level:     confirmationLevel(oldest.ConfirmationStatus),
		Slot:      oldest.Slot,
	}, nil
}

func confirmationLevel(status rpc.ConfirmationStatusType) types.ConfirmationLevel {
	switch status {
	case rpc.ConfirmationStatusFinalized:
		return types.LevelFinalized
	case rpc.ConfirmationStatusConfirmed:
		return types.LevelConfirmed
	default:
		return types.LevelProcessed
	}
}
