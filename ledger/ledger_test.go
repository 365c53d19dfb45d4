package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitwit/payflow/types"
)

type fakeSignatureClient struct {
	sigs []*rpc.TransactionSignature
	err  error

	calls int
}

func (f *fakeSignatureClient) GetSignaturesForAddressWithOpts(
	_ context.Context,
	_ solana.PublicKey,
	_ *rpc.GetSignaturesForAddressOpts,
) ([]*rpc.TransactionSignature, error) {
	f.calls++
	return f.sigs, f.err
}

func TestSolanaLedger_NotFound(t *testing.T) {
	client := &fakeSignatureClient{}
	l := &SolanaLedger{client: client}

	res, err := l.FindReference(context.Background(), solana.NewWallet().PublicKey())

	assert.ErrorIs(t, err, ErrReferenceNotFound)
	assert.Nil(t, res)
	assert.Equal(t, 1, client.calls)
}

func TestSolanaLedger_RPCErrorIsNotNotFound(t *testing.T) {
	client := &fakeSignatureClient{err: errors.New("connection refused")}
	l := &SolanaLedger{client: client}

	res, err := l.FindReference(context.Background(), solana.NewWallet().PublicKey())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrReferenceNotFound)
	assert.Nil(t, res)
}

func TestSolanaLedger_ReturnsOldestSignature(t *testing.T) {
	var newest, oldest solana.Signature
	newest[0] = 1
	oldest[0] = 2

	client := &fakeSignatureClient{
		sigs: []*rpc.TransactionSignature{
			{Signature: newest, Slot: 200, ConfirmationStatus: rpc.ConfirmationStatusProcessed},
			{Signature: oldest, Slot: 100, ConfirmationStatus: rpc.ConfirmationStatusFinalized},
		},
	}
	l := &SolanaLedger{client: client}

	res, err := l.FindReference(context.Background(), solana.NewWallet().PublicKey())

	require.NoError(t, err)
	assert.Equal(t, oldest, res.Signature)
	assert.Equal(t, types.LevelFinalized, res.Level)
	assert.Equal(t, uint64(100), res.Slot)
}

func TestConfirmationLevel_Mapping(t *testing.T) {
	assert.Equal(t, types.LevelFinalized, confirmationLevel(rpc.ConfirmationStatusFinalized))
	assert.Equal(t, types.LevelConfirmed, confirmationLevel(rpc.ConfirmationStatusConfirmed))
	assert.Equal(t, types.LevelProcessed, confirmationLevel(rpc.ConfirmationStatusProcessed))
	// Nodes may omit the field for very fresh signatures.
	assert.Equal(t, types.LevelProcessed, confirmationLevel(""))
}
