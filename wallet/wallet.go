// Package wallet abstracts the buyer's signing agent. The agent holds
// spending authority; the workflow only asks it for an identity and for a
// sign-and-broadcast of a transaction it treats as opaque.
package wallet

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Signer is the buyer-controlled signing agent.
//
// PublicKey returns nil while no wallet is connected; a nil identity gates
// the whole checkout workflow. SendTransaction signs the transaction and
// broadcasts it, returning the network transaction signature.
type Signer interface {
	PublicKey() *solana.PublicKey
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// LocalWallet signs with an in-process private key and broadcasts through
// an RPC client. Storefront frontends use a browser wallet instead; this
// implementation serves CLIs, tests and the examples.
type LocalWallet struct {
	key    solana.PrivateKey
	client *rpc.Client
}

var _ Signer = (*LocalWallet)(nil)

func NewLocalWallet(key solana.PrivateKey, rpcURL string) *LocalWallet {
	return &LocalWallet{
		key:    key,
		client: rpc.New(rpcURL),
	}
}

func (w *LocalWallet) PublicKey() *solana.PublicKey {
	pub := w.key.PublicKey()
	return &pub
}

func (w *LocalWallet) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	// The builder pins a recent blockhash server-side; refresh it here so a
	// slow buyer does not broadcast against an expired one.
	recent, err := w.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to fetch recent blockhash: %w", err)
	}
	tx.Message.RecentBlockhash = recent.Value.Blockhash

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.key.PublicKey()) {
			return &w.key
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("signing rejected: %w", err)
	}

	sig, err := w.client.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("broadcast failed: %w", err)
	}

	return sig, nil
}
