// Package reference mints one-time order references. A reference is the
// public component of a freshly generated keypair, used purely as an
// on-chain-readable tag so the payment transaction can be located later by
// account lookup instead of by transaction hash.
package reference

import (
	"github.com/gagliardetto/solana-go"
)

// Generator produces a fresh, globally unique identifier per checkout
// attempt. Implementations must be side-effect free.
type Generator interface {
	Generate() (solana.PublicKey, error)
}

// KeypairGenerator derives references from throwaway ed25519 keypairs. The
// private component is discarded immediately; the reference never spends.
type KeypairGenerator struct{}

var _ Generator = KeypairGenerator{}

func (KeypairGenerator) Generate() (solana.PublicKey, error) {
	return solana.NewWallet().PublicKey(), nil
}
