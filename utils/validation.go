package utils

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// ValidateAmount checks if an amount string is a valid, non-negative decimal.
func ValidateAmount(amount string) (*decimal.Decimal, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if dec.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	return &dec, nil
}

// ValidateAddress validates a base58 account address. Order references and
// buyer identities both travel in this form.
func ValidateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	if len(address) < 32 || len(address) > 44 {
		return fmt.Errorf("address has invalid length")
	}
	if !isBase58String(address) {
		return fmt.Errorf("address must be valid base58")
	}

	return nil
}

// ValidateTransactionSignature validates a base58 transaction signature.
func ValidateTransactionSignature(sig string) error {
	if sig == "" {
		return fmt.Errorf("transaction signature cannot be empty")
	}

	if len(sig) < 80 || len(sig) > 90 {
		return fmt.Errorf("transaction signature has invalid length")
	}
	if !isBase58String(sig) {
		return fmt.Errorf("transaction signature must be valid base58")
	}

	return nil
}

// Helper function to check if a string is valid base58
func isBase58String(s string) bool {
	// Base58 alphabet: 123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz
	match, _ := regexp.MatchString("^[1-9A-HJ-NP-Za-km-z]+$", s)
	return match
}
