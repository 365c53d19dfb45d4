package types

// OrderDescriptor identifies one checkout attempt. It is immutable once
// created; recomputing it (buyer or item changed) must mint a fresh
// OrderReference, because the reference is what ties a ledger transaction
// back to exactly one attempt.
type OrderDescriptor struct {
	// Buyer is the base58 public key of the paying wallet.
	Buyer string `json:"buyer" validate:"required"`

	// OrderReference is a one-time base58 public key used purely as an
	// on-chain-readable tag. It is never a spending key.
	OrderReference string `json:"orderReference" validate:"required"`

	// ItemID identifies the purchased item in the catalog.
	ItemID string `json:"itemID" validate:"required"`
}

// FulfillmentRecord is what gets persisted to the order store once an
// order is paid.
type FulfillmentRecord struct {
	Buyer          string `json:"buyer"`
	OrderReference string `json:"orderReference"`
	ItemID         string `json:"itemID"`
}

// AssetHandle is the content-addressed retrieval handle for a purchased
// digital asset. It is presented to the buyer only once the order is paid.
type AssetHandle struct {
	Filename string `json:"filename"`
	Hash     string `json:"hash"`
}

// BuildRequest is the payload sent to the transaction-building service.
type BuildRequest struct {
	Buyer          string `json:"buyer"`
	OrderReference string `json:"orderReference"`
	ItemID         string `json:"itemID"`
}

// BuildResponse carries the encoded, unsigned payment transaction built by
// the external service. The transaction embeds the order reference as an
// on-chain-readable tag.
type BuildResponse struct {
	Transaction string `json:"transaction"`
}

// ConfirmationLevel is the ledger's attestation strength for a transaction.
type ConfirmationLevel string

const (
	LevelProcessed ConfirmationLevel = "processed"
	LevelConfirmed ConfirmationLevel = "confirmed"
	LevelFinalized ConfirmationLevel = "finalized"
)

// Sufficient reports whether the level is strong enough to treat the
// payment as settled.
func (l ConfirmationLevel) Sufficient() bool {
	return l == LevelConfirmed || l == LevelFinalized
}

func (l ConfirmationLevel) String() string {
	return string(l)
}

// Error types
type PayflowError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e PayflowError) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrNoIdentity       = "NO_IDENTITY"
	ErrInvalidOrder     = "INVALID_ORDER"
	ErrInvalidState     = "INVALID_STATE"
	ErrCheckoutInFlight = "CHECKOUT_IN_FLIGHT"
	ErrBuildFailed      = "BUILD_FAILED"
	ErrSubmitFailed     = "SUBMIT_FAILED"
	ErrRecordFailed     = "RECORD_FAILED"
	ErrConfigError      = "CONFIG_ERROR"
)
