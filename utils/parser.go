package utils

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/vitwit/payflow/types"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ParseOrderDescriptor parses and validates an OrderDescriptor from JSON.
func ParseOrderDescriptor(data []byte) (*types.OrderDescriptor, error) {
	var order types.OrderDescriptor

	if err := json.Unmarshal(data, &order); err != nil {
		return nil, &types.PayflowError{
			Code:    types.ErrInvalidOrder,
			Message: fmt.Sprintf("failed to parse order descriptor: %v", err),
		}
	}

	if err := ValidateOrderDescriptor(&order); err != nil {
		return nil, err
	}

	return &order, nil
}

// ValidateOrderDescriptor checks that all descriptor fields are present and
// that the key-shaped fields actually look like keys.
func ValidateOrderDescriptor(order *types.OrderDescriptor) error {
	// Validate using struct tags
	if err := validate.Struct(order); err != nil {
		return &types.PayflowError{
			Code:    types.ErrInvalidOrder,
			Message: fmt.Sprintf("validation failed: %v", err),
		}
	}

	if err := ValidateAddress(order.Buyer); err != nil {
		return &types.PayflowError{
			Code:    types.ErrInvalidOrder,
			Message: fmt.Sprintf("invalid buyer: %v", err),
		}
	}

	if err := ValidateAddress(order.OrderReference); err != nil {
		return &types.PayflowError{
			Code:    types.ErrInvalidOrder,
			Message: fmt.Sprintf("invalid order reference: %v", err),
		}
	}

	return nil
}

// SerializeOrderDescriptor converts an OrderDescriptor to JSON.
func SerializeOrderDescriptor(order *types.OrderDescriptor) ([]byte, error) {
	return json.Marshal(order)
}
