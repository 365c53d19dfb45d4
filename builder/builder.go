// Package builder requests unsigned payment transactions from the
// external transaction-building service. The service prices the order and
// embeds the order reference in the transaction; this client treats the
// payload as opaque beyond decoding it for the signing agent.
package builder

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/vitwit/payflow/types"
	"github.com/vitwit/payflow/utils"
)

// Client calls the transaction-building service. One checkout attempt
// issues at most one build request at a time.
type Client struct {
	endpoint string
	http     *http.Client
}

func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// BuildTransaction submits the order descriptor and decodes the returned
// transaction. Any failure leaves the caller free to retry the whole
// checkout; nothing is broadcast here.
func (c *Client) BuildTransaction(ctx context.Context, order *types.OrderDescriptor) (*solana.Transaction, error) {
	if err := utils.ValidateOrderDescriptor(order); err != nil {
		return nil, err
	}

	body, err := json.Marshal(types.BuildRequest{
		Buyer:          order.Buyer,
		OrderReference: order.OrderReference,
		ItemID:         order.ItemID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &types.PayflowError{
			Code:    types.ErrBuildFailed,
			Message: fmt.Sprintf("transaction builder unreachable: %v", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &types.PayflowError{
			Code:    types.ErrBuildFailed,
			Message: fmt.Sprintf("transaction builder returned status %d", resp.StatusCode),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read build response: %w", err)
	}

	var build types.BuildResponse
	if err := json.Unmarshal(raw, &build); err != nil {
		return nil, &types.PayflowError{
			Code:    types.ErrBuildFailed,
			Message: fmt.Sprintf("invalid build response: %v", err),
		}
	}

	return decodeTransaction(build.Transaction)
}

func decodeTransaction(encoded string) (*solana.Transaction, error) {
	if encoded == "" {
		return nil, &types.PayflowError{
			Code:    types.ErrBuildFailed,
			Message: "build response contains no transaction",
		}
	}

	txBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid tx base64: %w", err)
	}

	dec := binary.NewBinDecoder(txBytes)
	tx, err := solana.TransactionFromDecoder(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}

	return tx, nil
}
