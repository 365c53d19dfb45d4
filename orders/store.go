// Package orders persists paid orders to the external order store. The
// write is fire-and-forget from the workflow's perspective: the buyer has
// already paid, so bookkeeping failures are logged for reconciliation and
// never block fulfillment.
package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	retry "github.com/avast/retry-go"
	"github.com/vitwit/payflow/types"
)

// Store accepts fulfillment records for persistence.
type Store interface {
	Record(ctx context.Context, rec *types.FulfillmentRecord) error
}

// HTTPStore posts fulfillment records to the order service. Requests carry
// the order reference as an idempotency key, so retries and duplicate
// confirmations collapse into one stored order server-side.
type HTTPStore struct {
	endpoint string
	http     *http.Client
	attempts uint
}

var _ Store = (*HTTPStore)(nil)

func NewHTTPStore(endpoint string, timeout time.Duration, attempts uint) *HTTPStore {
	if attempts == 0 {
		attempts = 1
	}
	return &HTTPStore{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		attempts: attempts,
	}
}

func (s *HTTPStore) Record(ctx context.Context, rec *types.FulfillmentRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode fulfillment record: %w", err)
	}

	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Idempotency-Key", rec.OrderReference)

			resp, err := s.http.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return nil
			case resp.StatusCode >= 500:
				return fmt.Errorf("order store returned status %d", resp.StatusCode)
			default:
				// 4xx will not improve on retry.
				return retry.Unrecoverable(fmt.Errorf("order store rejected record: status %d", resp.StatusCode))
			}
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return &types.PayflowError{
			Code:    types.ErrRecordFailed,
			Message: fmt.Sprintf("failed to persist order %s: %v", rec.OrderReference, err),
		}
	}

	return nil
}
