// Package payflow implements the payment-confirmation workflow for a
// storefront selling digital goods for on-chain payments: mint a one-time
// order reference, request an unsigned transaction tagged with it, submit
// it through the buyer's signing agent, then poll the ledger until a
// transaction carrying the reference is finalized and fulfillment unlocks.
package payflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/vitwit/payflow/ledger"
	"github.com/vitwit/payflow/logger"
	"github.com/vitwit/payflow/metrics"
	"github.com/vitwit/payflow/orders"
	"github.com/vitwit/payflow/reference"
	"github.com/vitwit/payflow/types"
	"github.com/vitwit/payflow/wallet"
)

// TransactionBuilder requests an unsigned payment transaction for an order
// from the external transaction-building service.
type TransactionBuilder interface {
	BuildTransaction(ctx context.Context, order *types.OrderDescriptor) (*solana.Transaction, error)
}

// Item is the digital good on sale: a catalog id plus the
// content-addressed handle released once the item is paid for.
type Item struct {
	ID    string
	Asset types.AssetHandle
}

// Deps are the external collaborators the workflow consumes. Signer,
// Builder and Ledger are required. Store may be nil, in which case paid
// orders are not recorded anywhere.
type Deps struct {
	Signer  wallet.Signer
	Builder TransactionBuilder
	Ledger  ledger.Lookup
	Store   orders.Store
}

// Checkout drives one purchase of one item through the
// INITIAL → SUBMITTED → PAID state machine. The status word is the single
// source of truth for what is in flight; all mutations happen in
// transition, and stale results from an abandoned attempt are discarded by
// comparing attempt tokens.
type Checkout struct {
	cfg  *types.Config
	item Item
	deps Deps

	log      logger.Logger
	metrics  metrics.Recorder
	refgen   reference.Generator
	onStatus func(types.Status)

	mu         sync.Mutex
	order      *types.OrderDescriptor
	status     types.Status
	attempt    uint64
	inFlight   bool
	cancelPoll context.CancelFunc
}

// New creates a checkout for one item. If the signing agent already
// exposes a buyer identity the order descriptor is minted immediately;
// otherwise it is minted on the first Buy after a wallet connects.
func New(cfg *types.Config, item Item, deps Deps, opts ...Option) (*Checkout, error) {
	if item.ID == "" {
		return nil, &types.PayflowError{Code: types.ErrConfigError, Message: "item id is required"}
	}
	if deps.Signer == nil || deps.Builder == nil || deps.Ledger == nil {
		return nil, &types.PayflowError{Code: types.ErrConfigError, Message: "signer, builder and ledger are required"}
	}

	if cfg == nil {
		cfg = &types.Config{}
	}
	cfg.Normalize()

	c := &Checkout{
		cfg:     cfg,
		item:    item,
		deps:    deps,
		log:     logger.NoopLogger{},
		metrics: metrics.NoopRecorder{},
		refgen:  reference.KeypairGenerator{},
		status:  types.StatusInitial,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.mintOrderLocked(); err != nil {
		return nil, err
	}

	return c, nil
}

// mintOrderLocked recomputes the order descriptor with a fresh reference.
// Caller holds c.mu.
func (c *Checkout) mintOrderLocked() error {
	pub := c.deps.Signer.PublicKey()
	if pub == nil {
		c.order = nil
		return nil
	}

	ref, err := c.refgen.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate order reference: %w", err)
	}

	c.order = &types.OrderDescriptor{
		Buyer:          pub.String(),
		OrderReference: ref.String(),
		ItemID:         c.item.ID,
	}
	return nil
}

// Reset is the explicit "order parameters changed" event: it abandons the
// current attempt, cancels any polling, and mints a fresh descriptor with
// a new one-time reference. Reusing a reference across attempts would make
// ledger lookups ambiguous, so this is the only re-mint path.
func (c *Checkout) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.attempt++
	if c.cancelPoll != nil {
		c.cancelPoll()
		c.cancelPoll = nil
	}
	c.status = types.StatusInitial
	c.inFlight = false

	return c.mintOrderLocked()
}

// Buy runs the request and submit phases: one build call, one
// sign-and-broadcast. On broadcast success the order enters SUBMITTED and
// the confirmation poller starts; on any failure the order stays INITIAL
// and the whole checkout may be retried.
func (c *Checkout) Buy(ctx context.Context) error {
	c.mu.Lock()
	if c.deps.Signer.PublicKey() == nil {
		c.mu.Unlock()
		return &types.PayflowError{Code: types.ErrNoIdentity, Message: "connect a wallet to make purchases"}
	}
	if c.status != types.StatusInitial {
		c.mu.Unlock()
		return &types.PayflowError{Code: types.ErrInvalidState, Message: fmt.Sprintf("checkout is %s", c.status)}
	}
	if c.inFlight {
		c.mu.Unlock()
		return &types.PayflowError{Code: types.ErrCheckoutInFlight, Message: "a build or submit call is already outstanding"}
	}
	if c.order == nil {
		if err := c.mintOrderLocked(); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	c.inFlight = true
	attempt := c.attempt
	order := *c.order
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.attempt == attempt {
			c.inFlight = false
		}
		c.mu.Unlock()
	}()

	start := time.Now()
	tx, err := c.deps.Builder.BuildTransaction(ctx, &order)
	if err != nil {
		c.metrics.IncCounter(metrics.EventBuildError, c.labels())
		c.log.Error("transaction build failed", map[string]any{
			"error":          err.Error(),
			"orderReference": order.OrderReference,
		})
		return err
	}
	c.metrics.ObserveLatency("build", time.Since(start), c.labels())

	start = time.Now()
	sig, err := c.deps.Signer.SendTransaction(ctx, tx)
	if err != nil {
		c.metrics.IncCounter(metrics.EventSubmitError, c.labels())
		c.log.Error("transaction submit failed", map[string]any{
			"error":          err.Error(),
			"orderReference": order.OrderReference,
		})
		return &types.PayflowError{Code: types.ErrSubmitFailed, Message: fmt.Sprintf("signing or broadcast failed: %v", err)}
	}
	c.metrics.ObserveLatency("submit", time.Since(start), c.labels())
	c.log.Info("transaction submitted", map[string]any{
		"signature":      sig.String(),
		"orderReference": order.OrderReference,
	})

	if c.transition(attempt, types.StatusSubmitted) {
		c.metrics.IncCounter(metrics.EventSubmitted, c.labels())
	}
	return nil
}

// transition is the only place the status word changes. It refuses
// backward moves, skipped states and anything from a stale attempt. The
// poller is a scoped resource: acquired on entering SUBMITTED, released on
// leaving it by any path.
func (c *Checkout) transition(attempt uint64, to types.Status) bool {
	c.mu.Lock()
	if attempt != c.attempt {
		c.mu.Unlock()
		c.metrics.IncCounter(metrics.EventStaleDiscard, c.labels())
		return false
	}
	if !c.status.CanTransitionTo(to) {
		c.mu.Unlock()
		return false
	}

	from := c.status
	c.status = to

	if from == types.StatusSubmitted && c.cancelPoll != nil {
		c.cancelPoll()
		c.cancelPoll = nil
	}

	var order types.OrderDescriptor
	if c.order != nil {
		order = *c.order
	}
	if to == types.StatusSubmitted {
		pollCtx, cancel := context.WithCancel(context.Background())
		c.cancelPoll = cancel
		go c.poll(pollCtx, order, attempt)
	}
	notify := c.onStatus
	c.mu.Unlock()

	c.log.Info("order status changed", map[string]any{
		"from":           from.String(),
		"to":             to.String(),
		"orderReference": order.OrderReference,
	})
	if notify != nil {
		notify(to)
	}
	return true
}

// poll queries the ledger on a fixed cadence for a transaction tagged with
// the order's reference. "Not found" is steady state while finality is
// pending; other lookup errors are logged and the loop keeps going.
func (c *Checkout) poll(ctx context.Context, order types.OrderDescriptor, attempt uint64) {
	ref, err := solana.PublicKeyFromBase58(order.OrderReference)
	if err != nil {
		c.log.Error("invalid order reference, confirmation polling aborted", map[string]any{
			"error":          err.Error(),
			"orderReference": order.OrderReference,
		})
		return
	}

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	var expired <-chan time.Time
	if c.cfg.PollTimeout > 0 {
		timer := time.NewTimer(c.cfg.PollTimeout)
		defer timer.Stop()
		expired = timer.C
	}

	started := time.Now()
	for {
		select {
		case <-ctx.Done():
			return

		case <-expired:
			c.log.Warn("confirmation window elapsed", map[string]any{
				"orderReference": order.OrderReference,
				"after":          time.Since(started).String(),
			})
			if c.transition(attempt, types.StatusExpired) {
				c.metrics.IncCounter(metrics.EventExpired, c.labels())
			}
			return

		case <-ticker.C:
			res, err := c.deps.Ledger.FindReference(ctx, ref)
			switch {
			case errors.Is(err, ledger.ErrReferenceNotFound):
				// Finality still pending.
				continue
			case errors.Is(err, context.Canceled):
				return
			case err != nil:
				// Transient lookup faults never kill the poll loop.
				c.metrics.IncCounter(metrics.EventPollError, c.labels())
				c.log.Warn("reference lookup failed", map[string]any{
					"error":          err.Error(),
					"orderReference": order.OrderReference,
				})
				continue
			}

			if !res.Level.Sufficient() {
				continue
			}

			if c.transition(attempt, types.StatusPaid) {
				c.metrics.IncCounter(metrics.EventPaid, c.labels())
				c.metrics.ObserveLatency("confirm", time.Since(started), c.labels())
				c.log.Info("payment confirmed", map[string]any{
					"signature":      res.Signature.String(),
					"level":          res.Level.String(),
					"orderReference": order.OrderReference,
				})
				c.fulfill(order)
			}
			return
		}
	}
}

// fulfill runs once, synchronously with the transition to PAID. Recording
// failures never block asset delivery; the buyer has already paid.
func (c *Checkout) fulfill(order types.OrderDescriptor) {
	if c.deps.Store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.HTTPTimeout)
	defer cancel()

	rec := &types.FulfillmentRecord{
		Buyer:          order.Buyer,
		OrderReference: order.OrderReference,
		ItemID:         order.ItemID,
	}
	if err := c.deps.Store.Record(ctx, rec); err != nil {
		c.metrics.IncCounter(metrics.EventRecordError, c.labels())
		c.log.Error("order recording failed, asset stays unlocked", map[string]any{
			"error":          err.Error(),
			"orderReference": order.OrderReference,
		})
	}
}

// Status returns the authoritative state of this checkout attempt.
func (c *Checkout) Status() types.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Order returns a copy of the current order descriptor, or nil while no
// buyer identity is connected.
func (c *Checkout) Order() *types.OrderDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.order == nil {
		return nil
	}
	order := *c.order
	return &order
}

// CanBuy reports whether the purchase affordance should be offered.
func (c *Checkout) CanBuy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deps.Signer.PublicKey() != nil &&
		c.status == types.StatusInitial &&
		!c.inFlight
}

// Busy reports whether a busy indicator should show: a build or submit
// call is in flight, or the payment awaits finality.
func (c *Checkout) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight || c.status == types.StatusSubmitted
}

// Asset returns the purchased asset's retrieval handle. It is available
// exactly when the order is PAID.
func (c *Checkout) Asset() (types.AssetHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != types.StatusPaid {
		return types.AssetHandle{}, false
	}
	return c.item.Asset, true
}

// Close abandons the checkout: any polling stops and results arriving
// afterwards are discarded. Safe to call more than once.
func (c *Checkout) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.attempt++
	if c.cancelPoll != nil {
		c.cancelPoll()
		c.cancelPoll = nil
	}
}

func (c *Checkout) labels() map[string]string {
	return map[string]string{"item": c.item.ID}
}
