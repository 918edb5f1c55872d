/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/money"
	"auction-bidding-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultSnipingWindow     = 10 * time.Minute
	DefaultExtensionDuration = 10 * time.Minute
	DefaultLockTimeout       = 2 * time.Second
	DefaultMaxCommitAttempts = 3
)

// Engine serializes every state change of an auction behind a per-auction
// lock and commits it with an optimistic version check.
type Engine struct {
	store      store.Store
	dispatcher EventDispatcher
	clock      Clock
	locks      *keyedLocker

	snipingWindow     time.Duration
	extensionDuration time.Duration
	lockTimeout       time.Duration
	maxCommitAttempts int
}

// New creates an Engine. Zero config values fall back to the defaults and a
// nil clock means the system clock.
func New(st store.Store, dispatcher EventDispatcher, clock Clock, cfg models.EngineConfig) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	e := &Engine{
		store:             st,
		dispatcher:        dispatcher,
		clock:             clock,
		locks:             newKeyedLocker(),
		snipingWindow:     cfg.SnipingWindow,
		extensionDuration: cfg.ExtensionDuration,
		lockTimeout:       cfg.LockTimeout,
		maxCommitAttempts: cfg.MaxCommitAttempts,
	}
	if e.snipingWindow <= 0 {
		e.snipingWindow = DefaultSnipingWindow
	}
	if e.extensionDuration <= 0 {
		e.extensionDuration = DefaultExtensionDuration
	}
	if e.lockTimeout <= 0 {
		e.lockTimeout = DefaultLockTimeout
	}
	if e.maxCommitAttempts <= 0 {
		e.maxCommitAttempts = DefaultMaxCommitAttempts
	}
	return e
}

func (e *Engine) Now() time.Time {
	return e.clock.Now().UTC()
}

type bidOptions struct {
	maxAmount *money.Money
}

type BidOption func(*bidOptions)

// WithMaxAmount records the most the bidder is willing to pay. It is stored
// with the bid and does not trigger automatic counter-bids.
func WithMaxAmount(m money.Money) BidOption {
	return func(o *bidOptions) {
		o.maxAmount = &m
	}
}

// PlaceBid validates and commits a bid. Preconditions are checked in order:
// the auction exists, is ACTIVE or EXTENDED, has not reached its end date,
// the bidder is not the seller, and the amount reaches the next minimum.
func (e *Engine) PlaceBid(ctx context.Context, auctionId, bidderId string, amount money.Money, opts ...BidOption) (*models.BidOutcome, error) {
	if bidderId == "" {
		return nil, fmt.Errorf("%w: bidder id is required", ErrInvalidBid)
	}
	var options bidOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.maxAmount != nil && options.maxAmount.LessThan(amount) {
		return nil, fmt.Errorf("%w: max amount %s is below bid %s", ErrInvalidBid, options.maxAmount, amount)
	}

	var (
		outcome *models.BidOutcome
		events  []models.Event
	)
	err := e.withAuctionLock(ctx, auctionId, func(ctx context.Context) error {
		var err error
		outcome, events, err = e.placeBid(ctx, auctionId, bidderId, amount, options)
		return err
	})
	if err != nil {
		zap.L().Info("Bid rejected",
			zap.String("auction_id", auctionId),
			zap.String("bidder_id", bidderId),
			zap.String("amount", amount.String()),
			zap.String("request_id", models.RequestId(ctx)),
			zap.Error(err))
		return nil, err
	}

	e.dispatch(context.WithoutCancel(ctx), events)
	return outcome, nil
}

func (e *Engine) placeBid(ctx context.Context, auctionId, bidderId string, amount money.Money, options bidOptions) (*models.BidOutcome, []models.Event, error) {
	auction, err := e.loadAuction(ctx, auctionId)
	if err != nil {
		return nil, nil, err
	}

	if !auction.Status.AcceptsBids() {
		return nil, nil, &AuctionNotOpenError{AuctionId: auctionId, Status: auction.Status}
	}

	now := e.Now()
	if !now.Before(auction.EndDate) {
		return nil, nil, fmt.Errorf("auction %s ended at %s: %w", auctionId, auction.EndDate.Format(time.RFC3339), ErrAuctionExpired)
	}

	sellerId, err := e.store.SellerOf(ctx, auction.ProductId)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up seller of product %s: %w", auction.ProductId, err)
	}
	if sellerId == bidderId {
		return nil, nil, fmt.Errorf("bidder %s on auction %s: %w", bidderId, auctionId, ErrSelfBid)
	}

	minimum, err := auction.NextMinimumBid()
	if err != nil {
		return nil, nil, fmt.Errorf("auction %s accepts no higher bid: %w", auctionId, ErrInvalidBid)
	}
	if amount.LessThan(minimum) {
		return nil, nil, &BidTooLowError{AuctionId: auctionId, Amount: amount, Minimum: minimum}
	}

	bid := &models.Bid{
		Id:        uuid.New().String(),
		AuctionId: auctionId,
		BidderId:  bidderId,
		Amount:    amount,
		BidDate:   now,
		MaxAmount: options.maxAmount,
	}

	updated := *auction
	updated.CurrentPrice = amount
	updated.WinnerId = bidderId
	updated.TotalBids++
	if !updated.ReservePriceMet && updated.MeetsReserve(amount) {
		updated.ReservePriceMet = true
	}

	extended := updated.AutoExtendEnabled && auction.EndDate.Sub(now) <= e.snipingWindow
	if extended {
		updated.EndDate = now.Add(e.extensionDuration)
		updated.Status = models.StatusExtended
		updated.ExtensionCount++
	}

	if err := e.store.CommitBid(ctx, &updated, bid); err != nil {
		return nil, nil, err
	}

	zap.L().Info("Bid accepted",
		zap.String("auction_id", auctionId),
		zap.String("bid_id", bid.Id),
		zap.String("bidder_id", bidderId),
		zap.String("amount", amount.String()),
		zap.String("previous_price", auction.CurrentPrice.String()),
		zap.Int("total_bids", updated.TotalBids),
		zap.Bool("reserve_met", updated.ReservePriceMet),
		zap.Bool("extended", extended),
		zap.String("request_id", models.RequestId(ctx)))

	events := []models.Event{models.BidPlaced{
		AuctionId:    auctionId,
		BidId:        bid.Id,
		BidderId:     bidderId,
		Amount:       amount,
		PreviousBest: auction.CurrentPrice,
		TotalBids:    updated.TotalBids,
		PlacedAt:     now,
	}}
	if extended {
		zap.L().Info("Auction extended",
			zap.String("auction_id", auctionId),
			zap.Time("previous_end", auction.EndDate),
			zap.Time("new_end", updated.EndDate),
			zap.Int("extension_count", updated.ExtensionCount))
		events = append(events, models.AuctionExtended{
			AuctionId:      auctionId,
			PreviousEnd:    auction.EndDate,
			NewEnd:         updated.EndDate,
			ExtensionCount: updated.ExtensionCount,
		})
	}

	return &models.BidOutcome{
		Bid:          *bid,
		CurrentPrice: updated.CurrentPrice,
		Extended:     extended,
		EndDate:      updated.EndDate,
		Status:       updated.Status,
	}, events, nil
}

// NextMinimumBid returns currentPrice + bidIncrement.
func (e *Engine) NextMinimumBid(ctx context.Context, auctionId string) (money.Money, error) {
	auction, err := e.loadAuction(ctx, auctionId)
	if err != nil {
		return money.Money{}, err
	}
	minimum, err := auction.NextMinimumBid()
	if err != nil {
		return money.Money{}, fmt.Errorf("auction %s: %w", auctionId, err)
	}
	return minimum, nil
}

// CurrentWinningBid returns nil without error when the auction has no bids.
func (e *Engine) CurrentWinningBid(ctx context.Context, auctionId string) (*models.Bid, error) {
	if _, err := e.loadAuction(ctx, auctionId); err != nil {
		return nil, err
	}
	bid, err := e.store.FindWinningBid(ctx, auctionId)
	if err != nil {
		return nil, fmt.Errorf("failed to find winning bid: %w", err)
	}
	return bid, nil
}

func (e *Engine) loadAuction(ctx context.Context, auctionId string) (*models.Auction, error) {
	auction, err := e.store.GetAuction(ctx, auctionId)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("auction %s: %w", auctionId, ErrAuctionNotFound)
	}
	if err != nil {
		return nil, err
	}
	return auction, nil
}

// withAuctionLock runs fn while holding the auction's lock. A caller that
// gives up before the lock is taken gets ctx.Err() and nothing runs; once
// the lock is held fn runs to completion regardless of cancellation.
// Version conflicts are retried with a fresh read up to maxCommitAttempts.
func (e *Engine) withAuctionLock(ctx context.Context, auctionId string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	release, err := e.locks.acquire(ctx, auctionId, e.lockTimeout)
	if errors.Is(err, errLockTimeout) {
		return &ContentionError{AuctionId: auctionId, Cause: err}
	}
	if err != nil {
		return err
	}
	defer release()

	ctx = context.WithoutCancel(ctx)
	var lastErr error
	for attempt := 1; attempt <= e.maxCommitAttempts; attempt++ {
		err := fn(ctx)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, store.ErrBusy):
			return &ContentionError{AuctionId: auctionId, Attempts: attempt, Cause: err}
		case errors.Is(err, store.ErrConcurrentModification):
			lastErr = err
			zap.L().Debug("Auction changed underneath commit, retrying",
				zap.String("auction_id", auctionId),
				zap.Int("attempt", attempt))
		default:
			return err
		}
	}
	return &ContentionError{AuctionId: auctionId, Attempts: e.maxCommitAttempts, Cause: lastErr}
}
