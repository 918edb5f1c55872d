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

// ActivateIfDue moves a PENDING auction to ACTIVE once its start date has
// passed. It returns false without error when there is nothing to do.
func (e *Engine) ActivateIfDue(ctx context.Context, auctionId string) (bool, error) {
	var (
		activated bool
		events    []models.Event
	)
	err := e.withAuctionLock(ctx, auctionId, func(ctx context.Context) error {
		activated, events = false, nil

		auction, err := e.loadAuction(ctx, auctionId)
		if err != nil {
			return err
		}
		now := e.Now()
		if auction.Status != models.StatusPending || now.Before(auction.StartDate) {
			return nil
		}

		auction.Status = models.StatusActive
		if err := e.store.SaveAuction(ctx, auction); err != nil {
			return err
		}

		activated = true
		events = append(events, models.AuctionActivated{AuctionId: auctionId, ActivatedAt: now})
		zap.L().Info("Auction activated",
			zap.String("auction_id", auctionId),
			zap.Time("start_date", auction.StartDate),
			zap.Time("end_date", auction.EndDate))
		return nil
	})
	if err != nil {
		return false, err
	}
	e.dispatch(context.WithoutCancel(ctx), events)
	return activated, nil
}

// CloseIfExpired resolves an ACTIVE or EXTENDED auction whose end date has
// passed to SOLD or UNSOLD. It returns nil without error when the auction
// is already closed or was extended past now, so repeated calls are safe.
func (e *Engine) CloseIfExpired(ctx context.Context, auctionId string) (*models.Auction, error) {
	return e.close(ctx, auctionId, false)
}

// ForceClose ends an auction immediately regardless of its end date. A
// PENDING auction closes UNSOLD; a closed one reports AuctionNotOpenError.
func (e *Engine) ForceClose(ctx context.Context, auctionId string) (*models.Auction, error) {
	return e.close(ctx, auctionId, true)
}

func (e *Engine) close(ctx context.Context, auctionId string, force bool) (*models.Auction, error) {
	var (
		closed *models.Auction
		events []models.Event
	)
	err := e.withAuctionLock(ctx, auctionId, func(ctx context.Context) error {
		closed, events = nil, nil

		auction, err := e.loadAuction(ctx, auctionId)
		if err != nil {
			return err
		}
		now := e.Now()

		if !auction.Status.IsOpen() {
			if force {
				return &AuctionNotOpenError{AuctionId: auctionId, Status: auction.Status}
			}
			return nil
		}
		if !force && (auction.Status == models.StatusPending || now.Before(auction.EndDate)) {
			return nil
		}
		if force && now.Before(auction.EndDate) {
			auction.EndDate = now
		}

		notification := resolve(auction, now)
		if err := e.store.CloseAuction(ctx, auction, notification); err != nil {
			return err
		}

		closed = auction
		events = append(events, models.AuctionClosed{
			AuctionId:  auctionId,
			Status:     auction.Status,
			WinnerId:   auction.WinnerId,
			FinalPrice: auction.CurrentPrice,
			TotalBids:  auction.TotalBids,
			ClosedAt:   now,
		})
		zap.L().Info("Auction closed",
			zap.String("auction_id", auctionId),
			zap.String("status", string(auction.Status)),
			zap.String("winner_id", auction.WinnerId),
			zap.String("final_price", auction.CurrentPrice.String()),
			zap.Int("total_bids", auction.TotalBids),
			zap.Bool("forced", force))
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.dispatch(context.WithoutCancel(ctx), events)
	return closed, nil
}

// resolve applies ENDED -> SOLD|UNSOLD to auction in place and returns the
// order notification for a sale. An auction without bids is UNSOLD whether
// or not it has a reserve.
func resolve(auction *models.Auction, now time.Time) *models.OrderNotification {
	auction.ClosedAt = &now

	if auction.TotalBids == 0 || auction.WinnerId == "" || !auction.ReservePriceMet {
		auction.Status = models.StatusUnsold
		return nil
	}

	auction.Status = models.StatusSold
	return &models.OrderNotification{
		Id:         uuid.New().String(),
		AuctionId:  auction.Id,
		ProductId:  auction.ProductId,
		WinnerId:   auction.WinnerId,
		FinalPrice: auction.CurrentPrice,
		Currency:   money.Currency,
		SoldAt:     now,
	}
}

// Delete removes an auction and its bids.
func (e *Engine) Delete(ctx context.Context, auctionId string) error {
	return e.withAuctionLock(ctx, auctionId, func(ctx context.Context) error {
		err := e.store.DeleteAuction(ctx, auctionId)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("auction %s: %w", auctionId, ErrAuctionNotFound)
		}
		return err
	})
}
