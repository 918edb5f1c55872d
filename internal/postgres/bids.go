package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/store"

	"go.uber.org/zap"
)

// CommitBid locks the auction row, applies the versioned update, swaps the
// winning bid and commits.
func (s *Service) CommitBid(ctx context.Context, auction *models.Auction, bid *models.Bid) error {
	tx, version, err := s.beginLocked(ctx, auction.Id)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if version != auction.Version {
		return fmt.Errorf("auction at version %d, expected %d - %w", version, auction.Version, store.ErrConcurrentModification)
	}
	if err := updateAuction(ctx, tx, auction); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, queryClearWinningBid, auction.Id); err != nil {
		return fmt.Errorf("failed to clear winning bid: %w", mapError(err))
	}

	bid.IsWinning = true
	_, err = tx.ExecContext(ctx, queryInsertBid,
		bid.Id, bid.AuctionId, bid.BidderId, bid.Amount.MinorUnits(), bid.BidDate.UTC(),
		bid.IsWinning, bid.IsAutoBid, store.NullableMinorUnits(bid.MaxAmount))
	if err != nil {
		return fmt.Errorf("failed to insert bid: %w", mapError(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}
	auction.Version++

	zap.L().Debug("Bid committed",
		zap.String("auction_id", auction.Id),
		zap.String("bid_id", bid.Id),
		zap.String("amount", bid.Amount.String()))
	return nil
}

func (s *Service) FindWinningBid(ctx context.Context, auctionId string) (*models.Bid, error) {
	bid, err := store.ScanBid(s.db.QueryRowContext(ctx, queryGetWinningBid, auctionId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get winning bid: %w", err)
	}
	return bid, nil
}

func (s *Service) FindBidsByAuction(ctx context.Context, auctionId string) ([]models.Bid, error) {
	rows, err := s.db.QueryContext(ctx, queryGetBidsByAuction, auctionId)
	if err != nil {
		return nil, fmt.Errorf("failed to query bids: %w", err)
	}
	defer closeRows(rows)

	var bids []models.Bid
	for rows.Next() {
		bid, err := store.ScanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, *bid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bids: %w", err)
	}
	return bids, nil
}

// CloseAuction saves the closed auction and queues its order notification
// in one transaction.
func (s *Service) CloseAuction(ctx context.Context, auction *models.Auction, notification *models.OrderNotification) error {
	tx, _, err := s.beginLocked(ctx, auction.Id)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := updateAuction(ctx, tx, auction); err != nil {
		return err
	}
	if notification != nil {
		_, err := tx.ExecContext(ctx, queryInsertNotification,
			notification.Id, notification.AuctionId, notification.ProductId, notification.WinnerId,
			notification.FinalPrice.MinorUnits(), notification.Currency, notification.SoldAt.UTC(),
			notification.Attempts, store.NullableTime(notification.DeliveredAt))
		if err != nil {
			return fmt.Errorf("failed to queue order notification: %w", mapError(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}
	auction.Version++
	return nil
}

func (s *Service) PendingOrderNotifications(ctx context.Context, limit int) ([]models.OrderNotification, error) {
	rows, err := s.db.QueryContext(ctx, queryPendingNotifications, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query order notifications: %w", err)
	}
	defer closeRows(rows)

	var notifications []models.OrderNotification
	for rows.Next() {
		n, err := store.ScanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order notifications: %w", err)
	}
	return notifications, nil
}

func (s *Service) MarkOrderNotificationDelivered(ctx context.Context, notificationId string, deliveredAt time.Time) error {
	if _, err := s.db.ExecContext(ctx, queryMarkNotificationDelivered, deliveredAt.UTC(), notificationId); err != nil {
		return fmt.Errorf("failed to mark order notification delivered: %w", mapError(err))
	}
	return nil
}

func (s *Service) RecordOrderNotificationFailure(ctx context.Context, notificationId string) error {
	if _, err := s.db.ExecContext(ctx, queryRecordNotificationFailure, notificationId); err != nil {
		return fmt.Errorf("failed to record order notification failure: %w", mapError(err))
	}
	return nil
}
