package database

import (
	"context"
	"fmt"
	"time"

	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/store"

	"go.uber.org/zap"
)

// CloseAuction saves a closed auction and queues its order notification
// atomically, so a SOLD auction is never left without one.
func (s *Service) CloseAuction(ctx context.Context, auction *models.Auction, notification *models.OrderNotification) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", mapError(err))
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
	result, err := s.db.ExecContext(ctx, queryMarkNotificationDelivered, deliveredAt.UTC(), notificationId)
	if err != nil {
		return fmt.Errorf("failed to mark order notification delivered: %w", mapError(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		zap.L().Warn("Order notification already delivered or missing",
			zap.String("notification_id", notificationId))
	}
	return nil
}

func (s *Service) RecordOrderNotificationFailure(ctx context.Context, notificationId string) error {
	if _, err := s.db.ExecContext(ctx, queryRecordNotificationFailure, notificationId); err != nil {
		return fmt.Errorf("failed to record order notification failure: %w", mapError(err))
	}
	return nil
}
