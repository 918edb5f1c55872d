package database

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

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Service) CreateAuction(ctx context.Context, auction *models.Auction) error {
	now := time.Now().UTC()
	if auction.CreatedAt.IsZero() {
		auction.CreatedAt = now
	}
	auction.UpdatedAt = auction.CreatedAt
	auction.Version = 1

	_, err := s.db.ExecContext(ctx, queryInsertAuction,
		auction.Id, auction.ProductId,
		auction.StartingPrice.MinorUnits(), store.NullableMinorUnits(auction.ReservePrice),
		auction.CurrentPrice.MinorUnits(), auction.BidIncrement.MinorUnits(),
		auction.StartDate.UTC(), auction.EndDate.UTC(), string(auction.Status),
		auction.AutoExtendEnabled, auction.ReservePriceMet, store.NullableString(auction.WinnerId),
		auction.TotalBids, auction.ExtensionCount, store.NullableTime(auction.ClosedAt),
		auction.Version, auction.CreatedAt, auction.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert auction: %w", mapError(err))
	}

	zap.L().Info("Auction created",
		zap.String("auction_id", auction.Id),
		zap.String("product_id", auction.ProductId),
		zap.String("starting_price", auction.StartingPrice.String()),
		zap.Time("start_date", auction.StartDate),
		zap.Time("end_date", auction.EndDate))
	return nil
}

func (s *Service) GetAuction(ctx context.Context, auctionId string) (*models.Auction, error) {
	auction, err := store.ScanAuction(s.db.QueryRowContext(ctx, queryGetAuction, auctionId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("auction %s: %w", auctionId, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return auction, nil
}

// SaveAuction writes the mutable auction fields if the stored version still
// matches auction.Version.
func (s *Service) SaveAuction(ctx context.Context, auction *models.Auction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", mapError(err))
	}
	defer tx.Rollback()

	if err := updateAuction(ctx, tx, auction); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}
	auction.Version++
	return nil
}

// updateAuction runs the versioned update without touching auction.Version;
// callers bump it after commit.
func updateAuction(ctx context.Context, tx execer, auction *models.Auction) error {
	auction.UpdatedAt = time.Now().UTC()
	result, err := tx.ExecContext(ctx, queryUpdateAuction,
		auction.CurrentPrice.MinorUnits(), auction.ReservePriceMet, store.NullableString(auction.WinnerId),
		auction.TotalBids, auction.EndDate.UTC(), string(auction.Status), auction.ExtensionCount,
		store.NullableTime(auction.ClosedAt), auction.UpdatedAt,
		auction.Id, auction.Version)
	if err != nil {
		return fmt.Errorf("failed to update auction: %w", mapError(err))
	}
	return checkVersioned(result, "auction")
}

// DeleteAuction removes the auction and its bids.
func (s *Service) DeleteAuction(ctx context.Context, auctionId string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", mapError(err))
	}
	defer tx.Rollback()

	bids, err := tx.ExecContext(ctx, queryDeleteBidsByAuction, auctionId)
	if err != nil {
		return fmt.Errorf("failed to delete bids: %w", mapError(err))
	}
	result, err := tx.ExecContext(ctx, queryDeleteAuction, auctionId)
	if err != nil {
		return fmt.Errorf("failed to delete auction: %w", mapError(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("auction %s: %w", auctionId, store.ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}

	deletedBids, _ := bids.RowsAffected()
	zap.L().Info("Auction deleted",
		zap.String("auction_id", auctionId),
		zap.Int64("bids_deleted", deletedBids))
	return nil
}

func (s *Service) ListAuctions(ctx context.Context, filter models.AuctionFilter, now time.Time) ([]models.Auction, error) {
	switch filter {
	case models.FilterActive:
		return s.FindActive(ctx, now)
	case models.FilterClosed:
		return s.queryAuctions(ctx, queryListClosedAuctions)
	case models.FilterPending:
		return s.queryAuctions(ctx, queryListPendingAuctions)
	default:
		return s.queryAuctions(ctx, queryListAuctions)
	}
}

func (s *Service) FindActive(ctx context.Context, now time.Time) ([]models.Auction, error) {
	return s.queryAuctions(ctx, queryFindActive, now.UTC())
}

func (s *Service) FindExpiredOpen(ctx context.Context, now time.Time) ([]models.Auction, error) {
	return s.queryAuctions(ctx, queryFindExpiredOpen, now.UTC())
}

func (s *Service) FindPendingDue(ctx context.Context, now time.Time) ([]models.Auction, error) {
	return s.queryAuctions(ctx, queryFindPendingDue, now.UTC())
}

func (s *Service) queryAuctions(ctx context.Context, query string, args ...any) ([]models.Auction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query auctions: %w", err)
	}
	defer closeRows(rows)

	var auctions []models.Auction
	for rows.Next() {
		auction, err := store.ScanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		auctions = append(auctions, *auction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auctions: %w", err)
	}
	return auctions, nil
}
