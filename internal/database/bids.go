package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/store"

	"go.uber.org/zap"
)

// CommitBid applies an accepted bid in one transaction: the auction row is
// updated under its version check, the previous winning bid is cleared and
// the new bid is inserted as the winner.
func (s *Service) CommitBid(ctx context.Context, auction *models.Auction, bid *models.Bid) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", mapError(err))
	}
	defer tx.Rollback()

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
		zap.String("amount", bid.Amount.String()),
		zap.Int64("version", auction.Version))
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
