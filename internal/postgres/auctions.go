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

func (s *Service) CreateAuction(ctx context.Context, auction *models.Auction) error {
	if auction.CreatedAt.IsZero() {
		auction.CreatedAt = time.Now().UTC()
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
		zap.String("starting_price", auction.StartingPrice.String()))
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

func (s *Service) SaveAuction(ctx context.Context, auction *models.Auction) error {
	tx, _, err := s.beginLocked(ctx, auction.Id)
	if err != nil {
		return err
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

func updateAuction(ctx context.Context, tx *sql.Tx, auction *models.Auction) error {
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

// DeleteAuction removes the auction; bids go with it through ON DELETE CASCADE.
func (s *Service) DeleteAuction(ctx context.Context, auctionId string) error {
	tx, _, err := s.beginLocked(ctx, auctionId)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, queryDeleteAuction, auctionId); err != nil {
		return fmt.Errorf("failed to delete auction: %w", mapError(err))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}

	zap.L().Info("Auction deleted", zap.String("auction_id", auctionId))
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

func (s *Service) SellerOf(ctx context.Context, productId string) (string, error) {
	product, err := s.GetProduct(ctx, productId)
	if err != nil {
		return "", err
	}
	return product.SellerId, nil
}

func (s *Service) GetProduct(ctx context.Context, productId string) (*models.Product, error) {
	var product models.Product
	err := s.db.QueryRowContext(ctx, queryGetProduct, productId).
		Scan(&product.Id, &product.SellerId, &product.Title, &product.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", productId, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (s *Service) UpsertProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	if product.Id == "" || product.SellerId == "" {
		return nil, fmt.Errorf("product id and seller id are required")
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	var saved models.Product
	err := s.db.QueryRowContext(ctx, queryUpsertProduct,
		product.Id, product.SellerId, product.Title, product.CreatedAt).
		Scan(&saved.Id, &saved.SellerId, &saved.Title, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert product: %w", mapError(err))
	}

	zap.L().Info("Product registered",
		zap.String("product_id", saved.Id),
		zap.String("seller_id", saved.SellerId))
	return &saved, nil
}
