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

	_, err := s.db.ExecContext(ctx, queryUpsertProduct,
		product.Id, product.SellerId, product.Title, product.CreatedAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to upsert product: %w", mapError(err))
	}

	saved, err := s.GetProduct(ctx, product.Id)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Product registered",
		zap.String("product_id", saved.Id),
		zap.String("seller_id", saved.SellerId))
	return saved, nil
}
