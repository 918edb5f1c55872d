package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterProduct adds a product to the catalog or renames an existing one.
// The seller of an existing product cannot change.
func (s *AuctionService) RegisterProduct(ctx context.Context, req models.RegisterProductRequest) (*models.Product, error) {
	sellerId := strings.TrimSpace(req.SellerId)
	title := strings.TrimSpace(req.Title)
	if sellerId == "" || title == "" {
		return nil, invalid("seller_id and title are required")
	}

	productId := strings.TrimSpace(req.Id)
	if productId == "" {
		productId = uuid.New().String()
	} else if existing, err := s.store.GetProduct(ctx, productId); err == nil {
		if existing.SellerId != sellerId {
			return nil, fmt.Errorf("product %s: %w", productId, ErrNotSeller)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}

	product, err := s.store.UpsertProduct(ctx, models.Product{
		Id:       productId,
		SellerId: sellerId,
		Title:    title,
	})
	if err != nil {
		zap.L().Error("Failed to register product",
			zap.String("product_id", productId),
			zap.String("seller_id", sellerId),
			zap.Error(err))
		return nil, fmt.Errorf("failed to register product: %w", err)
	}
	return product, nil
}

func (s *AuctionService) GetProduct(ctx context.Context, productId string) (*models.Product, error) {
	if productId == "" {
		return nil, invalid("product_id is required")
	}
	product, err := s.store.GetProduct(ctx, productId)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("product %s: %w", productId, ErrProductNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}
