package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"auction-bidding-go/internal/api"
	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/money"
	"auction-bidding-go/internal/store"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Listing is one seed entry: a product and the auction to open for it.
// Times are relative to the moment the file is loaded.
type Listing struct {
	ProductId     string        `yaml:"product_id"`
	SellerId      string        `yaml:"seller_id"`
	Title         string        `yaml:"title"`
	StartingPrice money.Money   `yaml:"starting_price"`
	ReservePrice  *money.Money  `yaml:"reserve_price,omitempty"`
	BidIncrement  money.Money   `yaml:"bid_increment"`
	StartsIn      time.Duration `yaml:"starts_in"`
	Duration      time.Duration `yaml:"duration"`
	AutoExtend    *bool         `yaml:"auto_extend,omitempty"`
}

type ListingsConfig struct {
	Listings []Listing `yaml:"listings"`
}

func LoadListings(listingsFile string) ([]Listing, error) {
	var listingsPath string
	if filepath.IsAbs(listingsFile) {
		listingsPath = listingsFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		listingsPath = filepath.Join(wd, listingsFile)
	}

	data, err := os.ReadFile(listingsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", listingsFile, err)
	}

	var config ListingsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", listingsFile, err)
	}

	for i, l := range config.Listings {
		if l.SellerId == "" || l.Title == "" {
			return nil, fmt.Errorf("listing at index %d missing seller_id or title", i)
		}
		if l.Duration <= 0 {
			return nil, fmt.Errorf("listing at index %d needs a positive duration", i)
		}
	}

	return config.Listings, nil
}

// Requests turns a listing into the product and auction requests it seeds.
func (l Listing) Requests(now time.Time) (models.RegisterProductRequest, models.CreateAuctionRequest) {
	autoExtend := true
	if l.AutoExtend != nil {
		autoExtend = *l.AutoExtend
	}
	start := now.Add(l.StartsIn)

	product := models.RegisterProductRequest{
		Id:       l.ProductId,
		SellerId: l.SellerId,
		Title:    l.Title,
	}
	auction := models.CreateAuctionRequest{
		ProductId:         l.ProductId,
		SellerId:          l.SellerId,
		StartingPrice:     l.StartingPrice,
		ReservePrice:      l.ReservePrice,
		BidIncrement:      l.BidIncrement,
		StartDate:         start,
		EndDate:           start.Add(l.Duration),
		AutoExtendEnabled: autoExtend,
	}
	return product, auction
}

// SeedResult counts what a seed run created and skipped.
type SeedResult struct {
	Products int
	Auctions int
	Skipped  int
}

// SeedListings registers every listed product and opens its auction.
// Products that already have an open auction are skipped, so the seed can
// be rerun.
func SeedListings(ctx context.Context, svc *api.AuctionService, listings []Listing, now time.Time) (SeedResult, error) {
	var result SeedResult
	for _, l := range listings {
		productReq, auctionReq := l.Requests(now)

		product, err := svc.RegisterProduct(ctx, productReq)
		if err != nil {
			return result, fmt.Errorf("failed to register %q: %w", l.Title, err)
		}
		result.Products++
		auctionReq.ProductId = product.Id

		auction, err := svc.CreateAuction(ctx, auctionReq)
		if errors.Is(err, store.ErrProductHasOpenAuction) {
			zap.L().Info("Product already listed, skipping", zap.String("product_id", product.Id))
			result.Skipped++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("failed to list %q: %w", l.Title, err)
		}
		result.Auctions++
		zap.L().Info("Seeded auction",
			zap.String("auction_id", auction.Id),
			zap.String("product_id", product.Id),
			zap.Time("start_date", auction.StartDate),
			zap.Time("end_date", auction.EndDate))
	}
	return result, nil
}
