package api

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"auction-bidding-go/internal/database"
	"auction-bidding-go/internal/engine"
	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/money"
	"auction-bidding-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (*AuctionService, *engine.ManualClock) {
	t.Helper()
	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "api.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		PingTimeout:  5 * time.Second,
		BusyTimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	clock := engine.NewManualClock(testNow)
	eng := engine.New(db, nil, clock, models.EngineConfig{})
	return NewAuctionService(eng, db), clock
}

func registerProduct(t *testing.T, svc *AuctionService, sellerId string) *models.Product {
	t.Helper()
	product, err := svc.RegisterProduct(context.Background(), models.RegisterProductRequest{
		SellerId: sellerId,
		Title:    "Vintage camera",
	})
	require.NoError(t, err)
	return product
}

func validRequest(product *models.Product) models.CreateAuctionRequest {
	reserve := money.MustParse("150.00")
	return models.CreateAuctionRequest{
		ProductId:         product.Id,
		SellerId:          product.SellerId,
		StartingPrice:     money.MustParse("100.00"),
		ReservePrice:      &reserve,
		BidIncrement:      money.MustParse("10.00"),
		StartDate:         testNow.Add(-time.Minute),
		EndDate:           testNow.Add(time.Hour),
		AutoExtendEnabled: true,
	}
}

// activate moves an auction through the scheduler transition so bids can land.
func activate(t *testing.T, svc *AuctionService, auctionId string) {
	t.Helper()
	activated, err := svc.engine.ActivateIfDue(context.Background(), auctionId)
	require.NoError(t, err)
	require.True(t, activated)
}

func TestHealthCheck(t *testing.T) {
	svc, _ := setupService(t)
	assert.NoError(t, svc.HealthCheck(context.Background()))
}

func TestRegisterProduct(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		product := registerProduct(t, svc, "seller-1")
		assert.NotEmpty(t, product.Id)

		got, err := svc.GetProduct(ctx, product.Id)
		require.NoError(t, err)
		assert.Equal(t, "seller-1", got.SellerId)
	})

	t.Run("Fail missing fields", func(t *testing.T) {
		_, err := svc.RegisterProduct(ctx, models.RegisterProductRequest{SellerId: "seller-1"})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("Fail changing seller", func(t *testing.T) {
		product := registerProduct(t, svc, "seller-1")
		_, err := svc.RegisterProduct(ctx, models.RegisterProductRequest{
			Id:       product.Id,
			SellerId: "seller-2",
			Title:    "Stolen",
		})
		assert.ErrorIs(t, err, ErrNotSeller)
	})

	t.Run("Fail unknown product", func(t *testing.T) {
		_, err := svc.GetProduct(ctx, "missing")
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestCreateAuction(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		product := registerProduct(t, svc, "seller-1")

		auction, err := svc.CreateAuction(ctx, validRequest(product))

		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, auction.Status)
		assert.True(t, auction.CurrentPrice.Equal(auction.StartingPrice))
		assert.Equal(t, 0, auction.TotalBids)
		assert.Empty(t, auction.WinnerId)
	})

	t.Run("Fail second open auction for product", func(t *testing.T) {
		product := registerProduct(t, svc, "seller-1")
		_, err := svc.CreateAuction(ctx, validRequest(product))
		require.NoError(t, err)

		_, err = svc.CreateAuction(ctx, validRequest(product))
		assert.ErrorIs(t, err, store.ErrProductHasOpenAuction)
	})

	t.Run("Fail wrong seller", func(t *testing.T) {
		product := registerProduct(t, svc, "seller-1")
		req := validRequest(product)
		req.SellerId = "seller-2"

		_, err := svc.CreateAuction(ctx, req)
		assert.ErrorIs(t, err, ErrNotSeller)
	})

	t.Run("Fail unknown product", func(t *testing.T) {
		req := validRequest(&models.Product{Id: "missing", SellerId: "seller-1"})
		_, err := svc.CreateAuction(ctx, req)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	invalidCases := map[string]func(*models.CreateAuctionRequest){
		"zero increment": func(r *models.CreateAuctionRequest) { r.BidIncrement = money.Zero },
		"reserve below start": func(r *models.CreateAuctionRequest) {
			low := money.MustParse("50.00")
			r.ReservePrice = &low
		},
		"end before start": func(r *models.CreateAuctionRequest) { r.EndDate = r.StartDate.Add(-time.Second) },
		"missing dates":    func(r *models.CreateAuctionRequest) { r.StartDate = time.Time{} },
		"missing seller":   func(r *models.CreateAuctionRequest) { r.SellerId = "" },
	}
	for name, mutate := range invalidCases {
		t.Run("Fail "+name, func(t *testing.T) {
			product := registerProduct(t, svc, "seller-1")
			req := validRequest(product)
			mutate(&req)

			_, err := svc.CreateAuction(ctx, req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestListAuctions(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	pending, err := svc.CreateAuction(ctx, validRequest(registerProduct(t, svc, "seller-1")))
	require.NoError(t, err)
	active, err := svc.CreateAuction(ctx, validRequest(registerProduct(t, svc, "seller-1")))
	require.NoError(t, err)
	activate(t, svc, active.Id)
	closed, err := svc.CreateAuction(ctx, validRequest(registerProduct(t, svc, "seller-1")))
	require.NoError(t, err)
	_, err = svc.CloseAuction(ctx, closed.Id)
	require.NoError(t, err)

	ids := func(auctions []models.Auction) []string {
		out := make([]string, len(auctions))
		for i, a := range auctions {
			out[i] = a.Id
		}
		return out
	}

	all, err := svc.ListAuctions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err := svc.ListAuctions(ctx, "active")
	require.NoError(t, err)
	assert.Equal(t, []string{active.Id}, ids(got))

	got, err = svc.ListAuctions(ctx, "closed")
	require.NoError(t, err)
	assert.Equal(t, []string{closed.Id}, ids(got))

	got, err = svc.ListAuctions(ctx, "pending")
	require.NoError(t, err)
	assert.Equal(t, []string{pending.Id}, ids(got))

	_, err = svc.ListAuctions(ctx, "archived")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestBidding(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	product := registerProduct(t, svc, "seller-1")
	auction, err := svc.CreateAuction(ctx, validRequest(product))
	require.NoError(t, err)

	t.Run("Pending auction rejects bids", func(t *testing.T) {
		_, err := svc.PlaceBid(ctx, auction.Id, models.PlaceBidRequest{BidderId: "bidder-1", Amount: money.MustParse("110")})
		assert.ErrorIs(t, err, engine.ErrAuctionNotOpen)
	})

	activate(t, svc, auction.Id)

	t.Run("No winning bid yet", func(t *testing.T) {
		winning, err := svc.GetWinningBid(ctx, auction.Id)
		require.NoError(t, err)
		assert.Nil(t, winning)

		next, err := svc.GetNextMinimumBid(ctx, auction.Id)
		require.NoError(t, err)
		assert.Equal(t, "110.00", next.Minimum.String())
		assert.Equal(t, money.Currency, next.Currency)
	})

	t.Run("Accepted bids", func(t *testing.T) {
		maxAmount := money.MustParse("200.00")
		_, err := svc.PlaceBid(ctx, auction.Id, models.PlaceBidRequest{BidderId: "bidder-1", Amount: money.MustParse("110"), MaxAmount: &maxAmount})
		require.NoError(t, err)
		outcome, err := svc.PlaceBid(ctx, auction.Id, models.PlaceBidRequest{BidderId: "bidder-2", Amount: money.MustParse("125")})
		require.NoError(t, err)
		assert.Equal(t, "125.00", outcome.CurrentPrice.String())

		bids, err := svc.GetBids(ctx, auction.Id)
		require.NoError(t, err)
		require.Len(t, bids, 2)
		assert.Equal(t, "bidder-2", bids[0].BidderId)
		assert.True(t, bids[0].IsWinning)
		assert.False(t, bids[1].IsWinning)
		require.NotNil(t, bids[1].MaxAmount)
		assert.Equal(t, "200.00", bids[1].MaxAmount.String())

		winning, err := svc.GetWinningBid(ctx, auction.Id)
		require.NoError(t, err)
		assert.Equal(t, bids[0].Id, winning.Id)
	})

	t.Run("Fail too low", func(t *testing.T) {
		_, err := svc.PlaceBid(ctx, auction.Id, models.PlaceBidRequest{BidderId: "bidder-1", Amount: money.MustParse("130")})
		var tooLow *engine.BidTooLowError
		require.ErrorAs(t, err, &tooLow)
		assert.Equal(t, "135.00", tooLow.Minimum.String())
	})

	t.Run("Fail missing bidder", func(t *testing.T) {
		_, err := svc.PlaceBid(ctx, auction.Id, models.PlaceBidRequest{Amount: money.MustParse("200")})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("Fail unknown auction", func(t *testing.T) {
		_, err := svc.GetBids(ctx, "missing")
		assert.ErrorIs(t, err, engine.ErrAuctionNotFound)
	})
}

func TestCloseAndDelete(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	auction, err := svc.CreateAuction(ctx, validRequest(registerProduct(t, svc, "seller-1")))
	require.NoError(t, err)
	activate(t, svc, auction.Id)
	_, err = svc.PlaceBid(ctx, auction.Id, models.PlaceBidRequest{BidderId: "bidder-1", Amount: money.MustParse("150")})
	require.NoError(t, err)

	closed, err := svc.CloseAuction(ctx, auction.Id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSold, closed.Status)

	_, err = svc.CloseAuction(ctx, auction.Id)
	assert.ErrorIs(t, err, engine.ErrAuctionNotOpen)

	require.NoError(t, svc.DeleteAuction(ctx, auction.Id))
	_, err = svc.GetAuction(ctx, auction.Id)
	assert.ErrorIs(t, err, engine.ErrAuctionNotFound)
	assert.ErrorIs(t, svc.DeleteAuction(ctx, auction.Id), engine.ErrAuctionNotFound)
}
