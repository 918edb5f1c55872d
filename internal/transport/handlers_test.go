package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"auction-bidding-go/internal/api"
	"auction-bidding-go/internal/database"
	"auction-bidding-go/internal/engine"
	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/money"
	"auction-bidding-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type testServer struct {
	handler http.Handler
	engine  *engine.Engine
	clock   *engine.ManualClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "http.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		PingTimeout:  5 * time.Second,
		BusyTimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	clock := engine.NewManualClock(testNow)
	eng := engine.New(db, nil, clock, models.EngineConfig{})
	return &testServer{
		handler: NewHandler(api.NewAuctionService(eng, db)).Routes(),
		engine:  eng,
		clock:   clock,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// openAuction registers a product, lists it and activates the auction.
func (s *testServer) openAuction(t *testing.T) models.Auction {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/products", map[string]string{
		"seller_id": "seller-1",
		"title":     "Oil painting",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decode[models.Product](t, rec)

	rec = s.do(t, http.MethodPost, "/api/v1/auctions", map[string]any{
		"product_id":          product.Id,
		"seller_id":           "seller-1",
		"starting_price":      "100.00",
		"bid_increment":       "10.00",
		"start_date":          testNow.Add(-time.Minute),
		"end_date":            testNow.Add(time.Hour),
		"auto_extend_enabled": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	auction := decode[models.Auction](t, rec)
	assert.Equal(t, models.StatusPending, auction.Status)

	activated, err := s.engine.ActivateIfDue(context.Background(), auction.Id)
	require.NoError(t, err)
	require.True(t, activated)
	return auction
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])
}

func TestBidFlow(t *testing.T) {
	s := newTestServer(t)
	auction := s.openAuction(t)
	base := "/api/v1/auctions/" + auction.Id

	t.Run("Next minimum", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, base+"/next-minimum-bid", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[map[string]any](t, rec)
		assert.Equal(t, "110.00", body["minimum_bid"])
		assert.Equal(t, "EUR", body["currency"])
	})

	t.Run("No winning bid", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, base+"/bids/winning", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Accepted", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, base+"/bids", map[string]string{"bidder_id": "bidder-1", "amount": "120.00"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		outcome := decode[models.BidOutcome](t, rec)
		assert.Equal(t, "120.00", outcome.CurrentPrice.String())
		assert.False(t, outcome.Extended)
		assert.True(t, outcome.Bid.IsWinning)
	})

	t.Run("Too low carries minimum", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, base+"/bids", map[string]string{"bidder_id": "bidder-2", "amount": "125.00"})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decode[map[string]any](t, rec)
		assert.Equal(t, "130.00", body["minimum_bid"])
		assert.Equal(t, "bid_too_low", body["code"])
	})

	t.Run("Self bid forbidden", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, base+"/bids", map[string]string{"bidder_id": "seller-1", "amount": "500.00"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Invalid amount", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, base+"/bids", map[string]string{"bidder_id": "bidder-2", "amount": "130.001"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Amount beyond the largest representable", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, base+"/bids", map[string]string{"bidder_id": "bidder-2", "amount": "184467440737095716.16"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_request", decode[map[string]any](t, rec)["code"])
	})

	t.Run("Zero amount is too low", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, base+"/bids", map[string]string{"bidder_id": "bidder-2", "amount": "0"})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decode[map[string]any](t, rec)
		assert.Equal(t, "bid_too_low", body["code"])
		assert.NotEmpty(t, body["minimum_bid"])
	})

	t.Run("Bids and winner", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, base+"/bids", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		bids := decode[[]models.Bid](t, rec)
		require.Len(t, bids, 1)

		rec = s.do(t, http.MethodGet, base+"/bids/winning", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, bids[0].Id, decode[models.Bid](t, rec).Id)
	})

	t.Run("Expired", func(t *testing.T) {
		s.clock.Set(auction.EndDate)
		rec := s.do(t, http.MethodPost, base+"/bids", map[string]string{"bidder_id": "bidder-2", "amount": "200.00"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "auction_expired", decode[map[string]any](t, rec)["code"])
	})
}

func TestAuctionAdmin(t *testing.T) {
	s := newTestServer(t)
	auction := s.openAuction(t)
	base := "/api/v1/auctions/" + auction.Id

	rec := s.do(t, http.MethodGet, "/api/v1/auctions?status=active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Auction](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/v1/auctions?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/close", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusUnsold, decode[models.Auction](t, rec).Status)

	rec = s.do(t, http.MethodPost, base+"/close", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/auctions?status=closed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Auction](t, rec), 1)

	rec = s.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAuctionErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auctions", map[string]any{
		"product_id":     "missing",
		"seller_id":      "seller-1",
		"starting_price": "10.00",
		"bid_increment":  "1.00",
		"start_date":     testNow,
		"end_date":       testNow.Add(time.Hour),
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auctions", map[string]any{"unexpected": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", engine.ErrAuctionNotFound), http.StatusNotFound},
		{&engine.AuctionNotOpenError{AuctionId: "a", Status: models.StatusSold}, http.StatusConflict},
		{engine.ErrAuctionExpired, http.StatusConflict},
		{store.ErrProductHasOpenAuction, http.StatusConflict},
		{engine.ErrSelfBid, http.StatusForbidden},
		{&engine.BidTooLowError{Minimum: money.MustParse("1")}, http.StatusUnprocessableEntity},
		{&engine.ContentionError{AuctionId: "a", Attempts: 3}, http.StatusServiceUnavailable},
		{api.ErrInvalidRequest, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got, _ := statusFor(tc.err)
		assert.Equal(t, tc.want, got, "%v", tc.err)
	}
}

func TestContentionResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auctions/a/bids", nil)

	respondServiceError(rec, req, &engine.ContentionError{AuctionId: "a", Attempts: 3})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, true, decode[map[string]any](t, rec)["retryable"])
}

func TestInternalErrorsAreHidden(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auctions", nil)

	respondServiceError(rec, req, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decode[map[string]any](t, rec)["error"])
}

func TestRequestId(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
}
