package transport

import (
	"errors"
	"net/http"
	"strconv"

	"auction-bidding-go/internal/api"
	"auction-bidding-go/internal/engine"
	"auction-bidding-go/internal/money"
	"auction-bidding-go/internal/store"

	"go.uber.org/zap"
)

// Seconds a client is told to wait after a contention failure.
const retryAfterSeconds = 1

type errorBody struct {
	Error      string       `json:"error"`
	Code       string       `json:"code,omitempty"`
	MinimumBid *money.Money `json:"minimum_bid,omitempty"`
	Retryable  bool         `json:"retryable,omitempty"`
}

// statusFor maps a service error onto an HTTP status and a stable code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, api.ErrInvalidRequest), errors.Is(err, engine.ErrInvalidBid), errors.Is(err, money.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, engine.ErrAuctionNotFound):
		return http.StatusNotFound, "auction_not_found"
	case errors.Is(err, api.ErrProductNotFound):
		return http.StatusNotFound, "product_not_found"
	case errors.Is(err, engine.ErrAuctionNotOpen):
		return http.StatusConflict, "auction_not_open"
	case errors.Is(err, engine.ErrAuctionExpired):
		return http.StatusConflict, "auction_expired"
	case errors.Is(err, store.ErrProductHasOpenAuction):
		return http.StatusConflict, "open_auction_exists"
	case errors.Is(err, engine.ErrSelfBid):
		return http.StatusForbidden, "self_bid"
	case errors.Is(err, api.ErrNotSeller):
		return http.StatusForbidden, "not_seller"
	case errors.Is(err, engine.ErrBidTooLow):
		return http.StatusUnprocessableEntity, "bid_too_low"
	case errors.Is(err, engine.ErrContention):
		return http.StatusServiceUnavailable, "contention"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	body := errorBody{Error: err.Error(), Code: code}

	var tooLow *engine.BidTooLowError
	if errors.As(err, &tooLow) {
		minimum := tooLow.Minimum
		body.MinimumBid = &minimum
	}
	if engine.IsRetryable(err) {
		body.Retryable = true
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}

	if status == http.StatusInternalServerError {
		zap.L().Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		body.Error = "internal server error"
	}
	respondJSON(w, status, body)
}
