package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"auction-bidding-go/internal/api"
	"auction-bidding-go/internal/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Handler exposes the auction service over HTTP
type Handler struct {
	service *api.AuctionService
}

func NewHandler(service *api.AuctionService) *Handler {
	return &Handler{service: service}
}

// Routes configures all HTTP routes
func (h *Handler) Routes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/products", h.RegisterProduct).Methods(http.MethodPost)
	v1.HandleFunc("/products/{id}", h.GetProduct).Methods(http.MethodGet)

	v1.HandleFunc("/auctions", h.CreateAuction).Methods(http.MethodPost)
	v1.HandleFunc("/auctions", h.ListAuctions).Methods(http.MethodGet)
	v1.HandleFunc("/auctions/{id}", h.GetAuction).Methods(http.MethodGet)
	v1.HandleFunc("/auctions/{id}", h.DeleteAuction).Methods(http.MethodDelete)
	v1.HandleFunc("/auctions/{id}/close", h.CloseAuction).Methods(http.MethodPost)

	v1.HandleFunc("/auctions/{id}/bids", h.PlaceBid).Methods(http.MethodPost)
	v1.HandleFunc("/auctions/{id}/bids", h.GetBids).Methods(http.MethodGet)
	v1.HandleFunc("/auctions/{id}/bids/winning", h.GetWinningBid).Methods(http.MethodGet)
	v1.HandleFunc("/auctions/{id}/next-minimum-bid", h.GetNextMinimumBid).Methods(http.MethodGet)

	router.Use(recoverMiddleware)
	router.Use(requestIdMiddleware)
	router.Use(loggingMiddleware)

	return router
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.service.HealthCheck(r.Context()); err != nil {
		zap.L().Error("Health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) RegisterProduct(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	product, err := h.service.RegisterProduct(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handler) CreateAuction(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAuctionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	auction, err := h.service.CreateAuction(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, auction)
}

func (h *Handler) ListAuctions(w http.ResponseWriter, r *http.Request) {
	auctions, err := h.service.ListAuctions(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, auctions)
}

func (h *Handler) GetAuction(w http.ResponseWriter, r *http.Request) {
	auction, err := h.service.GetAuction(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, auction)
}

func (h *Handler) DeleteAuction(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAuction(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CloseAuction(w http.ResponseWriter, r *http.Request) {
	auction, err := h.service.CloseAuction(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, auction)
}

func (h *Handler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	var req models.PlaceBidRequest
	if !decodeBody(w, r, &req) {
		return
	}
	outcome, err := h.service.PlaceBid(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, outcome)
}

func (h *Handler) GetBids(w http.ResponseWriter, r *http.Request) {
	bids, err := h.service.GetBids(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, bids)
}

func (h *Handler) GetWinningBid(w http.ResponseWriter, r *http.Request) {
	bid, err := h.service.GetWinningBid(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if bid == nil {
		respondError(w, http.StatusNotFound, "auction has no bids")
		return
	}
	respondJSON(w, http.StatusOK, bid)
}

func (h *Handler) GetNextMinimumBid(w http.ResponseWriter, r *http.Request) {
	next, err := h.service.GetNextMinimumBid(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, next)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("Failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, errorBody{Error: message})
}
