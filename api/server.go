package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dealer/domain/entities"
	"dealer/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// Server exposes the engine's operations over a local HTTP API. The
// messaging frontend and the operator tooling are both clients of this
// surface.
type Server struct {
	deals  interfaces.DealService
	casino interfaces.CasinoService
	server *http.Server
}

// NewServer creates the API server
func NewServer(deals interfaces.DealService, casino interfaces.CasinoService, port int) *Server {
	s := &Server{deals: deals, casino: casino}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /deals", s.handleProposeDeal)
	mux.HandleFunc("GET /deals", s.handleListDeals)
	mux.HandleFunc("GET /deals/{id}", s.handleGetDeal)
	mux.HandleFunc("POST /deals/{id}/accept", s.dealAction(func(ctx context.Context, id string, _ actionRequest) (*entities.Deal, error) {
		return s.deals.AcceptDeal(ctx, id)
	}))
	mux.HandleFunc("POST /deals/{id}/decline", s.dealAction(func(ctx context.Context, id string, _ actionRequest) (*entities.Deal, error) {
		return s.deals.DeclineDeal(ctx, id)
	}))
	mux.HandleFunc("POST /deals/{id}/claim-payment", s.dealAction(func(ctx context.Context, id string, _ actionRequest) (*entities.Deal, error) {
		return s.deals.ClaimPayment(ctx, id)
	}))
	mux.HandleFunc("POST /deals/{id}/cancel", s.dealAction(func(ctx context.Context, id string, req actionRequest) (*entities.Deal, error) {
		return s.deals.CancelDeal(ctx, id, req.Reason)
	}))
	mux.HandleFunc("POST /deals/{id}/complete", s.dealAction(func(ctx context.Context, id string, _ actionRequest) (*entities.Deal, error) {
		return s.deals.CompleteDeal(ctx, id)
	}))
	mux.HandleFunc("POST /deals/{id}/mark-sent", s.dealAction(func(ctx context.Context, id string, req actionRequest) (*entities.Deal, error) {
		return s.deals.MarkAgentSent(ctx, id, req.TxRef)
	}))
	mux.HandleFunc("POST /deals/{id}/gift-received", s.dealAction(func(ctx context.Context, id string, req actionRequest) (*entities.Deal, error) {
		return s.deals.MarkUserGiftReceived(ctx, id, req.TxRef)
	}))
	mux.HandleFunc("GET /deals/verified", s.handleHasVerifiedDeal)

	mux.HandleFunc("POST /wagers", s.handleSettleWager)
	mux.HandleFunc("GET /casino/players/{userID}", s.handlePlayerStats)
	mux.HandleFunc("GET /casino/jackpot", s.handleJackpot)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Start launches the server in the background
func (s *Server) Start() {
	go func() {
		log.Infof("API listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("API server error: %v", err)
		}
	}()
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type apiResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type actionRequest struct {
	Reason string `json:"reason"`
	TxRef  string `json:"tx_ref"`
}

type proposeDealRequest struct {
	UserID             int64             `json:"user_id"`
	ChatID             int64             `json:"chat_id"`
	UserGives          entities.DealSide `json:"user_gives"`
	AgentGives         entities.DealSide `json:"agent_gives"`
	ProfitEstimateNano int64             `json:"profit_estimate_nano"`
	InlineMessageRef   *string           `json:"inline_message_ref,omitempty"`
	Notes              *string           `json:"notes,omitempty"`
}

type settleWagerRequest struct {
	UserID             int64             `json:"user_id"`
	ChatID             int64             `json:"chat_id"`
	Username           string            `json:"username"`
	AmountNano         int64             `json:"amount_nano"`
	DestinationAddress string            `json:"destination_address,omitempty"`
	Game               entities.GameKind `json:"game"`
}

func (s *Server) handleProposeDeal(w http.ResponseWriter, r *http.Request) {
	var req proposeDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	deal, err := s.deals.ProposeDeal(r.Context(), interfaces.ProposeDealInput{
		UserID:             req.UserID,
		ChatID:             req.ChatID,
		UserGives:          req.UserGives,
		AgentGives:         req.AgentGives,
		ProfitEstimateNano: req.ProfitEstimateNano,
		InlineMessageRef:   req.InlineMessageRef,
		Notes:              req.Notes,
	})
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithData(w, deal)
}

type dealActionFunc func(ctx context.Context, id string, req actionRequest) (*entities.Deal, error)

func (s *Server) dealAction(action dealActionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req actionRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondWithError(w, "invalid request body", http.StatusBadRequest)
				return
			}
		}

		deal, err := action(r.Context(), r.PathValue("id"), req)
		if err != nil {
			respondWithDomainError(w, err)
			return
		}
		respondWithData(w, deal)
	}
}

func (s *Server) handleGetDeal(w http.ResponseWriter, r *http.Request) {
	deal, err := s.deals.GetDeal(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithData(w, deal)
}

func (s *Server) handleListDeals(w http.ResponseWriter, r *http.Request) {
	var filter interfaces.DealFilter

	if v := r.URL.Query().Get("status"); v != "" {
		status := entities.DealStatus(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("user_id"); v != "" {
		userID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondWithError(w, "invalid user_id", http.StatusBadRequest)
			return
		}
		filter.UserID = &userID
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			respondWithError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	deals, err := s.deals.ListDeals(r.Context(), filter)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithData(w, deals)
}

func (s *Server) handleHasVerifiedDeal(w http.ResponseWriter, r *http.Request) {
	assetRef := r.URL.Query().Get("asset_ref")
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if assetRef == "" || err != nil {
		respondWithError(w, "asset_ref and user_id are required", http.StatusBadRequest)
		return
	}

	verified, err := s.deals.HasVerifiedDeal(r.Context(), assetRef, userID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithData(w, map[string]bool{"verified": verified})
}

func (s *Server) handleSettleWager(w http.ResponseWriter, r *http.Request) {
	var req settleWagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := s.casino.SettleWager(r.Context(), interfaces.WagerRequest{
		UserID:             req.UserID,
		ChatID:             req.ChatID,
		Username:           req.Username,
		AmountNano:         req.AmountNano,
		DestinationAddress: req.DestinationAddress,
		Game:               req.Game,
	})
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithData(w, outcome)
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("userID"), 10, 64)
	if err != nil {
		respondWithError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	stats, err := s.casino.GetPlayerStats(r.Context(), userID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithData(w, stats)
}

func (s *Server) handleJackpot(w http.ResponseWriter, r *http.Request) {
	jackpot, err := s.casino.GetJackpot(r.Context())
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithData(w, jackpot)
}

func respondWithData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apiResponse{
		Success: true,
		Data:    data,
	})
}

func respondWithError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiResponse{
		Success: false,
		Error:   message,
	})
}

func respondWithDomainError(w http.ResponseWriter, err error) {
	switch {
	case entities.IsValidation(err):
		respondWithError(w, err.Error(), http.StatusBadRequest)
	case entities.IsNotFound(err):
		respondWithError(w, err.Error(), http.StatusNotFound)
	case entities.IsConflict(err):
		respondWithError(w, err.Error(), http.StatusConflict)
	case entities.IsChainUnavailable(err):
		respondWithError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		log.WithError(err).Error("Unhandled API error")
		respondWithError(w, "internal error", http.StatusInternalServerError)
	}
}
