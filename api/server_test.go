package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dealer/domain/entities"
	"dealer/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDealService overrides only the methods a test exercises; calling
// anything else panics through the nil embedded interface.
type stubDealService struct {
	interfaces.DealService
	getDeal          func(ctx context.Context, id string) (*entities.Deal, error)
	acceptDeal       func(ctx context.Context, id string) (*entities.Deal, error)
	proposeDeal      func(ctx context.Context, input interfaces.ProposeDealInput) (*entities.Deal, error)
	markGiftReceived func(ctx context.Context, id string, transferRef string) (*entities.Deal, error)
}

func (s *stubDealService) GetDeal(ctx context.Context, id string) (*entities.Deal, error) {
	return s.getDeal(ctx, id)
}

func (s *stubDealService) AcceptDeal(ctx context.Context, id string) (*entities.Deal, error) {
	return s.acceptDeal(ctx, id)
}

func (s *stubDealService) ProposeDeal(ctx context.Context, input interfaces.ProposeDealInput) (*entities.Deal, error) {
	return s.proposeDeal(ctx, input)
}

func (s *stubDealService) MarkUserGiftReceived(ctx context.Context, id string, transferRef string) (*entities.Deal, error) {
	return s.markGiftReceived(ctx, id, transferRef)
}

type stubCasinoService struct {
	interfaces.CasinoService
	settleWager func(ctx context.Context, bet interfaces.WagerRequest) (*interfaces.WagerOutcome, error)
}

func (s *stubCasinoService) SettleWager(ctx context.Context, bet interfaces.WagerRequest) (*interfaces.WagerOutcome, error) {
	return s.settleWager(ctx, bet)
}

func serveRequest(t *testing.T, deals interfaces.DealService, casino interfaces.CasinoService, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	server := NewServer(deals, casino, 0)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestServer_Health(t *testing.T) {
	rec := serveRequest(t, &stubDealService{}, &stubCasinoService{}, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_GetDeal(t *testing.T) {
	deals := &stubDealService{
		getDeal: func(ctx context.Context, id string) (*entities.Deal, error) {
			assert.Equal(t, "deal_abc12345", id)
			return &entities.Deal{ID: id, Status: entities.DealStatusProposed}, nil
		},
	}

	rec := serveRequest(t, deals, &stubCasinoService{}, http.MethodGet, "/deals/deal_abc12345", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestServer_DomainErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", entities.NewNotFoundError("deal", "deal %s not found", "x"), http.StatusNotFound},
		{"conflict", entities.NewConflictError("already accepted"), http.StatusConflict},
		{"validation", entities.NewValidationError("bad input"), http.StatusBadRequest},
		{"chain unavailable", entities.NewChainUnavailableError("read", assert.AnError), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deals := &stubDealService{
				acceptDeal: func(ctx context.Context, id string) (*entities.Deal, error) {
					return nil, tt.err
				},
			}

			rec := serveRequest(t, deals, &stubCasinoService{}, http.MethodPost, "/deals/deal_abc12345/accept", "")

			assert.Equal(t, tt.wantCode, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestServer_ProposeDeal(t *testing.T) {
	deals := &stubDealService{
		proposeDeal: func(ctx context.Context, input interfaces.ProposeDealInput) (*entities.Deal, error) {
			assert.Equal(t, int64(100), input.UserID)
			assert.Equal(t, entities.AssetKindTON, input.UserGives.Kind)
			return &entities.Deal{ID: "deal_new00001", Status: entities.DealStatusProposed}, nil
		},
	}

	body := `{"user_id":100,"chat_id":200,
		"user_gives":{"Kind":"ton","AmountNano":5000000000,"ValueNano":5000000000},
		"agent_gives":{"Kind":"gift","GiftRef":"gift-777","ValueNano":4500000000}}`
	rec := serveRequest(t, deals, &stubCasinoService{}, http.MethodPost, "/deals", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestServer_GiftReceived(t *testing.T) {
	deals := &stubDealService{
		markGiftReceived: func(ctx context.Context, id string, transferRef string) (*entities.Deal, error) {
			assert.Equal(t, "deal_abc12345", id)
			assert.Equal(t, "gift_transfer_9", transferRef)
			return &entities.Deal{ID: id, Status: entities.DealStatusVerified}, nil
		},
	}

	body := `{"tx_ref":"gift_transfer_9"}`
	rec := serveRequest(t, deals, &stubCasinoService{}, http.MethodPost, "/deals/deal_abc12345/gift-received", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestServer_ProposeDeal_BadBody(t *testing.T) {
	rec := serveRequest(t, &stubDealService{}, &stubCasinoService{}, http.MethodPost, "/deals", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_SettleWager(t *testing.T) {
	casino := &stubCasinoService{
		settleWager: func(ctx context.Context, bet interfaces.WagerRequest) (*interfaces.WagerOutcome, error) {
			assert.Equal(t, entities.GameKindDice, bet.Game)
			assert.Equal(t, "alice", bet.Username)
			return &interfaces.WagerOutcome{Game: bet.Game, Value: 6, Won: true, PayoutNano: 3_000_000_000}, nil
		},
	}

	body := `{"user_id":100,"chat_id":200,"username":"alice","amount_nano":1000000000,"game":"dice"}`
	rec := serveRequest(t, &stubDealService{}, casino, http.MethodPost, "/wagers", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}
