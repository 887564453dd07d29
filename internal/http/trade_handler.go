package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/application"
)

type tradeService interface {
	CreateTrade(ctx context.Context, params application.CreateTradeParams) (application.Trade, error)
	UpdateTrade(ctx context.Context, params application.UpdateTradeParams) (application.Trade, error)
	DeleteTrade(ctx context.Context, principal application.Principal, tradeID string) error
	ListTrades(ctx context.Context, principal application.Principal) ([]application.Trade, error)
}

type TradeHandler struct {
	service   tradeService
	responder responder
	logger    *slog.Logger
}

func NewTradeHandler(service tradeService, logger *slog.Logger) *TradeHandler {
	base := defaultLogger(logger)
	return &TradeHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TradeHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TradeHandler", operation, attrs...)
}

func (h *TradeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode trade request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	trade, err := h.service.CreateTrade(r.Context(), application.CreateTradeParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "trade creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("trade_id", trade.ID).InfoContext(r.Context(), "trade created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, tradeResponse{Trade: toTradeDTO(trade)})
}

func (h *TradeHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tradeID, ok := TradeIDFromContext(r.Context())
	if !ok || strings.TrimSpace(tradeID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing trade id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTradeID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "trade_id", tradeID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode trade update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "trade_id", tradeID)

	trade, err := h.service.UpdateTrade(r.Context(), application.UpdateTradeParams{
		Principal: principal,
		TradeID:   tradeID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "trade update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "trade updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, tradeResponse{Trade: toTradeDTO(trade)})
}

func (h *TradeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tradeID, ok := TradeIDFromContext(r.Context())
	if !ok || strings.TrimSpace(tradeID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing trade id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTradeID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "trade_id", tradeID)

	if err := h.service.DeleteTrade(r.Context(), principal, tradeID); err != nil {
		logger.ErrorContext(r.Context(), "trade delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "trade deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *TradeHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	trades, err := h.service.ListTrades(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "trade list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(trades)).InfoContext(r.Context(), "trades listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listTradesResponse{Trades: toTradeDTOs(trades)})
}

type tradeRequest struct {
	Name         string `json:"name"`
	Color        string `json:"color"`
	DisplayOrder int    `json:"display_order"`
}

func (r tradeRequest) toInput() application.TradeInput {
	return application.TradeInput{
		Name:         strings.TrimSpace(r.Name),
		Color:        strings.TrimSpace(r.Color),
		DisplayOrder: r.DisplayOrder,
	}
}

type tradeResponse struct {
	Trade tradeDTO `json:"trade"`
}

type listTradesResponse struct {
	Trades []tradeDTO `json:"trades"`
}

type tradeDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	DisplayOrder int    `json:"display_order"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toTradeDTO(trade application.Trade) tradeDTO {
	return tradeDTO{
		ID:           trade.ID,
		Name:         trade.Name,
		Color:        trade.Color,
		DisplayOrder: trade.DisplayOrder,
		CreatedAt:    trade.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    trade.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toTradeDTOs(trades []application.Trade) []tradeDTO {
	if len(trades) == 0 {
		return nil
	}
	out := make([]tradeDTO, 0, len(trades))
	for _, trade := range trades {
		out = append(out, toTradeDTO(trade))
	}
	return out
}
