package payment

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	internal "github.com/frahmantamala/payment-gateway/internal"
	"github.com/frahmantamala/payment-gateway/internal/transport"
	"github.com/frahmantamala/payment-gateway/pkg/logger"
)

type ServiceAPI interface {
	Approve(ctx context.Context, dto *ApprovalDTO) (*Payment, error)
	Query(filter HistoryFilter) (*HistoryResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := internal.PartnerIDFromContext(r.Context())
	if !ok {
		h.Logger.Error("ApprovePayment: partner not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ApprovalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ApprovePayment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.PartnerID = partnerID

	result, err := h.Service.Approve(r.Context(), &dto)
	if err != nil {
		h.Logger.Error("ApprovePayment: service error", "error", err, "partner_id", partnerID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ApprovePayment: payment approved",
		"payment_id", result.ID,
		"partner_id", partnerID,
		"amount", result.Amount.String())

	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) GetPayments(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := internal.PartnerIDFromContext(r.Context())
	if !ok {
		h.Logger.Error("GetPayments: partner not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	dto, err := parseHistoryQuery(r)
	if err != nil {
		h.Logger.Error("GetPayments: invalid query", "error", err, "partner_id", partnerID)
		h.HandleServiceError(w, err)
		return
	}

	if err := dto.Validate(); err != nil {
		h.Logger.Error("GetPayments: query validation failed", "error", err, "partner_id", partnerID)
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.Query(dto.ToFilter(partnerID))
	if err != nil {
		h.Logger.Error("GetPayments: service error", "error", err, "partner_id", partnerID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func parseHistoryQuery(r *http.Request) (*HistoryQueryDTO, error) {
	q := r.URL.Query()

	dto := &HistoryQueryDTO{Limit: DefaultPageLimit}

	if v := q.Get("status"); v != "" {
		dto.Status = &v
	}
	if v := q.Get("cursor"); v != "" {
		dto.Cursor = &v
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, internal.NewValidationFieldError("limit", "limit must be an integer", internal.ErrCodeInvalidLimit)
		}
		dto.Limit = limit
	}
	if v := q.Get("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, internal.NewValidationFieldError("from", "from must be an RFC3339 timestamp", internal.ErrCodeInvalidDateRange)
		}
		dto.From = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, internal.NewValidationFieldError("to", "to must be an RFC3339 timestamp", internal.ErrCodeInvalidDateRange)
		}
		dto.To = &to
	}

	return dto, nil
}
