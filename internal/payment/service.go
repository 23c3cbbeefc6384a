package payment

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	internal "github.com/frahmantamala/payment-gateway/internal"
	paymentDatamodel "github.com/frahmantamala/payment-gateway/internal/core/datamodel/payment"
	"github.com/frahmantamala/payment-gateway/internal/core/events"
	"github.com/frahmantamala/payment-gateway/internal/processor"
)

// processorTimeout bounds one outbound approval attempt end to end.
const processorTimeout = 30 * time.Second

// Service is stateless per invocation: the repository handle, the processor
// registry and the fee rate are read-only after construction, so one instance
// serves concurrent requests without locking.
type Service struct {
	repo     Repository
	registry *processor.Registry
	bus      *events.EventBus
	feeRate  decimal.Decimal
	logger   *slog.Logger
}

func NewService(repo Repository, registry *processor.Registry, bus *events.EventBus, feeRate decimal.Decimal, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		registry: registry,
		bus:      bus,
		feeRate:  feeRate,
		logger:   logger,
	}
}

// Query resolves the filter's cursor, fetches one page and the filter-wide
// summary, and assembles the result. The summary request deliberately
// excludes cursor and limit so every page of the same filter carries an
// identical summary.
func (s *Service) Query(filter HistoryFilter) (*HistoryResult, error) {
	if filter.Limit <= 0 || filter.Limit > MaxPageLimit {
		return nil, internal.NewValidationFieldError("limit",
			"limit must be between 1 and 100", internal.ErrCodeInvalidLimit)
	}
	if filter.Status != nil && !IsValidStatus(*filter.Status) {
		return nil, internal.NewValidationFieldError("status",
			"status must be one of APPROVED, DECLINED, CANCELED", internal.ErrCodeInvalidStatus)
	}

	cursorCreatedAt, cursorID := DecodeCursor(filter.Cursor)

	page, err := s.repo.FindPage(PageQuery{
		PartnerID:       filter.PartnerID,
		Status:          filter.Status,
		From:            filter.From,
		To:              filter.To,
		Limit:           filter.Limit,
		CursorCreatedAt: cursorCreatedAt,
		CursorID:        cursorID,
	})
	if err != nil {
		s.logger.Error("failed to fetch payment page", "error", err, "partner_id", filter.PartnerID)
		return nil, fmt.Errorf("fetch payment page: %w", err)
	}

	summary, err := s.repo.FindSummary(SummaryQuery{
		PartnerID: filter.PartnerID,
		Status:    filter.Status,
		From:      filter.From,
		To:        filter.To,
	})
	if err != nil {
		s.logger.Error("failed to fetch payment summary", "error", err, "partner_id", filter.PartnerID)
		return nil, fmt.Errorf("fetch payment summary: %w", err)
	}

	var nextCursor *string
	if page.HasNext {
		nextCursor = EncodeCursor(page.NextCreatedAt, page.NextID)
	}

	return &HistoryResult{
		Items:      FromDataModelSlice(page.Items),
		Summary:    *summary,
		NextCursor: nextCursor,
		HasNext:    page.HasNext,
	}, nil
}

// Approve dispatches the request to the partner's processor, records the
// outcome and publishes the matching event. Declines are persisted too so
// history and summaries cover them; auth failures are configuration problems
// and leave no payment record.
func (s *Service) Approve(ctx context.Context, dto *ApprovalDTO) (*Payment, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("approval validation failed", "error", err, "partner_id", dto.PartnerID)
		return nil, err
	}

	proc, err := s.registry.For(dto.PartnerID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := internal.WithTimeout(ctx, processorTimeout)
	defer cancel()

	req := &processor.ApprovalRequest{
		PartnerID:      dto.PartnerID,
		Amount:         dto.Amount,
		CardNumber:     dto.CardNumber,
		BirthDate:      dto.BirthDate,
		Expiry:         dto.Expiry,
		PasswordPrefix: dto.Password,
		ProductName:    dto.ProductName,
	}

	result, err := proc.Approve(ctx, req)
	if err != nil {
		var declineErr *processor.ApprovalError
		if stderrors.As(err, &declineErr) {
			s.recordDecline(ctx, req, declineErr)
		}
		return nil, err
	}

	record := &paymentDatamodel.Payment{
		PartnerID:    dto.PartnerID,
		Status:       StatusApproved,
		Amount:       dto.Amount,
		NetAmount:    s.netAmount(dto.Amount),
		CardBIN:      req.BIN(),
		CardLast4:    req.Last4(),
		ApprovalCode: &result.ApprovalCode,
		ApprovedAt:   &result.ApprovedAt,
		ProductName:  dto.ProductName,
	}

	if err := s.repo.Create(record); err != nil {
		s.logger.Error("failed to persist approved payment",
			"error", err,
			"partner_id", dto.PartnerID,
			"approval_code", result.ApprovalCode)
		return nil, internal.NewInternalError("failed to persist payment", err)
	}

	s.logger.Info("payment approved",
		"payment_id", record.ID,
		"partner_id", dto.PartnerID,
		"approval_code", result.ApprovalCode,
		"amount", dto.Amount.String())

	if s.bus != nil {
		event := events.NewPaymentApprovedEvent(record.ID, dto.PartnerID, dto.Amount.String(), result.ApprovalCode, req.Last4())
		if err := s.bus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish approval event", "error", err, "payment_id", record.ID)
		}
	}

	return FromDataModel(record), nil
}

// recordDecline is best effort: the caller still gets the typed decline even
// if persistence fails.
func (s *Service) recordDecline(ctx context.Context, req *processor.ApprovalRequest, declineErr *processor.ApprovalError) {
	record := &paymentDatamodel.Payment{
		PartnerID:      req.PartnerID,
		Status:         StatusDeclined,
		Amount:         req.Amount,
		NetAmount:      decimal.Zero,
		CardBIN:        req.BIN(),
		CardLast4:      req.Last4(),
		ProductName:    req.ProductName,
		FailureCode:    &declineErr.ErrorCode,
		FailureMessage: &declineErr.Message,
	}

	if err := s.repo.Create(record); err != nil {
		s.logger.Error("failed to persist declined payment",
			"error", err,
			"partner_id", req.PartnerID,
			"failure_code", declineErr.ErrorCode)
		return
	}

	s.logger.Warn("payment declined",
		"payment_id", record.ID,
		"partner_id", req.PartnerID,
		"failure_code", declineErr.ErrorCode,
		"amount", req.Amount.String())

	if s.bus != nil {
		event := events.NewPaymentDeclinedEvent(record.ID, req.PartnerID, req.Amount.String(), declineErr.ErrorCode, declineErr.Message)
		if err := s.bus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish decline event", "error", err, "payment_id", record.ID)
		}
	}
}

func (s *Service) netAmount(amount decimal.Decimal) decimal.Decimal {
	if s.feeRate.IsZero() {
		return amount
	}
	return amount.Sub(amount.Mul(s.feeRate)).Round(2)
}
