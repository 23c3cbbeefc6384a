package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/payment-gateway/internal/core/events"
)

// EventHandler consumes approval events for settlement-side logging. The
// settlement exporter itself lives outside this service; this handler is the
// in-process subscriber it hangs off.
type EventHandler struct {
	logger *slog.Logger
}

func NewEventHandler(logger *slog.Logger) *EventHandler {
	return &EventHandler{logger: logger}
}

func (h *EventHandler) HandlePaymentApproved(ctx context.Context, event events.Event) error {
	approved, ok := event.(*events.PaymentApprovedEvent)
	if !ok {
		h.logger.Error("invalid event type for payment approved handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentApprovedEvent, got %T", event)
	}

	h.logger.Info("payment approved event received",
		"payment_id", approved.PaymentID,
		"partner_id", approved.PartnerID,
		"amount", approved.Amount,
		"approval_code", approved.ApprovalCode,
		"event_id", approved.EventID())

	return nil
}

func (h *EventHandler) HandlePaymentDeclined(ctx context.Context, event events.Event) error {
	declined, ok := event.(*events.PaymentDeclinedEvent)
	if !ok {
		h.logger.Error("invalid event type for payment declined handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentDeclinedEvent, got %T", event)
	}

	h.logger.Info("payment declined event received",
		"payment_id", declined.PaymentID,
		"partner_id", declined.PartnerID,
		"failure_code", declined.FailureCode,
		"event_id", declined.EventID())

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypePaymentApproved, h.HandlePaymentApproved)
	eventBus.Subscribe(events.EventTypePaymentDeclined, h.HandlePaymentDeclined)

	h.logger.Info("payment event handlers registered",
		"handlers", []string{events.EventTypePaymentApproved, events.EventTypePaymentDeclined})
}
