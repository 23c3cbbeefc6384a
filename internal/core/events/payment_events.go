package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentApproved = "payment.approved"
	EventTypePaymentDeclined = "payment.declined"
)

type PaymentApprovedEvent struct {
	BaseEvent
	PaymentID    int64  `json:"payment_id"`
	PartnerID    int64  `json:"partner_id"`
	Amount       string `json:"amount"`
	ApprovalCode string `json:"approval_code"`
	CardLast4    string `json:"card_last4"`
}

func NewPaymentApprovedEvent(paymentID, partnerID int64, amount, approvalCode, cardLast4 string) *PaymentApprovedEvent {
	return &PaymentApprovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentApproved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":    paymentID,
				"partner_id":    partnerID,
				"amount":        amount,
				"approval_code": approvalCode,
				"card_last4":    cardLast4,
			},
		},
		PaymentID:    paymentID,
		PartnerID:    partnerID,
		Amount:       amount,
		ApprovalCode: approvalCode,
		CardLast4:    cardLast4,
	}
}

type PaymentDeclinedEvent struct {
	BaseEvent
	PaymentID   int64  `json:"payment_id"`
	PartnerID   int64  `json:"partner_id"`
	Amount      string `json:"amount"`
	FailureCode string `json:"failure_code"`
	Message     string `json:"message"`
}

func NewPaymentDeclinedEvent(paymentID, partnerID int64, amount, failureCode, message string) *PaymentDeclinedEvent {
	return &PaymentDeclinedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentDeclined,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":   paymentID,
				"partner_id":   partnerID,
				"amount":       amount,
				"failure_code": failureCode,
				"message":      message,
			},
		},
		PaymentID:   paymentID,
		PartnerID:   partnerID,
		Amount:      amount,
		FailureCode: failureCode,
		Message:     message,
	}
}
