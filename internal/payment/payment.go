package payment

import (
	"time"

	"github.com/shopspring/decimal"

	paymentDatamodel "github.com/frahmantamala/payment-gateway/internal/core/datamodel/payment"
)

const (
	StatusApproved = "APPROVED"
	StatusDeclined = "DECLINED"
	StatusCanceled = "CANCELED"
)

// IsValidStatus reports whether s is a known payment status. An unrecognized
// status in a history filter is a caller error, rejected before any
// repository call.
func IsValidStatus(s string) bool {
	switch s {
	case StatusApproved, StatusDeclined, StatusCanceled:
		return true
	}
	return false
}

type Payment struct {
	ID             int64           `json:"id"`
	PartnerID      int64           `json:"partner_id"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	CardBIN        string          `json:"card_bin"`
	CardLast4      string          `json:"card_last4"`
	ApprovalCode   *string         `json:"approval_code,omitempty"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
	ProductName    *string         `json:"product_name,omitempty"`
	FailureCode    *string         `json:"failure_code,omitempty"`
	FailureMessage *string         `json:"failure_message,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// HistoryFilter selects a window of payment history. Cursor and Limit shape
// the page only; Summary aggregation ignores them.
type HistoryFilter struct {
	PartnerID int64
	Status    *string
	From      *time.Time
	To        *time.Time
	Cursor    *string
	Limit     int
}

// Summary is computed over the filter's partner/status/time-range and is
// identical regardless of which page is being viewed.
type Summary struct {
	Count          int64           `json:"count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalNetAmount decimal.Decimal `json:"total_net_amount"`
}

type HistoryResult struct {
	Items      []*Payment `json:"items"`
	Summary    Summary    `json:"summary"`
	NextCursor *string    `json:"next_cursor,omitempty"`
	HasNext    bool       `json:"has_next"`
}

// PageQuery is the repository-facing page request. Cursor coordinates are nil
// for the first page.
type PageQuery struct {
	PartnerID       int64
	Status          *string
	From            *time.Time
	To              *time.Time
	Limit           int
	CursorCreatedAt *time.Time
	CursorID        *int64
}

// PageResult carries one page plus, when HasNext is set, the coordinates of
// the page boundary used to build the next cursor.
type PageResult struct {
	Items         []*paymentDatamodel.Payment
	HasNext       bool
	NextCreatedAt *time.Time
	NextID        *int64
}

type SummaryQuery struct {
	PartnerID int64
	Status    *string
	From      *time.Time
	To        *time.Time
}

// Repository is the storage collaborator. It owns ordering (creation time
// descending, id as tie-breaker) and signals whether more rows exist beyond
// the page.
type Repository interface {
	Create(p *paymentDatamodel.Payment) error
	FindPage(q PageQuery) (*PageResult, error)
	FindSummary(q SummaryQuery) (*Summary, error)
}

func FromDataModel(p *paymentDatamodel.Payment) *Payment {
	return &Payment{
		ID:             p.ID,
		PartnerID:      p.PartnerID,
		Status:         p.Status,
		Amount:         p.Amount,
		NetAmount:      p.NetAmount,
		CardBIN:        p.CardBIN,
		CardLast4:      p.CardLast4,
		ApprovalCode:   p.ApprovalCode,
		ApprovedAt:     p.ApprovedAt,
		ProductName:    p.ProductName,
		FailureCode:    p.FailureCode,
		FailureMessage: p.FailureMessage,
		CreatedAt:      p.CreatedAt,
	}
}

func FromDataModelSlice(payments []*paymentDatamodel.Payment) []*Payment {
	result := make([]*Payment, len(payments))
	for i, p := range payments {
		result[i] = FromDataModel(p)
	}
	return result
}
