package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID             int64           `gorm:"primaryKey"`
	PartnerID      int64           `gorm:"column:partner_id;not null;index:idx_payments_partner_created,priority:1"`
	Status         string          `gorm:"column:status;not null"`
	Amount         decimal.Decimal `gorm:"column:amount;type:numeric(18,2);not null"`
	NetAmount      decimal.Decimal `gorm:"column:net_amount;type:numeric(18,2);not null"`
	CardBIN        string          `gorm:"column:card_bin"`
	CardLast4      string          `gorm:"column:card_last4"`
	ApprovalCode   *string         `gorm:"column:approval_code"`
	ApprovedAt     *time.Time      `gorm:"column:approved_at"`
	ProductName    *string         `gorm:"column:product_name"`
	FailureCode    *string         `gorm:"column:failure_code"`
	FailureMessage *string         `gorm:"column:failure_message"`
	CreatedAt      time.Time       `gorm:"column:created_at;index:idx_payments_partner_created,priority:2"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
