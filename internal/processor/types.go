package processor

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	// StatusApproved is the only status current processors return on
	// success; other values are reserved for future integrations.
	StatusApproved Status = "APPROVED"
)

// ApprovalRequest carries card data for a single approval attempt. CardNumber
// may contain separators; BIN and Last4 work on the digits only.
type ApprovalRequest struct {
	PartnerID      int64
	Amount         decimal.Decimal
	CardNumber     string
	BirthDate      string // yyyyMMdd
	Expiry         string // MMyy
	PasswordPrefix string // first two digits of the card password
	ProductName    *string
}

// CardDigits returns the card number with separators removed.
func (r *ApprovalRequest) CardDigits() string {
	var b strings.Builder
	b.Grow(len(r.CardNumber))
	for _, c := range r.CardNumber {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// BIN returns the first six digits of the card number.
func (r *ApprovalRequest) BIN() string {
	digits := r.CardDigits()
	if len(digits) < 6 {
		return digits
	}
	return digits[:6]
}

// Last4 returns the last four digits of the card number.
func (r *ApprovalRequest) Last4() string {
	digits := r.CardDigits()
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

type ApprovalResult struct {
	ApprovalCode string
	ApprovedAt   time.Time
	Status       Status
}
