package payment

import (
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/payment-gateway/internal"
	"github.com/frahmantamala/payment-gateway/internal/core/common/validation"
)

// ApprovalDTO is the request payload for a card approval. PartnerID is not
// taken from the body; the handler fills it from the authenticated context.
type ApprovalDTO struct {
	PartnerID   int64           `json:"-"`
	Amount      decimal.Decimal `json:"amount"`
	CardNumber  string          `json:"card_number"`
	BirthDate   string          `json:"birth_date"`
	Expiry      string          `json:"expiry"`
	Password    string          `json:"password"`
	ProductName *string         `json:"product_name,omitempty"`
}

func (dto *ApprovalDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("card_number", dto.CardNumber).Required().CardNumber(errors.ErrCodeInvalidCard)
	validator.Field("birth_date", dto.BirthDate).Required().Digits(8, errors.ErrCodeInvalidCard)
	validator.Field("expiry", dto.Expiry).Required().Digits(4, errors.ErrCodeInvalidCard)
	validator.Field("password", dto.Password).Required().Digits(2, errors.ErrCodeInvalidCard)
	validator.Field("amount", dto.Amount).Custom(func(interface{}) *errors.AppError {
		if dto.Amount.IsNegative() {
			return errors.NewValidationFieldError("amount", "amount must not be negative", errors.ErrCodeInvalidAmount)
		}
		return nil
	})
	if dto.ProductName != nil {
		validator.Field("product_name", *dto.ProductName).MaxLength(200)
	}

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// HistoryQueryDTO is the parsed query-string form of a history request.
type HistoryQueryDTO struct {
	Status *string
	From   *time.Time
	To     *time.Time
	Cursor *string
	Limit  int
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

func (dto *HistoryQueryDTO) Validate() error {
	if dto.Limit <= 0 || dto.Limit > MaxPageLimit {
		return errors.NewValidationFieldError("limit",
			"limit must be between 1 and 100", errors.ErrCodeInvalidLimit)
	}
	if dto.Status != nil && !IsValidStatus(*dto.Status) {
		return errors.NewValidationFieldError("status",
			"status must be one of APPROVED, DECLINED, CANCELED", errors.ErrCodeInvalidStatus)
	}
	if dto.From != nil && dto.To != nil && dto.From.After(*dto.To) {
		return errors.NewValidationFieldError("from",
			"from must not be after to", errors.ErrCodeInvalidDateRange)
	}
	return nil
}

func (dto *HistoryQueryDTO) ToFilter(partnerID int64) HistoryFilter {
	return HistoryFilter{
		PartnerID: partnerID,
		Status:    dto.Status,
		From:      dto.From,
		To:        dto.To,
		Cursor:    dto.Cursor,
		Limit:     dto.Limit,
	}
}
