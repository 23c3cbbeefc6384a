package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	paymentDatamodel "github.com/frahmantamala/payment-gateway/internal/core/datamodel/payment"
	"github.com/frahmantamala/payment-gateway/internal/payment"
)

// PaymentRepository implements the payment.Repository interface using GORM
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) payment.Repository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *paymentDatamodel.Payment) error {
	return r.db.Create(p).Error
}

// FindPage returns one keyset-paginated page ordered by (created_at, id)
// descending. It fetches limit+1 rows to decide hasNext and reports the last
// returned row as the boundary for the next cursor.
func (r *PaymentRepository) FindPage(q payment.PageQuery) (*payment.PageResult, error) {
	query := r.filtered(q.PartnerID, q.Status, q.From, q.To)

	if q.CursorCreatedAt != nil && q.CursorID != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			*q.CursorCreatedAt, *q.CursorCreatedAt, *q.CursorID)
	}

	var rows []*paymentDatamodel.Payment
	err := query.
		Order("created_at DESC, id DESC").
		Limit(q.Limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := &payment.PageResult{Items: rows}

	if len(rows) > q.Limit {
		result.Items = rows[:q.Limit]
		result.HasNext = true

		last := result.Items[len(result.Items)-1]
		createdAt := last.CreatedAt
		id := last.ID
		result.NextCreatedAt = &createdAt
		result.NextID = &id
	}

	return result, nil
}

// FindSummary aggregates over the partner/status/time-range filter only;
// cursor and limit never reach this query, so the totals cover the whole
// filtered set no matter which page the caller is viewing.
func (r *PaymentRepository) FindSummary(q payment.SummaryQuery) (*payment.Summary, error) {
	var row struct {
		Count          int64
		TotalAmount    decimal.Decimal
		TotalNetAmount decimal.Decimal
	}

	err := r.filtered(q.PartnerID, q.Status, q.From, q.To).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount, COALESCE(SUM(net_amount), 0) AS total_net_amount").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &payment.Summary{
		Count:          row.Count,
		TotalAmount:    row.TotalAmount,
		TotalNetAmount: row.TotalNetAmount,
	}, nil
}

func (r *PaymentRepository) filtered(partnerID int64, status *string, from, to *time.Time) *gorm.DB {
	query := r.db.Model(&paymentDatamodel.Payment{}).
		Where("partner_id = ?", partnerID)

	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	return query
}
