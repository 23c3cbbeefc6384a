package processor

import (
	"context"
	"log/slog"

	internal "github.com/frahmantamala/payment-gateway/internal"
)

// Processor is one partner integration. Supports reports whether the
// implementation is wired to the given partner; the Registry uses it to pick
// the right client per request.
type Processor interface {
	Supports(partnerID int64) bool
	Approve(ctx context.Context, req *ApprovalRequest) (*ApprovalResult, error)
}

type Registry struct {
	processors []Processor
	logger     *slog.Logger
}

func NewRegistry(logger *slog.Logger, processors ...Processor) *Registry {
	return &Registry{
		processors: processors,
		logger:     logger,
	}
}

func (r *Registry) Register(p Processor) {
	r.processors = append(r.processors, p)
}

// For returns the processor wired to partnerID.
func (r *Registry) For(partnerID int64) (Processor, error) {
	for _, p := range r.processors {
		if p.Supports(partnerID) {
			return p, nil
		}
	}

	r.logger.Warn("no processor registered for partner", "partner_id", partnerID)
	return nil, internal.NewValidationError("no processor registered for partner", internal.ErrCodePartnerNotSupported)
}
