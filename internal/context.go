package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextPartnerKey ctxKey = "partnerID"

func PartnerIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	if partnerID, ok := ctx.Value(ContextPartnerKey).(int64); ok {
		return partnerID, true
	}
	return 0, false
}

func ContextWithPartnerID(ctx context.Context, partnerID int64) context.Context {
	return context.WithValue(ctx, ContextPartnerKey, partnerID)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
