package synopsis

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/mreyes/reel-server/internal/models"
)

// Limited wraps a provider with a client-side request cap so scheduled and
// on-demand generation cannot hammer a paid API.
type Limited struct {
	Provider
	limiter *rate.Limiter
}

// WithRateLimit caps Generate calls at perMinute. A nil provider or a
// non-positive cap returns the provider unchanged.
func WithRateLimit(p Provider, perMinute int) Provider {
	if p == nil || perMinute <= 0 {
		return p
	}
	return &Limited{
		Provider: p,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

// Generate waits for rate limit clearance, then delegates
func (l *Limited) Generate(ctx context.Context, s models.Storyline) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return l.Provider.Generate(ctx, s)
}
