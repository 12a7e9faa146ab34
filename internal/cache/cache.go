package cache

import (
	"context"
	"time"

	"tillpoint/internal/dto"
)

// PriceCache front-ends the public price check lookups. Failures count as
// misses — the catalog stays the source of truth.
type PriceCache interface {
	Get(ctx context.Context, code string) (*dto.PriceCheckResponse, bool, error)
	Set(ctx context.Context, code string, value *dto.PriceCheckResponse, ttl time.Duration) error
	Invalidate(ctx context.Context, code string) error
}

type NoopPriceCache struct{}

func (NoopPriceCache) Get(_ context.Context, _ string) (*dto.PriceCheckResponse, bool, error) {
	return nil, false, nil
}

func (NoopPriceCache) Set(_ context.Context, _ string, _ *dto.PriceCheckResponse, _ time.Duration) error {
	return nil
}

func (NoopPriceCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
