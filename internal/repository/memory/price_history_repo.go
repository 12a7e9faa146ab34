package memory

import (
	"context"
	"sort"
	"time"

	"tillpoint/internal/model"

	"github.com/google/uuid"
)

type priceHistoryRepo struct{ ss *session }

func (r *priceHistoryRepo) Add(ctx context.Context, h *model.PriceHistory) error {
	defer r.ss.lock()()

	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	r.ss.store.history = append(r.ss.store.history, *h)
	return nil
}

func (r *priceHistoryRepo) ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.PriceHistory, int64, error) {
	defer r.ss.rlock()()

	var matched []model.PriceHistory
	for _, h := range r.ss.store.history {
		if h.ProductID == productID {
			matched = append(matched, h)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	return paginate(matched, page, limit), total, nil
}
