package memory

import (
	"context"
	"sort"
	"time"

	"tillpoint/internal/model"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type inventoryRepo struct{ ss *session }

func (r *inventoryRepo) AddMovement(ctx context.Context, m *model.InventoryMovement) error {
	defer r.ss.lock()()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.ss.store.movements = append(r.ss.store.movements, *m)
	return nil
}

func (r *inventoryRepo) List(ctx context.Context, f repository.MovementFilter) ([]model.InventoryMovement, int64, error) {
	defer r.ss.rlock()()

	var matched []model.InventoryMovement
	for _, m := range r.ss.store.movements {
		if f.ProductID != nil && m.ProductID != *f.ProductID {
			continue
		}
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !m.CreatedAt.Before(*f.To) {
			continue
		}
		matched = append(matched, m)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	return paginate(matched, f.Page, f.Limit), total, nil
}

func (r *inventoryRepo) SumMovements(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	defer r.ss.rlock()()

	sum := decimal.Zero
	for _, m := range r.ss.store.movements {
		if m.ProductID == productID {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum, nil
}
