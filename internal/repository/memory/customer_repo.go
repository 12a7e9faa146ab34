package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"tillpoint/internal/model"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type customerRepo struct{ ss *session }

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	defer r.ss.rlock()()
	c, ok := r.ss.store.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *customerRepo) List(ctx context.Context, f repository.CustomerFilter) ([]model.Customer, int64, error) {
	defer r.ss.rlock()()

	var matched []model.Customer
	for _, c := range r.ss.store.customers {
		switch f.Active {
		case "false":
			if c.Active {
				continue
			}
		case "all":
		default:
			if !c.Active {
				continue
			}
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Name)) {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	total := int64(len(matched))
	return paginate(matched, f.Page, f.Limit), total, nil
}

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	defer r.ss.lock()()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.ss.store.customers[c.ID] = *c
	return nil
}

func (r *customerRepo) Update(ctx context.Context, c *model.Customer) error {
	defer r.ss.lock()()

	if _, ok := r.ss.store.customers[c.ID]; !ok {
		return repository.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	r.ss.store.customers[c.ID] = *c
	return nil
}

func (r *customerRepo) AdjustCreditBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	defer r.ss.lock()()

	c, ok := r.ss.store.customers[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.CreditBalance = c.CreditBalance.Add(delta)
	c.UpdatedAt = time.Now()
	r.ss.store.customers[id] = c
	return nil
}
