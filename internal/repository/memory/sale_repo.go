package memory

import (
	"context"
	"sort"
	"time"

	"tillpoint/internal/model"
	"tillpoint/internal/predicate"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
)

type saleRepo struct{ ss *session }

func (r *saleRepo) Add(ctx context.Context, s *model.Sale) error {
	defer r.ss.lock()()

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	for _, existing := range r.ss.store.sales {
		if existing.Folio == s.Folio {
			return repository.ErrDuplicate
		}
	}
	for i := range s.Items {
		if s.Items[i].ID == uuid.Nil {
			s.Items[i].ID = uuid.New()
		}
		s.Items[i].SaleID = s.ID
		if s.Items[i].CreatedAt.IsZero() {
			s.Items[i].CreatedAt = s.CreatedAt
		}
	}
	r.ss.store.sales[s.ID] = copySale(*s)
	return nil
}

func (r *saleRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	defer r.ss.rlock()()

	s, ok := r.ss.store.sales[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copySale(s)
	return &out, nil
}

func (r *saleRepo) List(ctx context.Context, f repository.SaleFilter) ([]model.Sale, int64, error) {
	defer r.ss.rlock()()

	var matched []model.Sale
	for _, s := range r.ss.store.sales {
		if f.Date != "" && s.CreatedAt.Format("2006-01-02") != f.Date {
			continue
		}
		if f.CustomerID != nil && (s.CustomerID == nil || *s.CustomerID != *f.CustomerID) {
			continue
		}
		if f.PaymentType != "" && s.PaymentType != f.PaymentType {
			continue
		}
		if f.CreditOnly && !s.IsCreditSale {
			continue
		}
		matched = append(matched, copySale(s))
	}
	sortSales(matched)
	total := int64(len(matched))
	return paginate(matched, f.Page, f.Limit), total, nil
}

func (r *saleRepo) Search(ctx context.Context, pred predicate.Predicate, page, limit int) ([]model.Sale, int64, error) {
	defer r.ss.rlock()()

	var matched []model.Sale
	for _, s := range r.ss.store.sales {
		ok, err := pred.Eval(saleFields(s))
		if err != nil {
			return nil, 0, err
		}
		if ok {
			matched = append(matched, copySale(s))
		}
	}
	sortSales(matched)
	total := int64(len(matched))
	return paginate(matched, page, limit), total, nil
}

func (r *saleRepo) NextFolio(ctx context.Context) (int, error) {
	defer r.ss.lock()()
	r.ss.store.folioSeq++
	return r.ss.store.folioSeq, nil
}

func saleFields(s model.Sale) map[string]any {
	return map[string]any{
		"folio":          s.Folio,
		"total_amount":   s.TotalAmount,
		"payment_type":   s.PaymentType,
		"is_credit_sale": s.IsCreditSale,
		"created_at":     s.CreatedAt.Format(time.RFC3339),
	}
}

func sortSales(sales []model.Sale) {
	sort.Slice(sales, func(i, j int) bool {
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})
}
