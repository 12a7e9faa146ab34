package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"tillpoint/internal/dto"
	"tillpoint/internal/model"
	"tillpoint/internal/predicate"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleService interface {
	CreateSale(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	SearchSales(ctx context.Context, req dto.SearchRequest) (*dto.SaleListResponse, error)
}

// Notifier hands post-commit work to the async side. worker.Dispatcher is the
// production implementation; a nil Notifier disables dispatch.
type Notifier interface {
	EnqueueLowStockScan(ctx context.Context, productIDs []string) error
}

type saleService struct {
	repos      repository.Repos
	ledger     LedgerService
	credit     CreditService
	dispatcher Notifier
}

func NewSaleService(repos repository.Repos, ledger LedgerService, credit CreditService, dispatcher Notifier) SaleService {
	return &saleService{
		repos:      repos,
		ledger:     ledger,
		credit:     credit,
		dispatcher: dispatcher,
	}
}

// ── CreateSale ────────────────────────────────────────────────────────────────
// One transaction scope covers the whole sale:
//   1. Validate the request — no storage touched on failure
//   2. Inside the scope: resolve products, snapshot code/description/unit/price
//   3. Claim the next folio
//   4. Decrement stock per line through the ledger
//   5. Persist sale + items, post credit if the sale is on account
//   6. Commit; then enqueue a low-stock scan for the touched products
//
// A failure on line N rolls back lines 1..N-1 along with everything else.

func (s *saleService) CreateSale(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	// 1. Fail fast before opening the scope.
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, newValidation("user_id is not a valid uuid")
	}
	if len(req.Items) == 0 {
		return nil, newValidation("sale requires at least one item")
	}
	switch req.PaymentType {
	case model.PaymentCash, model.PaymentCard, model.PaymentTransfer, model.PaymentCredit:
	default:
		return nil, newValidation("unknown payment type " + strconv.Quote(req.PaymentType))
	}

	var customerID *uuid.UUID
	if req.CustomerID != nil && *req.CustomerID != "" {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, newValidation("customer_id is not a valid uuid")
		}
		customerID = &cid
	}
	if req.IsCreditSale && customerID == nil {
		return nil, newValidation("credit sale requires a customer")
	}

	type line struct {
		productID uuid.UUID
		qty       decimal.Decimal
		override  *decimal.Decimal
	}
	lines := make([]line, 0, len(req.Items))
	for i, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, newValidation(fmt.Sprintf("items[%d].product_id is not a valid uuid", i))
		}
		if !item.Quantity.IsPositive() {
			return nil, newValidation(fmt.Sprintf("items[%d].quantity must be greater than zero", i))
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			return nil, newValidation(fmt.Sprintf("items[%d].unit_price cannot be negative", i))
		}
		lines = append(lines, line{productID: pid, qty: item.Quantity, override: item.UnitPrice})
	}

	// 2. All-or-nothing scope. The sale id is minted up front so the stock
	// movements written before the sale row can already reference it.
	var sale model.Sale
	txErr := s.repos.Tx.Run(ctx, func(r repository.Repos) error {
		saleID := uuid.New()

		// Resolve and snapshot. Inactive products are not sellable and
		// resolve the same as missing ones.
		items := make([]model.SaleItem, 0, len(lines))
		for _, ln := range lines {
			p, err := r.Products.GetByID(ctx, ln.productID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return &NotFoundError{Entity: "product", Ref: ln.productID.String()}
				}
				return persistence("load product", err)
			}
			if !p.Active {
				return &NotFoundError{Entity: "product", Ref: p.Code}
			}
			price := p.SellPrice
			if ln.override != nil {
				price = *ln.override
			}
			items = append(items, model.SaleItem{
				ProductID:          p.ID,
				ProductCode:        p.Code,
				ProductDescription: p.Description,
				ProductUnit:        p.Unit,
				Quantity:           ln.qty,
				UnitPrice:          price,
			})
		}

		folio, err := r.Sales.NextFolio(ctx)
		if err != nil {
			return persistence("allocate folio", err)
		}

		for _, ln := range lines {
			if err := s.ledger.DecreaseStockForSale(ctx, r, ln.productID, ln.qty, saleID, &userID); err != nil {
				return err
			}
		}

		total := decimal.Zero
		for _, item := range items {
			total = total.Add(item.Subtotal())
		}

		sale = model.Sale{
			ID:           saleID,
			Folio:        folio,
			TotalAmount:  total.Round(2),
			CustomerID:   customerID,
			UserID:       userID,
			PaymentType:  req.PaymentType,
			IsCreditSale: req.IsCreditSale,
			Items:        items,
		}
		if err := r.Sales.Add(ctx, &sale); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return &DuplicateError{Field: "folio", Value: strconv.Itoa(folio)}
			}
			return persistence("persist sale", err)
		}

		if req.IsCreditSale {
			return s.credit.PostCreditSale(ctx, r, *customerID, sale.TotalAmount)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// 3. Post-commit, best effort: let the worker decide whether any touched
	// product fell below its minimum.
	if s.dispatcher != nil {
		ids := make([]string, 0, len(lines))
		for _, ln := range lines {
			ids = append(ids, ln.productID.String())
		}
		_ = s.dispatcher.EnqueueLowStockScan(ctx, ids)
	}

	return saleToResponse(&sale), nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repos.Sales.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "sale", Ref: id.String()}
		}
		return nil, persistence("load sale", err)
	}
	return saleToResponse(sale), nil
}

func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	f := repository.SaleFilter{
		Date:        filter.Date,
		PaymentType: filter.PaymentType,
		CreditOnly:  filter.CreditOnly,
		Page:        filter.Page,
		Limit:       filter.Limit,
	}
	if filter.CustomerID != "" {
		cid, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, newValidation("customer_id is not a valid uuid")
		}
		f.CustomerID = &cid
	}

	sales, total, err := s.repos.Sales.List(ctx, f)
	if err != nil {
		return nil, persistence("list sales", err)
	}
	return saleListResponse(sales, total, filter.Page, filter.Limit), nil
}

func (s *saleService) SearchSales(ctx context.Context, req dto.SearchRequest) (*dto.SaleListResponse, error) {
	pred, err := predicate.FromJSON(req.Where)
	if err != nil {
		return nil, newValidation("invalid search predicate: " + err.Error())
	}
	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	sales, total, err := s.repos.Sales.Search(ctx, pred, page, limit)
	if err != nil {
		if errors.Is(err, predicate.ErrUnknownField) {
			return nil, newValidation(err.Error())
		}
		return nil, persistence("search sales", err)
	}
	return saleListResponse(sales, total, page, limit), nil
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func saleToResponse(s *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ProductID:          item.ProductID.String(),
			ProductCode:        item.ProductCode,
			ProductDescription: item.ProductDescription,
			ProductUnit:        item.ProductUnit,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			Subtotal:           item.Subtotal(),
		})
	}
	var customerID *string
	if s.CustomerID != nil {
		cid := s.CustomerID.String()
		customerID = &cid
	}
	return &dto.SaleResponse{
		ID:           s.ID.String(),
		Folio:        s.Folio,
		Items:        items,
		TotalAmount:  s.TotalAmount,
		CustomerID:   customerID,
		UserID:       s.UserID.String(),
		PaymentType:  s.PaymentType,
		IsCreditSale: s.IsCreditSale,
		CreatedAt:    s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func saleListResponse(sales []model.Sale, total int64, page, limit int) *dto.SaleListResponse {
	data := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		data = append(data, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{Data: data, Total: total, Page: page, Limit: limit}
}
