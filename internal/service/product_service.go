package service

import (
	"context"
	"errors"
	"math"

	"tillpoint/internal/cache"
	"tillpoint/internal/dto"
	"tillpoint/internal/model"
	"tillpoint/internal/predicate"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService covers the catalog: creation, price changes with history,
// activation, listing and search. Stock quantities are not its business —
// every quantity change goes through the ledger.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	GetByCode(ctx context.Context, code string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Search(ctx context.Context, req dto.SearchRequest) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	PriceHistory(ctx context.Context, id uuid.UUID, page, limit int) (*dto.PriceHistoryListResponse, error)
}

type productService struct {
	repos  repository.Repos
	ledger LedgerService
	prices cache.PriceCache
}

func NewProductService(repos repository.Repos, ledger LedgerService, prices cache.PriceCache) ProductService {
	return &productService{repos: repos, ledger: ledger, prices: prices}
}

// ── Create ────────────────────────────────────────────────────────────────────
// The row and its opening balance land in one scope, so a tracked product
// never exists with stock the ledger cannot account for.

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.CostPrice.IsNegative() || req.SellPrice.IsNegative() {
		return nil, newValidation("prices cannot be negative")
	}
	if req.InitialStock.IsNegative() {
		return nil, newValidation("initial_stock cannot be negative")
	}
	if req.MinStock.IsNegative() || req.MaxStock.IsNegative() {
		return nil, newValidation("stock thresholds cannot be negative")
	}

	userID, err := parseOptionalUUID(req.UserID, "user_id")
	if err != nil {
		return nil, err
	}

	tracks := true
	if req.TracksInventory != nil {
		tracks = *req.TracksInventory
	}
	if !tracks && req.InitialStock.IsPositive() {
		return nil, newValidation("initial_stock requires tracks_inventory")
	}

	unit := req.Unit
	if unit == "" {
		unit = "unit"
	}

	p := &model.Product{
		Code:            req.Code,
		Description:     req.Description,
		Unit:            unit,
		CostPrice:       req.CostPrice,
		SellPrice:       req.SellPrice,
		MinStock:        req.MinStock,
		MaxStock:        req.MaxStock,
		TracksInventory: tracks,
		Active:          true,
	}

	txErr := s.repos.Tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Products.Create(ctx, p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return &DuplicateError{Field: "code", Value: req.Code}
			}
			return persistence("create product", err)
		}
		if tracks && req.InitialStock.IsPositive() {
			if err := s.ledger.RecordInitialStock(ctx, r, p.ID, req.InitialStock, userID); err != nil {
				return err
			}
			p.QuantityInStock = req.InitialStock
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return productToResponse(p), nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repos.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "product", Ref: id.String()}
		}
		return nil, persistence("load product", err)
	}
	return productToResponse(p), nil
}

func (s *productService) GetByCode(ctx context.Context, code string) (*dto.ProductResponse, error) {
	p, err := s.repos.Products.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "product", Ref: code}
		}
		return nil, persistence("load product", err)
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	products, total, err := s.repos.Products.List(ctx, repository.ProductFilter{
		Code:        filter.Code,
		Description: filter.Description,
		Active:      filter.Active,
		Page:        filter.Page,
		Limit:       filter.Limit,
	})
	if err != nil {
		return nil, persistence("list products", err)
	}
	return productListResponse(products, total, filter.Page, filter.Limit), nil
}

func (s *productService) Search(ctx context.Context, req dto.SearchRequest) (*dto.ProductListResponse, error) {
	pred, err := predicate.FromJSON(req.Where)
	if err != nil {
		return nil, newValidation("invalid search predicate: " + err.Error())
	}
	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	products, total, err := s.repos.Products.Search(ctx, pred, page, limit)
	if err != nil {
		if errors.Is(err, predicate.ErrUnknownField) {
			return nil, newValidation(err.Error())
		}
		return nil, persistence("search products", err)
	}
	return productListResponse(products, total, page, limit), nil
}

// ── Update ────────────────────────────────────────────────────────────────────

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	userID, err := parseOptionalUUID(req.UserID, "user_id")
	if err != nil {
		return nil, err
	}
	if req.CostPrice != nil && req.CostPrice.IsNegative() {
		return nil, newValidation("cost_price cannot be negative")
	}
	if req.SellPrice != nil && req.SellPrice.IsNegative() {
		return nil, newValidation("sell_price cannot be negative")
	}
	if req.MinStock != nil && req.MinStock.IsNegative() {
		return nil, newValidation("min_stock cannot be negative")
	}
	if req.MaxStock != nil && req.MaxStock.IsNegative() {
		return nil, newValidation("max_stock cannot be negative")
	}

	var updated *model.Product
	txErr := s.repos.Tx.Run(ctx, func(r repository.Repos) error {
		p, err := r.Products.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &NotFoundError{Entity: "product", Ref: id.String()}
			}
			return persistence("load product", err)
		}

		costBefore, sellBefore := p.CostPrice, p.SellPrice

		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Unit != nil && *req.Unit != "" {
			p.Unit = *req.Unit
		}
		if req.CostPrice != nil {
			p.CostPrice = *req.CostPrice
		}
		if req.SellPrice != nil {
			p.SellPrice = *req.SellPrice
		}
		if req.MinStock != nil {
			p.MinStock = *req.MinStock
		}
		if req.MaxStock != nil {
			p.MaxStock = *req.MaxStock
		}

		if err := r.Products.Update(ctx, p); err != nil {
			return persistence("update product", err)
		}

		// Price moves leave a trail.
		if !p.CostPrice.Equal(costBefore) || !p.SellPrice.Equal(sellBefore) {
			h := &model.PriceHistory{
				ProductID:  p.ID,
				CostBefore: costBefore,
				CostAfter:  p.CostPrice,
				SellBefore: sellBefore,
				SellAfter:  p.SellPrice,
				UserID:     userID,
			}
			if err := r.PriceHistory.Add(ctx, h); err != nil {
				return persistence("record price history", err)
			}
		}

		updated = p
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// The cached price must not outlive the update.
	_ = s.prices.Invalidate(ctx, updated.Code)

	return productToResponse(updated), nil
}

func (s *productService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	p, err := s.repos.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Entity: "product", Ref: id.String()}
		}
		return persistence("load product", err)
	}

	if err := s.repos.Products.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Entity: "product", Ref: id.String()}
		}
		return persistence("set product active", err)
	}

	_ = s.prices.Invalidate(ctx, p.Code)
	return nil
}

func (s *productService) PriceHistory(ctx context.Context, id uuid.UUID, page, limit int) (*dto.PriceHistoryListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	if _, err := s.repos.Products.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "product", Ref: id.String()}
		}
		return nil, persistence("load product", err)
	}

	rows, total, err := s.repos.PriceHistory.ListByProduct(ctx, id, page, limit)
	if err != nil {
		return nil, persistence("list price history", err)
	}

	data := make([]dto.PriceHistoryResponse, 0, len(rows))
	for i := range rows {
		h := &rows[i]
		var user *string
		if h.UserID != nil {
			u := h.UserID.String()
			user = &u
		}
		data = append(data, dto.PriceHistoryResponse{
			ID:         h.ID.String(),
			CostBefore: h.CostBefore,
			CostAfter:  h.CostAfter,
			SellBefore: h.SellBefore,
			SellAfter:  h.SellAfter,
			UserID:     user,
			CreatedAt:  h.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return &dto.PriceHistoryListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// ── Mapping / helpers ─────────────────────────────────────────────────────────

func productToResponse(p *model.Product) *dto.ProductResponse {
	margin := decimal.Zero
	if p.CostPrice.IsPositive() {
		margin = p.SellPrice.Sub(p.CostPrice).
			Div(p.CostPrice).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return &dto.ProductResponse{
		ID:              p.ID.String(),
		Code:            p.Code,
		Description:     p.Description,
		Unit:            p.Unit,
		CostPrice:       p.CostPrice,
		SellPrice:       p.SellPrice,
		MarginPct:       margin,
		QuantityInStock: p.QuantityInStock,
		MinStock:        p.MinStock,
		MaxStock:        p.MaxStock,
		TracksInventory: p.TracksInventory,
		Active:          p.Active,
		CreatedAt:       p.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:       p.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func productListResponse(products []model.Product, total int64, page, limit int) *dto.ProductListResponse {
	data := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

func parseOptionalUUID(s *string, field string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, newValidation(field + " is not a valid uuid")
	}
	return &id, nil
}
