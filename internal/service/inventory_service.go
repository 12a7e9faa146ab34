package service

import (
	"context"
	"time"

	"tillpoint/internal/cache"
	"tillpoint/internal/dto"
	"tillpoint/internal/model"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryService is the HTTP-facing side of stock control. Mutations open
// their own transaction scope and delegate the actual write to the ledger.
type InventoryService interface {
	ReceiveStock(ctx context.Context, req dto.ReceiveStockRequest) (*dto.MovementResponse, error)
	AdjustStock(ctx context.Context, req dto.AdjustStockRequest) (*dto.MovementResponse, error)
	ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error)
	Alerts(ctx context.Context) ([]dto.LowStockProduct, error)
	Verify(ctx context.Context, productID uuid.UUID) (*LedgerReport, error)
}

type inventoryService struct {
	repos  repository.Repos
	ledger LedgerService
	prices cache.PriceCache
}

func NewInventoryService(repos repository.Repos, ledger LedgerService, prices cache.PriceCache) InventoryService {
	return &inventoryService{repos: repos, ledger: ledger, prices: prices}
}

func (s *inventoryService) ReceiveStock(ctx context.Context, req dto.ReceiveStockRequest) (*dto.MovementResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, newValidation("product_id is not a valid uuid")
	}
	userID, err := parseOptionalUUID(req.UserID, "user_id")
	if err != nil {
		return nil, err
	}

	var mov *model.InventoryMovement
	txErr := s.repos.Tx.Run(ctx, func(r repository.Repos) error {
		m, err := s.ledger.ReceiveStock(ctx, r, productID, req.Quantity, req.Reason, userID)
		if err != nil {
			return err
		}
		mov = m
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.invalidatePrice(ctx, productID)
	return movementToResponse(mov), nil
}

func (s *inventoryService) AdjustStock(ctx context.Context, req dto.AdjustStockRequest) (*dto.MovementResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, newValidation("product_id is not a valid uuid")
	}
	if req.NewQuantity == nil {
		return nil, newValidation("new_quantity is required")
	}
	userID, err := parseOptionalUUID(req.UserID, "user_id")
	if err != nil {
		return nil, err
	}

	var mov *model.InventoryMovement
	txErr := s.repos.Tx.Run(ctx, func(r repository.Repos) error {
		m, err := s.ledger.AdjustStock(ctx, r, productID, *req.NewQuantity, req.Reason, userID)
		if err != nil {
			return err
		}
		mov = m
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.invalidatePrice(ctx, productID)
	return movementToResponse(mov), nil
}

func (s *inventoryService) ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	f := repository.MovementFilter{
		Kind:  filter.Kind,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	if filter.ProductID != "" {
		pid, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, newValidation("product_id is not a valid uuid")
		}
		f.ProductID = &pid
	}
	if filter.From != "" {
		from, err := time.Parse("2006-01-02", filter.From)
		if err != nil {
			return nil, newValidation("from must be YYYY-MM-DD")
		}
		f.From = &from
	}
	if filter.To != "" {
		to, err := time.Parse("2006-01-02", filter.To)
		if err != nil {
			return nil, newValidation("to must be YYYY-MM-DD")
		}
		// Inclusive date, exclusive bound.
		end := to.Add(24 * time.Hour)
		f.To = &end
	}

	movements, total, err := s.repos.Inventory.List(ctx, f)
	if err != nil {
		return nil, persistence("list stock movements", err)
	}

	data := make([]dto.MovementResponse, 0, len(movements))
	for i := range movements {
		data = append(data, *movementToResponse(&movements[i]))
	}
	return &dto.MovementListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *inventoryService) Alerts(ctx context.Context) ([]dto.LowStockProduct, error) {
	products, err := s.ledger.LowStockAlerts(ctx, s.repos)
	if err != nil {
		return nil, err
	}

	out := make([]dto.LowStockProduct, 0, len(products))
	for i := range products {
		p := &products[i]
		suggested := decimal.Zero
		if p.MaxStock.IsPositive() && p.MaxStock.GreaterThan(p.QuantityInStock) {
			suggested = p.MaxStock.Sub(p.QuantityInStock)
		}
		out = append(out, dto.LowStockProduct{
			ProductID:       p.ID.String(),
			Code:            p.Code,
			Description:     p.Description,
			QuantityInStock: p.QuantityInStock,
			MinStock:        p.MinStock,
			MaxStock:        p.MaxStock,
			SuggestedOrder:  suggested,
		})
	}
	return out, nil
}

func (s *inventoryService) Verify(ctx context.Context, productID uuid.UUID) (*LedgerReport, error) {
	return s.ledger.VerifyLedger(ctx, s.repos, productID)
}

// invalidatePrice drops the cached price check entry; available stock is part
// of it. Best effort.
func (s *inventoryService) invalidatePrice(ctx context.Context, productID uuid.UUID) {
	p, err := s.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return
	}
	_ = s.prices.Invalidate(ctx, p.Code)
}

func movementToResponse(m *model.InventoryMovement) *dto.MovementResponse {
	var related, user *string
	if m.RelatedID != nil {
		v := m.RelatedID.String()
		related = &v
	}
	if m.UserID != nil {
		v := m.UserID.String()
		user = &v
	}
	return &dto.MovementResponse{
		ID:          m.ID.String(),
		ProductID:   m.ProductID.String(),
		Quantity:    m.Quantity,
		Kind:        m.Kind,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Reason:      m.Reason,
		RelatedID:   related,
		UserID:      user,
		CreatedAt:   m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
