package handler

import (
	"context"
	"net/http"
	"time"

	"tillpoint/internal/apierror"
	"tillpoint/internal/cache"
	"tillpoint/internal/dto"
	"tillpoint/internal/repository"

	"github.com/gin-gonic/gin"
)

// PriceCheckHandler serves the public price check endpoint. Read-only, no
// authentication, never touches the transactional path.
type PriceCheckHandler struct {
	repo   repository.ProductRepository
	prices cache.PriceCache
	ttl    time.Duration
}

func NewPriceCheckHandler(repo repository.ProductRepository, prices cache.PriceCache, ttl time.Duration) *PriceCheckHandler {
	return &PriceCheckHandler{repo: repo, prices: prices, ttl: ttl}
}

// GetByCode godoc
// @Summary Price lookup by product code (no authentication)
// @Tags price
// @Produce json
// @Param code path string true "Product code"
// @Success 200 {object} dto.PriceCheckResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/price/{code} [get]
func (h *PriceCheckHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	ctx := c.Request.Context()

	// 1. Try the cache.
	if cached, ok, _ := h.prices.Get(ctx, code); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	// 2. Cache miss — query the catalog.
	p, err := h.repo.GetByCode(ctx, code)
	if err != nil || !p.Active {
		c.JSON(http.StatusNotFound, apierror.New(apierror.CodeNotFound, "product not found"))
		return
	}

	resp := &dto.PriceCheckResponse{
		Code:           p.Code,
		Description:    p.Description,
		Unit:           p.Unit,
		SellPrice:      p.SellPrice,
		AvailableStock: p.QuantityInStock,
	}

	// 3. Populate the cache — best effort, ignore errors.
	_ = h.prices.Set(context.Background(), code, resp, h.ttl)

	c.JSON(http.StatusOK, resp)
}
