package handler

import (
	"net/http"

	"tillpoint/internal/apierror"
	"tillpoint/internal/dto"
	"tillpoint/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Create godoc
// @Summary      Register a new sale
// @Description  Creates a sale atomically: snapshots prices, assigns a folio, decrements stock through the movement ledger and posts credit balances. Fails as a whole on any line error.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateSaleRequest true "Sale lines and payment"
// @Success      201  {object} dto.SaleResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateSale(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetByID godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale UUID"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List sales
// @Description  Paginated sales filtered by date, customer, payment type or credit flag.
// @Tags         sales
// @Produce      json
// @Param        date         query string false "Date YYYY-MM-DD"
// @Param        customer_id  query string false "Customer UUID"
// @Param        payment_type query string false "cash | card | transfer | credit"
// @Param        credit_only  query bool   false "Only credit sales"
// @Param        page         query int    false "Page (default 1)"
// @Param        limit        query int    false "Rows per page (default 50, max 200)"
// @Success      200 {object} dto.SaleListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, err.Error()))
		return
	}
	resp, err := h.svc.ListSales(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Search godoc
// @Summary      Search sales with a predicate tree
// @Description  Accepts a JSON condition tree (and/or/not over field comparisons) evaluated against the sales table.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        body body dto.SearchRequest true "Predicate tree plus pagination"
// @Success      200 {object} dto.SaleListResponse
// @Failure      422 {object} apierror.APIError
// @Router       /v1/sales/search [post]
func (h *SalesHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SearchSales(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
