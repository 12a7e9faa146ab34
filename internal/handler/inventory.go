package handler

import (
	"net/http"

	"tillpoint/internal/apierror"
	"tillpoint/internal/dto"
	"tillpoint/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// Receive godoc
// @Summary      Receive stock
// @Description  Adds stock to a tracked product and records a PURCHASE movement.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body body dto.ReceiveStockRequest true "Product, quantity and reason"
// @Success      201  {object} dto.MovementResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/inventory/receive [post]
func (h *InventoryHandler) Receive(c *gin.Context) {
	var req dto.ReceiveStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ReceiveStock(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Adjust godoc
// @Summary      Adjust stock to a counted value
// @Description  Positions stock at an absolute quantity and records the signed difference as an ADJUSTMENT movement.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body body dto.AdjustStockRequest true "Product, counted quantity and reason"
// @Success      201  {object} dto.MovementResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AdjustStock(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InventoryHandler) Movements(c *gin.Context) {
	var filter dto.MovementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, err.Error()))
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) Alerts(c *gin.Context) {
	resp, err := h.svc.Alerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Consistency godoc
// @Summary      Verify the stock ledger of a product
// @Description  Compares quantity_in_stock against the sum of the product's movements and reports any drift.
// @Tags         inventory
// @Produce      json
// @Param        product_id query string true "Product UUID"
// @Success      200 {object} service.LedgerReport
// @Failure      400 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Router       /v1/inventory/consistency [get]
func (h *InventoryHandler) Consistency(c *gin.Context) {
	pid, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, "product_id query parameter must be a UUID"))
		return
	}
	resp, err := h.svc.Verify(c.Request.Context(), pid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
