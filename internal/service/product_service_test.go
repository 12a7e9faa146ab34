package service

import (
	"context"
	"encoding/json"
	"testing"

	"tillpoint/internal/dto"
	"tillpoint/internal/model"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct_InitialStockGoesThroughLedger(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	resp, err := env.products.Create(ctx, dto.CreateProductRequest{
		Code:         "P-200",
		Description:  "Olive oil 1L",
		CostPrice:    decimal.NewFromInt(8),
		SellPrice:    decimal.NewFromInt(12),
		InitialStock: decimal.NewFromInt(30),
		MinStock:     decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	assert.True(t, resp.QuantityInStock.Equal(decimal.NewFromInt(30)))
	assert.True(t, resp.Active)
	assert.Equal(t, "unit", resp.Unit)
	assert.True(t, resp.MarginPct.Equal(decimal.NewFromInt(50)))

	pid := uuid.MustParse(resp.ID)
	movs, total, err := env.repos.Inventory.List(ctx, repository.MovementFilter{ProductID: &pid})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, model.MovementInitial, movs[0].Kind)
	assert.True(t, movs[0].StockBefore.IsZero())
	assert.True(t, movs[0].StockAfter.Equal(decimal.NewFromInt(30)))
}

func TestCreateProduct_Validations(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedTracked(t, "P-210", 10, 0)

	var de *DuplicateError
	_, err := env.products.Create(ctx, dto.CreateProductRequest{
		Code:        "P-210",
		Description: "Same code again",
		SellPrice:   decimal.NewFromInt(10),
	})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "code", de.Field)

	var ve *ValidationError
	tracks := false
	_, err = env.products.Create(ctx, dto.CreateProductRequest{
		Code:            "P-211",
		Description:     "Service with stock",
		SellPrice:       decimal.NewFromInt(10),
		InitialStock:    decimal.NewFromInt(5),
		TracksInventory: &tracks,
	})
	assert.ErrorAs(t, err, &ve)

	_, err = env.products.Create(ctx, dto.CreateProductRequest{
		Code:        "P-212",
		Description: "Negative price",
		SellPrice:   decimal.NewFromInt(-1),
	})
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateProduct_PriceChangeLeavesHistory(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-220", 100, 10)

	// Non-price update: no history row.
	desc := "Renamed product"
	_, err := env.products.Update(ctx, pid, dto.UpdateProductRequest{Description: &desc})
	require.NoError(t, err)
	hist, err := env.products.PriceHistory(ctx, pid, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, hist.Total)

	newSell := decimal.NewFromInt(120)
	newCost := decimal.NewFromInt(80)
	resp, err := env.products.Update(ctx, pid, dto.UpdateProductRequest{
		SellPrice: &newSell,
		CostPrice: &newCost,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed product", resp.Description)
	assert.True(t, resp.SellPrice.Equal(newSell))

	hist, err = env.products.PriceHistory(ctx, pid, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, hist.Total)
	row := hist.Data[0]
	assert.True(t, row.SellBefore.Equal(decimal.NewFromInt(100)))
	assert.True(t, row.SellAfter.Equal(decimal.NewFromInt(120)))
	assert.True(t, row.CostAfter.Equal(decimal.NewFromInt(80)))
}

func TestProduct_SetActiveAndListFilter(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-230", 10, 5)
	env.seedTracked(t, "P-231", 10, 5)

	require.NoError(t, env.products.SetActive(ctx, pid, false))

	active, err := env.products.List(ctx, dto.ProductFilter{Active: "true", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, active.Total)

	all, err := env.products.List(ctx, dto.ProductFilter{Active: "all", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	var nfe *NotFoundError
	assert.ErrorAs(t, env.products.SetActive(ctx, uuid.New(), false), &nfe)
}

func TestProduct_GetByCode(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedTracked(t, "P-240", 10, 5)

	resp, err := env.products.GetByCode(ctx, "P-240")
	require.NoError(t, err)
	assert.Equal(t, "P-240", resp.Code)

	var nfe *NotFoundError
	_, err = env.products.GetByCode(ctx, "NOPE")
	assert.ErrorAs(t, err, &nfe)
}

func TestSearchProducts_Predicate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedTracked(t, "P-250", 10, 5)
	env.seedTracked(t, "P-251", 200, 5)

	where := json.RawMessage(`{"and":[
		{"field":"description","op":"contains","value":"P-25"},
		{"field":"sell_price","op":"gt","value":100}
	]}`)
	found, err := env.products.Search(ctx, dto.SearchRequest{Where: where})
	require.NoError(t, err)
	require.EqualValues(t, 1, found.Total)
	assert.Equal(t, "P-251", found.Data[0].Code)

	var ve *ValidationError
	_, err = env.products.Search(ctx, dto.SearchRequest{
		Where: json.RawMessage(`{"field":"password","op":"eq","value":"x"}`),
	})
	assert.ErrorAs(t, err, &ve)
}
