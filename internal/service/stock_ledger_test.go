package service

import (
	"context"
	"testing"

	"tillpoint/internal/dto"
	"tillpoint/internal/model"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_MovementsSumMatchesStock(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-1000", 40, 10) // INITIAL +10

	_, err := env.inventory.ReceiveStock(ctx, dto.ReceiveStockRequest{
		ProductID: pid.String(),
		Quantity:  decimal.NewFromInt(5),
		Reason:    "weekly delivery",
	}) // PURCHASE +5
	require.NoError(t, err)

	_, err = env.sales.CreateSale(ctx, saleReq(item(pid, 3, nil))) // SALE -3
	require.NoError(t, err)

	target := decimal.NewFromInt(14)
	_, err = env.inventory.AdjustStock(ctx, dto.AdjustStockRequest{
		ProductID:   pid.String(),
		NewQuantity: &target,
		Reason:      "cycle count",
	}) // ADJUSTMENT +2
	require.NoError(t, err)

	assert.True(t, env.stockOf(t, pid).Equal(target))

	sum, err := env.repos.Inventory.SumMovements(ctx, pid)
	require.NoError(t, err)
	assert.True(t, sum.Equal(target))

	report, err := env.inventory.Verify(ctx, pid)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.True(t, report.Drift.IsZero())

	// Four movements, one per operation.
	movs, total, err := env.repos.Inventory.List(ctx, repository.MovementFilter{ProductID: &pid})
	require.NoError(t, err)
	require.EqualValues(t, 4, total)
	kinds := make(map[string]int)
	for _, m := range movs {
		kinds[m.Kind]++
		assert.True(t, m.StockAfter.Equal(m.StockBefore.Add(m.Quantity)), m.Kind)
	}
	assert.Equal(t, map[string]int{
		model.MovementInitial:    1,
		model.MovementPurchase:   1,
		model.MovementSale:       1,
		model.MovementAdjustment: 1,
	}, kinds)
}

func TestLedger_VerifyDetectsDrift(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-1100", 10, 8)

	// A write that bypasses the ledger leaves the sum behind.
	require.NoError(t, env.repos.Products.UpdateStock(ctx, pid, decimal.NewFromInt(-3), false))

	report, err := env.inventory.Verify(ctx, pid)
	require.NoError(t, err)
	assert.False(t, report.Consistent)
	assert.True(t, report.Recorded.Equal(decimal.NewFromInt(5)))
	assert.True(t, report.LedgerSum.Equal(decimal.NewFromInt(8)))
	assert.True(t, report.Drift.Equal(decimal.NewFromInt(-3)))
}

func TestLedger_DecreaseStockValidations(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-1200", 10, 5)

	err := env.ledger.DecreaseStockForSale(ctx, env.repos, pid, decimal.Zero, uuid.New(), nil)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	err = env.ledger.DecreaseStockForSale(ctx, env.repos, uuid.New(), decimal.NewFromInt(1), uuid.New(), nil)
	var nfe *NotFoundError
	assert.ErrorAs(t, err, &nfe)
}

func TestLedger_NonTrackingDecreaseIsNoOp(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tracks := false
	resp, err := env.products.Create(ctx, dto.CreateProductRequest{
		Code:            "SVC-2",
		Description:     "Gift wrap",
		SellPrice:       decimal.NewFromInt(5),
		TracksInventory: &tracks,
	})
	require.NoError(t, err)
	pid := uuid.MustParse(resp.ID)

	require.NoError(t, env.ledger.DecreaseStockForSale(ctx, env.repos, pid, decimal.NewFromInt(100), uuid.New(), nil))

	_, total, err := env.repos.Inventory.List(ctx, repository.MovementFilter{ProductID: &pid})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestReceiveStock_Rules(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-1300", 10, 2)

	mov, err := env.inventory.ReceiveStock(ctx, dto.ReceiveStockRequest{
		ProductID: pid.String(),
		Quantity:  decimal.NewFromInt(8),
		Reason:    "restock order 4411",
	})
	require.NoError(t, err)
	assert.Equal(t, model.MovementPurchase, mov.Kind)
	assert.True(t, mov.Quantity.Equal(decimal.NewFromInt(8)))
	assert.True(t, mov.StockBefore.Equal(decimal.NewFromInt(2)))
	assert.True(t, mov.StockAfter.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "restock order 4411", mov.Reason)
	assert.True(t, env.stockOf(t, pid).Equal(decimal.NewFromInt(10)))

	var ve *ValidationError
	_, err = env.inventory.ReceiveStock(ctx, dto.ReceiveStockRequest{ProductID: pid.String(), Quantity: decimal.Zero})
	assert.ErrorAs(t, err, &ve)
	_, err = env.inventory.ReceiveStock(ctx, dto.ReceiveStockRequest{ProductID: pid.String(), Quantity: decimal.NewFromInt(-4)})
	assert.ErrorAs(t, err, &ve)

	var nfe *NotFoundError
	_, err = env.inventory.ReceiveStock(ctx, dto.ReceiveStockRequest{ProductID: uuid.NewString(), Quantity: decimal.NewFromInt(1)})
	assert.ErrorAs(t, err, &nfe)

	// Non-tracking products have no ledger to receive into.
	tracks := false
	svc, err := env.products.Create(ctx, dto.CreateProductRequest{
		Code:            "SVC-3",
		Description:     "Home delivery",
		SellPrice:       decimal.NewFromInt(15),
		TracksInventory: &tracks,
	})
	require.NoError(t, err)
	_, err = env.inventory.ReceiveStock(ctx, dto.ReceiveStockRequest{ProductID: svc.ID, Quantity: decimal.NewFromInt(1)})
	assert.ErrorAs(t, err, &ve)
}

func TestAdjustStock_Rules(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-1400", 10, 9)

	// Shrinkage: 9 counted down to 6.
	target := decimal.NewFromInt(6)
	mov, err := env.inventory.AdjustStock(ctx, dto.AdjustStockRequest{
		ProductID:   pid.String(),
		NewQuantity: &target,
		Reason:      "broken units",
	})
	require.NoError(t, err)
	assert.Equal(t, model.MovementAdjustment, mov.Kind)
	assert.True(t, mov.Quantity.Equal(decimal.NewFromInt(-3)))
	assert.True(t, mov.StockAfter.Equal(target))
	assert.True(t, env.stockOf(t, pid).Equal(target))

	var ve *ValidationError
	neg := decimal.NewFromInt(-1)
	_, err = env.inventory.AdjustStock(ctx, dto.AdjustStockRequest{ProductID: pid.String(), NewQuantity: &neg, Reason: "bad count"})
	assert.ErrorAs(t, err, &ve)

	same := decimal.NewFromInt(6)
	_, err = env.inventory.AdjustStock(ctx, dto.AdjustStockRequest{ProductID: pid.String(), NewQuantity: &same, Reason: "no change"})
	assert.ErrorAs(t, err, &ve)
}

func TestLowStockAlerts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	low, err := env.products.Create(ctx, dto.CreateProductRequest{
		Code:         "P-1500",
		Description:  "Espresso beans 1kg",
		SellPrice:    decimal.NewFromInt(30),
		InitialStock: decimal.NewFromInt(3),
		MinStock:     decimal.NewFromInt(5),
		MaxStock:     decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	_, err = env.products.Create(ctx, dto.CreateProductRequest{
		Code:         "P-1501",
		Description:  "Filter paper",
		SellPrice:    decimal.NewFromInt(4),
		InitialStock: decimal.NewFromInt(50),
		MinStock:     decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	alerts, err := env.inventory.Alerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "P-1500", alerts[0].Code)
	assert.True(t, alerts[0].SuggestedOrder.Equal(decimal.NewFromInt(17)))

	// Topping the product back up clears the alert.
	_, err = env.inventory.ReceiveStock(ctx, dto.ReceiveStockRequest{
		ProductID: low.ID,
		Quantity:  decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	alerts, err = env.inventory.Alerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestListMovements_DateValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	var ve *ValidationError
	_, err := env.inventory.ListMovements(ctx, dto.MovementFilter{From: "yesterday"})
	assert.ErrorAs(t, err, &ve)
	_, err = env.inventory.ListMovements(ctx, dto.MovementFilter{To: "2026/01/01"})
	assert.ErrorAs(t, err, &ve)
}
