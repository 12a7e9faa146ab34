package service

import (
	"context"
	"testing"

	"tillpoint/internal/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func creditSaleReq(pid uuid.UUID, qty int64, customerID uuid.UUID) dto.CreateSaleRequest {
	req := saleReq(item(pid, qty, nil))
	cid := customerID.String()
	req.CustomerID = &cid
	req.PaymentType = "credit"
	req.IsCreditSale = true
	return req
}

func TestPostPayment_ReducesBalance(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-500", 50, 20)
	cid := env.seedCustomer(t, "Corner Cafe", 1000)

	_, err := env.sales.CreateSale(ctx, creditSaleReq(pid, 3, cid)) // 150 on account
	require.NoError(t, err)

	resp, err := env.customers.PostPayment(ctx, cid, dto.PostPaymentRequest{
		Amount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.True(t, resp.CreditBalance.Equal(decimal.NewFromInt(50)))

	// Settle the rest.
	resp, err = env.customers.PostPayment(ctx, cid, dto.PostPaymentRequest{
		Amount: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	assert.True(t, resp.CreditBalance.IsZero())
}

func TestPostPayment_Validations(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-510", 50, 20)
	cid := env.seedCustomer(t, "Corner Cafe", 1000)

	_, err := env.sales.CreateSale(ctx, creditSaleReq(pid, 2, cid)) // owes 100
	require.NoError(t, err)

	var ve *ValidationError
	_, err = env.customers.PostPayment(ctx, cid, dto.PostPaymentRequest{Amount: decimal.Zero})
	assert.ErrorAs(t, err, &ve)
	_, err = env.customers.PostPayment(ctx, cid, dto.PostPaymentRequest{Amount: decimal.NewFromInt(-10)})
	assert.ErrorAs(t, err, &ve)

	// Paying more than is owed is rejected and leaves the balance alone.
	_, err = env.customers.PostPayment(ctx, cid, dto.PostPaymentRequest{Amount: decimal.NewFromInt(101)})
	assert.ErrorAs(t, err, &ve)
	status, err := env.customers.CreditStatus(ctx, cid)
	require.NoError(t, err)
	assert.True(t, status.Balance.Equal(decimal.NewFromInt(100)))

	var nfe *NotFoundError
	_, err = env.customers.PostPayment(ctx, uuid.New(), dto.PostPaymentRequest{Amount: decimal.NewFromInt(10)})
	assert.ErrorAs(t, err, &nfe)
}

func TestCreditStatus_ReportsHeadroom(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-520", 100, 20)
	cid := env.seedCustomer(t, "Corner Cafe", 250)

	status, err := env.customers.CreditStatus(ctx, cid)
	require.NoError(t, err)
	assert.True(t, status.Balance.IsZero())
	assert.True(t, status.Available.Equal(decimal.NewFromInt(250)))
	assert.False(t, status.OverLimit)

	// The limit is informational: a sale may push the balance past it.
	_, err = env.sales.CreateSale(ctx, creditSaleReq(pid, 4, cid)) // 400 on account
	require.NoError(t, err)

	status, err = env.customers.CreditStatus(ctx, cid)
	require.NoError(t, err)
	assert.True(t, status.Balance.Equal(decimal.NewFromInt(400)))
	assert.True(t, status.Available.Equal(decimal.NewFromInt(-150)))
	assert.True(t, status.OverLimit)
}

func TestCreditSale_InactiveCustomerRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-530", 50, 20)
	cid := env.seedCustomer(t, "Closed Shop", 500)

	inactive := false
	_, err := env.customers.Update(ctx, cid, dto.UpdateCustomerRequest{Active: &inactive})
	require.NoError(t, err)

	_, err = env.sales.CreateSale(ctx, creditSaleReq(pid, 1, cid))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	// The rejected sale rolled back its stock decrement.
	assert.True(t, env.stockOf(t, pid).Equal(decimal.NewFromInt(20)))
	assert.Zero(t, env.saleCount(t))
}
