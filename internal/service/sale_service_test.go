package service

import (
	"context"
	"testing"

	"tillpoint/internal/cache"
	"tillpoint/internal/dto"
	"tillpoint/internal/model"
	"tillpoint/internal/repository"
	"tillpoint/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "9e7c61e5-0253-4bd7-8a85-65e42fbc0b79"

type testEnv struct {
	repos     repository.Repos
	ledger    LedgerService
	credit    CreditService
	sales     SaleService
	products  ProductService
	inventory InventoryService
	customers CustomerService
}

func newTestEnv() *testEnv {
	repos := memory.New(memory.NewStore())
	ledger := NewLedgerService()
	credit := NewCreditService()
	prices := cache.NoopPriceCache{}
	return &testEnv{
		repos:     repos,
		ledger:    ledger,
		credit:    credit,
		sales:     NewSaleService(repos, ledger, credit, nil),
		products:  NewProductService(repos, ledger, prices),
		inventory: NewInventoryService(repos, ledger, prices),
		customers: NewCustomerService(repos, credit),
	}
}

func (e *testEnv) seedTracked(t *testing.T, code string, price, stock int64) uuid.UUID {
	t.Helper()
	resp, err := e.products.Create(context.Background(), dto.CreateProductRequest{
		Code:         code,
		Description:  "Product " + code,
		SellPrice:    decimal.NewFromInt(price),
		InitialStock: decimal.NewFromInt(stock),
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func (e *testEnv) seedCustomer(t *testing.T, name string, limit int64) uuid.UUID {
	t.Helper()
	resp, err := e.customers.Create(context.Background(), dto.CreateCustomerRequest{
		Name:        name,
		CreditLimit: decimal.NewFromInt(limit),
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func (e *testEnv) stockOf(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	p, err := e.repos.Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.QuantityInStock
}

func (e *testEnv) saleCount(t *testing.T) int64 {
	t.Helper()
	list, err := e.sales.ListSales(context.Background(), dto.SaleFilter{})
	require.NoError(t, err)
	return list.Total
}

func item(productID uuid.UUID, qty int64, price *decimal.Decimal) dto.SaleItemRequest {
	return dto.SaleItemRequest{
		ProductID: productID.String(),
		Quantity:  decimal.NewFromInt(qty),
		UnitPrice: price,
	}
}

func saleReq(items ...dto.SaleItemRequest) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		Items:       items,
		UserID:      testUser,
		PaymentType: model.PaymentCash,
	}
}

func TestCreateSale_SequentialSalesObserveEachOther(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-100", 25, 10)

	var saleIDs []string
	for i := 0; i < 3; i++ {
		resp, err := env.sales.CreateSale(ctx, saleReq(item(pid, 2, nil)))
		require.NoError(t, err)
		saleIDs = append(saleIDs, resp.ID)
	}
	assert.True(t, env.stockOf(t, pid).Equal(decimal.NewFromInt(4)))

	// The 4 remaining units cannot cover a sale of 5.
	_, err := env.sales.CreateSale(ctx, saleReq(item(pid, 5, nil)))
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "P-100", ise.ProductCode)
	assert.True(t, env.stockOf(t, pid).Equal(decimal.NewFromInt(4)))

	// One SALE movement of -2 per sale, each referencing its sale.
	movs, total, err := env.repos.Inventory.List(ctx, repository.MovementFilter{Kind: model.MovementSale})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	seen := make(map[string]bool)
	for _, m := range movs {
		assert.True(t, m.Quantity.Equal(decimal.NewFromInt(-2)))
		require.NotNil(t, m.RelatedID)
		seen[m.RelatedID.String()] = true
	}
	for _, id := range saleIDs {
		assert.True(t, seen[id], "missing movement for sale %s", id)
	}
}

func TestCreateSale_InsufficientStockLeavesNoTrace(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-200", 10, 3)

	_, err := env.sales.CreateSale(ctx, saleReq(item(pid, 5, nil)))
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.True(t, ise.Requested.Equal(decimal.NewFromInt(5)))
	assert.True(t, ise.Available.Equal(decimal.NewFromInt(3)))

	assert.True(t, env.stockOf(t, pid).Equal(decimal.NewFromInt(3)))
	assert.Zero(t, env.saleCount(t))

	_, saleMovs, err := env.repos.Inventory.List(ctx, repository.MovementFilter{Kind: model.MovementSale})
	require.NoError(t, err)
	assert.Zero(t, saleMovs)
}

func TestCreateSale_FailureOnLaterItemRollsBackEarlierOnes(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.seedTracked(t, "P-300", 10, 10)
	b := env.seedTracked(t, "P-301", 10, 1)

	// Item 1 decrements fine; item 2 oversells. Everything must unwind.
	_, err := env.sales.CreateSale(ctx, saleReq(item(a, 4, nil), item(b, 2, nil)))
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "P-301", ise.ProductCode)

	assert.True(t, env.stockOf(t, a).Equal(decimal.NewFromInt(10)))
	assert.True(t, env.stockOf(t, b).Equal(decimal.NewFromInt(1)))
	assert.Zero(t, env.saleCount(t))

	_, saleMovs, err := env.repos.Inventory.List(ctx, repository.MovementFilter{Kind: model.MovementSale})
	require.NoError(t, err)
	assert.Zero(t, saleMovs)
}

func TestCreateSale_TotalsAndPriceOverride(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.seedTracked(t, "P-400", 100, 10)
	b := env.seedTracked(t, "P-401", 50, 10)

	override := decimal.NewFromInt(75)
	resp, err := env.sales.CreateSale(ctx, saleReq(item(a, 2, &override), item(b, 4, nil)))
	require.NoError(t, err)

	// 2x75 + 4x50 = 350; the explicit price wins over the catalog 100.
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(350)))
	assert.Equal(t, 1, resp.Folio)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "P-400", resp.Items[0].ProductCode)
	assert.True(t, resp.Items[0].UnitPrice.Equal(override))
	assert.True(t, resp.Items[1].UnitPrice.Equal(decimal.NewFromInt(50)))

	// The item snapshot survives later catalog changes.
	newPrice := decimal.NewFromInt(999)
	_, err = env.products.Update(ctx, a, dto.UpdateProductRequest{SellPrice: &newPrice})
	require.NoError(t, err)

	got, err := env.sales.GetSale(ctx, uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.True(t, got.Items[0].UnitPrice.Equal(override))
	assert.Equal(t, "Product P-400", got.Items[0].ProductDescription)
}

func TestCreateSale_CreditSalePostsCustomerBalance(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-500", 150, 5)
	cid := env.seedCustomer(t, "Ana Torres", 500)
	cidStr := cid.String()

	resp, err := env.sales.CreateSale(ctx, dto.CreateSaleRequest{
		Items:        []dto.SaleItemRequest{item(pid, 1, nil)},
		CustomerID:   &cidStr,
		UserID:       testUser,
		PaymentType:  model.PaymentCredit,
		IsCreditSale: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.IsCreditSale)

	c, err := env.repos.Customers.GetByID(ctx, cid)
	require.NoError(t, err)
	assert.True(t, c.CreditBalance.Equal(decimal.NewFromInt(150)))

	// A cash sale for the same customer leaves the balance alone.
	_, err = env.sales.CreateSale(ctx, dto.CreateSaleRequest{
		Items:       []dto.SaleItemRequest{item(pid, 1, nil)},
		CustomerID:  &cidStr,
		UserID:      testUser,
		PaymentType: model.PaymentCash,
	})
	require.NoError(t, err)

	c, err = env.repos.Customers.GetByID(ctx, cid)
	require.NoError(t, err)
	assert.True(t, c.CreditBalance.Equal(decimal.NewFromInt(150)))
}

func TestCreateSale_CreditFailureRollsBackStock(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-510", 80, 5)

	// Unknown customer id passes fail-fast validation but dies inside the
	// scope when the credit post resolves it.
	ghost := uuid.New().String()
	_, err := env.sales.CreateSale(ctx, dto.CreateSaleRequest{
		Items:        []dto.SaleItemRequest{item(pid, 2, nil)},
		CustomerID:   &ghost,
		UserID:       testUser,
		PaymentType:  model.PaymentCredit,
		IsCreditSale: true,
	})
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "customer", nfe.Entity)

	assert.True(t, env.stockOf(t, pid).Equal(decimal.NewFromInt(5)))
	assert.Zero(t, env.saleCount(t))
}

func TestCreateSale_Validation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-600", 10, 5)

	badPayment := saleReq(item(pid, 1, nil))
	badPayment.PaymentType = "cheque"

	creditNoCustomer := saleReq(item(pid, 1, nil))
	creditNoCustomer.IsCreditSale = true

	cases := []struct {
		name string
		req  dto.CreateSaleRequest
	}{
		{"empty items", saleReq()},
		{"zero quantity", saleReq(item(pid, 0, nil))},
		{"negative quantity", saleReq(item(pid, -1, nil))},
		{"unknown payment type", badPayment},
		{"credit sale without customer", creditNoCustomer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.sales.CreateSale(ctx, tc.req)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}

	assert.Zero(t, env.saleCount(t))
	assert.True(t, env.stockOf(t, pid).Equal(decimal.NewFromInt(5)))
}

func TestCreateSale_UnknownOrInactiveProduct(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-700", 10, 5)
	require.NoError(t, env.products.SetActive(ctx, pid, false))

	var nfe *NotFoundError
	_, err := env.sales.CreateSale(ctx, saleReq(item(pid, 1, nil)))
	require.ErrorAs(t, err, &nfe)

	_, err = env.sales.CreateSale(ctx, saleReq(item(uuid.New(), 1, nil)))
	require.ErrorAs(t, err, &nfe)

	assert.True(t, env.stockOf(t, pid).Equal(decimal.NewFromInt(5)))
	assert.Zero(t, env.saleCount(t))
}

func TestCreateSale_NonTrackingProductSkipsLedger(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tracks := false
	resp, err := env.products.Create(ctx, dto.CreateProductRequest{
		Code:            "SVC-1",
		Description:     "Delivery fee",
		SellPrice:       decimal.NewFromInt(30),
		TracksInventory: &tracks,
	})
	require.NoError(t, err)
	pid := uuid.MustParse(resp.ID)

	sale, err := env.sales.CreateSale(ctx, saleReq(item(pid, 3, nil)))
	require.NoError(t, err)
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(90)))

	// No movements at all and stock stays where it was.
	_, total, err := env.repos.Inventory.List(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.True(t, env.stockOf(t, pid).IsZero())
}

func TestListSales_Filters(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-800", 20, 20)
	cid := env.seedCustomer(t, "Luis Vega", 0)
	cidStr := cid.String()

	_, err := env.sales.CreateSale(ctx, saleReq(item(pid, 1, nil)))
	require.NoError(t, err)
	_, err = env.sales.CreateSale(ctx, dto.CreateSaleRequest{
		Items:        []dto.SaleItemRequest{item(pid, 2, nil)},
		CustomerID:   &cidStr,
		UserID:       testUser,
		PaymentType:  model.PaymentCredit,
		IsCreditSale: true,
	})
	require.NoError(t, err)

	all, err := env.sales.ListSales(ctx, dto.SaleFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	credit, err := env.sales.ListSales(ctx, dto.SaleFilter{CreditOnly: true})
	require.NoError(t, err)
	require.EqualValues(t, 1, credit.Total)
	assert.Equal(t, model.PaymentCredit, credit.Data[0].PaymentType)

	byCustomer, err := env.sales.ListSales(ctx, dto.SaleFilter{CustomerID: cidStr})
	require.NoError(t, err)
	assert.EqualValues(t, 1, byCustomer.Total)
}

func TestSearchSales_PredicateOverWire(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	pid := env.seedTracked(t, "P-900", 100, 20)

	for i := 0; i < 3; i++ {
		_, err := env.sales.CreateSale(ctx, saleReq(item(pid, int64(i+1), nil)))
		require.NoError(t, err)
	}

	// total_amount >= 200 matches the 2- and 3-unit sales.
	where := []byte(`{"field":"total_amount","op":"gte","value":200}`)
	found, err := env.sales.SearchSales(ctx, dto.SearchRequest{Where: where})
	require.NoError(t, err)
	assert.EqualValues(t, 2, found.Total)

	// Unknown fields are rejected, not silently ignored.
	_, err = env.sales.SearchSales(ctx, dto.SearchRequest{
		Where: []byte(`{"field":"secret_column","op":"eq","value":1}`),
	})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
