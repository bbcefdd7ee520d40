package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaderiapro/panaderiapro/internal/inventory"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type state struct {
	sales     map[int64]Sale
	details   map[int64][]SaleDetail
	expenses  []Expense
	stock     map[int64]int
	movements []inventory.MovementInput
}

func (s state) clone() state {
	c := state{
		sales:     make(map[int64]Sale, len(s.sales)),
		details:   make(map[int64][]SaleDetail, len(s.details)),
		expenses:  append([]Expense(nil), s.expenses...),
		stock:     make(map[int64]int, len(s.stock)),
		movements: append([]inventory.MovementInput(nil), s.movements...),
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.details {
		c.details[k] = append([]SaleDetail(nil), v...)
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	return c
}

type mockRepo struct {
	state
	nextID          int64
	insertSaleErrs  []error
	detailsErr      error
	readErr         error
	sumCalls        int
	insertSaleCalls int
	stockReads      int
}

func newMockRepo() *mockRepo {
	return &mockRepo{state: state{
		sales:   map[int64]Sale{},
		details: map[int64][]SaleDetail{},
		stock:   map[int64]int{1: 20, 2: 5},
	}}
}

func (m *mockRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := m.state.clone()
	if err := fn(ctx, m); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *mockRepo) InsertSale(ctx context.Context, sale Sale) (Sale, error) {
	m.insertSaleCalls++
	if len(m.insertSaleErrs) > 0 {
		err := m.insertSaleErrs[0]
		m.insertSaleErrs = m.insertSaleErrs[1:]
		if err != nil {
			return Sale{}, err
		}
	}
	m.nextID++
	sale.ID = m.nextID
	sale.CreatedAt = time.Now()
	m.sales[sale.ID] = sale
	return sale, nil
}

func (m *mockRepo) InsertDetails(ctx context.Context, saleID int64, details []SaleDetail) ([]SaleDetail, error) {
	if m.detailsErr != nil {
		return nil, m.detailsErr
	}
	out := make([]SaleDetail, len(details))
	for i, d := range details {
		m.nextID++
		d.ID = m.nextID
		d.SaleID = saleID
		out[i] = d
	}
	m.details[saleID] = append(m.details[saleID], out...)
	return out, nil
}

func (m *mockRepo) GetSale(ctx context.Context, id int64) (Sale, error) {
	s, ok := m.sales[id]
	if !ok {
		return Sale{}, shared.ErrNotFound
	}
	return s, nil
}

func (m *mockRepo) SaleDetails(ctx context.Context, saleID int64) ([]SaleDetail, error) {
	return m.details[saleID], nil
}

func (m *mockRepo) UpdateSaleStatus(ctx context.Context, id int64, status SaleStatus) (Sale, error) {
	s, ok := m.sales[id]
	if !ok {
		return Sale{}, shared.ErrNotFound
	}
	s.Status = status
	m.sales[id] = s
	return s, nil
}

func (m *mockRepo) DeleteSale(ctx context.Context, id int64) (Sale, error) {
	s, ok := m.sales[id]
	if !ok {
		return Sale{}, shared.ErrNotFound
	}
	delete(m.sales, id)
	delete(m.details, id)
	return s, nil
}

func (m *mockRepo) InsertExpense(ctx context.Context, e Expense) (Expense, error) {
	m.nextID++
	e.ID = m.nextID
	m.expenses = append(m.expenses, e)
	return e, nil
}

func (m *mockRepo) ApplyStock(ctx context.Context, in inventory.MovementInput) error {
	current, ok := m.stock[in.ProductID]
	if !ok {
		return shared.Validation("product_id", fmt.Sprintf("unknown product %d", in.ProductID))
	}
	if current+in.Quantity < 0 {
		return shared.Validation("quantity", fmt.Sprintf("insufficient stock for product %d", in.ProductID))
	}
	m.stock[in.ProductID] = current + in.Quantity
	m.movements = append(m.movements, in)
	return nil
}

func (m *mockRepo) StockLevels(ctx context.Context, productIDs []int64) (map[int64]int, error) {
	m.stockReads++
	if m.readErr != nil {
		return nil, m.readErr
	}
	out := map[int64]int{}
	for _, id := range productIDs {
		if v, ok := m.stock[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (m *mockRepo) LatestSales(ctx context.Context) ([]SaleSummary, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []SaleSummary
	for _, s := range m.sales {
		out = append(out, SaleSummary{ID: s.ID, SaleNumber: s.SaleNumber, Total: s.Total})
	}
	return out, nil
}

func (m *mockRepo) ListSales(ctx context.Context, filter SaleFilter) ([]SaleWithDetails, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []SaleWithDetails
	for _, s := range m.sales {
		s.Details = m.details[s.ID]
		out = append(out, SaleWithDetails{Sale: s})
	}
	return out, nil
}

func (m *mockRepo) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.expenses, nil
}

func (m *mockRepo) SumBalance(ctx context.Context) (Balance, error) {
	m.sumCalls++
	if m.readErr != nil {
		return Balance{}, m.readErr
	}
	sales := make([]Sale, 0, len(m.sales))
	for _, s := range m.sales {
		sales = append(sales, s)
	}
	return ComputeBalance(sales, m.expenses), nil
}

type countingRecorder struct {
	sales, partial, expenses int
}

func (c *countingRecorder) SaleCreated(bool)    { c.sales++ }
func (c *countingRecorder) PartialWrite(string) { c.partial++ }
func (c *countingRecorder) ExpenseAdded()       { c.expenses++ }

func newTestService(repo Repository, opts Options) (*Service, *countingRecorder) {
	rec := &countingRecorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, nil, rec, logger, opts)
	svc.now = func() time.Time { return time.Date(2024, 5, 17, 15, 4, 5, 0, time.UTC) }
	return svc, rec
}

func defaultOptions() Options {
	return Options{AtomicWrites: true, DecrementStock: true}
}

func ptr[T any](v T) *T { return &v }

// ============================================================================
// CREATE SALE
// ============================================================================

func TestCreateSaleScenarioA(t *testing.T) {
	repo := newMockRepo()
	svc, rec := newTestService(repo, defaultOptions())

	sale, err := svc.CreateSale(context.Background(), CreateSaleInput{
		CustomerID: ptr(int64(1)),
		Lines:      []LineItem{{ProductID: 1, Quantity: 2, UnitPrice: dec("5.00")}},
	})
	require.NoError(t, err)

	assert.True(t, sale.Total.Equal(dec("10.00")))
	assert.Equal(t, SaleStatusCompleted, sale.Status)
	assert.Equal(t, DefaultPaymentMethod, sale.PaymentMethod)
	assert.Regexp(t, `^SALE-\d+$`, sale.SaleNumber)
	assert.Nil(t, sale.Notes)

	details := repo.details[sale.ID]
	require.Len(t, details, 1)
	assert.True(t, details[0].Subtotal.Equal(dec("10.00")))
	assert.Equal(t, 1, rec.sales)
}

func TestCreateSaleScenarioB(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, defaultOptions())

	sale, err := svc.CreateSale(context.Background(), CreateSaleInput{
		IsFreeSale:      true,
		FreeAmount:      dec("25.50"),
		FreeDescription: ptr("  ajuste "),
		Lines:           []LineItem{{ProductID: 1, Quantity: 9, UnitPrice: dec("1")}},
	})
	require.NoError(t, err)

	assert.True(t, sale.Total.Equal(dec("25.50")))
	assert.Nil(t, sale.CustomerID)
	require.NotNil(t, sale.Notes)
	assert.Equal(t, "ajuste", *sale.Notes)
	assert.Empty(t, repo.details[sale.ID])
	assert.Equal(t, 20, repo.stock[1], "free sales never touch stock")
}

func TestCreateFreeSaleDefaultNote(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, defaultOptions())

	sale, err := svc.CreateSale(context.Background(), CreateSaleInput{IsFreeSale: true, FreeAmount: dec("3"), FreeDescription: ptr("   ")})
	require.NoError(t, err)
	require.NotNil(t, sale.Notes)
	assert.Equal(t, FreeSaleNote, *sale.Notes)
}

func TestCreateSaleScenarioC(t *testing.T) {
	for _, amount := range []string{"0", "-1"} {
		repo := newMockRepo()
		svc, _ := newTestService(repo, defaultOptions())

		_, err := svc.CreateSale(context.Background(), CreateSaleInput{IsFreeSale: true, FreeAmount: dec(amount)})
		require.ErrorIs(t, err, shared.ErrValidation)
		assert.Empty(t, repo.sales)
		assert.Zero(t, repo.insertSaleCalls)
	}
}

func TestCreateSaleRejectsSubCentAmounts(t *testing.T) {
	cases := []struct {
		name  string
		in    CreateSaleInput
		field string
	}{
		{"free amount rounds to zero", CreateSaleInput{IsFreeSale: true, FreeAmount: dec("0.004")}, "free_amount"},
		{"free amount overflows", CreateSaleInput{IsFreeSale: true, FreeAmount: dec("10000000000")}, "free_amount"},
		{"unit price below a cent", CreateSaleInput{Lines: []LineItem{{ProductID: 1, Quantity: 3, UnitPrice: dec("0.335")}}}, "lines[0].unit_price"},
		{"subtotal overflows", CreateSaleInput{Lines: []LineItem{{ProductID: 1, Quantity: 2, UnitPrice: dec("9999999999.99")}}}, "lines[0].subtotal"},
		{"total overflows", CreateSaleInput{Lines: []LineItem{
			{ProductID: 1, Quantity: 1, UnitPrice: dec("6000000000")},
			{ProductID: 2, Quantity: 1, UnitPrice: dec("6000000000")},
		}}, "total"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockRepo()
			svc, _ := newTestService(repo, defaultOptions())

			_, err := svc.CreateSale(context.Background(), tc.in)
			require.ErrorIs(t, err, shared.ErrValidation)
			assert.NotErrorIs(t, err, shared.ErrPersistence)
			var ve *shared.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
			assert.Zero(t, repo.insertSaleCalls)
		})
	}
}

func TestCreateSaleAcceptsCentPrecision(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, defaultOptions())

	sale, err := svc.CreateSale(context.Background(), CreateSaleInput{Lines: []LineItem{{ProductID: 1, Quantity: 3, UnitPrice: dec("0.34")}}})
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(dec("1.02")))
	require.Len(t, sale.Details, 1)
	assert.True(t, sale.Details[0].Subtotal.Equal(sale.Details[0].UnitPrice.Mul(decimal.NewFromInt(3))))
}

func TestCreateSaleRejectsInvalidLines(t *testing.T) {
	cases := map[string][]LineItem{
		"no lines":        nil,
		"zero quantity":   {{ProductID: 1, Quantity: 0, UnitPrice: dec("1")}},
		"negative price":  {{ProductID: 1, Quantity: 1, UnitPrice: dec("-1")}},
		"missing product": {{ProductID: 0, Quantity: 1, UnitPrice: dec("1")}},
	}
	for name, lines := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newMockRepo()
			svc, _ := newTestService(repo, defaultOptions())
			_, err := svc.CreateSale(context.Background(), CreateSaleInput{Lines: lines})
			require.ErrorIs(t, err, shared.ErrValidation)
			assert.Empty(t, repo.sales)
		})
	}
}

func TestCreateSaleTotalMatchesDetails(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, defaultOptions())

	lines := []LineItem{
		{ProductID: 1, Quantity: 3, UnitPrice: dec("0.10")},
		{ProductID: 2, Quantity: 2, UnitPrice: dec("1.35")},
		{ProductID: 1, Quantity: 1, UnitPrice: dec("0")},
	}
	sale, err := svc.CreateSale(context.Background(), CreateSaleInput{CustomerID: ptr(int64(4)), Lines: lines})
	require.NoError(t, err)

	sum := decimal.Zero
	for _, d := range repo.details[sale.ID] {
		assert.True(t, d.Subtotal.Equal(d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity)))))
		sum = sum.Add(d.Subtotal)
	}
	assert.True(t, sale.Total.Equal(sum))
	assert.True(t, sale.Total.Equal(dec("3.00")))
}

func TestCreateSaleDecrementsStock(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, defaultOptions())

	sale, err := svc.CreateSale(context.Background(), CreateSaleInput{Lines: []LineItem{{ProductID: 2, Quantity: 3, UnitPrice: dec("2")}}})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.stock[2])
	require.Len(t, repo.movements, 1)
	assert.Equal(t, inventory.MovementSale, repo.movements[0].Type)
	assert.Equal(t, -3, repo.movements[0].Quantity)
	assert.Equal(t, sale.SaleNumber, *repo.movements[0].Notes)
}

func TestCreateSaleInsufficientStockRollsBack(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, defaultOptions())

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{Lines: []LineItem{
		{ProductID: 1, Quantity: 1, UnitPrice: dec("2")},
		{ProductID: 2, Quantity: 6, UnitPrice: dec("2")},
	}})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Contains(t, err.Error(), "insufficient stock")
	assert.Empty(t, repo.sales)
	assert.Equal(t, 20, repo.stock[1])
	assert.Empty(t, repo.movements)
}

func TestCreateSaleWithoutStockDecrement(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, Options{AtomicWrites: true})

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{Lines: []LineItem{{ProductID: 2, Quantity: 50, UnitPrice: dec("1")}}})
	require.NoError(t, err)
	assert.Equal(t, 5, repo.stock[2])
	assert.Empty(t, repo.movements)
}

func TestCreateSaleAtomicDetailFailureLeavesNoSale(t *testing.T) {
	repo := newMockRepo()
	repo.detailsErr = errors.New("connection reset")
	svc, rec := newTestService(repo, defaultOptions())

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{Lines: []LineItem{{ProductID: 1, Quantity: 1, UnitPrice: dec("1")}}})
	require.ErrorIs(t, err, shared.ErrPersistence)
	assert.NotErrorIs(t, err, shared.ErrPartialWrite)
	assert.Empty(t, repo.sales)
	assert.Zero(t, rec.partial)
}

func TestCreateSaleSequentialDetailFailureIsPartialWrite(t *testing.T) {
	repo := newMockRepo()
	repo.detailsErr = errors.New("connection reset")
	svc, rec := newTestService(repo, Options{AtomicWrites: false, DecrementStock: true})

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{Lines: []LineItem{{ProductID: 1, Quantity: 1, UnitPrice: dec("1")}}})
	require.ErrorIs(t, err, shared.ErrPartialWrite)

	var pw *shared.PartialWriteError
	require.ErrorAs(t, err, &pw)
	assert.Contains(t, repo.sales, pw.ParentID)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", pw.ReconciliationID.String())
	assert.Equal(t, 1, rec.partial)
	assert.Zero(t, rec.sales)
}

func TestCreateSaleSequentialChecksStockBeforeWriting(t *testing.T) {
	repo := newMockRepo()
	svc, rec := newTestService(repo, Options{AtomicWrites: false, DecrementStock: true})

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{Lines: []LineItem{
		{ProductID: 2, Quantity: 3, UnitPrice: dec("1")},
		{ProductID: 2, Quantity: 3, UnitPrice: dec("1")},
	}})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.NotErrorIs(t, err, shared.ErrPartialWrite)
	assert.Contains(t, err.Error(), "insufficient stock for product 2")
	assert.Zero(t, repo.insertSaleCalls)
	assert.Empty(t, repo.sales)
	assert.Equal(t, 5, repo.stock[2])
	assert.Zero(t, rec.partial)

	_, err = svc.CreateSale(context.Background(), CreateSaleInput{Lines: []LineItem{{ProductID: 99, Quantity: 1, UnitPrice: dec("1")}}})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Contains(t, err.Error(), "unknown product 99")
	assert.Zero(t, repo.insertSaleCalls)
}

func TestCreateSaleAtomicSkipsStockPreRead(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, defaultOptions())

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{Lines: []LineItem{{ProductID: 1, Quantity: 1, UnitPrice: dec("1")}}})
	require.NoError(t, err)
	assert.Zero(t, repo.stockReads)
}

func TestCreateSaleSequentialSuccess(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, Options{AtomicWrites: false})

	sale, err := svc.CreateSale(context.Background(), CreateSaleInput{Lines: []LineItem{{ProductID: 1, Quantity: 2, UnitPrice: dec("5")}}})
	require.NoError(t, err)
	assert.Len(t, sale.Details, 1)
	assert.Len(t, repo.details[sale.ID], 1)
}

func TestCreateSaleRetriesSaleNumberCollision(t *testing.T) {
	repo := newMockRepo()
	dup := &pgconn.PgError{Code: "23505", ConstraintName: saleNumberConstraint}
	repo.insertSaleErrs = []error{dup, dup}
	svc, _ := newTestService(repo, defaultOptions())

	sale, err := svc.CreateSale(context.Background(), CreateSaleInput{IsFreeSale: true, FreeAmount: dec("1")})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.insertSaleCalls)
	assert.NotZero(t, sale.ID)
}

func TestCreateSaleGivesUpAfterThreeCollisions(t *testing.T) {
	repo := newMockRepo()
	dup := &pgconn.PgError{Code: "23505", ConstraintName: saleNumberConstraint}
	repo.insertSaleErrs = []error{dup, dup, dup, nil}
	svc, _ := newTestService(repo, defaultOptions())

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{IsFreeSale: true, FreeAmount: dec("1")})
	require.ErrorIs(t, err, shared.ErrPersistence)
	assert.Equal(t, saleNumberAttempts, repo.insertSaleCalls)
}

// ============================================================================
// EXPENSES AND BALANCE
// ============================================================================

func TestAddExpenseScenarioD(t *testing.T) {
	repo := newMockRepo()
	svc, rec := newTestService(repo, defaultOptions())
	ctx := context.Background()

	expense, err := svc.AddExpense(ctx, AddExpenseInput{Amount: dec("12.75"), Category: ptr("Insumos")})
	require.NoError(t, err)
	assert.Equal(t, "Insumos", *expense.Category)
	assert.Equal(t, time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC), expense.ExpenseDate)
	assert.Equal(t, 1, rec.expenses)

	b := ComputeBalance([]Sale{{Total: dec("10")}}, repo.expenses)
	assert.True(t, b.Total.Equal(dec("-2.75")))
}

func TestAddExpenseRejectsNonPositive(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, defaultOptions())

	for _, amount := range []string{"0", "-3", "0.001", "12.755", "10000000000"} {
		_, err := svc.AddExpense(context.Background(), AddExpenseInput{Amount: dec(amount)})
		require.ErrorIs(t, err, shared.ErrValidation)
	}
	assert.Empty(t, repo.expenses)
}

func TestCurrentBalanceWithoutCache(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, defaultOptions())
	ctx := context.Background()

	_, err := svc.CreateSale(ctx, CreateSaleInput{IsFreeSale: true, FreeAmount: dec("40")})
	require.NoError(t, err)
	_, err = svc.AddExpense(ctx, AddExpenseInput{Amount: dec("15.5")})
	require.NoError(t, err)

	b, err := svc.CurrentBalance(ctx)
	require.NoError(t, err)
	assert.True(t, b.Total.Equal(dec("24.5")))
}

func TestCurrentBalanceStoreFailure(t *testing.T) {
	repo := newMockRepo()
	repo.readErr = errors.New("timeout")
	svc, _ := newTestService(repo, defaultOptions())

	_, err := svc.CurrentBalance(context.Background())
	require.ErrorIs(t, err, shared.ErrPersistence)
}

// ============================================================================
// READS
// ============================================================================

func TestListRecentSalesDegrades(t *testing.T) {
	repo := newMockRepo()
	repo.readErr = errors.New("relation latest_sales does not exist")
	svc, _ := newTestService(repo, defaultOptions())

	out, err := svc.ListRecentSales(context.Background())
	require.ErrorIs(t, err, shared.ErrPersistence)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestListSalesRejectsInvertedRange(t *testing.T) {
	svc, _ := newTestService(newMockRepo(), defaultOptions())
	from := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	_, err := svc.ListSales(context.Background(), SaleFilter{From: &from, To: &to})
	require.ErrorIs(t, err, shared.ErrValidation)
}

// ============================================================================
// STATUS, VOID, RETRY
// ============================================================================

func TestUpdateSaleStatus(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, defaultOptions())
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, CreateSaleInput{IsFreeSale: true, FreeAmount: dec("1")})
	require.NoError(t, err)

	updated, err := svc.UpdateSaleStatus(ctx, sale.ID, SaleStatusPending)
	require.NoError(t, err)
	assert.Equal(t, SaleStatusPending, updated.Status)

	_, err = svc.UpdateSaleStatus(ctx, sale.ID, "refunded")
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.UpdateSaleStatus(ctx, 999, SaleStatusCancelled)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestVoidSaleRemovesDetailsAndRestoresStock(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, defaultOptions())
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, CreateSaleInput{Lines: []LineItem{{ProductID: 1, Quantity: 4, UnitPrice: dec("1.5")}}})
	require.NoError(t, err)
	require.Equal(t, 16, repo.stock[1])

	voided, err := svc.VoidSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.SaleNumber, voided.SaleNumber)
	assert.NotContains(t, repo.sales, sale.ID)
	assert.Empty(t, repo.details[sale.ID])
	assert.Equal(t, 20, repo.stock[1])
	last := repo.movements[len(repo.movements)-1]
	assert.Equal(t, inventory.MovementReturn, last.Type)
	assert.Equal(t, 4, last.Quantity)

	_, err = svc.VoidSale(ctx, sale.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRetrySaleDetailsAfterPartialWrite(t *testing.T) {
	repo := newMockRepo()
	repo.detailsErr = errors.New("connection reset")
	svc, _ := newTestService(repo, Options{AtomicWrites: false, DecrementStock: true})
	ctx := context.Background()
	lines := []LineItem{{ProductID: 1, Quantity: 2, UnitPrice: dec("5")}}

	_, err := svc.CreateSale(ctx, CreateSaleInput{Lines: lines})
	var pw *shared.PartialWriteError
	require.ErrorAs(t, err, &pw)

	repo.detailsErr = nil
	result, err := svc.RetrySaleDetails(ctx, pw.ParentID, lines)
	require.NoError(t, err)
	assert.True(t, result.Inserted)
	assert.Len(t, repo.details[pw.ParentID], 1)
	assert.Equal(t, 18, repo.stock[1])

	again, err := svc.RetrySaleDetails(ctx, pw.ParentID, lines)
	require.NoError(t, err)
	assert.False(t, again.Inserted)
	assert.Len(t, repo.details[pw.ParentID], 1, "retry is idempotent")
	assert.Equal(t, 18, repo.stock[1])
}

func TestRetrySaleDetailsRejectsMismatchedTotal(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, defaultOptions())
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, CreateSaleInput{IsFreeSale: true, FreeAmount: dec("10")})
	require.NoError(t, err)

	_, err = svc.RetrySaleDetails(ctx, sale.ID, []LineItem{{ProductID: 1, Quantity: 3, UnitPrice: dec("3")}})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Empty(t, repo.details[sale.ID])

	_, err = svc.RetrySaleDetails(ctx, 12345, []LineItem{{ProductID: 1, Quantity: 1, UnitPrice: dec("1")}})
	require.ErrorIs(t, err, shared.ErrNotFound)
}
