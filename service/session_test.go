package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/bulk"
	inventorymsgpack "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/msgpack"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/tabular"
)

// ── In-memory Store stub ─────────────────────────────────────────────────────

type memStore struct {
	doc     *inventory.Document
	saves   int
	saveErr error
}

func (m *memStore) Load(_ context.Context) (*inventory.Document, error) {
	if m.doc == nil {
		return nil, inventory.ErrNoState
	}
	return m.doc, nil
}

func (m *memStore) Save(_ context.Context, doc *inventory.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.doc = doc
	return nil
}

var day = time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func openSession(t *testing.T, store inventory.Store) *Session {
	t.Helper()
	s, err := Open(context.Background(), store, inventory.DefaultSettings(),
		WithLogger(quietLogger()), WithClock(func() time.Time { return day }))
	require.NoError(t, err)
	return s
}

func seed(t *testing.T, s *Session) {
	t.Helper()
	ctx := context.Background()
	_, err := s.AddChemical(ctx, "Copper Sulphate", 5, decimal.NewFromInt(500))
	require.NoError(t, err)
	_, err = s.AddChemical(ctx, "Citric Acid", 50, decimal.NewFromInt(200))
	require.NoError(t, err)
	_, err = s.AddPackaging(ctx, "bottle", "", 1000, decimal.NewFromInt(20))
	require.NoError(t, err)
	_, err = s.AddPackaging(ctx, "carton", "", 100, decimal.NewFromInt(60))
	require.NoError(t, err)
}

func TestOpenEmptyStoreUsesDefaults(t *testing.T) {
	store := &memStore{}
	s := openSession(t, store)
	assert.Equal(t, inventory.DefaultSettings(), s.Settings())
	assert.Empty(t, s.Chemicals())
	assert.Equal(t, 0, store.saves)
}

func TestOpenPropagatesLoadFailure(t *testing.T) {
	_, err := Open(context.Background(), failingLoadStore{}, inventory.DefaultSettings(), WithLogger(quietLogger()))
	var pe *inventory.PersistenceError
	assert.ErrorAs(t, err, &pe)
}

type failingLoadStore struct{}

func (failingLoadStore) Load(context.Context) (*inventory.Document, error) {
	return nil, &inventory.PersistenceError{Op: "load", Err: errors.New("corrupt")}
}

func (failingLoadStore) Save(context.Context, *inventory.Document) error { return nil }

func TestEveryMutationSaves(t *testing.T) {
	store := &memStore{}
	s := openSession(t, store)
	seed(t, s)
	assert.Equal(t, 4, store.saves)
	require.Len(t, store.doc.Chemicals, 2)
}

func TestPreviewDoesNotMutate(t *testing.T) {
	s := openSession(t, &memStore{})
	seed(t, s)
	before := s.Chemicals()

	calc, err := s.Preview(ProductionRequest{Product: "pool algaecide", BatchSize: 300})
	require.NoError(t, err)
	assert.Equal(t, 13.0, calc.Requirements[0].ToPurchaseKg)
	assert.Equal(t, before, s.Chemicals())
}

func TestPreviewDefaultsBatchSize(t *testing.T) {
	s := openSession(t, &memStore{})
	seed(t, s)
	calc, err := s.Preview(ProductionRequest{Product: "Pool Algaecide"})
	require.NoError(t, err)
	assert.Equal(t, 500, calc.BatchSize)

	_, err = s.Preview(ProductionRequest{Product: "Pool Algaecide", BatchSize: -1})
	var ve *inventory.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestPreviewUnknownProduct(t *testing.T) {
	s := openSession(t, &memStore{})
	_, err := s.Preview(ProductionRequest{Product: "Rocket Fuel", BatchSize: 10})
	var nf *inventory.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "formula", nf.Kind)
}

func TestCommitDeductsAndRecords(t *testing.T) {
	store := &memStore{}
	s := openSession(t, store)
	seed(t, s)

	report, err := s.Commit(context.Background(), ProductionRequest{Product: "Pool Algaecide", BatchSize: 13})
	require.NoError(t, err)
	assert.True(t, report.Complete())
	assert.Equal(t, 13.0, report.PackagingRequired)
	assert.Equal(t, 2.0, report.CartonsRequired)

	bottles, _ := findPackaging(s.PackagingMaterials(), "bottle")
	cartons, _ := findPackaging(s.PackagingMaterials(), "carton")
	assert.Equal(t, 987.0, bottles.Stock)
	assert.Equal(t, 98.0, cartons.Stock)

	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, inventory.ProductionStatusCompleted, history[0].Status)
	assert.True(t, history[0].Date.Equal(day))
	require.Len(t, store.doc.History, 1)
}

func TestCommitMissingChemicalLeavesStockUntouched(t *testing.T) {
	store := &memStore{}
	s := openSession(t, store)
	_, err := s.AddChemical(context.Background(), "Citric Acid", 50, decimal.NewFromInt(200))
	require.NoError(t, err)
	saves := store.saves

	_, err = s.Commit(context.Background(), ProductionRequest{Product: "Pool Algaecide", BatchSize: 300})
	var missing *inventory.MissingChemicalError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"Copper Sulphate"}, missing.Names)

	c := s.Chemicals()
	assert.Equal(t, 50.0, c[0].Stock)
	assert.Empty(t, s.History())
	assert.Equal(t, saves, store.saves)
}

func TestCommitCanPackaging(t *testing.T) {
	s := openSession(t, &memStore{})
	seed(t, s)
	ctx := context.Background()
	require.NoError(t, s.SetProductDetails(ctx, inventory.ProductDetails{ProductName: "Pool Algaecide", ContainerType: "can", ContainerSize: 25}))

	calc, err := s.Preview(ProductionRequest{Product: "Pool Algaecide", BatchSize: 1000})
	require.NoError(t, err)
	assert.True(t, calc.Cost.HandlingFee.Equal(decimal.NewFromInt(100)))

	report, err := s.Commit(ctx, ProductionRequest{Product: "Pool Algaecide", BatchSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 40.0, report.PackagingRequired)
	assert.Equal(t, []string{"packaging:can"}, report.Unmet)
}

func TestChemicalPurchaseReceivesStock(t *testing.T) {
	s := openSession(t, &memStore{})
	seed(t, s)
	ctx := context.Background()

	tx, err := s.RecordTransaction(ctx, inventory.TransactionInput{
		VendorName: "Acme", VendorType: "chemical", ItemName: "copper sulphate",
		Quantity: 20, Rate: decimal.NewFromInt(550),
	})
	require.NoError(t, err)
	assert.True(t, tx.Date.Equal(day))
	assert.True(t, tx.TotalAmount.Equal(decimal.NewFromInt(11000)))

	c := s.Chemicals()[0]
	assert.Equal(t, 25.0, c.Stock)
	assert.True(t, c.Rate.Equal(decimal.NewFromInt(550)))
}

func TestPurchaseOfUnknownChemicalCreatesIt(t *testing.T) {
	s := openSession(t, &memStore{})
	_, err := s.RecordTransaction(context.Background(), inventory.TransactionInput{
		Date: day, VendorName: "Acme", VendorType: "chemical", ItemName: "Glycerin",
		Quantity: 8, Rate: decimal.NewFromInt(90),
	})
	require.NoError(t, err)
	chems := s.Chemicals()
	require.Len(t, chems, 1)
	assert.Equal(t, "Glycerin", chems[0].Name)
	assert.Equal(t, 8.0, chems[0].Stock)
}

func TestPackagingPurchaseCreatesEntry(t *testing.T) {
	s := openSession(t, &memStore{})
	_, err := s.RecordTransaction(context.Background(), inventory.TransactionInput{
		Date: day, VendorName: "CanCo", VendorType: "can", ItemName: "25L can",
		Quantity: 40, Rate: decimal.NewFromInt(300),
	})
	require.NoError(t, err)
	cans, ok := findPackaging(s.PackagingMaterials(), "can")
	require.True(t, ok)
	assert.Equal(t, "Cans", cans.Name)
	assert.Equal(t, 40.0, cans.Stock)
	assert.True(t, cans.Rate.Equal(decimal.NewFromInt(300)))
}

func TestShipperPurchaseOnlyTouchesLedger(t *testing.T) {
	s := openSession(t, &memStore{})
	_, err := s.RecordTransaction(context.Background(), inventory.TransactionInput{
		Date: day, VendorName: "FastFreight", VendorType: "shipper", ItemName: "delivery",
		Quantity: 1, Rate: decimal.NewFromInt(2500),
	})
	require.NoError(t, err)
	assert.Empty(t, s.Chemicals())
	assert.Empty(t, s.PackagingMaterials())
	assert.True(t, s.Balance("FastFreight").Equal(decimal.NewFromInt(2500)))
}

func TestBalanceAfterEditAndPayment(t *testing.T) {
	s := openSession(t, &memStore{})
	ctx := context.Background()
	in := inventory.TransactionInput{Date: day, VendorName: "Acme", VendorType: "other", ItemName: "labels",
		Quantity: 10, Rate: decimal.NewFromInt(100)}
	tx, err := s.RecordTransaction(ctx, in)
	require.NoError(t, err)
	_, err = s.RecordPayment(ctx, inventory.PaymentInput{Date: day, VendorName: "Acme", Amount: decimal.NewFromInt(400)})
	require.NoError(t, err)
	assert.True(t, s.Balance("Acme").Equal(decimal.NewFromInt(600)))

	in.Quantity = 20
	_, err = s.EditTransaction(ctx, tx.ID, in)
	require.NoError(t, err)
	assert.True(t, s.Balance("Acme").Equal(decimal.NewFromInt(1600)))

	_, err = s.RecordPayment(ctx, inventory.PaymentInput{Date: day, VendorName: "Acme", Amount: decimal.NewFromInt(2000)})
	require.NoError(t, err)
	assert.True(t, s.Balance("Acme").Equal(decimal.NewFromInt(-400)))

	err = s.DeletePayment(ctx, 99)
	var nf *inventory.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestFailedSaveKeepsMemoryState(t *testing.T) {
	store := &memStore{}
	s := openSession(t, store)
	store.saveErr = errors.New("disk full")

	c, err := s.AddChemical(context.Background(), "Salt", 10, decimal.NewFromInt(20))
	var pe *inventory.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "save", pe.Op)
	assert.Equal(t, "Salt", c.Name)
	assert.Len(t, s.Chemicals(), 1)
}

func TestDeleteChemicalKeepsHistory(t *testing.T) {
	s := openSession(t, &memStore{})
	seed(t, s)
	ctx := context.Background()
	_, err := s.RecordTransaction(ctx, inventory.TransactionInput{Date: day, VendorName: "Acme", VendorType: "chemical",
		ItemName: "Copper Sulphate", Quantity: 1, Rate: decimal.NewFromInt(500)})
	require.NoError(t, err)
	_, err = s.Commit(ctx, ProductionRequest{Product: "Pool Algaecide", BatchSize: 10})
	require.NoError(t, err)

	require.NoError(t, s.DeleteChemical(ctx, 1))
	assert.Len(t, s.Transactions(), 1)
	assert.Len(t, s.History(), 1)

	c, err := s.AddChemical(ctx, "Copper Sulphate", 0, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, 3, c.ID)
}

func TestUpdateSettingsValidates(t *testing.T) {
	s := openSession(t, &memStore{})
	_, err := s.UpdateSettings(context.Background(), inventory.Settings{CompanyName: "X"})
	var ve *inventory.ValidationError
	require.ErrorAs(t, err, &ve)

	want := inventory.Settings{CompanyName: "X", DefaultBatchSize: 100, LowStockThreshold: 5, PackagingLowStock: 10}
	got, err := s.UpdateSettings(context.Background(), want)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExportImportThroughFileStore(t *testing.T) {
	ctx := context.Background()
	store := inventorymsgpack.NewFileStore(filepath.Join(t.TempDir(), "state.msgpack"))
	s := openSession(t, store)
	seed(t, s)
	_, err := s.RecordPayment(ctx, inventory.PaymentInput{Date: day, VendorName: "Acme", Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf, bulk.FormatZip))

	other := openSession(t, inventorymsgpack.NewFileStore(filepath.Join(t.TempDir(), "other.msgpack")))
	applied, err := other.Import(ctx, buf.Bytes(), bulk.FormatZip)
	require.NoError(t, err)
	assert.Equal(t, bulk.TableNames, applied)
	assert.Equal(t, s.Chemicals(), other.Chemicals())
	assert.Len(t, other.Payments(), 1)

	reopened := openSession(t, store)
	assert.Equal(t, s.Chemicals(), reopened.Chemicals())

	_, err = other.Import(ctx, []byte("not a zip"), bulk.FormatZip)
	var ve *inventory.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestImportRejectsInvalidLedgerRows(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, &memStore{})
	_, err := s.RecordPayment(ctx, inventory.PaymentInput{Date: day, VendorName: "Acme", Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	ledger := tabular.New(bulk.TableVendorLedger, bulk.Columns(bulk.TableVendorLedger)...)
	ledger.MustAppend("1", "2024-05-02", "Acme", "chemical", "SLES", "-10", "50", "", "")
	ledger.MustAppend("1", "2024-05-02", "Acme", "chemical", "SLES", "5", "50", "", "")
	payments := tabular.New(bulk.TableVendorPayments, bulk.Columns(bulk.TableVendorPayments)...)
	payments.MustAppend("1", "2024-05-02", "Acme", "-300", "cash", "")

	var buf bytes.Buffer
	require.NoError(t, bulk.Write(&buf, bulk.FormatZip, []*tabular.Table{ledger, payments}))
	_, err = s.Import(ctx, buf.Bytes(), bulk.FormatZip)
	var ve *inventory.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, s.Transactions())
	assert.True(t, s.Balance("Acme").Equal(decimal.NewFromInt(-100)))
}

func TestEditWithoutDateKeepsDate(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, &memStore{})
	in := inventory.TransactionInput{Date: day, VendorName: "Acme", VendorType: "other", ItemName: "labels",
		Quantity: 10, Rate: decimal.NewFromInt(100)}
	tx, err := s.RecordTransaction(ctx, in)
	require.NoError(t, err)

	in.Date = time.Time{}
	in.Quantity = 3
	edited, err := s.EditTransaction(ctx, tx.ID, in)
	require.NoError(t, err)
	assert.True(t, edited.Date.Equal(day))
	assert.True(t, s.Balance("Acme").Equal(decimal.NewFromInt(300)))
}

func TestReports(t *testing.T) {
	s := openSession(t, &memStore{})
	seed(t, s)

	stock := s.StockReport()
	assert.Equal(t, "Chemworks", stock.Company)
	assert.True(t, stock.Generated.Equal(day))

	r, err := s.ProductionReport(ProductionRequest{Product: "Pool Algaecide", BatchSize: 300})
	require.NoError(t, err)
	_, ok := r.Section("Cost Breakdown")
	assert.True(t, ok)

	ledger := s.VendorLedgerReport("")
	_, ok = ledger.Section("Summary")
	assert.True(t, ok)
}

func findPackaging(items []inventory.PackagingMaterial, packType string) (inventory.PackagingMaterial, bool) {
	for _, p := range items {
		if p.Type == packType {
			return p, true
		}
	}
	return inventory.PackagingMaterial{}, false
}
