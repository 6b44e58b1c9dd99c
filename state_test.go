package inventory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// populatedState runs a small day of work: stock, a purchase, a payment,
// a product setting and one committed batch.
func populatedState(t *testing.T) *State {
	t.Helper()
	s := NewState(DefaultSettings())
	s.Inventory.SetClock(func() time.Time { return commitTime })

	_, err := s.Inventory.AddChemical("Copper Sulphate", 40, decimal.NewFromInt(500))
	require.NoError(t, err)
	_, err = s.Inventory.AddChemical("Citric Acid", 50, decimal.RequireFromString("212.75"))
	require.NoError(t, err)
	_, err = s.Inventory.AddPackaging(UnitBottle, "", 500, decimal.NewFromInt(20))
	require.NoError(t, err)
	_, err = s.Inventory.AddPackaging(UnitCarton, "Master Cartons", 50, decimal.NewFromInt(60))
	require.NoError(t, err)

	_, err = s.Ledger.RecordTransaction(purchase("Acme", 10, 480))
	require.NoError(t, err)
	_, err = s.Ledger.RecordPayment(payment("Acme", 1000))
	require.NoError(t, err)
	require.NoError(t, s.SetProductDetails(ProductDetails{ProductName: "Glass Cleaner", ContainerType: "Can", ContainerSize: 25}))

	calc, err := ComputeRequirements(algaecide(t), 300, s.Inventory, s.PackagingFor("Pool Algaecide"), DefaultCostPolicy())
	require.NoError(t, err)
	_, err = Commit(calc, s.Inventory, &s.History, commitTime)
	require.NoError(t, err)
	return s
}

func assertSameState(t *testing.T, want, got *State) {
	t.Helper()
	wc, gc := want.Inventory.Chemicals(), got.Inventory.Chemicals()
	require.Len(t, gc, len(wc))
	for i := range wc {
		assert.Equal(t, wc[i].ID, gc[i].ID)
		assert.Equal(t, wc[i].Name, gc[i].Name)
		assert.InDelta(t, wc[i].Stock, gc[i].Stock, 1e-9)
		assert.True(t, wc[i].Rate.Equal(gc[i].Rate), wc[i].Name)
	}
	wp, gp := want.Inventory.PackagingMaterials(), got.Inventory.PackagingMaterials()
	require.Len(t, gp, len(wp))
	for i := range wp {
		assert.Equal(t, wp[i].Name, gp[i].Name)
		assert.Equal(t, wp[i].Stock, gp[i].Stock)
	}

	wt, gt := want.Ledger.Transactions(), got.Ledger.Transactions()
	require.Len(t, gt, len(wt))
	for i := range wt {
		assert.Equal(t, wt[i].ID, gt[i].ID)
		assert.True(t, wt[i].Date.Equal(gt[i].Date))
		assert.True(t, wt[i].TotalAmount.Equal(gt[i].TotalAmount))
	}
	assert.True(t, want.Ledger.BalanceFor("Acme").Equal(got.Ledger.BalanceFor("Acme")))

	require.Len(t, got.History, len(want.History))
	for i := range want.History {
		assert.Equal(t, want.History[i].ID, got.History[i].ID)
		assert.True(t, want.History[i].Date.Equal(got.History[i].Date))
	}
	assert.Equal(t, want.ProductDetailsList(), got.ProductDetailsList())
	assert.Equal(t, want.Settings, got.Settings)
	assert.Len(t, got.Inventory.Movements(), len(want.Inventory.Movements()))
}

func TestDocumentRoundTrip(t *testing.T) {
	s := populatedState(t)
	got, err := StateFromDocument(s.Document())
	require.NoError(t, err)
	assertSameState(t, s, got)
}

func TestSequencesSurviveReload(t *testing.T) {
	s := populatedState(t)
	_, err := s.Inventory.AddChemical("Borax", 1, decimal.NewFromInt(1))
	require.NoError(t, err)
	require.NoError(t, s.Inventory.DeleteChemical(3))

	got, err := StateFromDocument(s.Document())
	require.NoError(t, err)
	c, err := got.Inventory.AddChemical("Salt", 1, decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, 4, c.ID)

	tx, err := got.Ledger.RecordTransaction(purchase("Acme", 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, tx.ID)
}

func TestStateFromDocumentRejectsDuplicates(t *testing.T) {
	doc := &Document{
		Settings: DefaultSettings(),
		Chemicals: []Chemical{
			{ID: 1, Name: "Salt"},
			{ID: 2, Name: "SALT"},
		},
	}
	_, err := StateFromDocument(doc)
	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)

	doc.Chemicals = []Chemical{{ID: 0, Name: "Salt"}}
	_, err = StateFromDocument(doc)
	assert.Error(t, err)
}

func TestStateFromDocumentRejectsBadLedgerIDs(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{"repeated purchase id", Document{Transactions: []VendorTransaction{{ID: 1, VendorName: "Acme"}, {ID: 1, VendorName: "Acme"}}}},
		{"zero purchase id", Document{Transactions: []VendorTransaction{{ID: 0, VendorName: "Acme"}}}},
		{"repeated payment id", Document{Payments: []VendorPayment{{ID: 2, VendorName: "Acme"}, {ID: 2, VendorName: "Beta"}}}},
		{"negative payment id", Document{Payments: []VendorPayment{{ID: -1, VendorName: "Acme"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.doc.Settings = DefaultSettings()
			_, err := StateFromDocument(&tt.doc)
			assert.Error(t, err)
		})
	}
}

func TestStateFromDocumentRepairsInput(t *testing.T) {
	doc := &Document{
		Settings:  Settings{CompanyName: "Acme", DefaultBatchSize: -5},
		Chemicals: []Chemical{{ID: 7, Name: "Salt", Stock: -3}},
	}
	s, err := StateFromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, "Acme", s.Settings.CompanyName)
	assert.Equal(t, DefaultSettings().DefaultBatchSize, s.Settings.DefaultBatchSize)
	c, ok := s.Inventory.Chemical(7)
	require.True(t, ok)
	assert.Equal(t, 0.0, c.Stock)
}

func TestDeletingChemicalKeepsHistory(t *testing.T) {
	s := populatedState(t)
	txs := s.Ledger.Transactions()
	history := append([]ProductionRecord(nil), s.History...)

	cu, ok := s.Inventory.ChemicalByName("Copper Sulphate")
	require.True(t, ok)
	require.NoError(t, s.Inventory.DeleteChemical(cu.ID))

	_, ok = s.Inventory.ChemicalByName("Copper Sulphate")
	assert.False(t, ok)
	assert.Equal(t, txs, s.Ledger.Transactions())
	assert.Equal(t, history, s.History)

	_, err := ComputeRequirements(algaecide(t), 300, s.Inventory, DefaultPackaging(), DefaultCostPolicy())
	var mc *MissingChemicalError
	assert.ErrorAs(t, err, &mc)
}

func TestProductDetails(t *testing.T) {
	s := NewState(DefaultSettings())
	assert.Equal(t, DefaultPackaging(), s.PackagingFor("Hand Wash"))

	require.NoError(t, s.SetProductDetails(ProductDetails{ProductName: "Hand Wash", ContainerType: "CAN", ContainerSize: 20}))
	assert.Equal(t, PackagingInfo{ContainerType: UnitCan, ContainerSize: 20}, s.PackagingFor("hand wash"))

	err := s.SetProductDetails(ProductDetails{ProductName: "Hand Wash", ContainerType: "drum", ContainerSize: 0})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 2)

	require.NoError(t, s.DeleteProductDetails("HAND WASH"))
	var nf *NotFoundError
	assert.ErrorAs(t, s.DeleteProductDetails("Hand Wash"), &nf)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "chemworks.db"))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Load(ctx)
	require.ErrorIs(t, err, ErrNoState)

	s := populatedState(t)
	require.NoError(t, store.Save(ctx, s.Document()))
	doc, err := store.Load(ctx)
	require.NoError(t, err)
	got, err := StateFromDocument(doc)
	require.NoError(t, err)
	assertSameState(t, s, got)

	// a second save replaces rather than appends
	_, err = s.Ledger.RecordPayment(payment("Acme", 100))
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, s.Document()))
	doc, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Payments, 2)
	assert.Equal(t, 1, doc.Sequences.TransactionID)
}

func TestCurrencyFormat(t *testing.T) {
	c := DefaultCurrency()
	assert.Equal(t, "Rs. 1,234.50", c.Format(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "Rs. 0.00", c.Format(decimal.Zero))
	assert.Equal(t, "-Rs. 1,000,000.13", c.Format(decimal.RequireFromString("-1000000.125")))
}
