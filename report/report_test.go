package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
)

func fixedBuilder() *Builder {
	b := NewBuilder("Chemworks")
	b.Now = func() time.Time { return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC) }
	return b
}

func TestStockReport(t *testing.T) {
	inv := inventory.NewInventory()
	_, err := inv.AddChemical("SLES", 100, decimal.NewFromInt(300))
	require.NoError(t, err)
	_, err = inv.AddChemical("Salt", 2, decimal.NewFromInt(20))
	require.NoError(t, err)
	_, err = inv.AddPackaging("bottle", "", 10, decimal.NewFromInt(15))
	require.NoError(t, err)

	r := fixedBuilder().Stock(inv, inventory.DefaultSettings())
	chem, ok := r.Section("Chemicals")
	require.True(t, ok)
	require.Equal(t, 3, chem.Len())
	assert.Equal(t, "Rs. 30,040.00", chem.Get(2, "Value"))

	low, ok := r.Section("Low Stock")
	require.True(t, ok)
	require.Equal(t, 2, low.Len())
	assert.Equal(t, "Salt", low.Get(0, "Name"))
	assert.Equal(t, "Bottles", low.Get(1, "Name"))
}

func TestVendorLedgerReportTotals(t *testing.T) {
	l := inventory.NewVendorLedger()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := l.RecordTransaction(inventory.TransactionInput{Date: day, VendorName: "Acme", VendorType: "chemical",
		ItemName: "SLES", Quantity: 10, Rate: decimal.NewFromInt(100)})
	require.NoError(t, err)
	_, err = l.RecordTransaction(inventory.TransactionInput{Date: day, VendorName: "Beta", VendorType: "bottle",
		ItemName: "PET", Quantity: 50, Rate: decimal.NewFromInt(2)})
	require.NoError(t, err)
	_, err = l.RecordPayment(inventory.PaymentInput{Date: day, VendorName: "Acme", Amount: decimal.NewFromInt(400)})
	require.NoError(t, err)

	all := fixedBuilder().VendorLedger(l, "")
	summary, ok := all.Section("Summary")
	require.True(t, ok)
	require.Equal(t, 3, summary.Len())
	assert.Equal(t, "Total", summary.Get(2, "Vendor"))
	assert.Equal(t, "Rs. 700.00", summary.Get(2, "Balance"))

	one := fixedBuilder().VendorLedger(l, "Acme")
	purchases, _ := one.Section("Purchases")
	assert.Equal(t, 1, purchases.Len())
	summary, _ = one.Section("Summary")
	assert.Equal(t, "Rs. 600.00", summary.Get(1, "Balance"))
}

func productionCalc(t *testing.T) *inventory.Calculation {
	inv := inventory.NewInventory()
	_, err := inv.AddChemical("Copper Sulphate", 5, decimal.NewFromInt(500))
	require.NoError(t, err)
	_, err = inv.AddChemical("Citric Acid", 50, decimal.NewFromInt(200))
	require.NoError(t, err)
	formula, ok := inventory.DefaultCatalog().Lookup("Pool Algaecide")
	require.True(t, ok)
	calc, err := inventory.ComputeRequirements(formula, 300, inv, inventory.DefaultPackaging(), inventory.DefaultCostPolicy())
	require.NoError(t, err)
	return calc
}

func TestProductionReport(t *testing.T) {
	r := fixedBuilder().Production(productionCalc(t))
	reqs, ok := r.Section("Requirements")
	require.True(t, ok)
	assert.Equal(t, "13.000", reqs.Get(0, "To Purchase (kg)"))
	assert.Equal(t, "Rs. 6,500.00", reqs.Get(0, "Cost"))

	cost, ok := r.Section("Cost Breakdown")
	require.True(t, ok)
	assert.Equal(t, "Rs. 50.00", cost.Get(4, "Amount"))
}

func TestRenderCSVAndPDF(t *testing.T) {
	r := fixedBuilder().Production(productionCalc(t))

	var csvBuf bytes.Buffer
	require.NoError(t, Render(&csvBuf, r, FormatCSV))
	assert.True(t, strings.HasPrefix(csvBuf.String(), "Chemworks\n"))
	assert.Contains(t, csvBuf.String(), "Cost Breakdown")

	var pdfBuf bytes.Buffer
	require.NoError(t, Render(&pdfBuf, r, FormatPDF))
	assert.True(t, bytes.HasPrefix(pdfBuf.Bytes(), []byte("%PDF")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	_, err = ParseFormat("docx")
	assert.Error(t, err)
}

func TestVendorLedgerReportUnknownVendor(t *testing.T) {
	l := inventory.NewVendorLedger()
	_, err := l.RecordPayment(inventory.PaymentInput{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		VendorName: "Acme", Amount: decimal.NewFromInt(400)})
	require.NoError(t, err)

	summary, ok := fixedBuilder().VendorLedger(l, "Nobody").Section("Summary")
	require.True(t, ok)
	require.Equal(t, 1, summary.Len())
	assert.Equal(t, "Rs. 0.00", summary.Get(0, "Balance"))
}
