// Package report builds the printable stock, vendor ledger and production
// reports and renders them as CSV or PDF.
package report

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/tabular"
)

type Report struct {
	Company   string
	Title     string
	Subtitle  string
	Generated time.Time
	Sections  []*tabular.Table
}

// Section returns the section with the given name.
func (r *Report) Section(name string) (*tabular.Table, bool) {
	for _, s := range r.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

type Builder struct {
	Company  string
	Currency inventory.Currency
	Now      func() time.Time
}

func NewBuilder(company string) *Builder {
	return &Builder{Company: company, Currency: inventory.DefaultCurrency(), Now: time.Now}
}

func (b *Builder) newReport(title, subtitle string) *Report {
	return &Report{Company: b.Company, Title: title, Subtitle: subtitle, Generated: b.Now()}
}

func (b *Builder) money(d decimal.Decimal) string {
	return b.Currency.Format(d)
}

// Stock lists chemicals and packaging with their stock value, then the
// items under the low-stock thresholds.
func (b *Builder) Stock(inv *inventory.Inventory, settings inventory.Settings) *Report {
	r := b.newReport("Stock Report", "")

	chem := tabular.New("Chemicals", "ID", "Name", "Stock (kg)", "Rate / kg", "Value")
	chemTotal := decimal.Zero
	for _, c := range inv.Chemicals() {
		value := decimal.NewFromFloat(c.Stock).Mul(c.Rate)
		chemTotal = chemTotal.Add(value)
		chem.MustAppend(strconv.Itoa(c.ID), c.Name, qty(c.Stock), b.money(c.Rate), b.money(value))
	}
	chem.MustAppend("", "Total", "", "", b.money(chemTotal))

	pack := tabular.New("Packaging", "Type", "Name", "Stock", "Rate / unit", "Value")
	packTotal := decimal.Zero
	for _, p := range inv.PackagingMaterials() {
		value := decimal.NewFromFloat(p.Stock).Mul(p.Rate)
		packTotal = packTotal.Add(value)
		pack.MustAppend(p.Type, p.Name, qty(p.Stock), b.money(p.Rate), b.money(value))
	}
	pack.MustAppend("", "Total", "", "", b.money(packTotal))

	low := tabular.New("Low Stock", "Kind", "Name", "Stock", "Threshold")
	for _, item := range inv.LowStock(settings.LowStockThreshold, float64(settings.PackagingLowStock)) {
		low.MustAppend(item.Resource, item.Name, qty(item.Stock), qty(item.Threshold))
	}

	r.Sections = append(r.Sections, chem, pack, low)
	return r
}

// VendorLedger lists purchases and payments, optionally for one vendor, and
// closes with a per-vendor summary and a total row.
func (b *Builder) VendorLedger(ledger *inventory.VendorLedger, vendor string) *Report {
	subtitle := "All vendors"
	if vendor != "" {
		subtitle = "Vendor: " + vendor
	}
	r := b.newReport("Vendor Ledger", subtitle)

	purchases := tabular.New("Purchases", "ID", "Date", "Vendor", "Type", "Item", "Quantity", "Rate", "Total")
	for _, t := range ledger.Transactions() {
		if vendor != "" && t.VendorName != vendor {
			continue
		}
		purchases.MustAppend(strconv.Itoa(t.ID), day(t.Date), t.VendorName, t.VendorType, t.ItemName,
			qty(t.Quantity), b.money(t.Rate), b.money(t.TotalAmount))
	}

	payments := tabular.New("Payments", "ID", "Date", "Vendor", "Method", "Amount")
	for _, p := range ledger.Payments() {
		if vendor != "" && p.VendorName != vendor {
			continue
		}
		payments.MustAppend(strconv.Itoa(p.ID), day(p.Date), p.VendorName, p.Method, b.money(p.Amount))
	}

	summary := tabular.New("Summary", "Vendor", "Purchases", "Payments", "Balance")
	total := ledger.Totals()
	if vendor != "" {
		total = inventory.VendorBalance{VendorName: total.VendorName}
	}
	for _, bal := range ledger.Balances() {
		if vendor != "" && bal.VendorName != vendor {
			continue
		}
		if vendor != "" {
			total.Purchases, total.Payments, total.Balance = bal.Purchases, bal.Payments, bal.Balance
		}
		summary.MustAppend(bal.VendorName, b.money(bal.Purchases), b.money(bal.Payments), b.money(bal.Balance))
	}
	summary.MustAppend(total.VendorName, b.money(total.Purchases), b.money(total.Payments), b.money(total.Balance))

	r.Sections = append(r.Sections, purchases, payments, summary)
	return r
}

// Production renders a calculation: the requirements table and the unit
// cost build-up.
func (b *Builder) Production(calc *inventory.Calculation) *Report {
	r := b.newReport("Production Cost Sheet",
		calc.Formula.ProductName+" x "+strconv.Itoa(calc.BatchSize)+" ("+calc.Packaging.ContainerType+")")

	reqs := tabular.New("Requirements", "Chemical", "Required (kg)", "Available (kg)", "To Purchase (kg)", "Remaining (kg)", "Rate / kg", "Cost")
	for _, q := range calc.Requirements {
		reqs.MustAppend(q.ChemicalName, qty(q.RequiredKg), qty(q.AvailableKg), qty(q.ToPurchaseKg), qty(q.RemainingKg),
			b.money(q.UnitRate), b.money(q.LineCost))
	}

	c := calc.Cost
	cost := tabular.New("Cost Breakdown", "Item", "Amount")
	cost.MustAppend("Total purchase cost", b.money(c.TotalPurchaseCost))
	cost.MustAppend("Per unit base cost", b.money(c.PerUnitBaseCost))
	cost.MustAppend("Packing cost", b.money(c.PackingCost))
	cost.MustAppend("Markup", b.money(c.PercentageMarkup))
	cost.MustAppend("Handling fee", b.money(c.HandlingFee))
	cost.MustAppend("Per unit total cost", b.money(c.PerUnitTotalCost))

	r.Sections = append(r.Sections, reqs, cost)
	return r
}

func qty(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
