// Package bulk moves the whole state in and out as six fixed tables,
// packaged either as a zip of CSV files or as an xlsx workbook.
package bulk

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/tabular"
)

const (
	TableChemicals         = "chemicals"
	TablePackaging         = "packaging"
	TableVendorLedger      = "vendor_ledger"
	TableVendorPayments    = "vendor_payments"
	TableProductionHistory = "production_history"
	TableProductDetails    = "product_details"
)

// TableNames lists the tables in export order.
var TableNames = []string{
	TableChemicals,
	TablePackaging,
	TableVendorLedger,
	TableVendorPayments,
	TableProductionHistory,
	TableProductDetails,
}

var columns = map[string][]string{
	TableChemicals:         {"id", "name", "stock_kg", "rate"},
	TablePackaging:         {"type", "name", "stock", "rate"},
	TableVendorLedger:      {"id", "date", "vendor_name", "vendor_type", "item_name", "quantity", "rate", "total_amount", "notes"},
	TableVendorPayments:    {"id", "date", "vendor_name", "amount", "method", "notes"},
	TableProductionHistory: {"id", "date", "product_name", "batch_size", "status", "kind"},
	TableProductDetails:    {"product_name", "container_type", "container_size", "notes"},
}

// Columns returns the fixed header of a table, or nil for unknown names.
func Columns(table string) []string {
	return append([]string(nil), columns[table]...)
}

// Tables flattens a document into the six export tables.
func Tables(doc *inventory.Document) []*tabular.Table {
	chem := tabular.New(TableChemicals, columns[TableChemicals]...)
	for _, c := range doc.Chemicals {
		chem.MustAppend(strconv.Itoa(c.ID), c.Name, formatFloat(c.Stock), c.Rate.String())
	}

	pack := tabular.New(TablePackaging, columns[TablePackaging]...)
	for _, p := range doc.Packaging {
		pack.MustAppend(p.Type, p.Name, formatFloat(p.Stock), p.Rate.String())
	}

	ledger := tabular.New(TableVendorLedger, columns[TableVendorLedger]...)
	for _, t := range doc.Transactions {
		ledger.MustAppend(strconv.Itoa(t.ID), formatTime(t.Date), t.VendorName, t.VendorType, t.ItemName,
			formatFloat(t.Quantity), t.Rate.String(), t.TotalAmount.String(), t.Notes)
	}

	payments := tabular.New(TableVendorPayments, columns[TableVendorPayments]...)
	for _, p := range doc.Payments {
		payments.MustAppend(strconv.Itoa(p.ID), formatTime(p.Date), p.VendorName, p.Amount.String(), p.Method, p.Notes)
	}

	history := tabular.New(TableProductionHistory, columns[TableProductionHistory]...)
	for _, r := range doc.History {
		history.MustAppend(r.ID.String(), formatTime(r.Date), r.ProductName, strconv.Itoa(r.BatchSize), r.Status, r.Kind)
	}

	details := tabular.New(TableProductDetails, columns[TableProductDetails]...)
	for _, d := range doc.ProductDetails {
		details.MustAppend(d.ProductName, d.ContainerType, formatFloat(d.ContainerSize), d.Notes)
	}

	return []*tabular.Table{chem, pack, ledger, payments, history, details}
}

// Apply replaces the parts of doc covered by the given tables and returns
// the names it applied, in export order. Unknown tables are ignored. A bad
// row rejects the whole import and leaves doc untouched.
func Apply(doc *inventory.Document, tables []*tabular.Table) ([]string, error) {
	byName := map[string]*tabular.Table{}
	for _, t := range tables {
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if _, known := columns[name]; known {
			byName[name] = t
		}
	}

	next := *doc
	var applied []string
	for _, name := range TableNames {
		t, ok := byName[name]
		if !ok {
			continue
		}
		if err := t.RequireColumns(columns[name]...); err != nil {
			return nil, err
		}
		var err error
		switch name {
		case TableChemicals:
			next.Chemicals, err = parseChemicals(t)
		case TablePackaging:
			next.Packaging, err = parsePackaging(t)
		case TableVendorLedger:
			next.Transactions, err = parseTransactions(t)
		case TableVendorPayments:
			next.Payments, err = parsePayments(t)
		case TableProductionHistory:
			next.History, err = parseHistory(t)
		case TableProductDetails:
			next.ProductDetails, err = parseDetails(t)
		}
		if err != nil {
			return nil, err
		}
		applied = append(applied, name)
	}
	*doc = next
	return applied, nil
}

type rowError struct {
	table  string
	row    int
	column string
	err    error
}

func (e *rowError) Error() string {
	return fmt.Sprintf("%s row %d column %s: %v", e.table, e.row+2, e.column, e.err)
}

func (e *rowError) Unwrap() error { return e.err }

// rowReader pulls typed cells from one table row and keeps the first error.
type rowReader struct {
	t   *tabular.Table
	row int
	err error
}

func (r *rowReader) str(col string) string {
	return strings.TrimSpace(r.t.Get(r.row, col))
}

func (r *rowReader) fail(col string, err error) {
	if r.err == nil {
		r.err = &rowError{table: r.t.Name, row: r.row, column: col, err: err}
	}
}

func (r *rowReader) integer(col string) int {
	s := r.str(col)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		r.fail(col, err)
	}
	return n
}

func (r *rowReader) float(col string) float64 {
	s := r.str(col)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(col, err)
	}
	return f
}

func (r *rowReader) money(col string) decimal.Decimal {
	s := r.str(col)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		r.fail(col, err)
	}
	return d
}

func (r *rowReader) required(col, v string) {
	if v == "" {
		r.fail(col, errors.New("required"))
	}
}

func (r *rowReader) nonNegative(col string, f float64) {
	if f < 0 {
		r.fail(col, fmt.Errorf("must not be negative, got %v", f))
	}
}

func (r *rowReader) nonNegativeMoney(col string, d decimal.Decimal) {
	if d.IsNegative() {
		r.fail(col, fmt.Errorf("must not be negative, got %s", d))
	}
}

// uniqueID checks the row's id column against the ids already seen in the
// same table.
func (r *rowReader) uniqueID(seen map[int]bool, id int) {
	switch {
	case id <= 0:
		r.fail("id", fmt.Errorf("must be positive, got %d", id))
	case seen[id]:
		r.fail("id", fmt.Errorf("duplicate id %d", id))
	}
	seen[id] = true
}

func (r *rowReader) date(col string) time.Time {
	s := r.str(col)
	if s == "" {
		return time.Time{}
	}
	t, err := parseTime(s)
	if err != nil {
		r.fail(col, err)
	}
	return t
}

func parseChemicals(t *tabular.Table) ([]inventory.Chemical, error) {
	out := make([]inventory.Chemical, 0, t.Len())
	for i := range t.Rows {
		r := &rowReader{t: t, row: i}
		c := inventory.Chemical{ID: r.integer("id"), Name: r.str("name"), Stock: r.float("stock_kg"), Rate: r.money("rate")}
		if r.err == nil && c.Name == "" {
			r.fail("name", errors.New("required"))
		}
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, c)
	}
	return out, nil
}

func parsePackaging(t *tabular.Table) ([]inventory.PackagingMaterial, error) {
	out := make([]inventory.PackagingMaterial, 0, t.Len())
	for i := range t.Rows {
		r := &rowReader{t: t, row: i}
		p := inventory.PackagingMaterial{
			Type:  strings.ToLower(r.str("type")),
			Name:  r.str("name"),
			Stock: r.float("stock"),
			Rate:  r.money("rate"),
		}
		if r.err == nil && !inventory.IsPackagingType(p.Type) {
			r.fail("type", fmt.Errorf("unrecognized packaging type %q", p.Type))
		}
		if r.err != nil {
			return nil, r.err
		}
		if p.Name == "" {
			p.Name = inventory.PackagingDisplayName(p.Type)
		}
		out = append(out, p)
	}
	return out, nil
}

// parseTransactions recomputes every total from quantity and rate.
func parseTransactions(t *tabular.Table) ([]inventory.VendorTransaction, error) {
	out := make([]inventory.VendorTransaction, 0, t.Len())
	seen := map[int]bool{}
	for i := range t.Rows {
		r := &rowReader{t: t, row: i}
		tx := inventory.VendorTransaction{
			ID:         r.integer("id"),
			Date:       r.date("date"),
			VendorName: r.str("vendor_name"),
			VendorType: strings.ToLower(r.str("vendor_type")),
			ItemName:   r.str("item_name"),
			Quantity:   r.float("quantity"),
			Rate:       r.money("rate"),
			Notes:      r.str("notes"),
		}
		if r.err == nil && !inventory.IsVendorType(tx.VendorType) {
			r.fail("vendor_type", fmt.Errorf("unrecognized vendor type %q", tx.VendorType))
		}
		r.required("vendor_name", tx.VendorName)
		r.nonNegative("quantity", tx.Quantity)
		r.nonNegativeMoney("rate", tx.Rate)
		r.uniqueID(seen, tx.ID)
		if r.err != nil {
			return nil, r.err
		}
		tx.TotalAmount = decimal.NewFromFloat(tx.Quantity).Mul(tx.Rate)
		out = append(out, tx)
	}
	return out, nil
}

func parsePayments(t *tabular.Table) ([]inventory.VendorPayment, error) {
	out := make([]inventory.VendorPayment, 0, t.Len())
	seen := map[int]bool{}
	for i := range t.Rows {
		r := &rowReader{t: t, row: i}
		p := inventory.VendorPayment{
			ID:         r.integer("id"),
			Date:       r.date("date"),
			VendorName: r.str("vendor_name"),
			Amount:     r.money("amount"),
			Method:     r.str("method"),
			Notes:      r.str("notes"),
		}
		r.required("vendor_name", p.VendorName)
		r.nonNegativeMoney("amount", p.Amount)
		r.uniqueID(seen, p.ID)
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, p)
	}
	return out, nil
}

func parseHistory(t *tabular.Table) ([]inventory.ProductionRecord, error) {
	out := make([]inventory.ProductionRecord, 0, t.Len())
	for i := range t.Rows {
		r := &rowReader{t: t, row: i}
		rec := inventory.ProductionRecord{
			Date:        r.date("date"),
			ProductName: r.str("product_name"),
			BatchSize:   r.integer("batch_size"),
			Status:      r.str("status"),
			Kind:        r.str("kind"),
		}
		if id := r.str("id"); id != "" {
			parsed, err := uuid.Parse(id)
			if err != nil {
				r.fail("id", err)
			}
			rec.ID = parsed
		} else {
			rec.ID = uuid.New()
		}
		if r.err != nil {
			return nil, r.err
		}
		if rec.Status == "" {
			rec.Status = inventory.ProductionStatusCompleted
		}
		if rec.Kind == "" {
			rec.Kind = inventory.ProductionKindFormula
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseDetails(t *tabular.Table) ([]inventory.ProductDetails, error) {
	out := make([]inventory.ProductDetails, 0, t.Len())
	for i := range t.Rows {
		r := &rowReader{t: t, row: i}
		d := inventory.ProductDetails{
			ProductName:   r.str("product_name"),
			ContainerType: strings.ToLower(r.str("container_type")),
			ContainerSize: r.float("container_size"),
			Notes:         r.str("notes"),
		}
		if r.err == nil && !inventory.IsPackagingType(d.ContainerType) {
			r.fail("container_type", fmt.Errorf("unrecognized container type %q", d.ContainerType))
		}
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, d)
	}
	return out, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

func parseTime(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}
