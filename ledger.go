package inventory

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionInput struct {
	Date       time.Time
	VendorName string
	VendorType string
	ItemName   string
	Quantity   float64
	Rate       decimal.Decimal
	Notes      string
}

func (in *TransactionInput) validate() error {
	in.VendorName = strings.TrimSpace(in.VendorName)
	in.ItemName = strings.TrimSpace(in.ItemName)
	in.VendorType = strings.ToLower(strings.TrimSpace(in.VendorType))
	fields := map[string]string{}
	if in.VendorName == "" {
		fields["vendor_name"] = "required"
	}
	if !IsVendorType(in.VendorType) {
		fields["vendor_type"] = "oneof=chemical bottle carton can shipper other"
	}
	if in.ItemName == "" {
		fields["item_name"] = "required"
	}
	if in.Quantity <= 0 {
		fields["quantity"] = "gt=0"
	}
	if !in.Rate.IsPositive() {
		fields["rate"] = "gt=0"
	}
	if in.Date.IsZero() {
		fields["date"] = "required"
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

type PaymentInput struct {
	Date       time.Time
	VendorName string
	Amount     decimal.Decimal
	Method     string
	Notes      string
}

func (in *PaymentInput) validate() error {
	in.VendorName = strings.TrimSpace(in.VendorName)
	fields := map[string]string{}
	if in.VendorName == "" {
		fields["vendor_name"] = "required"
	}
	if !in.Amount.IsPositive() {
		fields["amount"] = "gt=0"
	}
	if in.Date.IsZero() {
		fields["date"] = "required"
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

// VendorLedger keeps purchases and payments as two append-only lists.
// It knows nothing about inventory.
type VendorLedger struct {
	transactions      []VendorTransaction
	payments          []VendorPayment
	lastTransactionID int
	lastPaymentID     int
}

func NewVendorLedger() *VendorLedger {
	return &VendorLedger{}
}

func (l *VendorLedger) RecordTransaction(in TransactionInput) (VendorTransaction, error) {
	if err := in.validate(); err != nil {
		return VendorTransaction{}, err
	}
	l.lastTransactionID = nextID(l.lastTransactionID, len(l.transactions), func(i int) int { return l.transactions[i].ID })
	tx := VendorTransaction{ID: l.lastTransactionID}
	applyTransactionInput(&tx, in)
	l.transactions = append(l.transactions, tx)
	return tx, nil
}

// EditTransaction replaces the editable fields of a transaction and
// recomputes its total. A zero Date keeps the stored date.
func (l *VendorLedger) EditTransaction(id int, in TransactionInput) (VendorTransaction, error) {
	i := l.transactionIndex(id)
	if i < 0 {
		return VendorTransaction{}, notFound("vendor transaction", id)
	}
	if in.Date.IsZero() {
		in.Date = l.transactions[i].Date
	}
	if err := in.validate(); err != nil {
		return VendorTransaction{}, err
	}
	applyTransactionInput(&l.transactions[i], in)
	return l.transactions[i], nil
}

func applyTransactionInput(tx *VendorTransaction, in TransactionInput) {
	tx.Date = in.Date
	tx.VendorName = in.VendorName
	tx.VendorType = in.VendorType
	tx.ItemName = in.ItemName
	tx.Quantity = in.Quantity
	tx.Rate = in.Rate
	tx.TotalAmount = decimal.NewFromFloat(in.Quantity).Mul(in.Rate)
	tx.Notes = in.Notes
}

func (l *VendorLedger) DeleteTransaction(id int) error {
	i := l.transactionIndex(id)
	if i < 0 {
		return notFound("vendor transaction", id)
	}
	l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
	return nil
}

func (l *VendorLedger) Transaction(id int) (VendorTransaction, bool) {
	i := l.transactionIndex(id)
	if i < 0 {
		return VendorTransaction{}, false
	}
	return l.transactions[i], true
}

func (l *VendorLedger) transactionIndex(id int) int {
	for i := range l.transactions {
		if l.transactions[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *VendorLedger) RecordPayment(in PaymentInput) (VendorPayment, error) {
	if err := in.validate(); err != nil {
		return VendorPayment{}, err
	}
	l.lastPaymentID = nextID(l.lastPaymentID, len(l.payments), func(i int) int { return l.payments[i].ID })
	p := VendorPayment{ID: l.lastPaymentID}
	applyPaymentInput(&p, in)
	l.payments = append(l.payments, p)
	return p, nil
}

// EditPayment replaces the editable fields of a payment. A zero Date keeps
// the stored date.
func (l *VendorLedger) EditPayment(id int, in PaymentInput) (VendorPayment, error) {
	i := l.paymentIndex(id)
	if i < 0 {
		return VendorPayment{}, notFound("vendor payment", id)
	}
	if in.Date.IsZero() {
		in.Date = l.payments[i].Date
	}
	if err := in.validate(); err != nil {
		return VendorPayment{}, err
	}
	applyPaymentInput(&l.payments[i], in)
	return l.payments[i], nil
}

func applyPaymentInput(p *VendorPayment, in PaymentInput) {
	p.Date = in.Date
	p.VendorName = in.VendorName
	p.Amount = in.Amount
	p.Method = in.Method
	p.Notes = in.Notes
}

func (l *VendorLedger) DeletePayment(id int) error {
	i := l.paymentIndex(id)
	if i < 0 {
		return notFound("vendor payment", id)
	}
	l.payments = append(l.payments[:i], l.payments[i+1:]...)
	return nil
}

func (l *VendorLedger) Payment(id int) (VendorPayment, bool) {
	i := l.paymentIndex(id)
	if i < 0 {
		return VendorPayment{}, false
	}
	return l.payments[i], true
}

func (l *VendorLedger) paymentIndex(id int) int {
	for i := range l.payments {
		if l.payments[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *VendorLedger) Transactions() []VendorTransaction {
	return append([]VendorTransaction(nil), l.transactions...)
}

func (l *VendorLedger) Payments() []VendorPayment {
	return append([]VendorPayment(nil), l.payments...)
}

// BalanceFor is purchases minus payments for an exact vendor name.
// Positive means money is owed to the vendor.
func (l *VendorLedger) BalanceFor(vendor string) decimal.Decimal {
	bal := decimal.Zero
	for _, tx := range l.transactions {
		if tx.VendorName == vendor {
			bal = bal.Add(tx.TotalAmount)
		}
	}
	for _, p := range l.payments {
		if p.VendorName == vendor {
			bal = bal.Sub(p.Amount)
		}
	}
	return bal
}

type VendorBalance struct {
	VendorName string
	Purchases  decimal.Decimal
	Payments   decimal.Decimal
	Balance    decimal.Decimal
}

// Balances summarizes every vendor seen in either list, sorted by name.
func (l *VendorLedger) Balances() []VendorBalance {
	byVendor := map[string]*VendorBalance{}
	get := func(name string) *VendorBalance {
		b, ok := byVendor[name]
		if !ok {
			b = &VendorBalance{VendorName: name}
			byVendor[name] = b
		}
		return b
	}
	for _, tx := range l.transactions {
		b := get(tx.VendorName)
		b.Purchases = b.Purchases.Add(tx.TotalAmount)
	}
	for _, p := range l.payments {
		b := get(p.VendorName)
		b.Payments = b.Payments.Add(p.Amount)
	}
	out := make([]VendorBalance, 0, len(byVendor))
	for _, b := range byVendor {
		b.Balance = b.Purchases.Sub(b.Payments)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VendorName < out[j].VendorName })
	return out
}

// Totals folds Balances into one row.
func (l *VendorLedger) Totals() VendorBalance {
	t := VendorBalance{VendorName: "Total"}
	for _, b := range l.Balances() {
		t.Purchases = t.Purchases.Add(b.Purchases)
		t.Payments = t.Payments.Add(b.Payments)
	}
	t.Balance = t.Purchases.Sub(t.Payments)
	return t
}

// nextID returns max(last, every live id) + 1 so ids are never reused.
func nextID(last, n int, idAt func(i int) int) int {
	next := last
	for i := 0; i < n; i++ {
		if id := idAt(i); id > next {
			next = id
		}
	}
	return next + 1
}
