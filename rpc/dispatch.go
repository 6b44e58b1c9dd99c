package inventoryrpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/service"
)

type ProductionArgs struct {
	Product   string `msgpack:"product"`
	BatchSize int    `msgpack:"batch_size,omitempty"`
}

type BalanceArgs struct {
	Vendor string `msgpack:"vendor"`
}

type TransactionArgs struct {
	Date       string  `msgpack:"date,omitempty"` // RFC3339 or 2006-01-02; empty means now
	VendorName string  `msgpack:"vendor_name"`
	VendorType string  `msgpack:"vendor_type"`
	ItemName   string  `msgpack:"item_name"`
	Quantity   float64 `msgpack:"quantity"`
	Rate       string  `msgpack:"rate"`
	Notes      string  `msgpack:"notes,omitempty"`
}

type PaymentArgs struct {
	Date       string `msgpack:"date,omitempty"`
	VendorName string `msgpack:"vendor_name"`
	Amount     string `msgpack:"amount"`
	Method     string `msgpack:"method,omitempty"`
	Notes      string `msgpack:"notes,omitempty"`
}

type ChemicalView struct {
	ID    int     `msgpack:"id"`
	Name  string  `msgpack:"name"`
	Stock float64 `msgpack:"stock_kg"`
	Rate  string  `msgpack:"rate"`
}

type PackagingView struct {
	Type  string  `msgpack:"type"`
	Name  string  `msgpack:"name"`
	Stock float64 `msgpack:"stock"`
	Rate  string  `msgpack:"rate"`
}

type StockResult struct {
	Chemicals []ChemicalView  `msgpack:"chemicals"`
	Packaging []PackagingView `msgpack:"packaging"`
}

type RequirementView struct {
	ChemicalName string  `msgpack:"chemical_name"`
	RequiredKg   float64 `msgpack:"required_kg"`
	AvailableKg  float64 `msgpack:"available_kg"`
	ToPurchaseKg float64 `msgpack:"to_purchase_kg"`
	RemainingKg  float64 `msgpack:"remaining_kg"`
	UnitRate     string  `msgpack:"unit_rate"`
	LineCost     string  `msgpack:"line_cost"`
}

type CostView struct {
	TotalPurchaseCost string `msgpack:"total_purchase_cost"`
	PerUnitBaseCost   string `msgpack:"per_unit_base_cost"`
	PackingCost       string `msgpack:"packing_cost"`
	PercentageMarkup  string `msgpack:"percentage_markup"`
	HandlingFee       string `msgpack:"handling_fee"`
	PerUnitTotalCost  string `msgpack:"per_unit_total_cost"`
}

type CalculationResult struct {
	Product       string            `msgpack:"product"`
	BatchSize     int               `msgpack:"batch_size"`
	ContainerType string            `msgpack:"container_type"`
	ContainerSize float64           `msgpack:"container_size"`
	Requirements  []RequirementView `msgpack:"requirements"`
	Cost          CostView          `msgpack:"cost"`
}

type CommitResult struct {
	RecordID          string   `msgpack:"record_id"`
	PackagingRequired float64  `msgpack:"packaging_required"`
	CartonsRequired   float64  `msgpack:"cartons_required"`
	Unmet             []string `msgpack:"unmet,omitempty"`
}

type BalanceResult struct {
	Vendor  string `msgpack:"vendor"`
	Balance string `msgpack:"balance"`
}

type TransactionResult struct {
	ID          int    `msgpack:"id"`
	TotalAmount string `msgpack:"total_amount"`
}

type PaymentResult struct {
	ID     int    `msgpack:"id"`
	Amount string `msgpack:"amount"`
}

type HandlerFunc func(ctx context.Context, arg []byte) (any, error)

// Dispatcher routes request packets to the session by function name.
type Dispatcher struct {
	sess     *service.Session
	handlers map[string]HandlerFunc
}

func NewDispatcher(sess *service.Session) *Dispatcher {
	d := &Dispatcher{sess: sess}
	d.handlers = map[string]HandlerFunc{
		"stock":              d.stock,
		"preview":            d.preview,
		"commit":             d.commit,
		"balance":            d.balance,
		"record_transaction": d.recordTransaction,
		"record_payment":     d.recordPayment,
	}
	return d
}

// Process handles one request and always returns a response packet.
func (d *Dispatcher) Process(ctx context.Context, req *Packet) *Packet {
	h, ok := d.handlers[req.Func()]
	if !ok {
		return errorResponse(req, CodeBadRequest, fmt.Sprintf("unknown function %q", req.Func()))
	}
	result, err := h(ctx, req.B["arg"])
	if err != nil {
		return errorResponse(req, errorCode(err), err.Error())
	}
	b, err := msgpack.Marshal(result)
	if err != nil {
		return errorResponse(req, CodeInternal, err.Error())
	}
	resp := newResponse(req, CodeOK)
	resp.B["result"] = b
	return resp
}

type badRequest struct{ err error }

func (e *badRequest) Error() string { return "bad argument: " + e.err.Error() }

func errorCode(err error) int32 {
	var (
		br  *badRequest
		ve  *inventory.ValidationError
		mc  *inventory.MissingChemicalError
		dup *inventory.DuplicateNameError
		nf  *inventory.NotFoundError
		pe  *inventory.PersistenceError
	)
	switch {
	case errors.As(err, &br):
		return CodeBadRequest
	case errors.As(err, &ve):
		return CodeValidation
	case errors.As(err, &mc):
		return CodeMissingChemical
	case errors.As(err, &dup):
		return CodeDuplicate
	case errors.As(err, &nf):
		return CodeNotFound
	case errors.As(err, &pe):
		return CodePersistence
	}
	return CodeInternal
}

func decodeArg(arg []byte, v any) error {
	if len(arg) == 0 {
		return nil
	}
	if err := msgpack.Unmarshal(arg, v); err != nil {
		return &badRequest{err: err}
	}
	return nil
}

func (d *Dispatcher) stock(_ context.Context, _ []byte) (any, error) {
	res := StockResult{Chemicals: []ChemicalView{}, Packaging: []PackagingView{}}
	for _, c := range d.sess.Chemicals() {
		res.Chemicals = append(res.Chemicals, ChemicalView{ID: c.ID, Name: c.Name, Stock: c.Stock, Rate: c.Rate.String()})
	}
	for _, p := range d.sess.PackagingMaterials() {
		res.Packaging = append(res.Packaging, PackagingView{Type: p.Type, Name: p.Name, Stock: p.Stock, Rate: p.Rate.String()})
	}
	return res, nil
}

func (d *Dispatcher) preview(_ context.Context, arg []byte) (any, error) {
	var args ProductionArgs
	if err := decodeArg(arg, &args); err != nil {
		return nil, err
	}
	calc, err := d.sess.Preview(service.ProductionRequest{Product: args.Product, BatchSize: args.BatchSize})
	if err != nil {
		return nil, err
	}
	return NewCalculationResult(calc), nil
}

func (d *Dispatcher) commit(ctx context.Context, arg []byte) (any, error) {
	var args ProductionArgs
	if err := decodeArg(arg, &args); err != nil {
		return nil, err
	}
	report, err := d.sess.Commit(ctx, service.ProductionRequest{Product: args.Product, BatchSize: args.BatchSize})
	if err != nil {
		return nil, err
	}
	return CommitResult{
		RecordID:          report.Record.ID.String(),
		PackagingRequired: report.PackagingRequired,
		CartonsRequired:   report.CartonsRequired,
		Unmet:             report.Unmet,
	}, nil
}

func (d *Dispatcher) balance(_ context.Context, arg []byte) (any, error) {
	var args BalanceArgs
	if err := decodeArg(arg, &args); err != nil {
		return nil, err
	}
	return BalanceResult{Vendor: args.Vendor, Balance: d.sess.Balance(args.Vendor).String()}, nil
}

func (d *Dispatcher) recordTransaction(ctx context.Context, arg []byte) (any, error) {
	var args TransactionArgs
	if err := decodeArg(arg, &args); err != nil {
		return nil, err
	}
	date, err := parseDate(args.Date)
	if err != nil {
		return nil, err
	}
	rate, err := parseMoney("rate", args.Rate)
	if err != nil {
		return nil, err
	}
	tx, err := d.sess.RecordTransaction(ctx, inventory.TransactionInput{
		Date:       date,
		VendorName: args.VendorName,
		VendorType: args.VendorType,
		ItemName:   args.ItemName,
		Quantity:   args.Quantity,
		Rate:       rate,
		Notes:      args.Notes,
	})
	if err != nil {
		return nil, err
	}
	return TransactionResult{ID: tx.ID, TotalAmount: tx.TotalAmount.String()}, nil
}

func (d *Dispatcher) recordPayment(ctx context.Context, arg []byte) (any, error) {
	var args PaymentArgs
	if err := decodeArg(arg, &args); err != nil {
		return nil, err
	}
	date, err := parseDate(args.Date)
	if err != nil {
		return nil, err
	}
	amount, err := parseMoney("amount", args.Amount)
	if err != nil {
		return nil, err
	}
	p, err := d.sess.RecordPayment(ctx, inventory.PaymentInput{
		Date:       date,
		VendorName: args.VendorName,
		Amount:     amount,
		Method:     args.Method,
		Notes:      args.Notes,
	})
	if err != nil {
		return nil, err
	}
	return PaymentResult{ID: p.ID, Amount: p.Amount.String()}, nil
}

func NewCalculationResult(calc *inventory.Calculation) CalculationResult {
	res := CalculationResult{
		Product:       calc.Formula.ProductName,
		BatchSize:     calc.BatchSize,
		ContainerType: calc.Packaging.ContainerType,
		ContainerSize: calc.Packaging.ContainerSize,
		Requirements:  make([]RequirementView, 0, len(calc.Requirements)),
		Cost: CostView{
			TotalPurchaseCost: calc.Cost.TotalPurchaseCost.String(),
			PerUnitBaseCost:   calc.Cost.PerUnitBaseCost.String(),
			PackingCost:       calc.Cost.PackingCost.String(),
			PercentageMarkup:  calc.Cost.PercentageMarkup.String(),
			HandlingFee:       calc.Cost.HandlingFee.String(),
			PerUnitTotalCost:  calc.Cost.PerUnitTotalCost.String(),
		},
	}
	for _, r := range calc.Requirements {
		res.Requirements = append(res.Requirements, RequirementView{
			ChemicalName: r.ChemicalName,
			RequiredKg:   r.RequiredKg,
			AvailableKg:  r.AvailableKg,
			ToPurchaseKg: r.ToPurchaseKg,
			RemainingKg:  r.RemainingKg,
			UnitRate:     r.UnitRate.String(),
			LineCost:     r.LineCost.String(),
		})
	}
	return res
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, inventory.NewValidationError(map[string]string{"date": "datetime"})
}

func parseMoney(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, inventory.NewValidationError(map[string]string{field: "numeric"})
	}
	return d, nil
}
