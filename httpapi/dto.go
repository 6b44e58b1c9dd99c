package httpapi

import (
	"time"

	"github.com/shopspring/decimal"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
)

// ── Requests ────────────────────────────────────────────────────────────────

type CreateChemicalRequest struct {
	Name    string          `json:"name" validate:"required,max=120"`
	StockKg float64         `json:"stock_kg" validate:"gte=0"`
	Rate    decimal.Decimal `json:"rate" validate:"gte=0"`
}

type AddStockRequest struct {
	Quantity float64          `json:"quantity" validate:"gt=0"`
	Rate     *decimal.Decimal `json:"rate,omitempty"`
	Note     string           `json:"note"`
}

type AdjustStockRequest struct {
	Delta float64 `json:"delta" validate:"ne=0"`
	Note  string  `json:"note" validate:"required"`
}

type RateRequest struct {
	Rate decimal.Decimal `json:"rate" validate:"gte=0"`
}

type CreatePackagingRequest struct {
	Type  string          `json:"type" validate:"required,oneof=bottle carton can box"`
	Name  string          `json:"name"`
	Stock float64         `json:"stock" validate:"gte=0"`
	Rate  decimal.Decimal `json:"rate" validate:"gte=0"`
}

type ProductionRequest struct {
	Product   string `json:"product" validate:"required"`
	BatchSize int    `json:"batch_size" validate:"gte=0"`
}

type ProductDetailsRequest struct {
	ProductName   string  `json:"product_name" validate:"required"`
	ContainerType string  `json:"container_type" validate:"required,oneof=bottle carton can box"`
	ContainerSize float64 `json:"container_size" validate:"gt=0"`
	Notes         string  `json:"notes"`
}

type TransactionRequest struct {
	Date       string          `json:"date"`
	VendorName string          `json:"vendor_name" validate:"required"`
	VendorType string          `json:"vendor_type" validate:"required,oneof=chemical bottle carton can shipper other"`
	ItemName   string          `json:"item_name" validate:"required"`
	Quantity   float64         `json:"quantity" validate:"gt=0"`
	Rate       decimal.Decimal `json:"rate" validate:"gt=0"`
	Notes      string          `json:"notes"`
}

type PaymentRequest struct {
	Date       string          `json:"date"`
	VendorName string          `json:"vendor_name" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"gt=0"`
	Method     string          `json:"method"`
	Notes      string          `json:"notes"`
}

type SettingsRequest struct {
	CompanyName       string  `json:"company_name" validate:"required"`
	DefaultBatchSize  int     `json:"default_batch_size" validate:"gt=0"`
	LowStockThreshold float64 `json:"low_stock_threshold" validate:"gt=0"`
	PackagingLowStock int     `json:"packaging_low_stock" validate:"gt=0"`
}

// ── Responses ───────────────────────────────────────────────────────────────

type ChemicalResponse struct {
	ID      int             `json:"id"`
	Name    string          `json:"name"`
	StockKg float64         `json:"stock_kg"`
	Rate    decimal.Decimal `json:"rate"`
}

func newChemicalResponse(c inventory.Chemical) ChemicalResponse {
	return ChemicalResponse{ID: c.ID, Name: c.Name, StockKg: c.Stock, Rate: c.Rate}
}

type PackagingResponse struct {
	Type  string          `json:"type"`
	Name  string          `json:"name"`
	Stock float64         `json:"stock"`
	Rate  decimal.Decimal `json:"rate"`
}

func newPackagingResponse(p inventory.PackagingMaterial) PackagingResponse {
	return PackagingResponse{Type: p.Type, Name: p.Name, Stock: p.Stock, Rate: p.Rate}
}

type LowStockResponse struct {
	Resource  string  `json:"resource"`
	Key       string  `json:"key"`
	Name      string  `json:"name"`
	Stock     float64 `json:"stock"`
	Threshold float64 `json:"threshold"`
}

type MovementResponse struct {
	ID        string    `json:"id"`
	Direction string    `json:"direction"`
	Resource  string    `json:"resource"`
	Key       string    `json:"key"`
	Quantity  float64   `json:"quantity"`
	Balance   float64   `json:"balance"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note"`
}

func newMovementResponse(m inventory.Movement) MovementResponse {
	dir := "in"
	if m.Type == inventory.MovementOut {
		dir = "out"
	}
	return MovementResponse{
		ID: m.ID.String(), Direction: dir, Resource: m.Resource, Key: m.Key,
		Quantity: m.Quantity, Balance: m.Balance, Timestamp: m.Timestamp, Note: m.Note,
	}
}

type IngredientResponse struct {
	ChemicalName string  `json:"chemical_name"`
	Amount       float64 `json:"amount"`
	Unit         string  `json:"unit,omitempty"`
	AmountKg     float64 `json:"amount_kg"`
}

type FormulaResponse struct {
	ProductName        string               `json:"product_name"`
	ReferenceBatchSize int                  `json:"reference_batch_size"`
	Ingredients        []IngredientResponse `json:"ingredients"`
}

func newFormulaResponse(f inventory.FormulaEntry) FormulaResponse {
	out := FormulaResponse{ProductName: f.ProductName, ReferenceBatchSize: f.ReferenceBatchSize}
	for _, ing := range f.Ingredients {
		out.Ingredients = append(out.Ingredients, IngredientResponse{
			ChemicalName: ing.ChemicalName,
			Amount:       ing.Amount,
			Unit:         ing.Unit,
			AmountKg:     inventory.NormalizeAmountKg(ing.Amount, ing.Unit),
		})
	}
	return out
}

type RequirementResponse struct {
	ChemicalName string          `json:"chemical_name"`
	RequiredKg   float64         `json:"required_kg"`
	AvailableKg  float64         `json:"available_kg"`
	ToPurchaseKg float64         `json:"to_purchase_kg"`
	RemainingKg  float64         `json:"remaining_kg"`
	UnitRate     decimal.Decimal `json:"unit_rate"`
	LineCost     decimal.Decimal `json:"line_cost"`
}

type CostResponse struct {
	TotalPurchaseCost decimal.Decimal `json:"total_purchase_cost"`
	PerUnitBaseCost   decimal.Decimal `json:"per_unit_base_cost"`
	PackingCost       decimal.Decimal `json:"packing_cost"`
	PercentageMarkup  decimal.Decimal `json:"percentage_markup"`
	HandlingFee       decimal.Decimal `json:"handling_fee"`
	PerUnitTotalCost  decimal.Decimal `json:"per_unit_total_cost"`
}

type CalculationResponse struct {
	Product       string                `json:"product"`
	BatchSize     int                   `json:"batch_size"`
	ContainerType string                `json:"container_type"`
	ContainerSize float64               `json:"container_size"`
	Requirements  []RequirementResponse `json:"requirements"`
	Cost          CostResponse          `json:"cost"`
}

func newCalculationResponse(calc *inventory.Calculation) CalculationResponse {
	out := CalculationResponse{
		Product:       calc.Formula.ProductName,
		BatchSize:     calc.BatchSize,
		ContainerType: calc.Packaging.ContainerType,
		ContainerSize: calc.Packaging.ContainerSize,
		Requirements:  make([]RequirementResponse, 0, len(calc.Requirements)),
		Cost:          CostResponse(calc.Cost),
	}
	for _, r := range calc.Requirements {
		out.Requirements = append(out.Requirements, RequirementResponse(r))
	}
	return out
}

type DeductionResponse struct {
	Resource  string  `json:"resource"`
	Key       string  `json:"key"`
	Name      string  `json:"name"`
	Requested float64 `json:"requested"`
	Before    float64 `json:"before"`
	After     float64 `json:"after"`
	Shortfall float64 `json:"shortfall"`
}

type CommitResponse struct {
	Record            ProductionRecordResponse `json:"record"`
	PackagingRequired float64                  `json:"packaging_required"`
	CartonsRequired   float64                  `json:"cartons_required"`
	Deductions        []DeductionResponse      `json:"deductions"`
	Unmet             []string                 `json:"unmet"`
	Complete          bool                     `json:"complete"`
}

func newCommitResponse(r *inventory.CommitReport) CommitResponse {
	out := CommitResponse{
		Record:            newProductionRecordResponse(r.Record),
		PackagingRequired: r.PackagingRequired,
		CartonsRequired:   r.CartonsRequired,
		Deductions:        make([]DeductionResponse, 0, len(r.Deductions)),
		Unmet:             append([]string{}, r.Unmet...),
		Complete:          r.Complete(),
	}
	for _, d := range r.Deductions {
		out.Deductions = append(out.Deductions, DeductionResponse{
			Resource: d.Resource, Key: d.Key, Name: d.Name,
			Requested: d.Requested, Before: d.Before, After: d.After, Shortfall: d.Shortfall(),
		})
	}
	return out
}

type ProductionRecordResponse struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	ProductName string    `json:"product_name"`
	BatchSize   int       `json:"batch_size"`
	Status      string    `json:"status"`
	Kind        string    `json:"kind"`
}

func newProductionRecordResponse(r inventory.ProductionRecord) ProductionRecordResponse {
	return ProductionRecordResponse{
		ID: r.ID.String(), Date: r.Date, ProductName: r.ProductName,
		BatchSize: r.BatchSize, Status: r.Status, Kind: r.Kind,
	}
}

type ProductDetailsResponse struct {
	ProductName   string  `json:"product_name"`
	ContainerType string  `json:"container_type"`
	ContainerSize float64 `json:"container_size"`
	Notes         string  `json:"notes"`
}

type TransactionResponse struct {
	ID          int             `json:"id"`
	Date        time.Time       `json:"date"`
	VendorName  string          `json:"vendor_name"`
	VendorType  string          `json:"vendor_type"`
	ItemName    string          `json:"item_name"`
	Quantity    float64         `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Notes       string          `json:"notes"`
}

type PaymentResponse struct {
	ID         int             `json:"id"`
	Date       time.Time       `json:"date"`
	VendorName string          `json:"vendor_name"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Notes      string          `json:"notes"`
}

type BalanceResponse struct {
	VendorName string          `json:"vendor_name"`
	Purchases  decimal.Decimal `json:"purchases"`
	Payments   decimal.Decimal `json:"payments"`
	Balance    decimal.Decimal `json:"balance"`
}

type SettingsResponse struct {
	CompanyName       string  `json:"company_name"`
	DefaultBatchSize  int     `json:"default_batch_size"`
	LowStockThreshold float64 `json:"low_stock_threshold"`
	PackagingLowStock int     `json:"packaging_low_stock"`
}

type ImportResponse struct {
	Applied []string `json:"applied"`
}
