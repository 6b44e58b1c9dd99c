package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Chemical struct {
	ID    int
	Name  string
	Stock float64 // kg
	Rate  decimal.Decimal
}

type PackagingMaterial struct {
	Type  string
	Name  string
	Stock float64 // units
	Rate  decimal.Decimal
}

type Ingredient struct {
	ChemicalName string
	Amount       float64 // per reference batch
	Unit         string  // optional: "kg" or "g"
}

type FormulaEntry struct {
	ProductName        string
	ReferenceBatchSize int
	Ingredients        []Ingredient
}

// NewFormulaEntry validates and copies a formula so later edits to the
// caller's slice cannot leak into the catalog.
func NewFormulaEntry(product string, referenceBatchSize int, ingredients []Ingredient) (FormulaEntry, error) {
	fields := map[string]string{}
	product = strings.TrimSpace(product)
	if product == "" {
		fields["product_name"] = "required"
	}
	if referenceBatchSize <= 0 {
		fields["reference_batch_size"] = "gt=0"
	}
	if len(ingredients) == 0 {
		fields["ingredients"] = "required"
	}
	for _, ing := range ingredients {
		if strings.TrimSpace(ing.ChemicalName) == "" {
			fields["ingredients.chemical_name"] = "required"
		}
		if ing.Amount < 0 {
			fields["ingredients.amount"] = "gte=0"
		}
	}
	if len(fields) > 0 {
		return FormulaEntry{}, NewValidationError(fields)
	}
	return FormulaEntry{
		ProductName:        product,
		ReferenceBatchSize: referenceBatchSize,
		Ingredients:        append([]Ingredient(nil), ingredients...),
	}, nil
}

type ProductionRequirement struct {
	ChemicalName string
	RequiredKg   float64
	AvailableKg  float64
	ToPurchaseKg float64
	RemainingKg  float64
	UnitRate     decimal.Decimal
	LineCost     decimal.Decimal
}

const (
	ProductionStatusCompleted = "Completed"
	ProductionKindFormula     = "formula"
)

type ProductionRecord struct {
	ID          uuid.UUID
	Date        time.Time
	ProductName string
	BatchSize   int
	Status      string
	Kind        string
}

const (
	VendorTypeChemical = "chemical"
	VendorTypeBottle   = "bottle"
	VendorTypeCarton   = "carton"
	VendorTypeCan      = "can"
	VendorTypeShipper  = "shipper"
	VendorTypeOther    = "other"
)

var VendorTypes = []string{
	VendorTypeChemical,
	VendorTypeBottle,
	VendorTypeCarton,
	VendorTypeCan,
	VendorTypeShipper,
	VendorTypeOther,
}

func IsVendorType(t string) bool {
	for _, v := range VendorTypes {
		if v == t {
			return true
		}
	}
	return false
}

type VendorTransaction struct {
	ID          int
	Date        time.Time
	VendorName  string
	VendorType  string
	ItemName    string
	Quantity    float64
	Rate        decimal.Decimal
	TotalAmount decimal.Decimal
	Notes       string
}

type VendorPayment struct {
	ID         int
	Date       time.Time
	VendorName string
	Amount     decimal.Decimal
	Method     string
	Notes      string
}

// PackagingInfo names the container a product is filled into and how many
// batch units one container holds.
type PackagingInfo struct {
	ContainerType string
	ContainerSize float64
}

func DefaultPackaging() PackagingInfo {
	return PackagingInfo{ContainerType: UnitBottle, ContainerSize: 1}
}

type ProductDetails struct {
	ProductName   string
	ContainerType string
	ContainerSize float64
	Notes         string
}

func (d ProductDetails) Packaging() PackagingInfo {
	if d.ContainerType == "" || d.ContainerSize <= 0 {
		return DefaultPackaging()
	}
	return PackagingInfo{ContainerType: d.ContainerType, ContainerSize: d.ContainerSize}
}

type Settings struct {
	CompanyName       string
	DefaultBatchSize  int
	LowStockThreshold float64 // kg
	PackagingLowStock int     // units
}

func DefaultSettings() Settings {
	return Settings{
		CompanyName:       "Chemworks",
		DefaultBatchSize:  500,
		LowStockThreshold: 10,
		PackagingLowStock: 50,
	}
}

func (s Settings) Validate() error {
	fields := map[string]string{}
	if s.DefaultBatchSize <= 0 {
		fields["default_batch_size"] = "gt=0"
	}
	if s.LowStockThreshold <= 0 {
		fields["low_stock_threshold"] = "gt=0"
	}
	if s.PackagingLowStock <= 0 {
		fields["packaging_low_stock"] = "gt=0"
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}
