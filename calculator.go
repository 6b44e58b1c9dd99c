package inventory

import (
	"math"

	"github.com/shopspring/decimal"
)

// CostPolicy holds the fixed figures of the unit cost build-up.
type CostPolicy struct {
	PackingMaterialCost decimal.Decimal
	MarkupRate          decimal.Decimal
	CanHandlingFee      decimal.Decimal
	HandlingFee         decimal.Decimal
}

func DefaultCostPolicy() CostPolicy {
	return CostPolicy{
		PackingMaterialCost: decimal.NewFromInt(125),
		MarkupRate:          decimal.NewFromFloat(0.20),
		CanHandlingFee:      decimal.NewFromInt(100),
		HandlingFee:         decimal.NewFromInt(50),
	}
}

func (p CostPolicy) HandlingFeeFor(containerType string) decimal.Decimal {
	if containerType == UnitCan {
		return p.CanHandlingFee
	}
	return p.HandlingFee
}

type CostBreakdown struct {
	TotalPurchaseCost decimal.Decimal
	PerUnitBaseCost   decimal.Decimal
	PackingCost       decimal.Decimal
	PercentageMarkup  decimal.Decimal
	HandlingFee       decimal.Decimal
	PerUnitTotalCost  decimal.Decimal
}

// BuildCost runs the per-unit build-up: base -> packing -> markup -> fee.
func (p CostPolicy) BuildCost(totalPurchaseCost decimal.Decimal, batchSize int, containerType string) CostBreakdown {
	b := CostBreakdown{TotalPurchaseCost: totalPurchaseCost, PerUnitBaseCost: decimal.Zero}
	if batchSize > 0 {
		b.PerUnitBaseCost = totalPurchaseCost.Div(decimal.NewFromInt(int64(batchSize)))
	}
	b.PackingCost = b.PerUnitBaseCost.Add(p.PackingMaterialCost)
	b.PercentageMarkup = b.PackingCost.Mul(p.MarkupRate)
	b.HandlingFee = p.HandlingFeeFor(containerType)
	b.PerUnitTotalCost = b.PackingCost.Add(b.PercentageMarkup).Add(b.HandlingFee)
	return b
}

// ChemicalLookup is the read side of Inventory the calculator needs.
type ChemicalLookup interface {
	ChemicalByName(name string) (Chemical, bool)
}

// Calculation is the result of ComputeRequirements. Only a Calculation
// produced there can be committed.
type Calculation struct {
	Formula      FormulaEntry
	BatchSize    int
	Packaging    PackagingInfo
	Requirements []ProductionRequirement
	Cost         CostBreakdown

	computed bool
}

func (c *Calculation) TotalPurchaseCost() decimal.Decimal { return c.Cost.TotalPurchaseCost }
func (c *Calculation) PerUnitBaseCost() decimal.Decimal   { return c.Cost.PerUnitBaseCost }
func (c *Calculation) PerUnitTotalCost() decimal.Decimal  { return c.Cost.PerUnitTotalCost }

// ComputeRequirements scales a formula to batchSize and nets it against
// current stock. It reads inv but never writes to it.
func ComputeRequirements(formula FormulaEntry, batchSize int, inv ChemicalLookup, packaging PackagingInfo, policy CostPolicy) (*Calculation, error) {
	if formula.ReferenceBatchSize <= 0 {
		return nil, invalid("reference_batch_size", "gt=0")
	}
	if batchSize < 0 {
		return nil, invalid("batch_size", "gte=0")
	}
	if packaging.ContainerType == "" {
		packaging = DefaultPackaging()
	}

	resolved := make([]Chemical, len(formula.Ingredients))
	var missing []string
	for i, ing := range formula.Ingredients {
		c, ok := inv.ChemicalByName(ing.ChemicalName)
		if !ok {
			missing = append(missing, ing.ChemicalName)
			continue
		}
		resolved[i] = c
	}
	if len(missing) > 0 {
		return nil, &MissingChemicalError{Names: missing}
	}

	scale := float64(batchSize) / float64(formula.ReferenceBatchSize)
	reqs := make([]ProductionRequirement, 0, len(formula.Ingredients))
	total := decimal.Zero
	for i, ing := range formula.Ingredients {
		c := resolved[i]
		required := NormalizeAmountKg(ing.Amount, ing.Unit) * scale
		r := ProductionRequirement{
			ChemicalName: c.Name,
			RequiredKg:   required,
			AvailableKg:  c.Stock,
			ToPurchaseKg: math.Max(0, required-c.Stock),
			RemainingKg:  math.Max(0, c.Stock-required),
			UnitRate:     c.Rate,
		}
		r.LineCost = decimal.NewFromFloat(r.ToPurchaseKg).Mul(r.UnitRate)
		total = total.Add(r.LineCost)
		reqs = append(reqs, r)
	}

	return &Calculation{
		Formula:      formula,
		BatchSize:    batchSize,
		Packaging:    packaging,
		Requirements: reqs,
		Cost:         policy.BuildCost(total, batchSize, packaging.ContainerType),
		computed:     true,
	}, nil
}
