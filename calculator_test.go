package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func algaecide(t *testing.T) FormulaEntry {
	t.Helper()
	f, ok := DefaultCatalog().Lookup("pool algaecide")
	require.True(t, ok)
	return f
}

func stockedInventory(t *testing.T) *Inventory {
	t.Helper()
	inv := NewInventory()
	_, err := inv.AddChemical("Copper Sulphate", 5, decimal.NewFromInt(500))
	require.NoError(t, err)
	_, err = inv.AddChemical("Citric Acid", 50, decimal.NewFromInt(200))
	require.NoError(t, err)
	return inv
}

func TestComputeRequirementsNetsAgainstStock(t *testing.T) {
	inv := stockedInventory(t)
	calc, err := ComputeRequirements(algaecide(t), 300, inv, DefaultPackaging(), DefaultCostPolicy())
	require.NoError(t, err)
	require.Len(t, calc.Requirements, 2)

	cu := calc.Requirements[0]
	assert.Equal(t, "Copper Sulphate", cu.ChemicalName)
	assert.Equal(t, 18.0, cu.RequiredKg)
	assert.Equal(t, 13.0, cu.ToPurchaseKg)
	assert.Equal(t, 0.0, cu.RemainingKg)
	assert.True(t, decimal.NewFromInt(6500).Equal(cu.LineCost))

	citric := calc.Requirements[1]
	assert.Equal(t, 0.0, citric.ToPurchaseKg)
	assert.Equal(t, 41.0, citric.RemainingKg)
	assert.True(t, citric.LineCost.IsZero())

	assert.True(t, decimal.NewFromInt(6500).Equal(calc.TotalPurchaseCost()))
}

func TestComputeRequirementsIsPure(t *testing.T) {
	inv := stockedInventory(t)
	before := inv.Chemicals()
	moves := len(inv.Movements())

	a, err := ComputeRequirements(algaecide(t), 450, inv, DefaultPackaging(), DefaultCostPolicy())
	require.NoError(t, err)
	b, err := ComputeRequirements(algaecide(t), 450, inv, DefaultPackaging(), DefaultCostPolicy())
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, before, inv.Chemicals())
	assert.Len(t, inv.Movements(), moves)
}

func TestComputeRequirementsMissingChemical(t *testing.T) {
	inv := NewInventory()
	_, err := inv.AddChemical("Citric Acid", 50, decimal.NewFromInt(200))
	require.NoError(t, err)
	before := inv.Chemicals()

	calc, err := ComputeRequirements(algaecide(t), 300, inv, DefaultPackaging(), DefaultCostPolicy())
	assert.Nil(t, calc)
	var mc *MissingChemicalError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, []string{"Copper Sulphate"}, mc.Names)
	assert.Equal(t, before, inv.Chemicals())
}

func TestComputeRequirementsNeverBothPositive(t *testing.T) {
	inv := stockedInventory(t)
	for _, batch := range []int{0, 1, 83, 300, 5000} {
		calc, err := ComputeRequirements(algaecide(t), batch, inv, DefaultPackaging(), DefaultCostPolicy())
		require.NoError(t, err)
		for _, r := range calc.Requirements {
			assert.GreaterOrEqual(t, r.RequiredKg, 0.0)
			assert.False(t, r.ToPurchaseKg > 0 && r.RemainingKg > 0, "batch %d %s", batch, r.ChemicalName)
		}
	}
}

func TestComputeRequirementsRejectsBadInput(t *testing.T) {
	inv := stockedInventory(t)
	_, err := ComputeRequirements(algaecide(t), -1, inv, DefaultPackaging(), DefaultCostPolicy())
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "batch_size")

	_, err = ComputeRequirements(FormulaEntry{ProductName: "x"}, 10, inv, DefaultPackaging(), DefaultCostPolicy())
	require.ErrorAs(t, err, &ve)
}

func TestBuildCost(t *testing.T) {
	p := DefaultCostPolicy()
	b := p.BuildCost(decimal.NewFromInt(1000), 500, UnitBottle)
	assert.Equal(t, "2", b.PerUnitBaseCost.String())
	assert.Equal(t, "127", b.PackingCost.String())
	assert.Equal(t, "25.4", b.PercentageMarkup.String())
	assert.Equal(t, "50", b.HandlingFee.String())
	assert.Equal(t, "202.4", b.PerUnitTotalCost.String())

	can := p.BuildCost(decimal.NewFromInt(1000), 500, UnitCan)
	assert.Equal(t, "100", can.HandlingFee.String())
	assert.Equal(t, "252.4", can.PerUnitTotalCost.String())

	zero := p.BuildCost(decimal.NewFromInt(1000), 0, UnitBottle)
	assert.True(t, zero.PerUnitBaseCost.IsZero())
}
