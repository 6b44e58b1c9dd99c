package inventory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var commitTime = time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)

func TestCommitDeductsChemicalsAndPackaging(t *testing.T) {
	inv := stockedInventory(t)
	_, err := inv.AddPackaging(UnitBottle, "", 100, decimal.NewFromInt(20))
	require.NoError(t, err)
	_, err = inv.AddPackaging(UnitCarton, "", 10, decimal.NewFromInt(60))
	require.NoError(t, err)

	calc, err := ComputeRequirements(algaecide(t), 13, inv, DefaultPackaging(), DefaultCostPolicy())
	require.NoError(t, err)

	var history []ProductionRecord
	rep, err := Commit(calc, inv, &history, commitTime)
	require.NoError(t, err)
	assert.True(t, rep.Complete())
	assert.Equal(t, 13.0, rep.PackagingRequired)
	assert.Equal(t, 2.0, rep.CartonsRequired)

	bottles, _ := inv.Packaging(UnitBottle)
	assert.Equal(t, 87.0, bottles.Stock)
	cartons, _ := inv.Packaging(UnitCarton)
	assert.Equal(t, 8.0, cartons.Stock)
	cu, _ := inv.ChemicalByName("Copper Sulphate")
	assert.InDelta(t, 5-0.78, cu.Stock, 1e-9)

	require.Len(t, history, 1)
	assert.Equal(t, "Pool Algaecide", history[0].ProductName)
	assert.Equal(t, ProductionStatusCompleted, history[0].Status)
	assert.Equal(t, commitTime, history[0].Date)
	assert.Equal(t, rep.Record, history[0])
}

func TestCommitClampsAtZero(t *testing.T) {
	inv := stockedInventory(t)
	calc, err := ComputeRequirements(algaecide(t), 3000, inv, DefaultPackaging(), DefaultCostPolicy())
	require.NoError(t, err)

	var history []ProductionRecord
	rep, err := Commit(calc, inv, &history, commitTime)
	require.NoError(t, err)

	for _, c := range inv.Chemicals() {
		assert.GreaterOrEqual(t, c.Stock, 0.0, c.Name)
	}
	cu, _ := inv.ChemicalByName("Copper Sulphate")
	assert.Equal(t, 0.0, cu.Stock)
	assert.Equal(t, 175.0, rep.Deductions[0].Shortfall())
}

func TestCommitCansRoundUp(t *testing.T) {
	inv := stockedInventory(t)
	_, err := inv.AddPackaging(UnitCan, "", 100, decimal.NewFromInt(90))
	require.NoError(t, err)
	pack := PackagingInfo{ContainerType: UnitCan, ContainerSize: 25}

	calc, err := ComputeRequirements(algaecide(t), 1000, inv, pack, DefaultCostPolicy())
	require.NoError(t, err)
	assert.Equal(t, "100", calc.Cost.HandlingFee.String())

	var history []ProductionRecord
	rep, err := Commit(calc, inv, &history, commitTime)
	require.NoError(t, err)
	assert.Equal(t, 40.0, rep.PackagingRequired)
	assert.Equal(t, 0.0, rep.CartonsRequired)
	cans, _ := inv.Packaging(UnitCan)
	assert.Equal(t, 60.0, cans.Stock)
}

func TestCommitReportsMissingPackaging(t *testing.T) {
	inv := stockedInventory(t)
	calc, err := ComputeRequirements(algaecide(t), 24, inv, DefaultPackaging(), DefaultCostPolicy())
	require.NoError(t, err)

	var history []ProductionRecord
	rep, err := Commit(calc, inv, &history, commitTime)
	require.NoError(t, err)
	assert.False(t, rep.Complete())
	assert.Equal(t, []string{"packaging:bottle", "packaging:carton"}, rep.Unmet)
	assert.Len(t, history, 1)
	_, ok := inv.Packaging(UnitBottle)
	assert.False(t, ok)
}

func TestCommitRejectsHandBuiltCalculation(t *testing.T) {
	inv := stockedInventory(t)
	var history []ProductionRecord
	_, err := Commit(&Calculation{Formula: algaecide(t), BatchSize: 10}, inv, &history, commitTime)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, history)
}
