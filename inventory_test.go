package inventory

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddChemicalRejectsDuplicatesIgnoringCase(t *testing.T) {
	inv := NewInventory()
	_, err := inv.AddChemical("SLES", 10, decimal.NewFromInt(300))
	require.NoError(t, err)

	_, err = inv.AddChemical(" sles ", 1, decimal.NewFromInt(1))
	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, ResourceChemical, dup.Kind)

	_, err = inv.AddChemical("", -1, decimal.NewFromInt(-1))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 3)
}

func TestChemicalIDsAreNeverReused(t *testing.T) {
	inv := NewInventory()
	a, _ := inv.AddChemical("A", 0, decimal.Zero)
	b, _ := inv.AddChemical("B", 0, decimal.Zero)
	require.NoError(t, inv.DeleteChemical(b.ID))

	c, err := inv.AddChemical("C", 0, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 3, c.ID)

	var nf *NotFoundError
	require.ErrorAs(t, inv.DeleteChemical(b.ID), &nf)
}

func TestStockNeverGoesNegative(t *testing.T) {
	inv := NewInventory()
	c, _ := inv.AddChemical("Salt", 4, decimal.NewFromInt(30))
	for _, delta := range []float64{-1, -2.5, -10, 3, -0.25, -100} {
		got, err := inv.AdjustChemicalStock(c.ID, delta, "test")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.Stock, 0.0)
	}
	moves := inv.MovementsFor(ResourceChemical, strconv.Itoa(c.ID))
	require.NotEmpty(t, moves)
	got, _ := inv.Chemical(c.ID)
	assert.Equal(t, got.Stock, moves[len(moves)-1].Balance)
	for _, m := range moves {
		assert.GreaterOrEqual(t, m.Balance, 0.0)
	}
}

func TestGetOrCreatePackaging(t *testing.T) {
	inv := NewInventory()
	p, err := inv.GetOrCreatePackaging("Carton")
	require.NoError(t, err)
	assert.Equal(t, "Cartons", p.Name)
	assert.Equal(t, 0.0, p.Stock)
	assert.True(t, p.Rate.IsZero())

	_, err = inv.AdjustPackagingStock(UnitCarton, 5, "")
	require.NoError(t, err)
	again, err := inv.GetOrCreatePackaging(UnitCarton)
	require.NoError(t, err)
	assert.Equal(t, 5.0, again.Stock)

	_, err = inv.GetOrCreatePackaging("crate")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, inv.PackagingMaterials(), 1)
}

func TestAddPackagingValidates(t *testing.T) {
	inv := NewInventory()
	p, err := inv.AddPackaging("can", "", 10, decimal.NewFromInt(90))
	require.NoError(t, err)
	assert.Equal(t, "Cans", p.Name)

	_, err = inv.AddPackaging("can", "Tins", 1, decimal.Zero)
	var dup *DuplicateNameError
	assert.ErrorAs(t, err, &dup)

	_, err = inv.AddPackaging("pallet", "", 1, decimal.Zero)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	assert.ErrorAs(t, inv.SetPackagingRate("can", decimal.NewFromInt(-1)), &ve)
	var nf *NotFoundError
	assert.ErrorAs(t, inv.SetPackagingRate("box", decimal.NewFromInt(1)), &nf)
}

func TestLowStock(t *testing.T) {
	inv := NewInventory()
	_, _ = inv.AddChemical("IPA", 3, decimal.NewFromInt(400))
	_, _ = inv.AddChemical("Salt", 30, decimal.NewFromInt(30))
	_, _ = inv.AddPackaging("bottle", "", 20, decimal.NewFromInt(20))
	_, _ = inv.AddPackaging("carton", "", 200, decimal.NewFromInt(60))

	items := inv.LowStock(10, 50)
	require.Len(t, items, 2)
	assert.Equal(t, "IPA", items[0].Name)
	assert.Equal(t, ResourceChemical, items[0].Resource)
	assert.Equal(t, UnitBottle, items[1].Key)
	assert.Equal(t, 50.0, items[1].Threshold)
}

func TestHooksSeeEveryMovement(t *testing.T) {
	inv := NewInventory()
	var seen []Movement
	inv.AddHook(func(m Movement, _ *Inventory) { seen = append(seen, m) })

	c, _ := inv.AddChemical("Borax", 2, decimal.NewFromInt(10))
	_, _ = inv.AdjustChemicalStock(c.ID, -5, "use")

	require.Len(t, seen, 2)
	assert.Equal(t, MovementIn, seen[0].Type)
	assert.Equal(t, MovementOut, seen[1].Type)
	assert.Equal(t, 5.0, seen[1].Quantity)
	assert.Equal(t, 0.0, seen[1].Balance)
}

func TestPackagingKeysAreNormalized(t *testing.T) {
	inv := NewInventory()
	_, err := inv.AddPackaging("Bottle", "", 10, decimal.NewFromInt(20))
	require.NoError(t, err)

	p, err := inv.AdjustPackagingStock(" BOTTLE ", 5, "restock")
	require.NoError(t, err)
	assert.Equal(t, 15.0, p.Stock)
	assert.Len(t, inv.MovementsFor(ResourcePackaging, UnitBottle), 2)

	require.NoError(t, inv.SetPackagingRate("Bottle", decimal.NewFromInt(25)))
	got, ok := inv.Packaging("bottle")
	require.True(t, ok)
	assert.True(t, got.Rate.Equal(decimal.NewFromInt(25)))

	require.NoError(t, inv.DeletePackaging("Bottle"))
	assert.Empty(t, inv.PackagingMaterials())
}
