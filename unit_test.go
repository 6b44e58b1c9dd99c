package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAmountKg(t *testing.T) {
	tests := []struct {
		amount float64
		unit   string
		want   float64
	}{
		{40, "", 40},
		{0.75, "", 0.00075},
		{1, "", 1},
		{0.5, "kg", 0.5},
		{250, "g", 0.25},
		{250, " G ", 0.25},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeAmountKg(tt.amount, tt.unit), 1e-12, "%v %q", tt.amount, tt.unit)
	}
	assert.Equal(t, 250.0, KgToGrams(0.25))
}

func TestContainersFor(t *testing.T) {
	assert.Equal(t, 40.0, ContainersFor(UnitCan, 1000, 25))
	assert.Equal(t, 41.0, ContainersFor(UnitCan, 1001, 25))
	assert.Equal(t, 13.0, ContainersFor(UnitBottle, 13, 1))
	assert.Equal(t, 2.5, ContainersFor(UnitBottle, 5, 2))
	assert.Equal(t, 0.0, ContainersFor(UnitBottle, 5, 0))
}

func TestCartonsForBottles(t *testing.T) {
	assert.Equal(t, 2.0, CartonsForBottles(13))
	assert.Equal(t, 1.0, CartonsForBottles(12))
	assert.Equal(t, 2.0, CartonsForBottles(14))
	assert.Equal(t, 2.0, CartonsForBottles(24))
	assert.Equal(t, 1.0, CartonsForBottles(0.5))
	assert.Equal(t, 0.0, CartonsForBottles(0))
}

func TestUnitConverter(t *testing.T) {
	uc := DefaultUnitConverter()

	v, ok := uc.Convert(2, UnitCarton, UnitBottle)
	assert.True(t, ok)
	assert.Equal(t, 24.0, v)

	v, ok = uc.Convert(1500, UnitGram, UnitKg)
	assert.True(t, ok)
	assert.InDelta(t, 1.5, v, 1e-12)

	v, ok = uc.Convert(3, UnitCan, UnitKg)
	assert.False(t, ok)
	assert.Equal(t, 3.0, v)
}
