package inventory

import (
	"math"
	"strings"
)

const (
	UnitGram   = "g"
	UnitKg     = "kg"
	UnitBottle = "bottle"
	UnitCarton = "carton"
	UnitCan    = "can"
	UnitBox    = "box"
)

// BottlesPerCarton is how many bottles one carton holds.
const BottlesPerCarton = 12

func GramsToKg(x float64) float64 {
	return x / 1000
}

func KgToGrams(x float64) float64 {
	return x * 1000
}

type UnitConversion struct {
	FromUnit string
	ToUnit   string
	Factor   float64 // FromUnit * Factor = ToUnit
}

type UnitConverter struct {
	rules map[string]map[string]float64 // fromUnit -> toUnit -> factor
}

func NewUnitConverter() *UnitConverter {
	return &UnitConverter{
		rules: make(map[string]map[string]float64),
	}
}

// DefaultUnitConverter knows the mass and packaging conversions used by
// production: 1 g = 0.001 kg and 1 carton = 12 bottles, both directions.
func DefaultUnitConverter() *UnitConverter {
	uc := NewUnitConverter()
	uc.AddRule(UnitConversion{FromUnit: UnitGram, ToUnit: UnitKg, Factor: 0.001})
	uc.AddRule(UnitConversion{FromUnit: UnitKg, ToUnit: UnitGram, Factor: 1000})
	uc.AddRule(UnitConversion{FromUnit: UnitCarton, ToUnit: UnitBottle, Factor: BottlesPerCarton})
	uc.AddRule(UnitConversion{FromUnit: UnitBottle, ToUnit: UnitCarton, Factor: 1.0 / BottlesPerCarton})
	return uc
}

var massUnits = DefaultUnitConverter()

// Add a rule like: 1 carton = 12 bottle → (From: carton, To: bottle, Factor: 12)
func (uc *UnitConverter) AddRule(rule UnitConversion) {
	if uc.rules[rule.FromUnit] == nil {
		uc.rules[rule.FromUnit] = make(map[string]float64)
	}
	uc.rules[rule.FromUnit][rule.ToUnit] = rule.Factor
}

// Convert returns qty expressed in toUnit. The second result is false when
// no rule exists; qty is then returned unchanged.
func (uc *UnitConverter) Convert(qty float64, fromUnit, toUnit string) (float64, bool) {
	if fromUnit == toUnit {
		return qty, true
	}
	if convs, ok := uc.rules[fromUnit]; ok {
		if factor, ok := convs[toUnit]; ok {
			return qty * factor, true
		}
	}
	return qty, false
}

// NormalizeAmountKg turns a formula amount into kilograms. An explicit unit
// wins; without one, amounts with magnitude below 1 are read as grams.
func NormalizeAmountKg(amount float64, unit string) float64 {
	if unit = strings.ToLower(strings.TrimSpace(unit)); unit != "" {
		if kg, ok := massUnits.Convert(amount, unit, UnitKg); ok {
			return kg
		}
	}
	if math.Abs(amount) < 1 {
		return GramsToKg(amount)
	}
	return amount
}

// ContainersFor returns how many containers a batch fills. Cans are whole
// units; every other container may be fractional.
func ContainersFor(containerType string, batchSize int, containerSize float64) float64 {
	if containerSize <= 0 {
		return 0
	}
	n := float64(batchSize) / containerSize
	if containerType == UnitCan {
		return math.Ceil(n)
	}
	return n
}

// CartonsForBottles rounds partial cartons up: (ceil(bottles) + 11) / 12
// in integer division, which is ceil(bottles/12). It does not apply a
// second ceil to (bottles+11)/12, so 12 bottles fill exactly one carton.
func CartonsForBottles(bottles float64) float64 {
	if bottles <= 0 {
		return 0
	}
	whole := int(math.Ceil(bottles))
	return float64((whole + BottlesPerCarton - 1) / BottlesPerCarton)
}
