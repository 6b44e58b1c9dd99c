package inventory

import (
	"fmt"
	"sort"
	"strings"
)

// FormulaCatalog is a read-only product -> formula table.
type FormulaCatalog struct {
	entries map[string]FormulaEntry
	order   []string
}

func NewFormulaCatalog(entries ...FormulaEntry) (*FormulaCatalog, error) {
	c := &FormulaCatalog{entries: make(map[string]FormulaEntry, len(entries))}
	for _, e := range entries {
		key := catalogKey(e.ProductName)
		if _, dup := c.entries[key]; dup {
			return nil, fmt.Errorf("duplicate formula for product %q", e.ProductName)
		}
		c.entries[key] = e
		c.order = append(c.order, e.ProductName)
	}
	sort.Strings(c.order)
	return c, nil
}

func (c *FormulaCatalog) Lookup(product string) (FormulaEntry, bool) {
	e, ok := c.entries[catalogKey(product)]
	return e, ok
}

func (c *FormulaCatalog) Products() []string {
	return append([]string(nil), c.order...)
}

func catalogKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func mustFormula(product string, ref int, ingredients ...Ingredient) FormulaEntry {
	e, err := NewFormulaEntry(product, ref, ingredients)
	if err != nil {
		panic(err)
	}
	return e
}

// DefaultCatalog is the production formula book. Amounts are per reference
// batch; values below 1 are grams by convention (see NormalizeAmountKg).
func DefaultCatalog() *FormulaCatalog {
	c, err := NewFormulaCatalog(
		mustFormula("Dish Wash Liquid", 500,
			Ingredient{ChemicalName: "Sulphonic Acid", Amount: 40},
			Ingredient{ChemicalName: "Caustic Soda", Amount: 6},
			Ingredient{ChemicalName: "SLES", Amount: 25},
			Ingredient{ChemicalName: "Salt", Amount: 12},
			Ingredient{ChemicalName: "Lemon Perfume", Amount: 0.75},
			Ingredient{ChemicalName: "Yellow Colour", Amount: 0.05},
		),
		mustFormula("Floor Cleaner", 550,
			Ingredient{ChemicalName: "Pine Oil", Amount: 22},
			Ingredient{ChemicalName: "Soap Noodles", Amount: 15},
			Ingredient{ChemicalName: "Formalin", Amount: 2},
			Ingredient{ChemicalName: "Green Colour", Amount: 0.08},
		),
		mustFormula("Glass Cleaner", 300,
			Ingredient{ChemicalName: "IPA", Amount: 30},
			Ingredient{ChemicalName: "SLES", Amount: 3},
			Ingredient{ChemicalName: "Blue Colour", Amount: 0.02},
		),
		mustFormula("Hand Wash", 500,
			Ingredient{ChemicalName: "SLES", Amount: 60},
			Ingredient{ChemicalName: "CAPB", Amount: 15},
			Ingredient{ChemicalName: "Glycerin", Amount: 10},
			Ingredient{ChemicalName: "Citric Acid", Amount: 1.5},
			Ingredient{ChemicalName: "Salt", Amount: 8},
			Ingredient{ChemicalName: "Rose Perfume", Amount: 0.9},
		),
		mustFormula("Pool Algaecide", 300,
			Ingredient{ChemicalName: "Copper Sulphate", Amount: 18},
			Ingredient{ChemicalName: "Citric Acid", Amount: 9},
		),
		mustFormula("Toilet Cleaner", 500,
			Ingredient{ChemicalName: "Hydrochloric Acid", Amount: 50},
			Ingredient{ChemicalName: "Thickener", Amount: 4},
			Ingredient{ChemicalName: "Blue Colour", Amount: 0.04},
		),
	)
	if err != nil {
		panic(err)
	}
	return c
}
