package inventory

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type Deduction struct {
	Resource  string
	Key       string
	Name      string
	Requested float64
	Before    float64
	After     float64
}

// Shortfall is the part of the request that stock could not cover.
func (d Deduction) Shortfall() float64 {
	if covered := d.Before - d.After; d.Requested > covered {
		return d.Requested - covered
	}
	return 0
}

// CommitReport tells the caller exactly what a commit changed. Unmet lists
// every inventory entry that could not be updated.
type CommitReport struct {
	Record            ProductionRecord
	PackagingRequired float64
	CartonsRequired   float64
	Deductions        []Deduction
	Unmet             []string
}

func (r *CommitReport) Complete() bool {
	return len(r.Unmet) == 0
}

// Commit applies a computed production to inv and appends the production
// record to history. Steps that cannot be applied are skipped and listed in
// the report rather than aborting the others.
func Commit(calc *Calculation, inv *Inventory, history *[]ProductionRecord, at time.Time) (*CommitReport, error) {
	if calc == nil || !calc.computed {
		return nil, invalid("calculation", "computed")
	}
	if history == nil {
		return nil, invalid("history", "required")
	}

	report := &CommitReport{}
	note := fmt.Sprintf("production %s x%d", calc.Formula.ProductName, calc.BatchSize)

	for _, r := range calc.Requirements {
		c := inv.chemicalByName(r.ChemicalName)
		if c == nil {
			report.Unmet = append(report.Unmet, ResourceChemical+":"+r.ChemicalName)
			continue
		}
		before := c.Stock
		after, _ := inv.AdjustChemicalStock(c.ID, -r.RequiredKg, note)
		report.Deductions = append(report.Deductions, Deduction{
			Resource:  ResourceChemical,
			Key:       strconv.Itoa(c.ID),
			Name:      c.Name,
			Requested: r.RequiredKg,
			Before:    before,
			After:     after.Stock,
		})
	}

	pack := calc.Packaging
	report.PackagingRequired = ContainersFor(pack.ContainerType, calc.BatchSize, pack.ContainerSize)
	report.deductPackaging(inv, pack.ContainerType, report.PackagingRequired, note)

	if pack.ContainerType == UnitBottle {
		report.CartonsRequired = CartonsForBottles(report.PackagingRequired)
		report.deductPackaging(inv, UnitCarton, report.CartonsRequired, note)
	}

	report.Record = ProductionRecord{
		ID:          uuid.New(),
		Date:        at,
		ProductName: calc.Formula.ProductName,
		BatchSize:   calc.BatchSize,
		Status:      ProductionStatusCompleted,
		Kind:        ProductionKindFormula,
	}
	*history = append(*history, report.Record)
	return report, nil
}

func (r *CommitReport) deductPackaging(inv *Inventory, packType string, qty float64, note string) {
	p, ok := inv.Packaging(packType)
	if !ok {
		r.Unmet = append(r.Unmet, ResourcePackaging+":"+packType)
		return
	}
	after, _ := inv.AdjustPackagingStock(packType, -qty, note)
	r.Deductions = append(r.Deductions, Deduction{
		Resource:  ResourcePackaging,
		Key:       packType,
		Name:      p.Name,
		Requested: qty,
		Before:    p.Stock,
		After:     after.Stock,
	})
}
