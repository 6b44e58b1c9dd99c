package inventory

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// packagingNames is the fixed table of recognized container types.
var packagingNames = map[string]string{
	UnitBottle: "Bottles",
	UnitCarton: "Cartons",
	UnitCan:    "Cans",
	UnitBox:    "Boxes",
}

func IsPackagingType(t string) bool {
	_, ok := packagingNames[t]
	return ok
}

func PackagingDisplayName(t string) string {
	return packagingNames[t]
}

// Inventory holds chemical and packaging stock. It is not safe for
// concurrent use; callers serialize access.
type Inventory struct {
	chemicals      map[int]*Chemical
	packaging      map[string]*PackagingMaterial
	movements      []Movement
	lastChemicalID int
	hooks          []HookFunc
	now            func() time.Time
}

func NewInventory() *Inventory {
	return &Inventory{
		chemicals: make(map[int]*Chemical),
		packaging: make(map[string]*PackagingMaterial),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the movement timestamp source.
func (inv *Inventory) SetClock(now func() time.Time) {
	inv.now = now
}

func (inv *Inventory) AddChemical(name string, stock float64, rate decimal.Decimal) (Chemical, error) {
	name = strings.TrimSpace(name)
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "required"
	}
	if stock < 0 {
		fields["stock"] = "gte=0"
	}
	if rate.IsNegative() {
		fields["rate"] = "gte=0"
	}
	if len(fields) > 0 {
		return Chemical{}, NewValidationError(fields)
	}
	if _, ok := inv.ChemicalByName(name); ok {
		return Chemical{}, &DuplicateNameError{Kind: ResourceChemical, Name: name}
	}

	c := &Chemical{ID: inv.NextChemicalID(), Name: name, Rate: rate}
	inv.chemicals[c.ID] = c
	inv.lastChemicalID = c.ID
	if stock > 0 {
		c.Stock = stock
		inv.recordMovement(ResourceChemical, strconv.Itoa(c.ID), stock, c.Stock, "opening stock")
	}
	return *c, nil
}

// NextChemicalID never hands out an id twice, even after the highest id
// was deleted.
func (inv *Inventory) NextChemicalID() int {
	next := inv.lastChemicalID
	for id := range inv.chemicals {
		if id > next {
			next = id
		}
	}
	return next + 1
}

func (inv *Inventory) LastChemicalID() int {
	return inv.lastChemicalID
}

func (inv *Inventory) Chemical(id int) (Chemical, bool) {
	c, ok := inv.chemicals[id]
	if !ok {
		return Chemical{}, false
	}
	return *c, true
}

// ChemicalByName matches case-insensitively.
func (inv *Inventory) ChemicalByName(name string) (Chemical, bool) {
	c := inv.chemicalByName(name)
	if c == nil {
		return Chemical{}, false
	}
	return *c, true
}

func (inv *Inventory) chemicalByName(name string) *Chemical {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, c := range inv.chemicals {
		if strings.ToLower(c.Name) == key {
			return c
		}
	}
	return nil
}

func (inv *Inventory) Chemicals() []Chemical {
	out := make([]Chemical, 0, len(inv.chemicals))
	for _, c := range inv.chemicals {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AdjustChemicalStock applies deltaKg and clamps the result at zero.
func (inv *Inventory) AdjustChemicalStock(id int, deltaKg float64, note string) (Chemical, error) {
	c, ok := inv.chemicals[id]
	if !ok {
		return Chemical{}, notFound(ResourceChemical, id)
	}
	c.Stock = clampStock(c.Stock + deltaKg)
	inv.recordMovement(ResourceChemical, strconv.Itoa(id), deltaKg, c.Stock, note)
	return *c, nil
}

func (inv *Inventory) SetChemicalRate(id int, rate decimal.Decimal) error {
	if rate.IsNegative() {
		return invalid("rate", "gte=0")
	}
	c, ok := inv.chemicals[id]
	if !ok {
		return notFound(ResourceChemical, id)
	}
	c.Rate = rate
	return nil
}

func (inv *Inventory) DeleteChemical(id int) error {
	if _, ok := inv.chemicals[id]; !ok {
		return notFound(ResourceChemical, id)
	}
	if id > inv.lastChemicalID {
		inv.lastChemicalID = id
	}
	delete(inv.chemicals, id)
	return nil
}

func (inv *Inventory) AddPackaging(packType, name string, stock float64, rate decimal.Decimal) (PackagingMaterial, error) {
	packType = packagingKey(packType)
	fields := map[string]string{}
	if !IsPackagingType(packType) {
		fields["type"] = "oneof=bottle carton can box"
	}
	if stock < 0 {
		fields["stock"] = "gte=0"
	}
	if rate.IsNegative() {
		fields["rate"] = "gte=0"
	}
	if len(fields) > 0 {
		return PackagingMaterial{}, NewValidationError(fields)
	}
	if _, ok := inv.packaging[packType]; ok {
		return PackagingMaterial{}, &DuplicateNameError{Kind: ResourcePackaging, Name: packType}
	}
	if strings.TrimSpace(name) == "" {
		name = PackagingDisplayName(packType)
	}
	p := &PackagingMaterial{Type: packType, Name: strings.TrimSpace(name), Rate: rate}
	inv.packaging[packType] = p
	if stock > 0 {
		p.Stock = stock
		inv.recordMovement(ResourcePackaging, packType, stock, p.Stock, "opening stock")
	}
	return *p, nil
}

func (inv *Inventory) Packaging(packType string) (PackagingMaterial, bool) {
	packType = packagingKey(packType)
	p, ok := inv.packaging[packType]
	if !ok {
		return PackagingMaterial{}, false
	}
	return *p, true
}

func (inv *Inventory) PackagingMaterials() []PackagingMaterial {
	out := make([]PackagingMaterial, 0, len(inv.packaging))
	for _, p := range inv.packaging {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// packagingKey maps user input such as " Bottle" to the stored type tag.
func packagingKey(packType string) string {
	return strings.ToLower(strings.TrimSpace(packType))
}

// GetOrCreatePackaging returns the entry for a recognized type, creating
// it with zero stock and rate on first use.
func (inv *Inventory) GetOrCreatePackaging(packType string) (PackagingMaterial, error) {
	packType = packagingKey(packType)
	if p, ok := inv.packaging[packType]; ok {
		return *p, nil
	}
	if !IsPackagingType(packType) {
		return PackagingMaterial{}, invalid("type", "oneof=bottle carton can box")
	}
	p := &PackagingMaterial{Type: packType, Name: PackagingDisplayName(packType), Rate: decimal.Zero}
	inv.packaging[packType] = p
	return *p, nil
}

func (inv *Inventory) AdjustPackagingStock(packType string, delta float64, note string) (PackagingMaterial, error) {
	packType = packagingKey(packType)
	p, ok := inv.packaging[packType]
	if !ok {
		return PackagingMaterial{}, notFound(ResourcePackaging, packType)
	}
	p.Stock = clampStock(p.Stock + delta)
	inv.recordMovement(ResourcePackaging, packType, delta, p.Stock, note)
	return *p, nil
}

func (inv *Inventory) SetPackagingRate(packType string, rate decimal.Decimal) error {
	packType = packagingKey(packType)
	if rate.IsNegative() {
		return invalid("rate", "gte=0")
	}
	p, ok := inv.packaging[packType]
	if !ok {
		return notFound(ResourcePackaging, packType)
	}
	p.Rate = rate
	return nil
}

func (inv *Inventory) DeletePackaging(packType string) error {
	packType = packagingKey(packType)
	if _, ok := inv.packaging[packType]; !ok {
		return notFound(ResourcePackaging, packType)
	}
	delete(inv.packaging, packType)
	return nil
}

type LowStockItem struct {
	Resource  string
	Key       string
	Name      string
	Stock     float64
	Threshold float64
}

// LowStock lists chemicals under chemKg and packaging under packUnits.
func (inv *Inventory) LowStock(chemKg, packUnits float64) []LowStockItem {
	var items []LowStockItem
	for _, c := range inv.Chemicals() {
		if c.Stock < chemKg {
			items = append(items, LowStockItem{
				Resource: ResourceChemical, Key: strconv.Itoa(c.ID), Name: c.Name,
				Stock: c.Stock, Threshold: chemKg,
			})
		}
	}
	for _, p := range inv.PackagingMaterials() {
		if p.Stock < packUnits {
			items = append(items, LowStockItem{
				Resource: ResourcePackaging, Key: p.Type, Name: p.Name,
				Stock: p.Stock, Threshold: packUnits,
			})
		}
	}
	return items
}

func clampStock(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
