package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type Sequences struct {
	ChemicalID    int
	TransactionID int
	PaymentID     int
}

// Document is the persisted form of State: plain lists a Store can write
// and read back without knowing the engine's invariants.
type Document struct {
	Chemicals      []Chemical
	Packaging      []PackagingMaterial
	Transactions   []VendorTransaction
	Payments       []VendorPayment
	History        []ProductionRecord
	ProductDetails []ProductDetails
	Settings       Settings
	Sequences      Sequences
	Movements      []Movement
}

// Store loads and saves a whole Document at once. Load returns ErrNoState
// when nothing was saved yet.
type Store interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

// State is the application state every operation works on.
type State struct {
	Inventory      *Inventory
	Ledger         *VendorLedger
	History        []ProductionRecord
	ProductDetails map[string]ProductDetails
	Settings       Settings
}

func NewState(settings Settings) *State {
	return &State{
		Inventory:      NewInventory(),
		Ledger:         NewVendorLedger(),
		ProductDetails: make(map[string]ProductDetails),
		Settings:       settings,
	}
}

// PackagingFor returns the product's container, or the default bottle.
func (s *State) PackagingFor(product string) PackagingInfo {
	if d, ok := s.ProductDetails[catalogKey(product)]; ok {
		return d.Packaging()
	}
	return DefaultPackaging()
}

func (s *State) SetProductDetails(d ProductDetails) error {
	d.ProductName = strings.TrimSpace(d.ProductName)
	d.ContainerType = strings.ToLower(strings.TrimSpace(d.ContainerType))
	fields := map[string]string{}
	if d.ProductName == "" {
		fields["product_name"] = "required"
	}
	if !IsPackagingType(d.ContainerType) {
		fields["container_type"] = "oneof=bottle carton can box"
	}
	if d.ContainerSize <= 0 {
		fields["container_size"] = "gt=0"
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	s.ProductDetails[catalogKey(d.ProductName)] = d
	return nil
}

func (s *State) DeleteProductDetails(product string) error {
	key := catalogKey(product)
	if _, ok := s.ProductDetails[key]; !ok {
		return notFound("product details", product)
	}
	delete(s.ProductDetails, key)
	return nil
}

func (s *State) ProductDetailsList() []ProductDetails {
	out := make([]ProductDetails, 0, len(s.ProductDetails))
	for _, d := range s.ProductDetails {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out
}

func (s *State) Document() *Document {
	return &Document{
		Chemicals:      s.Inventory.Chemicals(),
		Packaging:      s.Inventory.PackagingMaterials(),
		Transactions:   s.Ledger.Transactions(),
		Payments:       s.Ledger.Payments(),
		History:        append([]ProductionRecord(nil), s.History...),
		ProductDetails: s.ProductDetailsList(),
		Settings:       s.Settings,
		Sequences: Sequences{
			ChemicalID:    s.Inventory.lastChemicalID,
			TransactionID: s.Ledger.lastTransactionID,
			PaymentID:     s.Ledger.lastPaymentID,
		},
		Movements: s.Inventory.Movements(),
	}
}

// StateFromDocument rebuilds a State, rejecting duplicate keys and clamping
// any negative stock a hand-edited document may carry.
func StateFromDocument(doc *Document) (*State, error) {
	settings := doc.Settings
	if settings.Validate() != nil {
		settings = mergeSettings(DefaultSettings(), settings)
	}
	s := NewState(settings)
	inv := s.Inventory

	names := map[string]bool{}
	for _, c := range doc.Chemicals {
		if c.ID <= 0 {
			return nil, fmt.Errorf("chemical %q has invalid id %d", c.Name, c.ID)
		}
		if _, dup := inv.chemicals[c.ID]; dup {
			return nil, fmt.Errorf("duplicate chemical id %d", c.ID)
		}
		key := strings.ToLower(c.Name)
		if names[key] {
			return nil, &DuplicateNameError{Kind: ResourceChemical, Name: c.Name}
		}
		names[key] = true
		c.Stock = clampStock(c.Stock)
		cc := c
		inv.chemicals[c.ID] = &cc
	}
	inv.lastChemicalID = max(doc.Sequences.ChemicalID, inv.NextChemicalID()-1)

	for _, p := range doc.Packaging {
		if _, dup := inv.packaging[p.Type]; dup {
			return nil, &DuplicateNameError{Kind: ResourcePackaging, Name: p.Type}
		}
		p.Stock = clampStock(p.Stock)
		pp := p
		inv.packaging[p.Type] = &pp
	}
	inv.movements = append([]Movement(nil), doc.Movements...)

	if err := checkIDs("transaction", len(doc.Transactions), func(i int) int { return doc.Transactions[i].ID }); err != nil {
		return nil, err
	}
	if err := checkIDs("payment", len(doc.Payments), func(i int) int { return doc.Payments[i].ID }); err != nil {
		return nil, err
	}
	l := s.Ledger
	l.transactions = append([]VendorTransaction(nil), doc.Transactions...)
	l.payments = append([]VendorPayment(nil), doc.Payments...)
	l.lastTransactionID = nextID(doc.Sequences.TransactionID, len(l.transactions), func(i int) int { return l.transactions[i].ID }) - 1
	l.lastPaymentID = nextID(doc.Sequences.PaymentID, len(l.payments), func(i int) int { return l.payments[i].ID }) - 1

	s.History = append([]ProductionRecord(nil), doc.History...)
	for _, d := range doc.ProductDetails {
		s.ProductDetails[catalogKey(d.ProductName)] = d
	}
	return s, nil
}

// checkIDs rejects non-positive and repeated ids; edits and deletes find
// entries by id.
func checkIDs(kind string, n int, idAt func(i int) int) error {
	seen := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		id := idAt(i)
		if id <= 0 {
			return fmt.Errorf("%s has invalid id %d", kind, id)
		}
		if seen[id] {
			return fmt.Errorf("duplicate %s id %d", kind, id)
		}
		seen[id] = true
	}
	return nil
}

func mergeSettings(def, got Settings) Settings {
	if got.CompanyName != "" {
		def.CompanyName = got.CompanyName
	}
	if got.DefaultBatchSize > 0 {
		def.DefaultBatchSize = got.DefaultBatchSize
	}
	if got.LowStockThreshold > 0 {
		def.LowStockThreshold = got.LowStockThreshold
	}
	if got.PackagingLowStock > 0 {
		def.PackagingLowStock = got.PackagingLowStock
	}
	return def
}
