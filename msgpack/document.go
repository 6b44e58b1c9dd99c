package inventorymsgpack

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
)

// DocumentVersion is bumped whenever a field changes meaning.
const DocumentVersion = 1

type Chemical struct {
	ID    int     `msgpack:"id,omitempty"`
	Name  string  `msgpack:"name,omitempty"`
	Stock float64 `msgpack:"stock,omitempty"`
	Rate  string  `msgpack:"rate,omitempty"`
}

type Packaging struct {
	Type  string  `msgpack:"type,omitempty"`
	Name  string  `msgpack:"name,omitempty"`
	Stock float64 `msgpack:"stock,omitempty"`
	Rate  string  `msgpack:"rate,omitempty"`
}

type VendorTransaction struct {
	ID          int     `msgpack:"id,omitempty"`
	DatetimeNs  int64   `msgpack:"date,omitempty"`
	VendorName  string  `msgpack:"vendor_name,omitempty"`
	VendorType  string  `msgpack:"vendor_type,omitempty"`
	ItemName    string  `msgpack:"item_name,omitempty"`
	Quantity    float64 `msgpack:"quantity,omitempty"`
	Rate        string  `msgpack:"rate,omitempty"`
	TotalAmount string  `msgpack:"total_amount,omitempty"`
	Notes       string  `msgpack:"notes,omitempty"`
}

type VendorPayment struct {
	ID         int    `msgpack:"id,omitempty"`
	DatetimeNs int64  `msgpack:"date,omitempty"`
	VendorName string `msgpack:"vendor_name,omitempty"`
	Amount     string `msgpack:"amount,omitempty"`
	Method     string `msgpack:"method,omitempty"`
	Notes      string `msgpack:"notes,omitempty"`
}

type ProductionRecord struct {
	UUID        string `msgpack:"uuid,omitempty"`
	DatetimeNs  int64  `msgpack:"date,omitempty"`
	ProductName string `msgpack:"product_name,omitempty"`
	BatchSize   int    `msgpack:"batch_size,omitempty"`
	Status      string `msgpack:"status,omitempty"`
	Kind        string `msgpack:"kind,omitempty"`
}

type ProductDetails struct {
	ProductName   string  `msgpack:"product_name,omitempty"`
	ContainerType string  `msgpack:"container_type,omitempty"`
	ContainerSize float64 `msgpack:"container_size,omitempty"`
	Notes         string  `msgpack:"notes,omitempty"`
}

type Movement struct {
	UUID       string  `msgpack:"uuid,omitempty"`
	Type       int     `msgpack:"type,omitempty"`
	Resource   string  `msgpack:"resource,omitempty"`
	Key        string  `msgpack:"key,omitempty"`
	Quantity   float64 `msgpack:"quantity,omitempty"`
	Balance    float64 `msgpack:"balance,omitempty"`
	DatetimeNs int64   `msgpack:"date,omitempty"`
	Note       string  `msgpack:"note,omitempty"`
}

type Settings struct {
	CompanyName       string  `msgpack:"company_name,omitempty"`
	DefaultBatchSize  int     `msgpack:"default_batch_size,omitempty"`
	LowStockThreshold float64 `msgpack:"low_stock_threshold,omitempty"`
	PackagingLowStock int     `msgpack:"packaging_low_stock,omitempty"`
}

type Sequences struct {
	ChemicalID    int `msgpack:"chemical,omitempty"`
	TransactionID int `msgpack:"transaction,omitempty"`
	PaymentID     int `msgpack:"payment,omitempty"`
}

type Document struct {
	Version        int                 `msgpack:"version"`
	Chemicals      []Chemical          `msgpack:"chemicals,omitempty"`
	Packaging      []Packaging         `msgpack:"packaging,omitempty"`
	Transactions   []VendorTransaction `msgpack:"vendor_transactions,omitempty"`
	Payments       []VendorPayment     `msgpack:"vendor_payments,omitempty"`
	History        []ProductionRecord  `msgpack:"production_history,omitempty"`
	ProductDetails []ProductDetails    `msgpack:"product_details,omitempty"`
	Settings       Settings            `msgpack:"settings"`
	Sequences      Sequences           `msgpack:"sequences"`
	Movements      []Movement          `msgpack:"movements,omitempty"`
}

func NewDocument(doc *inventory.Document) Document {
	out := Document{
		Version: DocumentVersion,
		Settings: Settings{
			CompanyName:       doc.Settings.CompanyName,
			DefaultBatchSize:  doc.Settings.DefaultBatchSize,
			LowStockThreshold: doc.Settings.LowStockThreshold,
			PackagingLowStock: doc.Settings.PackagingLowStock,
		},
		Sequences: Sequences{
			ChemicalID:    doc.Sequences.ChemicalID,
			TransactionID: doc.Sequences.TransactionID,
			PaymentID:     doc.Sequences.PaymentID,
		},
	}
	for _, c := range doc.Chemicals {
		out.Chemicals = append(out.Chemicals, Chemical{ID: c.ID, Name: c.Name, Stock: c.Stock, Rate: c.Rate.String()})
	}
	for _, p := range doc.Packaging {
		out.Packaging = append(out.Packaging, Packaging{Type: p.Type, Name: p.Name, Stock: p.Stock, Rate: p.Rate.String()})
	}
	for _, t := range doc.Transactions {
		out.Transactions = append(out.Transactions, VendorTransaction{
			ID:          t.ID,
			DatetimeNs:  toNs(t.Date),
			VendorName:  t.VendorName,
			VendorType:  t.VendorType,
			ItemName:    t.ItemName,
			Quantity:    t.Quantity,
			Rate:        t.Rate.String(),
			TotalAmount: t.TotalAmount.String(),
			Notes:       t.Notes,
		})
	}
	for _, p := range doc.Payments {
		out.Payments = append(out.Payments, VendorPayment{
			ID:         p.ID,
			DatetimeNs: toNs(p.Date),
			VendorName: p.VendorName,
			Amount:     p.Amount.String(),
			Method:     p.Method,
			Notes:      p.Notes,
		})
	}
	for _, r := range doc.History {
		out.History = append(out.History, ProductionRecord{
			UUID:        r.ID.String(),
			DatetimeNs:  toNs(r.Date),
			ProductName: r.ProductName,
			BatchSize:   r.BatchSize,
			Status:      r.Status,
			Kind:        r.Kind,
		})
	}
	for _, d := range doc.ProductDetails {
		out.ProductDetails = append(out.ProductDetails, ProductDetails(d))
	}
	for _, m := range doc.Movements {
		out.Movements = append(out.Movements, Movement{
			UUID:       m.ID.String(),
			Type:       m.Type,
			Resource:   m.Resource,
			Key:        m.Key,
			Quantity:   m.Quantity,
			Balance:    m.Balance,
			DatetimeNs: toNs(m.Timestamp),
			Note:       m.Note,
		})
	}
	return out
}

func ToInvDocument(doc *Document) (*inventory.Document, error) {
	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than %d", doc.Version, DocumentVersion)
	}
	out := &inventory.Document{
		Settings: inventory.Settings{
			CompanyName:       doc.Settings.CompanyName,
			DefaultBatchSize:  doc.Settings.DefaultBatchSize,
			LowStockThreshold: doc.Settings.LowStockThreshold,
			PackagingLowStock: doc.Settings.PackagingLowStock,
		},
		Sequences: inventory.Sequences{
			ChemicalID:    doc.Sequences.ChemicalID,
			TransactionID: doc.Sequences.TransactionID,
			PaymentID:     doc.Sequences.PaymentID,
		},
	}
	for _, c := range doc.Chemicals {
		rate, err := parseMoney(c.Rate)
		if err != nil {
			return nil, err
		}
		out.Chemicals = append(out.Chemicals, inventory.Chemical{ID: c.ID, Name: c.Name, Stock: c.Stock, Rate: rate})
	}
	for _, p := range doc.Packaging {
		rate, err := parseMoney(p.Rate)
		if err != nil {
			return nil, err
		}
		out.Packaging = append(out.Packaging, inventory.PackagingMaterial{Type: p.Type, Name: p.Name, Stock: p.Stock, Rate: rate})
	}
	for _, t := range doc.Transactions {
		rate, err := parseMoney(t.Rate)
		if err != nil {
			return nil, err
		}
		total, err := parseMoney(t.TotalAmount)
		if err != nil {
			return nil, err
		}
		out.Transactions = append(out.Transactions, inventory.VendorTransaction{
			ID:          t.ID,
			Date:        fromNs(t.DatetimeNs),
			VendorName:  t.VendorName,
			VendorType:  t.VendorType,
			ItemName:    t.ItemName,
			Quantity:    t.Quantity,
			Rate:        rate,
			TotalAmount: total,
			Notes:       t.Notes,
		})
	}
	for _, p := range doc.Payments {
		amount, err := parseMoney(p.Amount)
		if err != nil {
			return nil, err
		}
		out.Payments = append(out.Payments, inventory.VendorPayment{
			ID:         p.ID,
			Date:       fromNs(p.DatetimeNs),
			VendorName: p.VendorName,
			Amount:     amount,
			Method:     p.Method,
			Notes:      p.Notes,
		})
	}
	for _, r := range doc.History {
		id, err := uuid.Parse(r.UUID)
		if err != nil {
			return nil, err
		}
		out.History = append(out.History, inventory.ProductionRecord{
			ID:          id,
			Date:        fromNs(r.DatetimeNs),
			ProductName: r.ProductName,
			BatchSize:   r.BatchSize,
			Status:      r.Status,
			Kind:        r.Kind,
		})
	}
	for _, d := range doc.ProductDetails {
		out.ProductDetails = append(out.ProductDetails, inventory.ProductDetails(d))
	}
	for _, m := range doc.Movements {
		id, err := uuid.Parse(m.UUID)
		if err != nil {
			return nil, err
		}
		out.Movements = append(out.Movements, inventory.Movement{
			ID:        id,
			Type:      m.Type,
			Resource:  m.Resource,
			Key:       m.Key,
			Quantity:  m.Quantity,
			Balance:   m.Balance,
			Timestamp: fromNs(m.DatetimeNs),
			Note:      m.Note,
		})
	}
	return out, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func toNs(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNs(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}
