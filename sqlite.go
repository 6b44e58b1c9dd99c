package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// SQLiteStore keeps the document in normalized tables. Save replaces every
// table inside one SQL transaction.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Err: err}
	}
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "open", Err: err}
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS chemicals (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			stock REAL NOT NULL,
			rate TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS packaging (
			type TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			stock REAL NOT NULL,
			rate TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS vendor_transactions (
			seq INTEGER NOT NULL,
			id INTEGER PRIMARY KEY,
			date TEXT,
			vendor_name TEXT,
			vendor_type TEXT,
			item_name TEXT,
			quantity REAL,
			rate TEXT,
			total_amount TEXT,
			notes TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS vendor_payments (
			seq INTEGER NOT NULL,
			id INTEGER PRIMARY KEY,
			date TEXT,
			vendor_name TEXT,
			amount TEXT,
			method TEXT,
			notes TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS production_history (
			seq INTEGER NOT NULL,
			id TEXT PRIMARY KEY,
			date TEXT,
			product_name TEXT,
			batch_size INTEGER,
			status TEXT,
			kind TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS product_details (
			product_name TEXT PRIMARY KEY,
			container_type TEXT,
			container_size REAL,
			notes TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS stock_movements (
			seq INTEGER NOT NULL,
			id TEXT PRIMARY KEY,
			type INTEGER,
			resource TEXT,
			key TEXT,
			quantity REAL,
			balance REAL,
			timestamp TEXT,
			note TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS sequences (
			name TEXT PRIMARY KEY,
			value INTEGER
		);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, doc *Document) error {
	if err := s.save(ctx, doc); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func (s *SQLiteStore) save(ctx context.Context, doc *Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"chemicals", "packaging", "vendor_transactions", "vendor_payments",
		"production_history", "product_details", "stock_movements", "settings", "sequences"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	for _, c := range doc.Chemicals {
		if _, err := tx.ExecContext(ctx, `INSERT INTO chemicals (id, name, stock, rate) VALUES (?, ?, ?, ?)`,
			c.ID, c.Name, c.Stock, c.Rate.String()); err != nil {
			return err
		}
	}
	for _, p := range doc.Packaging {
		if _, err := tx.ExecContext(ctx, `INSERT INTO packaging (type, name, stock, rate) VALUES (?, ?, ?, ?)`,
			p.Type, p.Name, p.Stock, p.Rate.String()); err != nil {
			return err
		}
	}
	for i, t := range doc.Transactions {
		if _, err := tx.ExecContext(ctx, `INSERT INTO vendor_transactions (seq, id, date, vendor_name, vendor_type, item_name, quantity, rate, total_amount, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, t.ID, formatTime(t.Date), t.VendorName, t.VendorType, t.ItemName, t.Quantity, t.Rate.String(), t.TotalAmount.String(), t.Notes); err != nil {
			return err
		}
	}
	for i, p := range doc.Payments {
		if _, err := tx.ExecContext(ctx, `INSERT INTO vendor_payments (seq, id, date, vendor_name, amount, method, notes) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, p.ID, formatTime(p.Date), p.VendorName, p.Amount.String(), p.Method, p.Notes); err != nil {
			return err
		}
	}
	for i, r := range doc.History {
		if _, err := tx.ExecContext(ctx, `INSERT INTO production_history (seq, id, date, product_name, batch_size, status, kind) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, r.ID.String(), formatTime(r.Date), r.ProductName, r.BatchSize, r.Status, r.Kind); err != nil {
			return err
		}
	}
	for _, d := range doc.ProductDetails {
		if _, err := tx.ExecContext(ctx, `INSERT INTO product_details (product_name, container_type, container_size, notes) VALUES (?, ?, ?, ?)`,
			d.ProductName, d.ContainerType, d.ContainerSize, d.Notes); err != nil {
			return err
		}
	}
	for i, m := range doc.Movements {
		if _, err := tx.ExecContext(ctx, `INSERT INTO stock_movements (seq, id, type, resource, key, quantity, balance, timestamp, note) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, m.ID.String(), m.Type, m.Resource, m.Key, m.Quantity, m.Balance, formatTime(m.Timestamp), m.Note); err != nil {
			return err
		}
	}

	settings := map[string]string{
		"company_name":        doc.Settings.CompanyName,
		"default_batch_size":  strconv.Itoa(doc.Settings.DefaultBatchSize),
		"low_stock_threshold": strconv.FormatFloat(doc.Settings.LowStockThreshold, 'f', -1, 64),
		"packaging_low_stock": strconv.Itoa(doc.Settings.PackagingLowStock),
	}
	for k, v := range settings {
		if _, err := tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)`, k, v); err != nil {
			return err
		}
	}
	sequences := map[string]int{
		"chemical":    doc.Sequences.ChemicalID,
		"transaction": doc.Sequences.TransactionID,
		"payment":     doc.Sequences.PaymentID,
	}
	for k, v := range sequences {
		if _, err := tx.ExecContext(ctx, `INSERT INTO sequences (name, value) VALUES (?, ?)`, k, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Load(ctx context.Context) (*Document, error) {
	doc, err := s.load(ctx)
	if err == ErrNoState {
		return nil, err
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	return doc, nil
}

func (s *SQLiteStore) load(ctx context.Context) (*Document, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	doc := &Document{}
	settings := map[string]string{}
	if err := queryRows(ctx, tx, `SELECT key, value FROM settings`, func(rows *sql.Rows) error {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		settings[k] = v
		return nil
	}); err != nil {
		return nil, err
	}
	if len(settings) == 0 {
		return nil, ErrNoState
	}
	doc.Settings.CompanyName = settings["company_name"]
	doc.Settings.DefaultBatchSize, _ = strconv.Atoi(settings["default_batch_size"])
	doc.Settings.LowStockThreshold, _ = strconv.ParseFloat(settings["low_stock_threshold"], 64)
	doc.Settings.PackagingLowStock, _ = strconv.Atoi(settings["packaging_low_stock"])

	if err := queryRows(ctx, tx, `SELECT name, value FROM sequences`, func(rows *sql.Rows) error {
		var k string
		var v int
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		switch k {
		case "chemical":
			doc.Sequences.ChemicalID = v
		case "transaction":
			doc.Sequences.TransactionID = v
		case "payment":
			doc.Sequences.PaymentID = v
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := queryRows(ctx, tx, `SELECT id, name, stock, rate FROM chemicals ORDER BY id`, func(rows *sql.Rows) error {
		var c Chemical
		var err error
		var rate string
		if err := rows.Scan(&c.ID, &c.Name, &c.Stock, &rate); err != nil {
			return err
		}
		c.Rate, err = decimal.NewFromString(rate)
		doc.Chemicals = append(doc.Chemicals, c)
		return err
	}); err != nil {
		return nil, err
	}

	if err := queryRows(ctx, tx, `SELECT type, name, stock, rate FROM packaging ORDER BY type`, func(rows *sql.Rows) error {
		var p PackagingMaterial
		var err error
		var rate string
		if err := rows.Scan(&p.Type, &p.Name, &p.Stock, &rate); err != nil {
			return err
		}
		p.Rate, err = decimal.NewFromString(rate)
		doc.Packaging = append(doc.Packaging, p)
		return err
	}); err != nil {
		return nil, err
	}

	if err := queryRows(ctx, tx, `SELECT id, date, vendor_name, vendor_type, item_name, quantity, rate, total_amount, notes FROM vendor_transactions ORDER BY seq`, func(rows *sql.Rows) error {
		var t VendorTransaction
		var err error
		var date, rate, total string
		if err := rows.Scan(&t.ID, &date, &t.VendorName, &t.VendorType, &t.ItemName, &t.Quantity, &rate, &total, &t.Notes); err != nil {
			return err
		}
		if t.Date, err = parseTime(date); err != nil {
			return err
		}
		if t.Rate, err = decimal.NewFromString(rate); err != nil {
			return err
		}
		t.TotalAmount, err = decimal.NewFromString(total)
		doc.Transactions = append(doc.Transactions, t)
		return err
	}); err != nil {
		return nil, err
	}

	if err := queryRows(ctx, tx, `SELECT id, date, vendor_name, amount, method, notes FROM vendor_payments ORDER BY seq`, func(rows *sql.Rows) error {
		var p VendorPayment
		var err error
		var date, amount string
		if err := rows.Scan(&p.ID, &date, &p.VendorName, &amount, &p.Method, &p.Notes); err != nil {
			return err
		}
		if p.Date, err = parseTime(date); err != nil {
			return err
		}
		p.Amount, err = decimal.NewFromString(amount)
		doc.Payments = append(doc.Payments, p)
		return err
	}); err != nil {
		return nil, err
	}

	if err := queryRows(ctx, tx, `SELECT id, date, product_name, batch_size, status, kind FROM production_history ORDER BY seq`, func(rows *sql.Rows) error {
		var r ProductionRecord
		var err error
		var id, date string
		if err := rows.Scan(&id, &date, &r.ProductName, &r.BatchSize, &r.Status, &r.Kind); err != nil {
			return err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return err
		}
		r.Date, err = parseTime(date)
		doc.History = append(doc.History, r)
		return err
	}); err != nil {
		return nil, err
	}

	if err := queryRows(ctx, tx, `SELECT product_name, container_type, container_size, notes FROM product_details ORDER BY product_name`, func(rows *sql.Rows) error {
		var d ProductDetails
		if err := rows.Scan(&d.ProductName, &d.ContainerType, &d.ContainerSize, &d.Notes); err != nil {
			return err
		}
		doc.ProductDetails = append(doc.ProductDetails, d)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := queryRows(ctx, tx, `SELECT id, type, resource, key, quantity, balance, timestamp, note FROM stock_movements ORDER BY seq`, func(rows *sql.Rows) error {
		var m Movement
		var err error
		var id, ts string
		if err := rows.Scan(&id, &m.Type, &m.Resource, &m.Key, &m.Quantity, &m.Balance, &ts, &m.Note); err != nil {
			return err
		}
		if m.ID, err = uuid.Parse(id); err != nil {
			return err
		}
		m.Timestamp, err = parseTime(ts)
		doc.Movements = append(doc.Movements, m)
		return err
	}); err != nil {
		return nil, err
	}

	return doc, nil
}

func queryRows(ctx context.Context, tx *sql.Tx, query string, scan func(rows *sql.Rows) error) error {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("%s: %w", query, err)
		}
	}
	return rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
