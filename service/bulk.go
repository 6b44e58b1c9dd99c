package service

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/bulk"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/config"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/report"
)

func (s *Session) Export(w io.Writer, format bulk.Format) error {
	s.mu.Lock()
	tables := bulk.Tables(s.state.Document())
	s.mu.Unlock()
	return bulk.Write(w, format, tables)
}

// Import replaces the tables present in data and returns their names.
// Nothing changes when any table fails to parse or the result is
// inconsistent.
func (s *Session) Import(ctx context.Context, data []byte, format bulk.Format) ([]string, error) {
	tables, err := bulk.Read(data, format)
	if err != nil {
		return nil, inventory.NewValidationError(map[string]string{"file": err.Error()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.state.Document()
	applied, err := bulk.Apply(doc, tables)
	if err != nil {
		return nil, inventory.NewValidationError(map[string]string{"file": err.Error()})
	}
	st, err := inventory.StateFromDocument(doc)
	if err != nil {
		config.LogError(s.logger, moduleName, "Import", "restore", applied, err)
		return nil, inventory.NewValidationError(map[string]string{"file": err.Error()})
	}
	s.setState(st)
	s.logInfo("Import", "bulk import applied", logrus.Fields{"tables": applied})
	return applied, s.save(ctx, "Import")
}

func (s *Session) reportBuilder() *report.Builder {
	b := report.NewBuilder(s.state.Settings.CompanyName)
	b.Now = s.now
	return b
}

func (s *Session) StockReport() *report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reportBuilder().Stock(s.state.Inventory, s.state.Settings)
}

func (s *Session) VendorLedgerReport(vendor string) *report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reportBuilder().VendorLedger(s.state.Ledger, vendor)
}

func (s *Session) ProductionReport(req ProductionRequest) (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	calc, err := s.compute(req)
	if err != nil {
		return nil, err
	}
	return s.reportBuilder().Production(calc), nil
}
