package service

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
)

type ProductionRequest struct {
	Product   string
	BatchSize int // 0 uses the default batch size from settings
}

func (s *Session) Products() []string {
	return s.catalog.Products()
}

func (s *Session) Formula(product string) (inventory.FormulaEntry, error) {
	f, ok := s.catalog.Lookup(product)
	if !ok {
		return inventory.FormulaEntry{}, &inventory.NotFoundError{Kind: "formula", Key: product}
	}
	return f, nil
}

// Preview computes requirements and cost without touching stock.
func (s *Session) Preview(req ProductionRequest) (*inventory.Calculation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compute(req)
}

func (s *Session) compute(req ProductionRequest) (*inventory.Calculation, error) {
	if req.BatchSize < 0 {
		return nil, inventory.NewValidationError(map[string]string{"batch_size": "gte=0"})
	}
	formula, err := s.Formula(req.Product)
	if err != nil {
		return nil, err
	}
	batch := req.BatchSize
	if batch == 0 {
		batch = s.state.Settings.DefaultBatchSize
	}
	return inventory.ComputeRequirements(formula, batch, s.state.Inventory,
		s.state.PackagingFor(formula.ProductName), s.policy)
}

// Commit computes and applies a production run, then saves. A report with
// unmet entries is still a committed run.
func (s *Session) Commit(ctx context.Context, req ProductionRequest) (*inventory.CommitReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	calc, err := s.compute(req)
	if err != nil {
		return nil, err
	}
	report, err := inventory.Commit(calc, s.state.Inventory, &s.state.History, s.now())
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{
		"product":    calc.Formula.ProductName,
		"batch_size": calc.BatchSize,
		"record":     report.Record.ID.String(),
	}
	if !report.Complete() {
		fields["unmet"] = report.Unmet
		s.logger.WithFields(fields).WithField("module", moduleName).Warn("production committed with unmet inventory")
	} else {
		s.logInfo("Commit", "production committed", fields)
	}
	return report, s.save(ctx, "Commit")
}

func (s *Session) History() []inventory.ProductionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]inventory.ProductionRecord(nil), s.state.History...)
}

func (s *Session) ProductDetails() []inventory.ProductDetails {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ProductDetailsList()
}

func (s *Session) PackagingFor(product string) inventory.PackagingInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.PackagingFor(product)
}

func (s *Session) SetProductDetails(ctx context.Context, d inventory.ProductDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.SetProductDetails(d); err != nil {
		return err
	}
	s.logInfo("SetProductDetails", "product details saved", logrus.Fields{"product": d.ProductName})
	return s.save(ctx, "SetProductDetails")
}

func (s *Session) DeleteProductDetails(ctx context.Context, product string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.DeleteProductDetails(product); err != nil {
		return err
	}
	s.logInfo("DeleteProductDetails", "product details deleted", logrus.Fields{"product": product})
	return s.save(ctx, "DeleteProductDetails")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
