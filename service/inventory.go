package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
)

func (s *Session) Chemicals() []inventory.Chemical {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Inventory.Chemicals()
}

func (s *Session) Chemical(id int) (inventory.Chemical, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.state.Inventory.Chemical(id)
	if !ok {
		return inventory.Chemical{}, &inventory.NotFoundError{Kind: inventory.ResourceChemical, Key: itoa(id)}
	}
	return c, nil
}

func (s *Session) AddChemical(ctx context.Context, name string, stockKg float64, rate decimal.Decimal) (inventory.Chemical, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.state.Inventory.AddChemical(name, stockKg, rate)
	if err != nil {
		return inventory.Chemical{}, err
	}
	s.logInfo("AddChemical", "chemical added", logrus.Fields{"id": c.ID, "name": c.Name})
	return c, s.save(ctx, "AddChemical")
}

// AddChemicalStock receives stock into a chemical and, when rate is set,
// replaces its rate.
func (s *Session) AddChemicalStock(ctx context.Context, id int, qtyKg float64, rate *decimal.Decimal, note string) (inventory.Chemical, error) {
	if qtyKg <= 0 {
		return inventory.Chemical{}, inventory.NewValidationError(map[string]string{"quantity": "gt=0"})
	}
	if rate != nil && rate.IsNegative() {
		return inventory.Chemical{}, inventory.NewValidationError(map[string]string{"rate": "gte=0"})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := s.state.Inventory
	if _, ok := inv.Chemical(id); !ok {
		return inventory.Chemical{}, &inventory.NotFoundError{Kind: inventory.ResourceChemical, Key: itoa(id)}
	}
	if note == "" {
		note = "stock received"
	}
	c, err := inv.AdjustChemicalStock(id, qtyKg, note)
	if err != nil {
		return inventory.Chemical{}, err
	}
	if rate != nil {
		if err := inv.SetChemicalRate(id, *rate); err != nil {
			return inventory.Chemical{}, err
		}
		c.Rate = *rate
	}
	s.logInfo("AddChemicalStock", "chemical stock added", logrus.Fields{"id": id, "quantity": qtyKg})
	return c, s.save(ctx, "AddChemicalStock")
}

// AdjustChemicalStock applies a signed correction, clamped at zero.
func (s *Session) AdjustChemicalStock(ctx context.Context, id int, deltaKg float64, note string) (inventory.Chemical, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.state.Inventory.AdjustChemicalStock(id, deltaKg, note)
	if err != nil {
		return inventory.Chemical{}, err
	}
	s.logInfo("AdjustChemicalStock", "chemical stock adjusted", logrus.Fields{"id": id, "delta": deltaKg})
	return c, s.save(ctx, "AdjustChemicalStock")
}

func (s *Session) SetChemicalRate(ctx context.Context, id int, rate decimal.Decimal) (inventory.Chemical, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := s.state.Inventory
	if err := inv.SetChemicalRate(id, rate); err != nil {
		return inventory.Chemical{}, err
	}
	c, _ := inv.Chemical(id)
	s.logInfo("SetChemicalRate", "chemical rate updated", logrus.Fields{"id": id, "rate": rate.String()})
	return c, s.save(ctx, "SetChemicalRate")
}

// DeleteChemical removes a chemical. Ledger entries and production
// history that mention it are kept.
func (s *Session) DeleteChemical(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.Inventory.DeleteChemical(id); err != nil {
		return err
	}
	s.logInfo("DeleteChemical", "chemical deleted", logrus.Fields{"id": id})
	return s.save(ctx, "DeleteChemical")
}

func (s *Session) PackagingMaterials() []inventory.PackagingMaterial {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Inventory.PackagingMaterials()
}

func (s *Session) AddPackaging(ctx context.Context, packType, name string, stock float64, rate decimal.Decimal) (inventory.PackagingMaterial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.state.Inventory.AddPackaging(packType, name, stock, rate)
	if err != nil {
		return inventory.PackagingMaterial{}, err
	}
	s.logInfo("AddPackaging", "packaging added", logrus.Fields{"type": p.Type})
	return p, s.save(ctx, "AddPackaging")
}

func (s *Session) AdjustPackagingStock(ctx context.Context, packType string, delta float64, note string) (inventory.PackagingMaterial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.state.Inventory.AdjustPackagingStock(packType, delta, note)
	if err != nil {
		return inventory.PackagingMaterial{}, err
	}
	s.logInfo("AdjustPackagingStock", "packaging stock adjusted", logrus.Fields{"type": packType, "delta": delta})
	return p, s.save(ctx, "AdjustPackagingStock")
}

func (s *Session) SetPackagingRate(ctx context.Context, packType string, rate decimal.Decimal) (inventory.PackagingMaterial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := s.state.Inventory
	if err := inv.SetPackagingRate(packType, rate); err != nil {
		return inventory.PackagingMaterial{}, err
	}
	p, _ := inv.Packaging(packType)
	s.logInfo("SetPackagingRate", "packaging rate updated", logrus.Fields{"type": packType, "rate": rate.String()})
	return p, s.save(ctx, "SetPackagingRate")
}

func (s *Session) DeletePackaging(ctx context.Context, packType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.Inventory.DeletePackaging(packType); err != nil {
		return err
	}
	s.logInfo("DeletePackaging", "packaging deleted", logrus.Fields{"type": packType})
	return s.save(ctx, "DeletePackaging")
}

// LowStock uses the thresholds from settings.
func (s *Session) LowStock() []inventory.LowStockItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state.Settings
	return s.state.Inventory.LowStock(st.LowStockThreshold, float64(st.PackagingLowStock))
}

func (s *Session) Movements(resource, key string) []inventory.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	if resource == "" {
		return s.state.Inventory.Movements()
	}
	return s.state.Inventory.MovementsFor(resource, key)
}
