package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
)

// RecordTransaction books a vendor purchase and receives it into stock:
// chemicals by item name (created when unknown), bottles, cartons and cans
// by type. Shipper and other purchases only touch the ledger.
func (s *Session) RecordTransaction(ctx context.Context, in inventory.TransactionInput) (inventory.VendorTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.Date.IsZero() {
		in.Date = s.now()
	}
	in.Date = in.Date.UTC()
	tx, err := s.state.Ledger.RecordTransaction(in)
	if err != nil {
		return inventory.VendorTransaction{}, err
	}
	if err := s.receivePurchase(tx); err != nil {
		_ = s.state.Ledger.DeleteTransaction(tx.ID)
		return inventory.VendorTransaction{}, err
	}
	s.logInfo("RecordTransaction", "vendor transaction recorded", logrus.Fields{
		"id": tx.ID, "vendor": tx.VendorName, "type": tx.VendorType, "total": tx.TotalAmount.String(),
	})
	return tx, s.save(ctx, "RecordTransaction")
}

func (s *Session) receivePurchase(tx inventory.VendorTransaction) error {
	inv := s.state.Inventory
	note := fmt.Sprintf("purchase #%d from %s", tx.ID, tx.VendorName)
	switch tx.VendorType {
	case inventory.VendorTypeChemical:
		c, ok := inv.ChemicalByName(tx.ItemName)
		if !ok {
			var err error
			if c, err = inv.AddChemical(tx.ItemName, 0, tx.Rate); err != nil {
				return err
			}
		}
		if _, err := inv.AdjustChemicalStock(c.ID, tx.Quantity, note); err != nil {
			return err
		}
		return inv.SetChemicalRate(c.ID, tx.Rate)
	case inventory.VendorTypeBottle, inventory.VendorTypeCarton, inventory.VendorTypeCan:
		p, err := inv.GetOrCreatePackaging(tx.VendorType)
		if err != nil {
			return err
		}
		if _, err := inv.AdjustPackagingStock(p.Type, tx.Quantity, note); err != nil {
			return err
		}
		return inv.SetPackagingRate(p.Type, tx.Rate)
	}
	return nil
}

// EditTransaction corrects the ledger entry only; stock received by the
// original purchase is not reversed.
func (s *Session) EditTransaction(ctx context.Context, id int, in inventory.TransactionInput) (inventory.VendorTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in.Date = in.Date.UTC()
	tx, err := s.state.Ledger.EditTransaction(id, in)
	if err != nil {
		return inventory.VendorTransaction{}, err
	}
	s.logInfo("EditTransaction", "vendor transaction edited", logrus.Fields{"id": id, "total": tx.TotalAmount.String()})
	return tx, s.save(ctx, "EditTransaction")
}

func (s *Session) DeleteTransaction(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.Ledger.DeleteTransaction(id); err != nil {
		return err
	}
	s.logInfo("DeleteTransaction", "vendor transaction deleted", logrus.Fields{"id": id})
	return s.save(ctx, "DeleteTransaction")
}

func (s *Session) RecordPayment(ctx context.Context, in inventory.PaymentInput) (inventory.VendorPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.Date.IsZero() {
		in.Date = s.now()
	}
	in.Date = in.Date.UTC()
	p, err := s.state.Ledger.RecordPayment(in)
	if err != nil {
		return inventory.VendorPayment{}, err
	}
	s.logInfo("RecordPayment", "vendor payment recorded", logrus.Fields{"id": p.ID, "vendor": p.VendorName, "amount": p.Amount.String()})
	return p, s.save(ctx, "RecordPayment")
}

func (s *Session) EditPayment(ctx context.Context, id int, in inventory.PaymentInput) (inventory.VendorPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in.Date = in.Date.UTC()
	p, err := s.state.Ledger.EditPayment(id, in)
	if err != nil {
		return inventory.VendorPayment{}, err
	}
	s.logInfo("EditPayment", "vendor payment edited", logrus.Fields{"id": id})
	return p, s.save(ctx, "EditPayment")
}

func (s *Session) DeletePayment(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.Ledger.DeletePayment(id); err != nil {
		return err
	}
	s.logInfo("DeletePayment", "vendor payment deleted", logrus.Fields{"id": id})
	return s.save(ctx, "DeletePayment")
}

func (s *Session) Transactions() []inventory.VendorTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Ledger.Transactions()
}

func (s *Session) Payments() []inventory.VendorPayment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Ledger.Payments()
}

func (s *Session) Balance(vendor string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Ledger.BalanceFor(vendor)
}

func (s *Session) Balances() []inventory.VendorBalance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Ledger.Balances()
}
