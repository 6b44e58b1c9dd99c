package inventory

import (
	"time"

	"github.com/google/uuid"
)

const (
	MovementIn  = 1
	MovementOut = -1
)

const (
	ResourceChemical  = "chemical"
	ResourcePackaging = "packaging"
)

// Movement is one stock change. Balance is the stock level after the
// change was applied (after clamping).
type Movement struct {
	ID        uuid.UUID
	Type      int
	Resource  string
	Key       string // chemical id or packaging type
	Quantity  float64
	Balance   float64
	Timestamp time.Time
	Note      string
}

// HookFunc runs after every stock movement.
type HookFunc func(m Movement, inv *Inventory)

func (inv *Inventory) AddHook(h HookFunc) {
	inv.hooks = append(inv.hooks, h)
}

func (inv *Inventory) recordMovement(resource, key string, delta, balance float64, note string) Movement {
	m := Movement{
		ID:        uuid.New(),
		Type:      MovementIn,
		Resource:  resource,
		Key:       key,
		Quantity:  delta,
		Balance:   balance,
		Timestamp: inv.now(),
		Note:      note,
	}
	if delta < 0 {
		m.Type = MovementOut
		m.Quantity = -delta
	}
	inv.movements = append(inv.movements, m)
	for _, h := range inv.hooks {
		h(m, inv)
	}
	return m
}

func (inv *Inventory) Movements() []Movement {
	return append([]Movement(nil), inv.movements...)
}

func (inv *Inventory) MovementsFor(resource, key string) []Movement {
	var filtered []Movement
	for _, m := range inv.movements {
		if m.Resource == resource && m.Key == key {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
