package config

import (
	"fmt"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
	inventorymsgpack "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/msgpack"
)

// OpenStore opens the store named by StoreDriver. The returned close func
// is never nil.
func (c *Config) OpenStore() (inventory.Store, func() error, error) {
	switch c.StoreDriver {
	case StoreSQLite:
		s, err := inventory.OpenSQLite(c.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case StoreMsgpack:
		return inventorymsgpack.NewFileStore(c.StorePath), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", c.StoreDriver)
}
