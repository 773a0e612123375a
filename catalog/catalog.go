// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package catalog

import (
	"github.com/bitmark-inc/vendingd/fault"
	"github.com/bitmark-inc/vendingd/storage"
)

// page sizes for List
const (
	DefaultPageSize = 10
	MaxPageSize     = 30
)

// Catalog - items stored in one pool
type Catalog struct {
	pool *storage.PoolHandle
}

// New - catalog over a storage pool
func New(pool *storage.PoolHandle) *Catalog {
	return &Catalog{pool: pool}
}

// Get - fetch an item, ErrNotFound if absent
func (c *Catalog) Get(view storage.View, name string) (*Item, error) {
	record, err := view.Get(c.pool, []byte(name))
	if nil != err {
		return nil, err
	}
	if nil == record {
		return nil, fault.ErrNotFound
	}
	return Unpack([]byte(name), record)
}

func (c *Catalog) put(trx storage.Transaction, item *Item) {
	trx.Put(c.pool, []byte(item.Name), item.Pack())
}

// Add - create a new item
func (c *Catalog) Add(trx storage.Transaction, name string, stock uint64, price uint64) (*Item, error) {
	if err := ValidateName(name); nil != err {
		return nil, err
	}
	if 0 == price {
		return nil, fault.ErrInvalidZeroPrice
	}
	if stock > MaxStock {
		return nil, fault.ErrAmountTooBig
	}

	found, err := trx.Has(c.pool, []byte(name))
	if nil != err {
		return nil, err
	}
	if found {
		return nil, fault.ErrAlreadyExists
	}

	item := &Item{
		Name:  name,
		Stock: stock,
		Price: price,
	}
	c.put(trx, item)
	return item, nil
}

// SetPrice - change the price of an existing item
func (c *Catalog) SetPrice(trx storage.Transaction, name string, price uint64) (*Item, error) {
	if 0 == price {
		return nil, fault.ErrInvalidZeroAmount
	}

	item, err := c.Get(trx, name)
	if nil != err {
		return nil, err
	}

	item.Price = price
	c.put(trx, item)
	return item, nil
}

// Restock - add stock to an existing item
func (c *Catalog) Restock(trx storage.Transaction, name string, delta uint64) (*Item, error) {
	if 0 == delta {
		return nil, fault.ErrInvalidZeroAmount
	}

	item, err := c.Get(trx, name)
	if nil != err {
		return nil, err
	}

	// stock <= MaxStock so the subtraction cannot wrap
	if delta > MaxStock-item.Stock {
		return nil, fault.ErrAmountTooBig
	}

	item.Stock += delta
	c.put(trx, item)
	return item, nil
}

// Available - fetch an item that has at least one unit in stock
func (c *Catalog) Available(view storage.View, name string) (*Item, error) {
	item, err := c.Get(view, name)
	if nil != err {
		return nil, err
	}
	if 0 == item.Stock {
		return nil, fault.ErrOutOfStock
	}
	return item, nil
}

// Take - remove one unit from an item returned by Available
func (c *Catalog) Take(trx storage.Transaction, item *Item) error {
	if 0 == item.Stock {
		return fault.ErrOutOfStock
	}
	item.Stock -= 1
	c.put(trx, item)
	return nil
}

// List - a page of items with names strictly after cursor
//
// an empty cursor starts from the first item, a limit that is not
// positive selects DefaultPageSize and larger limits are clamped to
// MaxPageSize
func (c *Catalog) List(view storage.View, cursor string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	} else if limit > MaxPageSize {
		limit = MaxPageSize
	}

	fetch := view.NewFetchCursor(c.pool)
	if "" != cursor {
		fetch.SeekAfter([]byte(cursor))
	}

	elements, err := fetch.Fetch(limit)
	if nil != err {
		return nil, err
	}

	items := make([]Item, 0, len(elements))
	for _, e := range elements {
		item, err := Unpack(e.Key, e.Value)
		if nil != err {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}
