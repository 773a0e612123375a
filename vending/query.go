// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vending

import (
	"github.com/bitmark-inc/vendingd/account"
	"github.com/bitmark-inc/vendingd/catalog"
	"github.com/bitmark-inc/vendingd/fault"
	"github.com/bitmark-inc/vendingd/ledger"
	"github.com/bitmark-inc/vendingd/storage"
)

// run f on a fresh snapshot
func (m *Machine) read(f func(view storage.View) error) error {
	s, err := m.db.Snapshot()
	if nil != err {
		return err
	}
	defer s.Release()
	return f(s)
}

// ListItems - items in name order strictly after cursor
func (m *Machine) ListItems(cursor string, limit int) ([]catalog.Item, error) {
	var items []catalog.Item
	err := m.read(func(view storage.View) (err error) {
		items, err = m.catalog.List(view, cursor, limit)
		return err
	})
	return items, err
}

// Item - a single catalog entry
func (m *Machine) Item(name string) (*catalog.Item, error) {
	var item *catalog.Item
	err := m.read(func(view storage.View) (err error) {
		item, err = m.catalog.Get(view, name)
		return err
	})
	return item, err
}

// Balance - token balance of an account
func (m *Machine) Balance(holder *account.Account) (uint64, error) {
	var balance uint64
	err := m.read(func(view storage.View) error {
		c, err := m.ledger.LoadConfig(view)
		if nil != err {
			return err
		}
		balance, err = m.ledger.Accounts(c).BalanceOf(view, holder)
		return err
	})
	return balance, err
}

// TokenInfo - the self issued token, ErrIssueNotSupported for an external token
func (m *Machine) TokenInfo() (*ledger.TokenInfo, error) {
	c, err := m.Config()
	if nil != err {
		return nil, err
	}
	if ledger.ModeIssued != c.Mode {
		return nil, fault.ErrIssueNotSupported
	}
	return c.Info, nil
}

// Config - the configuration record
func (m *Machine) Config() (*ledger.Config, error) {
	var c *ledger.Config
	err := m.read(func(view storage.View) (err error) {
		c, err = m.ledger.LoadConfig(view)
		return err
	})
	return c, err
}
