// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vending

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/vendingd/catalog"
	"github.com/bitmark-inc/vendingd/fault"
	"github.com/bitmark-inc/vendingd/ledger"
	"github.com/bitmark-inc/vendingd/storage"
)

// Machine - a vending machine over one database
type Machine struct {
	log     *logger.L
	db      *storage.DB
	catalog *catalog.Catalog
	ledger  *ledger.Ledger
}

// New - create a machine, the database must stay open while it is used
func New(db *storage.DB) *Machine {
	return &Machine{
		log:     logger.New("vending"),
		db:      db,
		catalog: catalog.New(db.Pool.Catalog),
		ledger:  ledger.New(db.Pool.Config, db.Pool.Balances),
	}
}

// Instantiate - one time set up, the caller becomes the admin
func (m *Machine) Instantiate(env Env, setup Setup) (*Outcome, error) {
	if nil == env.Caller || nil == env.Contract {
		return nil, fault.ErrUnauthorized
	}

	c := &ledger.Config{
		Admin:    env.Caller,
		Contract: env.Contract,
	}
	switch s := setup.(type) {
	case External:
		c.Mode = ledger.ModeExternal
		c.Token = s.Token
	case Issued:
		c.Mode = ledger.ModeIssued
		c.Info = &ledger.TokenInfo{
			Name:     s.Name,
			Symbol:   s.Symbol,
			Decimals: s.Decimals,
			Cap:      s.Cap,
		}
	default:
		return nil, fault.ErrInvalidTokenInfo
	}

	trx, err := m.db.Begin()
	if nil != err {
		return nil, err
	}

	err = m.ledger.Initialise(trx, c)
	if nil != err {
		trx.Abort()
		m.log.Debugf("instantiate rejected: %s", err)
		return nil, err
	}

	err = trx.Commit()
	if nil != err {
		m.log.Errorf("instantiate commit error: %s", err)
		return nil, err
	}

	m.log.Infof("instantiated: mode: %s  admin: %s", c.Mode, c.Admin)
	return newOutcome("instantiate").
		add("admin", c.Admin.String()).
		add("mode", c.Mode.String()), nil
}

// Execute - apply one operation, all or nothing
func (m *Machine) Execute(env Env, op Operation) (*Outcome, error) {
	if nil == op {
		return nil, fault.ErrUnknownOperation
	}

	trx, err := m.db.Begin()
	if nil != err {
		return nil, err
	}

	outcome, err := m.apply(trx, env, op)
	if nil != err {
		trx.Abort()
		m.log.Debugf("%s rejected: %s", op.Name(), err)
		return nil, err
	}

	err = trx.Commit()
	if nil != err {
		m.log.Errorf("%s commit error: %s", op.Name(), err)
		return nil, err
	}

	m.log.Debugf("%s applied: %v", op.Name(), outcome.Attributes)
	return outcome, nil
}

func (m *Machine) apply(trx storage.Transaction, env Env, op Operation) (*Outcome, error) {
	c, err := m.ledger.LoadConfig(trx)
	if nil != err {
		return nil, err
	}

	// everything except a purchase is for the admin only
	if _, ok := op.(Purchase); !ok && !c.Admin.Equal(env.Caller) {
		return nil, fault.ErrUnauthorized
	}

	accounts := m.ledger.Accounts(c)
	outcome := newOutcome(op.Name())

	switch o := op.(type) {

	case AddItem:
		item, err := m.catalog.Add(trx, o.Item, o.Stock, o.Price)
		if nil != err {
			return nil, err
		}
		outcome.add("name", item.Name).addN("stock", item.Stock).addN("price", item.Price)

	case SetPrice:
		item, err := m.catalog.SetPrice(trx, o.Item, o.Price)
		if nil != err {
			return nil, err
		}
		outcome.add("name", item.Name).addN("price", item.Price)

	case Restock:
		item, err := m.catalog.Restock(trx, o.Item, o.Amount)
		if nil != err {
			return nil, err
		}
		outcome.add("name", item.Name).addN("stock", item.Stock)

	case Purchase:
		if nil == env.Caller {
			return nil, fault.ErrUnauthorized
		}
		item, err := m.catalog.Available(trx, o.Item)
		if nil != err {
			return nil, err
		}
		change, err := accounts.Charge(trx, env.Caller, o.Funds, item.Price)
		if nil != err {
			return nil, err
		}
		err = m.catalog.Take(trx, item)
		if nil != err {
			return nil, err
		}
		outcome.add("purchased", item.Name)
		outcome.Transfers = change

	case Withdraw:
		transfers, err := accounts.Withdraw(trx, o.Amount)
		if nil != err {
			return nil, err
		}
		outcome.addN("withdrawn", o.Amount)
		outcome.Transfers = transfers

	case Issue:
		holder, balance, err := accounts.Issue(trx, o.Recipient, o.Amount)
		if nil != err {
			return nil, err
		}
		outcome.add("recipient", holder.String()).addN("balance", balance)

	default:
		return nil, fault.ErrUnknownOperation
	}

	m.ledger.SaveConfig(trx, c)
	return outcome, nil
}
