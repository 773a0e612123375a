// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/vendingd/account"
	"github.com/bitmark-inc/vendingd/fault"
	"github.com/bitmark-inc/vendingd/storage"
)

// the single key of the config pool
var configKey = []byte("config")

// Ledger - config and balance pools
type Ledger struct {
	config   *storage.PoolHandle
	balances *storage.PoolHandle
}

// New - ledger over its two pools
func New(config *storage.PoolHandle, balances *storage.PoolHandle) *Ledger {
	return &Ledger{
		config:   config,
		balances: balances,
	}
}

// LoadConfig - ErrNotInitialised if the machine was never set up
func (l *Ledger) LoadConfig(view storage.View) (*Config, error) {
	record, err := view.Get(l.config, configKey)
	if nil != err {
		return nil, err
	}
	if nil == record {
		return nil, fault.ErrNotInitialised
	}
	return UnpackConfig(record)
}

// SaveConfig - write back a modified config
func (l *Ledger) SaveConfig(trx storage.Transaction, c *Config) {
	trx.Put(l.config, configKey, c.Pack())
}

// Initialise - store the first config, only allowed once
func (l *Ledger) Initialise(trx storage.Transaction, c *Config) error {
	found, err := trx.Has(l.config, configKey)
	if nil != err {
		return err
	}
	if found {
		return fault.ErrAlreadyInitialised
	}

	switch c.Mode {
	case ModeExternal:
		if nil == c.Token {
			return fault.ErrInvalidTokenInfo
		}
	case ModeIssued:
		if nil == c.Info {
			return fault.ErrInvalidTokenInfo
		}
		if err := c.Info.Validate(); nil != err {
			return err
		}
	default:
		return fault.ErrInvalidTokenInfo
	}

	l.SaveConfig(trx, c)
	return nil
}

// Balance - token balance of an account, zero if none
func (l *Ledger) Balance(view storage.View, holder *account.Account) (uint64, error) {
	balance, _, err := view.GetN(l.balances, holder.Bytes())
	return balance, err
}

func (l *Ledger) setBalance(trx storage.Transaction, holder *account.Account, balance uint64) {
	trx.PutN(l.balances, holder.Bytes(), balance)
}

// Accounts - the accounting strategy selected by the config mode
func (l *Ledger) Accounts(c *Config) Accounts {
	if ModeIssued == c.Mode {
		return &issued{ledger: l, config: c}
	}
	return &external{ledger: l, config: c}
}
