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

// self issued token with a balance per account
type issued struct {
	ledger *Ledger
	config *Config
}

func (i *issued) BalanceOf(view storage.View, holder *account.Account) (uint64, error) {
	return i.ledger.Balance(view, holder)
}

func (i *issued) TotalSupply() uint64 {
	return i.config.Info.TotalSupply
}

func (i *issued) Credit(trx storage.Transaction, holder *account.Account, amount uint64) error {
	balance, err := i.ledger.Balance(trx, holder)
	if nil != err {
		return err
	}
	balance, ok := safeAdd(balance, amount)
	if !ok {
		return fault.ErrBalanceOverflow
	}
	i.ledger.setBalance(trx, holder, balance)
	return nil
}

func (i *issued) Debit(trx storage.Transaction, holder *account.Account, amount uint64) error {
	balance, err := i.ledger.Balance(trx, holder)
	if nil != err {
		return err
	}
	if amount > balance {
		return fault.ErrNotEnoughFunds
	}
	i.ledger.setBalance(trx, holder, balance-amount)
	return nil
}

// tokens are spent from the recorded balance so no funds may be attached
func (i *issued) Charge(trx storage.Transaction, buyer *account.Account, tendered *Funds, price uint64) ([]Transfer, error) {
	balance, err := i.ledger.Balance(trx, buyer)
	if nil != err {
		return nil, err
	}
	if nil != tendered && 0 != tendered.Amount {
		return nil, fault.ErrWrongToken
	}
	if balance < price {
		return nil, fault.ErrNotEnoughFunds
	}

	collected, ok := safeAdd(i.config.Collected, price)
	if !ok {
		return nil, fault.ErrBalanceOverflow
	}

	if err := i.Debit(trx, buyer, price); nil != err {
		return nil, err
	}
	i.config.Collected = collected
	return nil, nil
}

// revenue is burned
func (i *issued) Withdraw(trx storage.Transaction, amount uint64) ([]Transfer, error) {
	if 0 == amount {
		return nil, fault.ErrInvalidZeroAmount
	}
	if amount > i.config.Collected {
		return nil, fault.ErrNotEnoughFunds
	}

	i.config.Collected -= amount
	i.config.Info.TotalSupply -= amount
	return nil, nil
}

func (i *issued) Issue(trx storage.Transaction, recipient string, amount uint64) (*account.Account, uint64, error) {
	if 0 == amount {
		return nil, 0, fault.ErrInvalidZeroAmount
	}

	supply, ok := safeAdd(i.config.Info.TotalSupply, amount)
	if !ok || supply > i.config.Info.Cap {
		return nil, 0, fault.ErrCapExceeded
	}

	holder, err := account.FromBase58(recipient)
	if nil != err || holder.IsZero() {
		return nil, 0, fault.ErrInvalidRecipient
	}

	if err := i.Credit(trx, holder, amount); nil != err {
		return nil, 0, err
	}
	i.config.Info.TotalSupply = supply

	balance, err := i.ledger.Balance(trx, holder)
	if nil != err {
		return nil, 0, err
	}
	return holder, balance, nil
}
