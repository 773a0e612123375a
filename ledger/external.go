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

// payment in an external token, only the aggregated total held by the
// contract is recorded
type external struct {
	ledger *Ledger
	config *Config
}

func (e *external) BalanceOf(view storage.View, holder *account.Account) (uint64, error) {
	if holder.Equal(e.config.Contract) {
		return e.config.Collected, nil
	}
	return 0, nil
}

func (e *external) TotalSupply() uint64 {
	return e.config.Collected
}

func (e *external) Credit(trx storage.Transaction, holder *account.Account, amount uint64) error {
	collected, ok := safeAdd(e.config.Collected, amount)
	if !ok {
		return fault.ErrBalanceOverflow
	}
	e.config.Collected = collected
	return nil
}

func (e *external) Debit(trx storage.Transaction, holder *account.Account, amount uint64) error {
	if amount > e.config.Collected {
		return fault.ErrNotEnoughFunds
	}
	e.config.Collected -= amount
	return nil
}

// the tendered amount is the available funds
func (e *external) Charge(trx storage.Transaction, buyer *account.Account, tendered *Funds, price uint64) ([]Transfer, error) {
	if nil == tendered {
		return nil, fault.ErrNotEnoughFunds
	}
	if nil == tendered.Token || !tendered.Token.Equal(e.config.Token) {
		return nil, fault.ErrWrongToken
	}
	if 0 == tendered.Amount || tendered.Amount < price {
		return nil, fault.ErrNotEnoughFunds
	}

	if err := e.Credit(trx, e.config.Contract, price); nil != err {
		return nil, err
	}

	change := tendered.Amount - price
	if 0 == change {
		return nil, nil
	}
	return []Transfer{{
		Token:  e.config.Token,
		From:   e.config.Contract,
		To:     buyer,
		Amount: change,
	}}, nil
}

func (e *external) Withdraw(trx storage.Transaction, amount uint64) ([]Transfer, error) {
	if 0 == amount {
		return nil, fault.ErrInvalidZeroAmount
	}
	if err := e.Debit(trx, e.config.Contract, amount); nil != err {
		return nil, err
	}

	return []Transfer{{
		Token:  e.config.Token,
		From:   e.config.Contract,
		To:     e.config.Admin,
		Amount: amount,
	}}, nil
}

func (e *external) Issue(trx storage.Transaction, recipient string, amount uint64) (*account.Account, uint64, error) {
	return nil, 0, fault.ErrIssueNotSupported
}
