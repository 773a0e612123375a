// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/vendingd/account"
	"github.com/bitmark-inc/vendingd/storage"
)

// Funds - payment attached to a purchase
//
// a nil token means the native coin named by Denom
type Funds struct {
	Token  *account.Account `json:"token,omitempty"`
	Denom  string           `json:"denom,omitempty"`
	Amount uint64           `json:"amount"`
}

// Transfer - token movement to be carried out after commit
type Transfer struct {
	Token  *account.Account `json:"token"`
	From   *account.Account `json:"from"`
	To     *account.Account `json:"to"`
	Amount uint64           `json:"amount"`
}

// Accounts - token accounting for one mode
//
// all methods change only the config held by the strategy and the
// balances pool, the caller saves the config
type Accounts interface {
	// balance of a holder, for an external token only the machine's
	// own contract account holds a balance, the collected revenue
	BalanceOf(view storage.View, holder *account.Account) (uint64, error)

	// all tokens accounted for
	TotalSupply() uint64

	// add to a holder's balance
	Credit(trx storage.Transaction, holder *account.Account, amount uint64) error

	// subtract from a holder's balance, ErrNotEnoughFunds if it would go negative
	Debit(trx storage.Transaction, holder *account.Account, amount uint64) error

	// check and take payment of price, returns any change to send back
	Charge(trx storage.Transaction, buyer *account.Account, tendered *Funds, price uint64) ([]Transfer, error)

	// reduce collected revenue paying it to the admin
	Withdraw(trx storage.Transaction, amount uint64) ([]Transfer, error)

	// create new tokens for recipient, returns the new balance
	Issue(trx storage.Transaction, recipient string, amount uint64) (*account.Account, uint64, error)
}

// add without wrap around
func safeAdd(a uint64, b uint64) (uint64, bool) {
	c := a + b
	return c, c >= a
}
