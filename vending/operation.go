// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vending

import (
	"github.com/bitmark-inc/vendingd/account"
	"github.com/bitmark-inc/vendingd/ledger"
)

// Funds - payment attached to a purchase
type Funds = ledger.Funds

// Transfer - deferred token transfer
type Transfer = ledger.Transfer

// Env - the context of a transition supplied by the host
type Env struct {
	Caller   *account.Account
	Contract *account.Account
	Block    uint64
}

// Operation - one of the state transitions below
type Operation interface {
	Name() string
	operation()
}

// AddItem - create a catalog entry
type AddItem struct {
	Item  string
	Stock uint64
	Price uint64
}

// SetPrice - change the price of an item
type SetPrice struct {
	Item  string
	Price uint64
}

// Restock - add stock to an item
type Restock struct {
	Item   string
	Amount uint64
}

// Purchase - buy one unit of an item
type Purchase struct {
	Item  string
	Funds *Funds
}

// Withdraw - pay collected revenue to the admin
type Withdraw struct {
	Amount uint64
}

// Issue - create new tokens for an account
type Issue struct {
	Recipient string
	Amount    uint64
}

// operation names
const (
	NameAddItem  = "add_item"
	NameSetPrice = "set_price"
	NameRestock  = "restock"
	NamePurchase = "purchase"
	NameWithdraw = "withdraw"
	NameIssue    = "issue"
)

// Name - the operation name
func (AddItem) Name() string  { return NameAddItem }
func (SetPrice) Name() string { return NameSetPrice }
func (Restock) Name() string  { return NameRestock }
func (Purchase) Name() string { return NamePurchase }
func (Withdraw) Name() string { return NameWithdraw }
func (Issue) Name() string    { return NameIssue }

func (AddItem) operation()  {}
func (SetPrice) operation() {}
func (Restock) operation()  {}
func (Purchase) operation() {}
func (Withdraw) operation() {}
func (Issue) operation()    {}

// Setup - how the machine accepts payment
type Setup interface {
	setup()
}

// External - payment in an existing token
type External struct {
	Token *account.Account
}

// Issued - the machine issues its own token
type Issued struct {
	Name     string
	Symbol   string
	Decimals uint8
	Cap      uint64
}

func (External) setup() {}
func (Issued) setup()   {}
