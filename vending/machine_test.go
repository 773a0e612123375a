// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vending_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/vendingd/catalog"
	"github.com/bitmark-inc/vendingd/fault"
	"github.com/bitmark-inc/vendingd/ledger"
	"github.com/bitmark-inc/vendingd/vending"
)

func TestInstantiateOnce(t *testing.T) {
	f := newFixture(t, externalSetup)
	defer f.db.Close()

	_, err := f.machine.Instantiate(f.stranger, issuedSetup(f))
	assert.Equal(t, fault.ErrAlreadyInitialised, err, "second instantiate")

	c, err := f.machine.Config()
	assert.Nil(t, err, "config error")
	assert.True(t, f.admin.Caller.Equal(c.Admin), "admin changed")
	assert.Equal(t, ledger.ModeExternal, c.Mode, "mode changed")

	_, err = f.machine.TokenInfo()
	assert.Equal(t, fault.ErrIssueNotSupported, err, "token info of external token")
}

func TestInstantiateBadTokenInfo(t *testing.T) {
	db, err := newFixtureDB(t)
	assert.Nil(t, err, "open error")
	defer db.Close()

	m := vending.New(db)
	env := vending.Env{Caller: makeAccount(t, 1), Contract: makeAccount(t, 2)}

	_, err = m.Instantiate(env, vending.Issued{Name: "Coffee", Symbol: "C0F", Cap: 10})
	assert.Equal(t, fault.ErrInvalidTokenInfo, err, "bad symbol")

	_, err = m.Execute(env, vending.AddItem{Item: "Tea", Stock: 1, Price: 1})
	assert.Equal(t, fault.ErrNotInitialised, err, "operation before instantiate")
}

func TestAmericanoIssued(t *testing.T) {
	f := newFixture(t, issuedSetup)
	defer f.db.Close()

	outcome, err := f.machine.Execute(f.admin, vending.Issue{Recipient: f.buyer.Caller.String(), Amount: 10})
	assert.Nil(t, err, "issue error")
	assert.Equal(t, []vending.Attribute{
		{Key: "recipient", Value: f.buyer.Caller.String()},
		{Key: "balance", Value: "10"},
	}, outcome.Attributes, "issue attributes")

	outcome, err = f.machine.Execute(f.admin, vending.AddItem{Item: "Americano", Stock: 3, Price: 2})
	assert.Nil(t, err, "add error")
	assert.Equal(t, []vending.Attribute{
		{Key: "name", Value: "Americano"},
		{Key: "stock", Value: "3"},
		{Key: "price", Value: "2"},
	}, outcome.Attributes, "add attributes")

	outcome, err = f.machine.Execute(f.admin, vending.SetPrice{Item: "Americano", Price: 3})
	assert.Nil(t, err, "set price error")
	price, _ := outcome.Attribute("price")
	assert.Equal(t, "3", price, "price attribute")

	outcome, err = f.machine.Execute(f.admin, vending.Restock{Item: "Americano", Amount: 7})
	assert.Nil(t, err, "restock error")
	stock, _ := outcome.Attribute("stock")
	assert.Equal(t, "10", stock, "stock attribute")

	outcome, err = f.machine.Execute(f.buyer, vending.Purchase{Item: "Americano"})
	assert.Nil(t, err, "purchase error")
	purchased, _ := outcome.Attribute("purchased")
	assert.Equal(t, "Americano", purchased, "purchased attribute")
	assert.Equal(t, 0, len(outcome.Transfers), "issued purchase made a transfer")

	item, _ := f.machine.Item("Americano")
	assert.Equal(t, uint64(9), item.Stock, "stock after purchase")
	balance, _ := f.machine.Balance(f.buyer.Caller)
	assert.Equal(t, uint64(7), balance, "buyer balance")
	c, _ := f.machine.Config()
	assert.Equal(t, uint64(3), c.Collected, "collected")

	outcome, err = f.machine.Execute(f.admin, vending.Withdraw{Amount: 2})
	assert.Nil(t, err, "withdraw error")
	withdrawn, _ := outcome.Attribute("withdrawn")
	assert.Equal(t, "2", withdrawn, "withdrawn attribute")

	c, _ = f.machine.Config()
	assert.Equal(t, uint64(1), c.Collected, "collected after withdraw")
	info, err := f.machine.TokenInfo()
	assert.Nil(t, err, "token info error")
	assert.Equal(t, uint64(8), info.TotalSupply, "supply after burn")
	assert.Equal(t, "COFFEE", info.Symbol, "symbol")
}

func TestAmericanoExternal(t *testing.T) {
	f := newFixture(t, externalSetup)
	defer f.db.Close()

	_, err := f.machine.Execute(f.admin, vending.AddItem{Item: "Americano", Stock: 3, Price: 2})
	assert.Nil(t, err, "add error")
	_, err = f.machine.Execute(f.admin, vending.SetPrice{Item: "Americano", Price: 3})
	assert.Nil(t, err, "set price error")
	_, err = f.machine.Execute(f.admin, vending.Restock{Item: "Americano", Amount: 7})
	assert.Nil(t, err, "restock error")

	_, err = f.machine.Execute(f.buyer, vending.Purchase{
		Item:  "Americano",
		Funds: &vending.Funds{Denom: "ucoin", Amount: 3},
	})
	assert.Equal(t, fault.ErrWrongToken, err, "native coin accepted")

	outcome, err := f.machine.Execute(f.buyer, vending.Purchase{
		Item:  "Americano",
		Funds: &vending.Funds{Token: f.token, Amount: 5},
	})
	assert.Nil(t, err, "purchase error")
	assert.Equal(t, []vending.Transfer{{
		Token:  f.token,
		From:   f.admin.Contract,
		To:     f.buyer.Caller,
		Amount: 2,
	}}, outcome.Transfers, "change")

	item, _ := f.machine.Item("Americano")
	assert.Equal(t, uint64(9), item.Stock, "stock after purchase")
	collected, _ := f.machine.Balance(f.admin.Contract)
	assert.Equal(t, uint64(3), collected, "collected")

	outcome, err = f.machine.Execute(f.admin, vending.Withdraw{Amount: 2})
	assert.Nil(t, err, "withdraw error")
	assert.Equal(t, []vending.Transfer{{
		Token:  f.token,
		From:   f.admin.Contract,
		To:     f.admin.Caller,
		Amount: 2,
	}}, outcome.Transfers, "withdraw transfer")

	c, _ := f.machine.Config()
	assert.Equal(t, uint64(1), c.Collected, "collected after withdraw")

	_, err = f.machine.Execute(f.admin, vending.Issue{Recipient: f.buyer.Caller.String(), Amount: 1})
	assert.Equal(t, fault.ErrIssueNotSupported, err, "issue of external token")
}

func TestUnauthorizedLeavesStateUnchanged(t *testing.T) {
	for _, setup := range []func(*fixture) vending.Setup{externalSetup, issuedSetup} {
		f := newFixture(t, setup)

		_, err := f.machine.Execute(f.admin, vending.AddItem{Item: "Tea", Stock: 5, Price: 4})
		assert.Nil(t, err, "add error")

		before := dump(t, f.db)

		ops := []vending.Operation{
			vending.AddItem{Item: "Coffee", Stock: 1, Price: 1},
			vending.AddItem{Item: "", Stock: 100, Price: 0}, // authorisation is checked first
			vending.SetPrice{Item: "Tea", Price: 9},
			vending.Restock{Item: "Tea", Amount: 1},
			vending.Withdraw{Amount: 1},
			vending.Issue{Recipient: f.stranger.Caller.String(), Amount: 1},
		}
		for i, op := range ops {
			_, err := f.machine.Execute(f.stranger, op)
			assert.Equal(t, fault.ErrUnauthorized, err, "%d: %s", i, op.Name())
		}

		assert.Equal(t, before, dump(t, f.db), "state changed")
		f.db.Close()
	}
}

func TestRejectedPurchaseLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, issuedSetup)
	defer f.db.Close()

	_, _ = f.machine.Execute(f.admin, vending.AddItem{Item: "Tea", Stock: 1, Price: 4})
	_, _ = f.machine.Execute(f.admin, vending.AddItem{Item: "Water", Stock: 0, Price: 1})
	_, _ = f.machine.Execute(f.admin, vending.Issue{Recipient: f.buyer.Caller.String(), Amount: 3})

	before := dump(t, f.db)

	tests := []struct {
		op  vending.Purchase
		err error
	}{
		{vending.Purchase{Item: "Coffee"}, fault.ErrNotFound},
		{vending.Purchase{Item: "Water"}, fault.ErrOutOfStock},
		{vending.Purchase{Item: "Tea", Funds: &vending.Funds{Token: f.token, Amount: 4}}, fault.ErrWrongToken},
		{vending.Purchase{Item: "Tea"}, fault.ErrNotEnoughFunds},
	}
	for i, test := range tests {
		_, err := f.machine.Execute(f.buyer, test.op)
		assert.Equal(t, test.err, err, "%d: wrong error", i)
		assert.Equal(t, test.err != nil, fault.KindNone != fault.KindOf(err), "%d: kind", i)
	}

	assert.Equal(t, before, dump(t, f.db), "state changed")
}

func TestPurchaseUntilEmpty(t *testing.T) {
	f := newFixture(t, externalSetup)
	defer f.db.Close()

	_, _ = f.machine.Execute(f.admin, vending.AddItem{Item: "Tea", Stock: 2, Price: 1})

	pay := &vending.Funds{Token: f.token, Amount: 1}
	for i := 0; i < 2; i += 1 {
		_, err := f.machine.Execute(f.buyer, vending.Purchase{Item: "Tea", Funds: pay})
		assert.Nil(t, err, "%d: purchase error", i)
	}
	_, err := f.machine.Execute(f.buyer, vending.Purchase{Item: "Tea", Funds: pay})
	assert.Equal(t, fault.ErrOutOfStock, err, "purchase from empty stock")

	item, _ := f.machine.Item("Tea")
	assert.Equal(t, uint64(0), item.Stock, "stock below zero")
}

func TestListAfterAdd(t *testing.T) {
	f := newFixture(t, externalSetup)
	defer f.db.Close()

	for _, name := range []string{"Mocha", "Americano", "Latte"} {
		_, err := f.machine.Execute(f.admin, vending.AddItem{Item: name, Stock: 1, Price: 1})
		assert.Nil(t, err, "add error")
	}
	_, err := f.machine.Execute(f.admin, vending.AddItem{Item: "Espresso", Stock: 1, Price: 1})
	assert.Nil(t, err, "add error")

	items, err := f.machine.ListItems("", 0)
	assert.Nil(t, err, "list error")
	assert.Equal(t, []catalog.Item{
		{Name: "Americano", Stock: 1, Price: 1},
		{Name: "Espresso", Stock: 1, Price: 1},
		{Name: "Latte", Stock: 1, Price: 1},
		{Name: "Mocha", Stock: 1, Price: 1},
	}, items, "list order")

	items, err = f.machine.ListItems("Espresso", 1)
	assert.Nil(t, err, "list error")
	assert.Equal(t, "Latte", items[0].Name, "exclusive cursor")
}

func TestPaginationRoundTrip(t *testing.T) {
	f := newFixture(t, externalSetup)
	defer f.db.Close()

	for i := 0; i < 47; i += 1 {
		_, err := f.machine.Execute(f.admin, vending.AddItem{Item: fmt.Sprintf("drink-%03d", (i*17)%47), Stock: 1, Price: 1})
		assert.Nil(t, err, "add error")
	}

	full, err := f.machine.ListItems("", 100)
	assert.Nil(t, err, "list error")
	assert.Equal(t, catalog.MaxPageSize, len(full), "page not clamped")

	for _, k := range []int{1, 7, 30} {
		seen := []string{}
		cursor := ""
		for {
			page, err := f.machine.ListItems(cursor, k)
			assert.Nil(t, err, "list error")
			if 0 == len(page) {
				break
			}
			for _, item := range page {
				seen = append(seen, item.Name)
			}
			cursor = page[len(page)-1].Name
		}
		assert.Equal(t, 47, len(seen), "page size %d: count", k)
		for i, name := range seen {
			assert.Equal(t, fmt.Sprintf("drink-%03d", i), name, "page size %d: order", k)
		}
	}
}

func TestCapEnforced(t *testing.T) {
	f := newFixture(t, issuedSetup)
	defer f.db.Close()

	_, err := f.machine.Execute(f.admin, vending.Issue{Recipient: f.buyer.Caller.String(), Amount: 9000})
	assert.Nil(t, err, "issue error")

	before := dump(t, f.db)
	_, err = f.machine.Execute(f.admin, vending.Issue{Recipient: f.stranger.Caller.String(), Amount: 1001})
	assert.Equal(t, fault.ErrCapExceeded, err, "cap")
	assert.Equal(t, before, dump(t, f.db), "state changed")

	_, err = f.machine.Execute(f.admin, vending.Issue{Recipient: "bad", Amount: 1})
	assert.Equal(t, fault.ErrInvalidRecipient, err, "recipient")
	assert.Equal(t, fault.KindInvalidRecipient, fault.KindOf(err), "kind")

	info, _ := f.machine.TokenInfo()
	assert.Equal(t, uint64(9000), info.TotalSupply, "supply")
}

func TestExecuteNilOperation(t *testing.T) {
	f := newFixture(t, externalSetup)
	defer f.db.Close()

	before := dump(t, f.db)
	_, err := f.machine.Execute(f.admin, nil)
	assert.Equal(t, fault.ErrUnknownOperation, err, "nil operation")
	assert.Equal(t, before, dump(t, f.db), "state changed")

	// the write transaction was not left open
	_, err = f.machine.Execute(f.admin, vending.AddItem{Item: "Tea", Stock: 1, Price: 1})
	assert.Nil(t, err, "add error")
}

func TestRandomSequenceKeepsItemBounds(t *testing.T) {
	f := newFixture(t, issuedSetup)
	defer f.db.Close()

	_, err := f.machine.Execute(f.admin, vending.Issue{Recipient: f.buyer.Caller.String(), Amount: 5000})
	assert.Nil(t, err, "issue error")

	names := []string{"Americano", "Latte", "Mocha", "Tea", "Water"}
	r := rand.New(rand.NewSource(20201016))

	for step := 0; step < 2000; step += 1 {
		name := names[r.Intn(len(names))]

		var op vending.Operation
		switch r.Intn(5) {
		case 0:
			op = vending.AddItem{Item: name, Stock: uint64(r.Intn(60)), Price: uint64(r.Intn(5))}
		case 1:
			op = vending.SetPrice{Item: name, Price: uint64(r.Intn(5))}
		case 2:
			op = vending.Restock{Item: name, Amount: uint64(r.Intn(60))}
		case 3:
			op = vending.Purchase{Item: name}
		default:
			op = vending.Withdraw{Amount: uint64(r.Intn(5))}
		}
		env := f.admin
		if _, ok := op.(vending.Purchase); ok {
			env = f.buyer
		}

		// rejections are expected, only the bounds matter
		_, _ = f.machine.Execute(env, op)

		items, err := f.machine.ListItems("", catalog.MaxPageSize)
		if !assert.Nil(t, err, "%d: list error", step) {
			return
		}
		for _, item := range items {
			if item.Stock > catalog.MaxStock || 0 == item.Price {
				t.Fatalf("%d: %s: out of bounds: %+v", step, op.Name(), item)
			}
		}
	}
}
