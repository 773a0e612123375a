// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/vendingd/ledger"
	"github.com/bitmark-inc/vendingd/vending"
)

// environment of a write operation
func callerEnv(m *metadata) (vending.Env, error) {
	if nil == m.caller {
		return vending.Env{}, ErrRequiredCaller
	}
	return vending.Env{
		Caller:   m.caller,
		Contract: m.config.ContractAccount,
	}, nil
}

// apply one operation and show its outcome
func execute(m *metadata, op vending.Operation) error {
	env, err := callerEnv(m)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "caller: %s\n", env.Caller)
		fmt.Fprintf(m.e, "operation: %s %+v\n", op.Name(), op)
	}

	outcome, err := m.machine.Execute(env, op)
	if nil != err {
		return err
	}
	return printJson(m.w, outcome)
}

func runInit(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	env, err := callerEnv(m)
	if nil != err {
		return err
	}

	var setup vending.Setup
	switch c.String("mode") {
	case ledger.ModeExternal.String():
		token, err := checkAccount(c.String("token"))
		if nil != err {
			return err
		}
		setup = vending.External{Token: token}

	case ledger.ModeIssued.String():
		decimals := c.Uint("decimals")
		if decimals > ledger.MaxDecimals {
			return fmt.Errorf("invalid decimals: %d", decimals)
		}
		setup = vending.Issued{
			Name:     c.String("name"),
			Symbol:   c.String("symbol"),
			Decimals: uint8(decimals),
			Cap:      c.Uint64("cap"),
		}

	default:
		return ErrRequiredMode
	}

	if m.verbose {
		fmt.Fprintf(m.e, "admin: %s\n", env.Caller)
		fmt.Fprintf(m.e, "setup: %+v\n", setup)
	}

	outcome, err := m.machine.Instantiate(env, setup)
	if nil != err {
		return err
	}
	return printJson(m.w, outcome)
}

func runAdd(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	item, err := checkItem(c.String("item"))
	if nil != err {
		return err
	}

	return execute(m, vending.AddItem{
		Item:  item,
		Stock: c.Uint64("stock"),
		Price: c.Uint64("price"),
	})
}

func runSetPrice(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	item, err := checkItem(c.String("item"))
	if nil != err {
		return err
	}

	return execute(m, vending.SetPrice{
		Item:  item,
		Price: c.Uint64("price"),
	})
}

func runRestock(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	item, err := checkItem(c.String("item"))
	if nil != err {
		return err
	}

	return execute(m, vending.Restock{
		Item:   item,
		Amount: c.Uint64("amount"),
	})
}

func runBuy(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	item, err := checkItem(c.String("item"))
	if nil != err {
		return err
	}

	p := vending.Purchase{
		Item: item,
	}

	amount := c.Uint64("amount")
	if 0 != amount {
		p.Funds = &vending.Funds{
			Denom:  c.String("denom"),
			Amount: amount,
		}
		if token := c.String("token"); "" != token {
			p.Funds.Token, err = checkAccount(token)
			if nil != err {
				return err
			}
		}
	}

	return execute(m, p)
}

func runWithdraw(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	return execute(m, vending.Withdraw{
		Amount: c.Uint64("amount"),
	})
}

func runIssue(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	return execute(m, vending.Issue{
		Recipient: c.String("recipient"),
		Amount:    c.Uint64("amount"),
	})
}
