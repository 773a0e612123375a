// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"
)

type balanceReply struct {
	Owner   string `json:"owner"`
	Balance uint64 `json:"balance"`
}

type listReply struct {
	Items interface{} `json:"items"`
	Next  string      `json:"next,omitempty"`
}

func runList(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	cursor := c.String("cursor")
	count := c.Int("count")

	if m.verbose {
		fmt.Fprintf(m.e, "cursor: %q\n", cursor)
		fmt.Fprintf(m.e, "count: %d\n", count)
	}

	items, err := m.machine.ListItems(cursor, count)
	if nil != err {
		return err
	}

	reply := listReply{
		Items: items,
	}
	if len(items) > 0 {
		reply.Next = items[len(items)-1].Name
	}
	return printJson(m.w, reply)
}

func runItem(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	name, err := checkItem(c.String("item"))
	if nil != err {
		return err
	}

	item, err := m.machine.Item(name)
	if nil != err {
		return err
	}
	return printJson(m.w, item)
}

func runBalance(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	owner, err := checkAccount(c.String("owner"))
	if nil != err {
		return err
	}

	balance, err := m.machine.Balance(owner)
	if nil != err {
		return err
	}
	return printJson(m.w, balanceReply{
		Owner:   owner.String(),
		Balance: balance,
	})
}

func runInfo(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	config, err := m.machine.Config()
	if nil != err {
		return err
	}
	return printJson(m.w, config)
}
