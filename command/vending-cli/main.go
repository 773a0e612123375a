// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/vendingd/account"
	"github.com/bitmark-inc/vendingd/catalog"
	"github.com/bitmark-inc/vendingd/configuration"
	"github.com/bitmark-inc/vendingd/ledger"
	"github.com/bitmark-inc/vendingd/storage"
	"github.com/bitmark-inc/vendingd/util"
	"github.com/bitmark-inc/vendingd/vending"
)

type metadata struct {
	config  *configuration.Configuration
	db      *storage.DB
	machine *vending.Machine
	caller  *account.Account
	logging bool
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// replaced in tests
var (
	startLogging = func(c logger.Configuration) error {
		if err := util.EnsureDirectory(c.Directory); nil != err {
			return err
		}
		c.File = "vending-cli.log"
		return logger.Initialise(c)
	}
	stopLogging = func() {
		logger.Finalise()
	}
)

func main() {
	app := newApp(os.Stdout, os.Stderr)

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "vending-cli"
	app.Usage = "vending machine database access"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "config, c",
			Value: "",
			Usage: "*vendingd configuration `FILE`",
		},
		cli.StringFlag{
			Name:  "caller, a",
			Value: "",
			Usage: " `ACCOUNT` performing a write operation",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "generate",
			Usage:     "generate a new account key pair",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "test, t",
					Usage: " generate a test account",
				},
			},
			Action: runGenerate,
		},
		{
			Name:      "init",
			Usage:     "instantiate the machine, the caller becomes admin",
			ArgsUsage: "\n   (* = required, + = issued mode only)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "mode, m",
					Value: ledger.ModeIssued.String(),
					Usage: "*token `MODE` [external|issued]",
				},
				cli.StringFlag{
					Name:  "token, t",
					Value: "",
					Usage: " external token contract `ACCOUNT`",
				},
				cli.StringFlag{
					Name:  "name, n",
					Value: "",
					Usage: "+token `NAME`",
				},
				cli.StringFlag{
					Name:  "symbol, s",
					Value: "",
					Usage: "+token `SYMBOL`",
				},
				cli.UintFlag{
					Name:  "decimals, d",
					Value: 0,
					Usage: " token `DECIMALS`",
				},
				cli.Uint64Flag{
					Name:  "cap",
					Value: ledger.DefaultCap,
					Usage: " maximum token supply `AMOUNT`",
				},
			},
			Action: runInit,
		},
		{
			Name:      "add",
			Usage:     "add a new catalog item",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "item, i",
					Value: "",
					Usage: "*item `NAME`",
				},
				cli.Uint64Flag{
					Name:  "stock, s",
					Value: 0,
					Usage: " initial stock `COUNT`",
				},
				cli.Uint64Flag{
					Name:  "price, p",
					Value: 0,
					Usage: "*unit `PRICE`",
				},
			},
			Action: runAdd,
		},
		{
			Name:      "set-price",
			Usage:     "change the price of an item",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "item, i",
					Value: "",
					Usage: "*item `NAME`",
				},
				cli.Uint64Flag{
					Name:  "price, p",
					Value: 0,
					Usage: "*unit `PRICE`",
				},
			},
			Action: runSetPrice,
		},
		{
			Name:      "restock",
			Usage:     "increase the stock of an item",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "item, i",
					Value: "",
					Usage: "*item `NAME`",
				},
				cli.Uint64Flag{
					Name:  "amount, n",
					Value: 0,
					Usage: "*stock to add `COUNT`",
				},
			},
			Action: runRestock,
		},
		{
			Name:      "buy",
			Usage:     "purchase one unit of an item",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "item, i",
					Value: "",
					Usage: "*item `NAME`",
				},
				cli.StringFlag{
					Name:  "token, t",
					Value: "",
					Usage: " tendered token contract `ACCOUNT`",
				},
				cli.StringFlag{
					Name:  "denom, d",
					Value: "",
					Usage: " tendered native coin `DENOM`",
				},
				cli.Uint64Flag{
					Name:  "amount, n",
					Value: 0,
					Usage: " tendered `AMOUNT`",
				},
			},
			Action: runBuy,
		},
		{
			Name:      "withdraw",
			Usage:     "take collected revenue",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.Uint64Flag{
					Name:  "amount, n",
					Value: 0,
					Usage: "*`AMOUNT` to withdraw",
				},
			},
			Action: runWithdraw,
		},
		{
			Name:      "issue",
			Usage:     "mint tokens to an account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "recipient, r",
					Value: "",
					Usage: "*recipient `ACCOUNT`",
				},
				cli.Uint64Flag{
					Name:  "amount, n",
					Value: 0,
					Usage: "*`AMOUNT` to issue",
				},
			},
			Action: runIssue,
		},
		{
			Name:      "list",
			Usage:     "list catalog items in name order",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "cursor, s",
					Value: "",
					Usage: " list items after `NAME`",
				},
				cli.IntFlag{
					Name:  "count, n",
					Value: catalog.DefaultPageSize,
					Usage: " number of items `COUNT`",
				},
			},
			Action: runList,
		},
		{
			Name:      "item",
			Usage:     "display one catalog item",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "item, i",
					Value: "",
					Usage: "*item `NAME`",
				},
			},
			Action: runItem,
		},
		{
			Name:      "balance",
			Usage:     "display the token balance of an account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "owner, o",
					Value: "",
					Usage: "*owner `ACCOUNT`",
				},
			},
			Action: runBalance,
		},
		{
			Name:   "info",
			Usage:  "display the machine configuration",
			Action: runInfo,
		},
		{
			Name:  "version",
			Usage: "display vending-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// read the configuration and open the database
	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		m := &metadata{
			verbose: verbose,
			e:       e,
			w:       w,
		}
		c.App.Metadata["config"] = m

		// to suppress reading config file if certain commands
		command := c.Args().Get(0)
		switch command {
		case "", "version", "generate", "help", "h":
			return nil
		}

		if caller := c.GlobalString("caller"); "" != caller {
			a, err := account.FromBase58(caller)
			if nil != err {
				return fmt.Errorf("caller: %q error: %s", caller, err)
			}
			m.caller = a
		}

		file, err := checkConfigFile(c.GlobalString("config"))
		if nil != err {
			return err
		}

		if verbose {
			fmt.Fprintf(e, "reading config file: %s\n", file)
		}

		m.config, err = configuration.Get(file)
		if nil != err {
			return err
		}

		err = startLogging(m.config.Logging)
		if nil != err {
			return err
		}
		m.logging = true

		if verbose {
			fmt.Fprintf(e, "database: %s\n", m.config.DatabasePath())
		}

		if err := util.EnsureDirectory(m.config.Database.Directory); nil != err {
			return err
		}
		m.db, err = storage.Open(m.config.DatabasePath(), storage.ReadWrite)
		if nil != err {
			return err
		}
		m.machine = vending.New(m.db)

		return nil
	}

	// close the database
	app.After = func(c *cli.Context) error {
		m, ok := c.App.Metadata["config"].(*metadata)
		if !ok {
			return nil
		}
		var err error
		if nil != m.db {
			err = m.db.Close()
		}
		if m.logging {
			stopLogging()
		}
		return err
	}

	return app
}
