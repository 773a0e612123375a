// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/vendingd/account"
	"github.com/bitmark-inc/vendingd/catalog"
	"github.com/bitmark-inc/vendingd/configuration"
	"github.com/bitmark-inc/vendingd/fault"
	"github.com/bitmark-inc/vendingd/util"
	"github.com/bitmark-inc/vendingd/vending"
)

const (
	contractPrivateKeyFilename = "contract.private"
)

// setup command handler
//
// commands that run to create key files these commands cannot access
// any internal database or states or the configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "gen-contract-identity", "contract":
		privateKeyFilename := getFilenameWithDirectory(arguments, contractPrivateKeyFilename)

		a, err := makeContractIdentity(privateKeyFilename)
		if nil != err {
			fmt.Printf("generate private key: %q error: %s\n", privateKeyFilename, err)
			exitwithstatus.Exit(1)
		}

		fmt.Printf("generated private key: %q\n", privateKeyFilename)
		fmt.Printf("contract account: %s\n", a)

	case "start", "run":
		return false // continue processing

	case "items", "list", "info":
		return false // defer processing until database is loaded

	case "config-test", "cfg":
		return false

	case "version", "v":
		fmt.Printf("%s\n", version)
		return true

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)        - display this message\n\n")
		fmt.Printf("  version                    (v)        - display version sting\n\n")

		fmt.Printf("  gen-contract-identity [DIR] (contract) - create private key in: %q\n", "DIR/"+contractPrivateKeyFilename)
		fmt.Printf("                                          and display the account for the configuration\n")
		fmt.Printf("\n")

		fmt.Printf("  start                      (run)      - just run the program, same as no arguments\n")
		fmt.Printf("                                          for convienience when passing script arguments\n")
		fmt.Printf("\n")

		fmt.Printf("  config-test                (cfg)      - just check the configuration file\n")
		fmt.Printf("\n")

		fmt.Printf("  items [CURSOR [COUNT]]     (list)     - list catalog items as JSON\n")
		fmt.Printf("\n")

		fmt.Printf("  info                                  - display the machine configuration as JSON\n")
		fmt.Printf("\n")

		exitwithstatus.Exit(1)
	}

	// indicate processing complete and preform normal exit from main
	return true
}

// configuration file enquiry commands
// have configuration file read and decoded, but nothing else
func processConfigCommand(arguments []string, options *configuration.Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "config-test", "cfg":
		if err := printJson(os.Stdout, options); nil != err {
			exitwithstatus.Message("error: %s", err)
		}

	default: // unknown commands fall through to data command
		return false
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// data command handler
// the database is open so these commands can read the machine state
func processDataCommand(log *logger.L, arguments []string, machine *vending.Machine) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {

	case "start", "run":
		return false // continue processing

	case "items", "list":
		cursor := ""
		count := catalog.DefaultPageSize
		if len(arguments) > 0 {
			cursor = arguments[0]
		}
		if len(arguments) > 1 {
			n, err := fmt.Sscan(arguments[1], &count)
			if nil != err || 1 != n {
				exitwithstatus.Message("invalid count: %q", arguments[1])
			}
		}
		items, err := machine.ListItems(cursor, count)
		if nil != err {
			exitwithstatus.Message("list error: %s", err)
		}
		log.Infof("listed: %d items", len(items))
		if err := printJson(os.Stdout, items); nil != err {
			exitwithstatus.Message("error: %s", err)
		}

	case "info":
		config, err := machine.Config()
		if err == fault.ErrNotInitialised {
			exitwithstatus.Message("machine is not instantiated")
		} else if nil != err {
			exitwithstatus.Message("info error: %s", err)
		}
		if err := printJson(os.Stdout, config); nil != err {
			exitwithstatus.Message("error: %s", err)
		}

	default:
		exitwithstatus.Message("error: no such command: %q", command)
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// create a new identity for the contract and save its private key
func makeContractIdentity(privateKeyFilename string) (*account.Account, error) {
	if util.EnsureFileExists(privateKeyFilename) {
		return nil, fault.ErrAlreadyExists
	}

	a, privateKey, err := account.Generate(rand.Reader, false)
	if nil != err {
		return nil, err
	}

	data := hex.EncodeToString(privateKey) + "\n"
	if err := ioutil.WriteFile(privateKeyFilename, []byte(data), 0600); nil != err {
		os.Remove(privateKeyFilename)
		return nil, err
	}
	return a, nil
}

// get the working directory; if not set in the arguments
// it's set to the current directory
func getFilenameWithDirectory(arguments []string, name string) string {
	dir := "."
	if len(arguments) >= 1 {
		dir = arguments[0]
	}

	return filepath.Join(dir, name)
}

// print out the JSON for a value
func printJson(handle io.Writer, message interface{}) error {
	b, err := json.Marshal(message)
	if nil != err {
		return err
	}

	var out bytes.Buffer
	json.Indent(&out, b, "", "  ")
	_, err = out.WriteTo(handle)
	if nil != err {
		return err
	}
	_, err = io.WriteString(handle, "\n")
	return err
}
