// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/bitmark-inc/vendingd/account"
	"github.com/bitmark-inc/vendingd/fault"
)

var (
	ErrRequiredAccount    = fault.InvalidError("account is required")
	ErrRequiredCaller     = fault.InvalidError("caller is required")
	ErrRequiredConfigFile = fault.InvalidError("config file is required")
	ErrRequiredItem       = fault.InvalidError("item name is required")
	ErrRequiredMode       = fault.InvalidError("mode must be external or issued")
)

// config is required
func checkConfigFile(file string) (string, error) {
	if "" == file {
		return "", ErrRequiredConfigFile
	}

	file = os.ExpandEnv(file)
	return file, nil
}

// item name is required
func checkItem(item string) (string, error) {
	if "" == item {
		return "", ErrRequiredItem
	}
	return item, nil
}

// a non-blank account in Base58
func checkAccount(s string) (*account.Account, error) {
	if "" == s {
		return nil, ErrRequiredAccount
	}
	return account.FromBase58(s)
}
