// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// vending-cli - one shot access to a vending machine database
//
// The database is opened directly so the daemon must not be running.
// Every write command applies a single operation as the account given
// by --caller and prints the outcome as JSON.  Transfers listed in an
// outcome are not sent anywhere, they are displayed for the operator.
//
//   vending-cli --config vendingd.conf --caller ACCOUNT init --mode issued --name "Coffee Token" --symbol COFFEE
//   vending-cli --config vendingd.conf --caller ACCOUNT add --item Americano --stock 3 --price 2
//   vending-cli --config vendingd.conf list --cursor Americano --count 10
package main
