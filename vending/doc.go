// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package vending - the vending machine state transitions and queries
//
// Every operation is applied inside a single storage transaction:
// the configuration record is loaded, the caller is authorised, all
// checks run, and only when everything passes is the transaction
// committed.  A rejected operation leaves the database unchanged.
//
// Token transfers that result from an operation are not carried out
// here, they are returned in the Outcome for the caller to execute
// after the commit.
//
// Queries read a snapshot and may run alongside a transition.
package vending
