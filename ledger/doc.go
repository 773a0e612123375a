// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - configuration record and token accounting
//
// A vending machine is set up in one of two modes:
//
//   external - payment is made in an external token; the machine
//              only counts what it has collected and hands out
//              transfer instructions on withdrawal
//
//   issued   - the machine issues its own token, keeping a balance
//              per account in the balances pool; purchases move
//              tokens from the buyer to the collected revenue and
//              withdrawal burns them
//
// In issued mode the sum of all balances plus the collected revenue
// always equals the total supply, and the total supply never exceeds
// the cap.
package ledger
