// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// vendingd - vending machine daemon
//
// Requests are delivered as JSON batch files in the inbox directory.
// A writer should create the file under another name and rename it
// into place with a ".json" suffix so that it is never read half
// written.  Each batch is applied in order through a single writer
// queue and the results are written to the outbox directory as
// "<name>.result.json", after which the request file is removed.
//
// Batch format:
//
//   {
//     "requests": [
//       {"caller": "<account>", "operation": "instantiate", "mode": "issued",
//        "name": "Coffee Token", "symbol": "COFFEE", "decimals": 6, "cap": 10000},
//       {"caller": "<account>", "operation": "add_item", "item": "Americano", "stock": 3, "price": 2},
//       {"caller": "<account>", "operation": "purchase", "item": "Americano",
//        "funds": {"token": "<account>", "amount": 2}}
//     ]
//   }
//
// Token transfers produced by purchases and withdrawals are appended
// to "transfers.json" in the outbox, one JSON object per line.
package main
