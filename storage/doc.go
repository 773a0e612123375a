// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - the key-value store behind the vending machine
//
// This maintains a LevelDB database split into a series of pools.
// Each pool is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the available pools.
//
// All writes go through a Transaction: they are buffered in a
// LevelDB batch and become visible to other readers only on Commit,
// which writes the whole batch atomically.  The transaction itself
// reads its own uncommitted writes through a cache overlay.
// Queries read from a Snapshot so that a scan never observes part
// of a batch.
//
// Notes:
// 1. each separate pool has a single byte prefix
// 2. ++        = concatenation of byte data
// 3. varint    = Varint64 (see util package)
// 4. account   = key variant ++ 32 byte ed25519 public key
// 5. amount    = big endian uint64 (8 bytes)
//
// Catalog:
//
//   I ++ item name             - catalog entry
//                                data: varint(stock) ++ varint(price)
//
// Balances:
//
//   B ++ account               - token balance of an account (issued token mode)
//                                data: amount
//
// Configuration:
//
//   C ++ "config"              - admin, mode, token and counters
//                                data: see ledger package
//
// Testing:
//   Z ++ key                   - testing data
//
// Version:
//   0x00 ++ "VERSION"          - database version (big endian uint32)
package storage
