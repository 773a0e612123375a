// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package catalog - the purchasable items of a vending machine
//
// Each item is stored in the catalog pool keyed by its name, so a
// scan of the pool returns items in byte order of their names.  An
// item is never deleted, its stock may drop to zero.
package catalog
