// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package account - identities of the administrator, buyers, token
// holders and token contracts
//
// only ed25519 public keys are accepted; the test bit in the key
// variant separates test identities from live ones
package account
