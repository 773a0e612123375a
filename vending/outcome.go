// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vending

import (
	"strconv"

	"github.com/bitmark-inc/vendingd/account"
)

// Attribute - key/value event data of a successful operation
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Outcome - result of a successful operation
type Outcome struct {
	Operation  string      `json:"operation"`
	Attributes []Attribute `json:"attributes"`
	Transfers  []Transfer  `json:"transfers,omitempty"`
}

// Attribute - value of the first attribute with the given key
func (o *Outcome) Attribute(key string) (string, bool) {
	for _, a := range o.Attributes {
		if key == a.Key {
			return a.Value, true
		}
	}
	return "", false
}

// Transferrer - executes token transfers on an external token ledger
type Transferrer interface {
	Transfer(token *account.Account, from *account.Account, to *account.Account, amount uint64) error
}

func newOutcome(name string) *Outcome {
	return &Outcome{
		Operation:  name,
		Attributes: make([]Attribute, 0, 3),
	}
}

func (o *Outcome) add(key string, value string) *Outcome {
	o.Attributes = append(o.Attributes, Attribute{Key: key, Value: value})
	return o
}

func (o *Outcome) addN(key string, value uint64) *Outcome {
	return o.add(key, strconv.FormatUint(value, 10))
}
