// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package catalog

import (
	"unicode/utf8"

	"github.com/bitmark-inc/vendingd/fault"
	"github.com/bitmark-inc/vendingd/util"
)

// limits
const (
	MaxStock      = 50
	MaxNameLength = 64
)

// Item - a catalog entry
type Item struct {
	Name  string `json:"name"`
	Stock uint64 `json:"stock"`
	Price uint64 `json:"price"`
}

// ValidateName - non-empty UTF-8 of at most MaxNameLength bytes
func ValidateName(name string) error {
	if 0 == len(name) || len(name) > MaxNameLength || !utf8.ValidString(name) {
		return fault.ErrInvalidName
	}
	return nil
}

// Pack - the stored form of an item, the name is the key
func (item *Item) Pack() []byte {
	return util.Packed{}.PackUint64(item.Stock).PackUint64(item.Price)
}

// Unpack - decode a stored item
func Unpack(name []byte, record []byte) (*Item, error) {
	u := util.NewUnpacker(record)
	item := &Item{
		Name:  string(name),
		Stock: u.Uint64(),
		Price: u.Uint64(),
	}
	if err := u.Finish(); nil != err {
		return nil, err
	}
	if 0 == item.Price || item.Stock > MaxStock {
		return nil, fault.ErrCorruptRecord
	}
	return item, nil
}
