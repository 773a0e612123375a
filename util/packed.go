// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"github.com/bitmark-inc/vendingd/fault"
)

// Packed - a record being built for storage
type Packed []byte

// PackUint64 - append a Varint64
func (p Packed) PackUint64(value uint64) Packed {
	return AppendVarint64(p, value)
}

// PackBytes - append a length prefixed byte string
func (p Packed) PackBytes(data []byte) Packed {
	p = AppendVarint64(p, uint64(len(data)))
	return append(p, data...)
}

// Unpacker - sequential reader over a stored record
//
// the first error sticks, later reads return zero values
type Unpacker struct {
	buffer []byte
	err    error
}

// NewUnpacker - start reading a record
func NewUnpacker(buffer []byte) *Unpacker {
	return &Unpacker{buffer: buffer}
}

// Uint64 - read a Varint64
func (u *Unpacker) Uint64() uint64 {
	if nil != u.err {
		return 0
	}
	value, n := FromVarint64(u.buffer)
	if 0 == n {
		u.err = fault.ErrCorruptRecord
		return 0
	}
	u.buffer = u.buffer[n:]
	return value
}

// Bytes - read a length prefixed byte string, the result is a copy
func (u *Unpacker) Bytes() []byte {
	length := u.Uint64()
	if nil != u.err {
		return nil
	}
	if length > uint64(len(u.buffer)) {
		u.err = fault.ErrCorruptRecord
		return nil
	}
	data := make([]byte, length)
	copy(data, u.buffer[:length])
	u.buffer = u.buffer[length:]
	return data
}

// Finish - check the record was fully consumed
func (u *Unpacker) Finish() error {
	if nil != u.err {
		return u.err
	}
	if 0 != len(u.buffer) {
		return fault.ErrCorruptRecord
	}
	return nil
}
