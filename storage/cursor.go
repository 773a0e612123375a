// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/vendingd/fault"
)

// FetchCursor - cursor structure
type FetchCursor struct {
	pool     *PoolHandle
	source   reader
	maxRange util.Range
}

// initialise a cursor to the start of a pool's key range
func newFetchCursor(p *PoolHandle, source reader) *FetchCursor {
	return &FetchCursor{
		pool:   p,
		source: source,
		maxRange: util.Range{
			Start: []byte{p.prefix}, // Start of key range, included in the range
			Limit: p.limit,          // Limit of key range, excluded from the range
		},
	}
}

// SeekAfter - move cursor to the first key strictly greater than key
func (cursor *FetchCursor) SeekAfter(key []byte) *FetchCursor {
	start := cursor.pool.prefixKey(key)
	cursor.maxRange.Start = append(start, 0x00)
	return cursor
}

// Fetch - return up to count elements and advance past them
func (cursor *FetchCursor) Fetch(count int) ([]Element, error) {
	if nil == cursor {
		return nil, fault.ErrInvalidCursor
	}
	if count <= 0 {
		return nil, fault.ErrInvalidCount
	}

	results := make([]Element, 0, count)
	err := cursor.Map(func(key []byte, value []byte) error {
		results = append(results, Element{
			Key:   key,
			Value: value,
		})
		if len(results) >= count {
			return errStop
		}
		return nil
	})
	if nil != err {
		return nil, err
	}

	if n := len(results); n > 0 {
		cursor.SeekAfter(results[n-1].Key)
	}
	return results, nil
}

// internal marker to end a scan early
type stopError string

func (e stopError) Error() string { return string(e) }

const errStop = stopError("stop")

// Map - run a function on all elements in the range
//
// the function receives copies of the key (without the pool prefix)
// and value, and may stop the scan by returning an error
func (cursor *FetchCursor) Map(f func(key []byte, value []byte) error) error {
	if nil == cursor {
		return fault.ErrInvalidCursor
	}

	iter := cursor.source.NewIterator(&cursor.maxRange, nil)

	var err error
iterating:
	for iter.Next() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		key := iter.Key()
		value := iter.Value()

		dataKey := make([]byte, len(key)-1) // strip the prefix
		copy(dataKey, key[1:])              // ...

		dataValue := make([]byte, len(value))
		copy(dataValue, value)

		err = f(dataKey, dataValue)
		if nil != err {
			break iterating
		}
	}
	iterErr := iter.Error()
	iter.Release()

	if errStop == err {
		return nil
	}
	if nil != err {
		return err
	}
	return fault.Storage("iterate", iterErr)
}
