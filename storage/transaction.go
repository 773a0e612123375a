// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/vendingd/fault"
)

// View - read access to the pools
type View interface {
	Get(*PoolHandle, []byte) ([]byte, error)
	GetN(*PoolHandle, []byte) (uint64, bool, error)
	Has(*PoolHandle, []byte) (bool, error)
	NewFetchCursor(*PoolHandle) *FetchCursor
}

// Transaction - buffered writes that are applied together on Commit
type Transaction interface {
	View
	Put(*PoolHandle, []byte, []byte)
	PutN(*PoolHandle, []byte, uint64)
	Commit() error
	Abort()
}

// common to *leveldb.DB and *leveldb.Snapshot
type reader interface {
	Get([]byte, *opt.ReadOptions) ([]byte, error)
	Has([]byte, *opt.ReadOptions) (bool, error)
	NewIterator(*ldb_util.Range, *opt.ReadOptions) iterator.Iterator
}

// Snapshot - read only view of the committed state at one point in time
type Snapshot struct {
	snapshot *leveldb.Snapshot
}

// Get - read a value, nil if not found
func (s *Snapshot) Get(p *PoolHandle, key []byte) ([]byte, error) {
	return get(s.snapshot, p.prefixKey(key))
}

// GetN - read a big endian uint64 value
func (s *Snapshot) GetN(p *PoolHandle, key []byte) (uint64, bool, error) {
	return decodeN(s.Get(p, key))
}

// Has - check if a key exists
func (s *Snapshot) Has(p *PoolHandle, key []byte) (bool, error) {
	found, err := s.snapshot.Has(p.prefixKey(key), nil)
	return found, fault.Storage("has", err)
}

// NewFetchCursor - ordered scan of one pool
func (s *Snapshot) NewFetchCursor(p *PoolHandle) *FetchCursor {
	return newFetchCursor(p, s.snapshot)
}

// Release - the snapshot must not be used after this
func (s *Snapshot) Release() {
	s.snapshot.Release()
}

func get(r reader, key []byte) ([]byte, error) {
	value, err := r.Get(key, nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	}
	if nil != err {
		return nil, fault.Storage("get", err)
	}
	return value, nil
}

// decode first 8 bytes as big endian uint64
func decodeN(buffer []byte, err error) (uint64, bool, error) {
	if nil != err {
		return 0, false, err
	}
	if nil == buffer {
		return 0, false, nil
	}
	if 8 != len(buffer) {
		return 0, false, fault.ErrCorruptRecord
	}
	return binary.BigEndian.Uint64(buffer), true, nil
}

func encodeN(value uint64) []byte {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, value)
	return buffer
}
