// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/vendingd/fault"
)

// the single write transaction of a database
type accessData struct {
	sync.Mutex
	inUse bool
	db    *leveldb.DB
	batch *leveldb.Batch
	cache Cache
}

func newAccess(db *leveldb.DB, cache Cache) *accessData {
	return &accessData{
		inUse: false,
		db:    db,
		batch: new(leveldb.Batch),
		cache: cache,
	}
}

func (d *accessData) Begin() error {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		return fault.ErrTransactionInUse
	}

	d.inUse = true
	return nil
}

func (d *accessData) Put(p *PoolHandle, key []byte, value []byte) {
	k := p.prefixKey(key)
	d.cache.Set(string(k), value)
	d.batch.Put(k, value)
}

func (d *accessData) PutN(p *PoolHandle, key []byte, value uint64) {
	d.Put(p, key, encodeN(value))
}

// Commit - write the batch, the transaction is finished either way
func (d *accessData) Commit() error {
	d.Lock()
	defer d.Unlock()

	if !d.inUse {
		return fault.ErrTransactionNotStarted
	}

	err := d.db.Write(d.batch, nil)
	d.reset()
	return fault.Storage("commit", err)
}

// Abort - discard all buffered writes
func (d *accessData) Abort() {
	d.Lock()
	defer d.Unlock()

	d.reset()
}

func (d *accessData) reset() {
	d.batch.Reset()
	d.cache.Clear()
	d.inUse = false
}

func (d *accessData) Get(p *PoolHandle, key []byte) ([]byte, error) {
	k := p.prefixKey(key)
	if value, found := d.cache.Get(string(k)); found {
		return value, nil
	}
	return get(d.db, k)
}

func (d *accessData) GetN(p *PoolHandle, key []byte) (uint64, bool, error) {
	return decodeN(d.Get(p, key))
}

func (d *accessData) Has(p *PoolHandle, key []byte) (bool, error) {
	k := p.prefixKey(key)
	if _, found := d.cache.Get(string(k)); found {
		return true, nil
	}
	found, err := d.db.Has(k, nil)
	return found, fault.Storage("has", err)
}

// NewFetchCursor - scans committed data only
func (d *accessData) NewFetchCursor(p *PoolHandle) *FetchCursor {
	return newFetchCursor(p, d.db)
}

func (d *accessData) InUse() bool {
	d.Lock()
	defer d.Unlock()

	return d.inUse
}
