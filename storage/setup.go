// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_storage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/vendingd/fault"
)

// exported storage pools
//
// note all must be exported (i.e. initial capital) or initialisation will fail
type pools struct {
	Catalog  *PoolHandle `prefix:"I"`
	Balances *PoolHandle `prefix:"B"`
	Config   *PoolHandle `prefix:"C"`
}

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const (
	currentDBVersion = 0x100
)

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// DB - an open database and its pools
type DB struct {
	sync.Mutex
	Pool pools

	log    *logger.L
	db     *leveldb.DB
	access *accessData
}

// Open - open up a database file, creating it if necessary
func Open(name string, readOnly bool) (*DB, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, fault.Storage("open", err)
	}
	return setup(db, readOnly)
}

// OpenMemory - a database that only lives in memory
func OpenMemory() (*DB, error) {
	db, err := leveldb.Open(ldb_storage.NewMemStorage(), nil)
	if nil != err {
		return nil, fault.Storage("open", err)
	}
	return setup(db, ReadWrite)
}

func setup(db *leveldb.DB, readOnly bool) (*DB, error) {
	ok := false
	defer func() {
		if !ok {
			db.Close()
		}
	}()

	log := logger.New("storage")
	if nil == log {
		return nil, fault.ErrInvalidLoggerChannel
	}

	version, err := getVersion(db)
	if nil != err {
		return nil, err
	}

	// ensure no database downgrade
	switch {
	case version > currentDBVersion:
		log.Criticalf("database version: %d > current version: %d", version, currentDBVersion)
		return nil, fmt.Errorf("database version: %d > current version: %d", version, currentDBVersion)

	case 0 == version && !readOnly:
		// database was empty so tag as current version
		err = putVersion(db, currentDBVersion)
		if nil != err {
			return nil, err
		}

	case version < currentDBVersion && readOnly:
		log.Criticalf("database version: %d not current: %d", version, currentDBVersion)
		return nil, fmt.Errorf("database version: %d not current: %d", version, currentDBVersion)
	}

	d := &DB{
		log:    log,
		db:     db,
		access: newAccess(db, newCache()),
	}

	err = d.Pool.initialise()
	if nil != err {
		return nil, err
	}

	ok = true // prevent db close
	return d, nil
}

// fill the pool struct from its field tags
func (p *pools) initialise() error {

	// this will be a struct type
	poolType := reflect.TypeOf(*p)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(p).Elem()

	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			return fmt.Errorf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
		}

		prefix := prefixTag[0]
		limit := []byte(nil)
		if prefix < 255 {
			limit = []byte{prefix + 1}
		}

		poolValue.Field(i).Set(reflect.ValueOf(&PoolHandle{
			prefix: prefix,
			limit:  limit,
		}))
	}
	return nil
}

// Close - close the database connection
func (d *DB) Close() error {
	d.Lock()
	defer d.Unlock()

	if nil == d.db {
		return nil
	}
	if d.access.InUse() {
		d.log.Warn("close: discarding open transaction")
		d.access.Abort()
	}
	err := d.db.Close()
	d.db = nil
	return fault.Storage("close", err)
}

// Begin - start the single write transaction
//
// only one transaction may be open at any time
func (d *DB) Begin() (Transaction, error) {
	d.Lock()
	defer d.Unlock()

	if nil == d.db {
		return nil, fault.Storage("begin", leveldb.ErrClosed)
	}
	err := d.access.Begin()
	if nil != err {
		return nil, err
	}
	return d.access, nil
}

// Snapshot - a consistent read only view of committed data
//
// the caller must Release the snapshot
func (d *DB) Snapshot() (*Snapshot, error) {
	d.Lock()
	defer d.Unlock()

	if nil == d.db {
		return nil, fault.Storage("snapshot", leveldb.ErrClosed)
	}
	s, err := d.db.GetSnapshot()
	if nil != err {
		return nil, fault.Storage("snapshot", err)
	}
	return &Snapshot{snapshot: s}, nil
}

// return the version number, 0 if the database is empty
func getVersion(db *leveldb.DB) (int, error) {
	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return 0, nil
	} else if nil != err {
		return 0, fault.Storage("version", err)
	}

	if 4 != len(versionValue) {
		return 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	return int(binary.BigEndian.Uint32(versionValue)), nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return fault.Storage("version", db.Put(versionKey, currentVersion, nil))
}
