// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/vendingd/fault"
	"github.com/bitmark-inc/vendingd/storage"
)

// test database file
const (
	databaseFileName = "test.leveldb"
)

// a string data item
type stringElement struct {
	key   string
	value string
}

// make an element array
func makeElements(input []stringElement) []storage.Element {
	output := make([]storage.Element, 0, len(input))
	for _, e := range input {
		output = append(output, storage.Element{
			Key:   []byte(e.key),
			Value: []byte(e.value),
		})
	}
	return output
}

// this is the expected order
var expectedElements = makeElements([]stringElement{
	{"key-five", "data-five"},
	{"key-four", "data-four"},
	{"key-one", "data-one"},
	{"key-seven", "data-seven"},
	{"key-six", "data-six"},
	{"key-three", "data-three"},
	{"key-two", "data-two"},
})

func setupMemory(t *testing.T) *storage.DB {
	db, err := storage.OpenMemory()
	if nil != err {
		t.Fatalf("storage open error: %s", err)
	}
	return db
}

// write the elements in a different order from expected
func populate(t *testing.T, db *storage.DB) {
	trx, err := db.Begin()
	if nil != err {
		t.Fatalf("begin error: %s", err)
	}
	for _, i := range []int{6, 2, 0, 4, 3, 1, 5} {
		e := expectedElements[i]
		trx.Put(db.Pool.Catalog, e.Key, e.Value)
	}
	if err := trx.Commit(); nil != err {
		t.Fatalf("commit error: %s", err)
	}
}

func TestOpenFile(t *testing.T) {
	os.RemoveAll(databaseFileName)
	defer os.RemoveAll(databaseFileName)

	_, err := storage.Open(databaseFileName, storage.ReadOnly)
	assert.NotNil(t, err, "read only open of missing database succeeded")

	db, err := storage.Open(databaseFileName, storage.ReadWrite)
	assert.Nil(t, err, "open error")
	populate(t, db)
	assert.Nil(t, db.Close(), "close error")

	// reopen keeps data and version
	db, err = storage.Open(databaseFileName, storage.ReadOnly)
	assert.Nil(t, err, "reopen error")
	defer db.Close()

	s, err := db.Snapshot()
	assert.Nil(t, err, "snapshot error")
	defer s.Release()

	value, err := s.Get(db.Pool.Catalog, []byte("key-one"))
	assert.Nil(t, err, "get error")
	assert.Equal(t, []byte("data-one"), value, "data lost on reopen")
}

func TestCloseDiscardsOpenTransaction(t *testing.T) {
	os.RemoveAll(databaseFileName)
	defer os.RemoveAll(databaseFileName)

	db, err := storage.Open(databaseFileName, storage.ReadWrite)
	assert.Nil(t, err, "open error")

	trx, err := db.Begin()
	assert.Nil(t, err, "begin error")
	trx.Put(db.Pool.Catalog, []byte("key-one"), []byte("data-one"))
	assert.Nil(t, db.Close(), "close error")

	db, err = storage.Open(databaseFileName, storage.ReadWrite)
	assert.Nil(t, err, "reopen error")
	defer db.Close()

	// the write lock was released with the transaction
	trx, err = db.Begin()
	assert.Nil(t, err, "begin after reopen error")
	trx.Abort()

	s, err := db.Snapshot()
	assert.Nil(t, err, "snapshot error")
	defer s.Release()

	value, err := s.Get(db.Pool.Catalog, []byte("key-one"))
	assert.Nil(t, err, "get error")
	assert.Nil(t, value, "uncommitted write survived close")
}

func TestPoolsAreDistinct(t *testing.T) {
	db := setupMemory(t)
	defer db.Close()

	prefixes := map[byte]bool{}
	for _, p := range []*storage.PoolHandle{db.Pool.Catalog, db.Pool.Balances, db.Pool.Config} {
		assert.NotNil(t, p, "pool not initialised")
		assert.False(t, prefixes[p.Prefix()], "duplicate prefix: %q", p.Prefix())
		prefixes[p.Prefix()] = true
	}

	trx, _ := db.Begin()
	trx.Put(db.Pool.Catalog, []byte("same"), []byte("catalog"))
	_ = trx.Commit()

	trx, _ = db.Begin()
	value, err := trx.Get(db.Pool.Config, []byte("same"))
	trx.Abort()
	assert.Nil(t, err, "get error")
	assert.Nil(t, value, "pools share keys")
}

func TestTransactionInUse(t *testing.T) {
	db := setupMemory(t)
	defer db.Close()

	trx, err := db.Begin()
	assert.Nil(t, err, "begin error")

	_, err = db.Begin()
	assert.Equal(t, fault.ErrTransactionInUse, err, "second transaction allowed")

	trx.Abort()
	trx, err = db.Begin()
	assert.Nil(t, err, "begin after abort error")
	trx.Abort()
}

func TestUncommittedWritesAreInvisible(t *testing.T) {
	db := setupMemory(t)
	defer db.Close()

	trx, _ := db.Begin()
	trx.PutN(db.Pool.Balances, []byte("alice"), 42)

	// own writes are visible
	n, found, err := trx.GetN(db.Pool.Balances, []byte("alice"))
	assert.Nil(t, err, "GetN error")
	assert.True(t, found, "own write not visible")
	assert.Equal(t, uint64(42), n, "wrong own write")

	// other readers do not see them
	s, _ := db.Snapshot()
	has, err := s.Has(db.Pool.Balances, []byte("alice"))
	s.Release()
	assert.Nil(t, err, "has error")
	assert.False(t, has, "uncommitted write visible to snapshot")

	trx.Abort()

	s, _ = db.Snapshot()
	defer s.Release()
	_, found, err = s.GetN(db.Pool.Balances, []byte("alice"))
	assert.Nil(t, err, "GetN error")
	assert.False(t, found, "aborted write was stored")
}

func TestSnapshotIsolation(t *testing.T) {
	db := setupMemory(t)
	defer db.Close()
	populate(t, db)

	s, _ := db.Snapshot()
	defer s.Release()

	trx, _ := db.Begin()
	trx.Put(db.Pool.Catalog, []byte("key-eight"), []byte("data-eight"))
	_ = trx.Commit()

	elements, err := s.NewFetchCursor(db.Pool.Catalog).Fetch(100)
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, expectedElements, elements, "snapshot saw later commit")
}

func TestFetchPages(t *testing.T) {
	db := setupMemory(t)
	defer db.Close()
	populate(t, db)

	s, _ := db.Snapshot()
	defer s.Release()

	cursor := s.NewFetchCursor(db.Pool.Catalog)

	all := []storage.Element{}
	for {
		page, err := cursor.Fetch(3)
		assert.Nil(t, err, "fetch error")
		if 0 == len(page) {
			break
		}
		assert.True(t, len(page) <= 3, "page too large")
		all = append(all, page...)
	}
	assert.Equal(t, expectedElements, all, "paged fetch mismatch")

	_, err := cursor.Fetch(0)
	assert.Equal(t, fault.ErrInvalidCount, err, "zero count accepted")
}

func TestSeekAfterExcludesTheKey(t *testing.T) {
	db := setupMemory(t)
	defer db.Close()
	populate(t, db)

	s, _ := db.Snapshot()
	defer s.Release()

	elements, err := s.NewFetchCursor(db.Pool.Catalog).SeekAfter([]byte("key-one")).Fetch(2)
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, expectedElements[3:5], elements, "seek after mismatch")

	// a key between two stored keys
	elements, err = s.NewFetchCursor(db.Pool.Catalog).SeekAfter([]byte("key-o")).Fetch(1)
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, expectedElements[2:3], elements, "seek after absent key mismatch")

	elements, err = s.NewFetchCursor(db.Pool.Catalog).SeekAfter([]byte("key-two")).Fetch(1)
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, 0, len(elements), "read past the end of the pool")
}

func TestMapStopsOnError(t *testing.T) {
	db := setupMemory(t)
	defer db.Close()
	populate(t, db)

	s, _ := db.Snapshot()
	defer s.Release()

	n := 0
	err := s.NewFetchCursor(db.Pool.Catalog).Map(func(key []byte, value []byte) error {
		n += 1
		if 3 == n {
			return fault.ErrNotFound
		}
		return nil
	})
	assert.Equal(t, fault.ErrNotFound, err, "map error not returned")
	assert.Equal(t, 3, n, "map did not stop")
}

func TestClosedDatabase(t *testing.T) {
	db := setupMemory(t)
	assert.Nil(t, db.Close(), "close error")
	assert.Nil(t, db.Close(), "second close error")

	_, err := db.Begin()
	assert.True(t, fault.IsErrStorage(err), "begin on closed database: %v", err)

	_, err = db.Snapshot()
	assert.True(t, fault.IsErrStorage(err), "snapshot on closed database: %v", err)
}
