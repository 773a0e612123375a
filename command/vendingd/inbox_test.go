// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/vendingd/background"
	"github.com/bitmark-inc/vendingd/fault"
)

func readResult(t *testing.T, d *daemon, name string) *batchResult {
	data, err := ioutil.ReadFile(filepath.Join(d.inbox.outbox, name))
	if nil != err {
		t.Fatalf("read result error: %s", err)
	}
	var r batchResult
	if err := json.Unmarshal(data, &r); nil != err {
		t.Fatalf("decode result error: %s", err)
	}
	return &r
}

func TestIsRequestFile(t *testing.T) {
	assert.True(t, isRequestFile("/in/0001.json"), "plain")
	assert.False(t, isRequestFile("/in/0001.result.json"), "result")
	assert.False(t, isRequestFile("/in/.0001.json.tmp"), "temporary")
	assert.False(t, isRequestFile("/in/.0001.json"), "hidden")
	assert.False(t, isRequestFile("/in/0001.txt"), "text")
}

func TestWatcherEventFileReady(t *testing.T) {
	assert.True(t, watcherEventFileReady(fsnotify.Event{Name: "a.json", Op: fsnotify.Create}), "create")
	assert.True(t, watcherEventFileReady(fsnotify.Event{Name: "a.json", Op: fsnotify.Write}), "write")
	assert.False(t, watcherEventFileReady(fsnotify.Event{Name: "a.json", Op: fsnotify.Remove}), "remove")
	assert.False(t, watcherEventFileReady(fsnotify.Event{Name: "a.json", Op: fsnotify.Chmod}), "chmod")
}

func TestSendEventDoesNotBlock(t *testing.T) {
	d := newDaemon(t)
	defer d.close()

	// the start up scan is already pending
	assert.True(t, isChannelFull(d.inbox.wake), "initial wake up")
	d.inbox.sendEvent()
	d.inbox.sendEvent()
	assert.Equal(t, 1, len(d.inbox.wake), "wake ups are merged")
}

func TestProcessIssuedBatch(t *testing.T) {
	d := newDaemon(t)
	defer d.close()

	admin := makeAccount(t, 1)
	buyer := makeAccount(t, 9)
	stranger := makeAccount(t, 8)

	batch := fmt.Sprintf(`{"requests":[
  {"caller":%[1]q,"operation":"instantiate","mode":"issued","name":"Coffee Token","symbol":"COFFEE","decimals":6},
  {"caller":%[1]q,"operation":"add_item","item":"Americano","stock":3,"price":2},
  {"caller":%[1]q,"operation":"issue","recipient":%[2]q,"amount":5},
  {"caller":%[2]q,"operation":"purchase","item":"Americano"},
  {"caller":%[3]q,"operation":"purchase","item":"Americano"},
  {"caller":%[3]q,"operation":"restock","item":"Americano","amount":1},
  {"caller":"nobody","operation":"purchase","item":"Americano"},
  {"caller":%[1]q,"operation":"explode"}
]}`, admin.String(), buyer.String(), stranger.String())

	d.drop(t, "0001.json", batch)

	err := d.inbox.processFile("0001.json")
	assert.Nil(t, err, "process error")

	_, err = os.Stat(filepath.Join(d.inbox.directory, "0001.json"))
	assert.True(t, os.IsNotExist(err), "request file was not removed")

	r := readResult(t, d, "0001.result.json")
	assert.Equal(t, "0001.json", r.File, "file")
	assert.Equal(t, "", r.Error, "batch error")
	if !assert.Equal(t, 8, len(r.Results), "results") {
		return
	}

	expected := []fault.Kind{
		fault.KindNone,
		fault.KindNone,
		fault.KindNone,
		fault.KindNone,
		fault.KindNotEnoughFunds,
		fault.KindUnauthorized,
		fault.KindUnauthorized,
		fault.KindInvalid,
	}
	for i, k := range expected {
		assert.Equal(t, i, r.Results[i].Index, "%d: index", i)
		assert.Equal(t, k, r.Results[i].Kind, "%d: kind", i)
		assert.Equal(t, fault.KindNone == k, r.Results[i].Success, "%d: success", i)
	}

	purchased, ok := r.Results[3].Outcome.Attribute("purchased")
	assert.True(t, ok, "purchased attribute")
	assert.Equal(t, "Americano", purchased, "purchased")

	item, err := d.machine.Item("Americano")
	assert.Nil(t, err, "item error")
	assert.Equal(t, uint64(2), item.Stock, "stock")

	balance, err := d.machine.Balance(buyer)
	assert.Nil(t, err, "balance error")
	assert.Equal(t, uint64(3), balance, "buyer balance")
}

func TestProcessExternalBatchJournalsTransfers(t *testing.T) {
	d := newDaemon(t)
	defer d.close()

	admin := makeAccount(t, 1)
	buyer := makeAccount(t, 9)
	token := makeAccount(t, 3)

	batch := fmt.Sprintf(`{"requests":[
  {"caller":%[1]q,"operation":"instantiate","mode":"external","token":%[3]q},
  {"caller":%[1]q,"operation":"add_item","item":"Latte","stock":2,"price":4},
  {"caller":%[2]q,"operation":"purchase","item":"Latte","funds":{"token":%[3]q,"amount":5}},
  {"caller":%[1]q,"operation":"withdraw","amount":4}
]}`, admin.String(), buyer.String(), token.String())

	d.drop(t, "0002.json", batch)
	assert.Nil(t, d.inbox.processFile("0002.json"), "process error")

	r := readResult(t, d, "0002.result.json")
	if !assert.Equal(t, 4, len(r.Results), "results") {
		return
	}
	for i, result := range r.Results {
		assert.True(t, result.Success, "%d: %s", i, result.Error)
	}
	assert.Equal(t, 1, len(r.Results[2].Outcome.Transfers), "change")
	assert.Equal(t, 1, len(r.Results[3].Outcome.Transfers), "withdrawal")

	f, err := os.Open(filepath.Join(d.inbox.outbox, transferJournalFile))
	if nil != err {
		t.Fatalf("open journal error: %s", err)
	}
	defer f.Close()

	entries := []journalEntry{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e journalEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); nil != err {
			t.Fatalf("decode journal error: %s", err)
		}
		entries = append(entries, e)
	}
	if !assert.Equal(t, 2, len(entries), "journal entries") {
		return
	}

	assert.True(t, d.contract.Equal(entries[0].From), "change from")
	assert.True(t, buyer.Equal(entries[0].To), "change to")
	assert.Equal(t, uint64(1), entries[0].Amount, "change amount")

	assert.True(t, token.Equal(entries[1].Token), "withdraw token")
	assert.True(t, admin.Equal(entries[1].To), "withdraw to")
	assert.Equal(t, uint64(4), entries[1].Amount, "withdraw amount")
}

func TestProcessMalformedBatch(t *testing.T) {
	d := newDaemon(t)
	defer d.close()

	d.drop(t, "0003.json", `{"requests": [`)
	assert.Nil(t, d.inbox.processFile("0003.json"), "process error")

	r := readResult(t, d, "0003.result.json")
	assert.NotEqual(t, "", r.Error, "decode error expected")
	assert.Equal(t, 0, len(r.Results), "results")

	_, err := os.Stat(filepath.Join(d.inbox.directory, "0003.json"))
	assert.True(t, os.IsNotExist(err), "request file was not removed")
}

func TestProcessMissingFile(t *testing.T) {
	d := newDaemon(t)
	defer d.close()

	assert.Nil(t, d.inbox.processFile("gone.json"), "missing file")
}

func TestPendingOrder(t *testing.T) {
	d := newDaemon(t)
	defer d.close()

	for _, name := range []string{"b.json", "a.json", "c.txt", "a.result.json"} {
		if err := ioutil.WriteFile(filepath.Join(d.inbox.directory, name), []byte("{}"), 0600); nil != err {
			t.Fatalf("write error: %s", err)
		}
	}

	names, err := d.inbox.pending()
	assert.Nil(t, err, "pending error")
	assert.Equal(t, []string{"a.json", "b.json"}, names, "pending")
}

func TestInboxRun(t *testing.T) {
	d := newDaemon(t)
	defer d.close()

	admin := makeAccount(t, 1)

	processes := background.Start(background.Processes{d.inbox}, nil)

	d.drop(t, "0004.json", fmt.Sprintf(`{"requests":[
  {"caller":%[1]q,"operation":"instantiate","mode":"issued","name":"Coffee Token","symbol":"COFFEE"}
]}`, admin.String()))

	resultFile := filepath.Join(d.inbox.outbox, "0004.result.json")
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(resultFile); nil == err {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	processes.Stop()

	r := readResult(t, d, "0004.result.json")
	if assert.Equal(t, 1, len(r.Results), "results") {
		assert.True(t, r.Results[0].Success, "instantiate: %s", r.Results[0].Error)
	}

	info, err := d.machine.TokenInfo()
	assert.Nil(t, err, "token info error")
	assert.Equal(t, "COFFEE", info.Symbol, "symbol")
}
