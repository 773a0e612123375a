// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"

	"github.com/bitmark-inc/vendingd/account"
	"github.com/bitmark-inc/vendingd/fault"
	"github.com/bitmark-inc/vendingd/sequencer"
	"github.com/bitmark-inc/vendingd/util"
	"github.com/bitmark-inc/vendingd/vending"
)

const (
	requestSuffix = ".json"
	resultSuffix  = ".result.json"
)

// submitter - the write queue as seen by the inbox
type submitter interface {
	Submit(ctx context.Context, env vending.Env, op vending.Operation) (*sequencer.Result, error)
	Instantiate(ctx context.Context, env vending.Env, setup vending.Setup) (*sequencer.Result, error)
}

// inbox - applies request batch files dropped into a directory
type inbox struct {
	log      *logger.L
	queue    submitter
	contract *account.Account

	directory string
	outbox    string

	watcher *fsnotify.Watcher
	wake    chan struct{}
}

func newInbox(directory string, outbox string, queue submitter, contract *account.Account) (*inbox, error) {
	log := logger.New("inbox")
	if nil == log {
		return nil, fault.ErrInvalidLoggerChannel
	}

	for _, d := range []string{directory, outbox} {
		if err := util.EnsureDirectory(d); nil != err {
			log.Errorf("create directory: %q  error: %s", d, err)
			return nil, err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		log.Errorf("new watcher with error: %s", err)
		return nil, err
	}

	err = watcher.Add(directory)
	if nil != err {
		log.Errorf("watcher add error: %s", err)
		watcher.Close()
		return nil, err
	}

	i := &inbox{
		log:       log,
		queue:     queue,
		contract:  contract,
		directory: directory,
		outbox:    outbox,
		watcher:   watcher,
		wake:      make(chan struct{}, 1),
	}

	// pick up anything written while the daemon was down
	i.sendEvent()

	return i, nil
}

// Run - background process: watch the directory and apply batches
func (i *inbox) Run(args interface{}, shutdown <-chan struct{}) {

	log := i.log
	log.Infof("watching: %q", i.directory)

	done := make(chan struct{})
	go i.watch(done)

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-i.wake:
			i.processAll()
		}
	}

	i.watcher.Close()
	<-done
	log.Info("stopped")
}

// translate file system events into wake ups
func (i *inbox) watch(done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case event, ok := <-i.watcher.Events:
			if !ok {
				return
			}
			i.log.Debugf("file event: %v", event)
			if isRequestFile(event.Name) && watcherEventFileReady(event) {
				i.sendEvent()
			}

		case err, ok := <-i.watcher.Errors:
			if !ok {
				return
			}
			i.log.Errorf("watcher error: %s", err)
		}
	}
}

// one pending wake up is enough as every wake up scans the directory
func (i *inbox) sendEvent() {
	if !isChannelFull(i.wake) {
		i.wake <- struct{}{}
	} else {
		i.log.Debug("wake channel full, discard event")
	}
}

func isChannelFull(ch chan<- struct{}) bool {
	return len(ch) == cap(ch)
}

func watcherEventFileReady(event fsnotify.Event) bool {
	return event.Op&fsnotify.Create == fsnotify.Create ||
		event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Rename == fsnotify.Rename
}

func isRequestFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, requestSuffix) &&
		!strings.HasSuffix(base, resultSuffix) &&
		!strings.HasPrefix(base, ".")
}

// pending request files in name order
func (i *inbox) pending() ([]string, error) {
	entries, err := ioutil.ReadDir(i.directory)
	if nil != err {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Mode().IsRegular() && isRequestFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (i *inbox) processAll() {
	names, err := i.pending()
	if nil != err {
		i.log.Errorf("read directory: %q  error: %s", i.directory, err)
		return
	}

	for _, name := range names {
		if err := i.processFile(name); nil != err {
			i.log.Errorf("process: %q  error: %s", name, err)
		}
	}
}

// apply one batch, write its results and remove the request
func (i *inbox) processFile(name string) error {

	fileName := filepath.Join(i.directory, name)
	data, err := ioutil.ReadFile(fileName)
	if os.IsNotExist(err) {
		return nil
	}
	if nil != err {
		return err
	}

	result := batchResult{
		File:    name,
		Results: []response{},
	}

	var b batch
	if err := json.Unmarshal(data, &b); nil != err {
		i.log.Warnf("decode: %q  error: %s", name, err)
		result.Error = err.Error()
	} else {
		result.Results = i.apply(b.Requests)
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if nil != err {
		return err
	}

	resultName := filepath.Join(i.outbox, strings.TrimSuffix(name, requestSuffix)+resultSuffix)
	temporaryName := resultName + ".new"
	if err := ioutil.WriteFile(temporaryName, append(output, '\n'), 0600); nil != err {
		return err
	}
	if err := os.Rename(temporaryName, resultName); nil != err {
		return err
	}

	i.log.Infof("processed: %q  requests: %d", name, len(result.Results))
	return os.Remove(fileName)
}

func (i *inbox) apply(requests []request) []response {
	responses := make([]response, 0, len(requests))

	for n, r := range requests {
		responses = append(responses, i.applyOne(n, &r))
	}
	return responses
}

func (i *inbox) applyOne(n int, r *request) response {
	ctx := context.Background()

	env, err := r.env(i.contract)
	if nil != err {
		return makeResponse(n, r.Operation, nil, err)
	}

	if operationInstantiate == r.Operation {
		setup, err := r.setup()
		if nil != err {
			return makeResponse(n, r.Operation, nil, err)
		}
		result, err := i.queue.Instantiate(ctx, env, setup)
		return makeResponse(n, r.Operation, result, err)
	}

	op, err := r.operation()
	if nil != err {
		return makeResponse(n, r.Operation, nil, err)
	}
	result, err := i.queue.Submit(ctx, env, op)
	return makeResponse(n, r.Operation, result, err)
}
