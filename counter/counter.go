// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package counter - counters safe for use from several goroutines
package counter

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Counter - 64 bit unsigned integer updated atomically
type Counter uint64

// Increment - add 1 to a counter, returns new value
func (ic *Counter) Increment() uint64 {
	return atomic.AddUint64((*uint64)(ic), 1)
}

// Uint64 - returns current value
func (ic *Counter) Uint64() uint64 {
	return atomic.LoadUint64((*uint64)(ic))
}

// Tally - a counter per name, e.g. one per rejection kind
type Tally struct {
	sync.Mutex
	counts map[string]*Counter
}

// Increment - add 1 to the named counter, creating it if necessary
func (t *Tally) Increment(name string) uint64 {
	t.Lock()
	c, ok := t.counts[name]
	if !ok {
		if nil == t.counts {
			t.counts = make(map[string]*Counter)
		}
		c = new(Counter)
		t.counts[name] = c
	}
	t.Unlock()
	return c.Increment()
}

// Snapshot - current value of every counter
func (t *Tally) Snapshot() map[string]uint64 {
	t.Lock()
	defer t.Unlock()

	s := make(map[string]uint64, len(t.counts))
	for name, c := range t.counts {
		s[name] = c.Uint64()
	}
	return s
}

// Names - counter names in sorted order
func (t *Tally) Names() []string {
	t.Lock()
	defer t.Unlock()

	names := make([]string, 0, len(t.counts))
	for name := range t.counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
