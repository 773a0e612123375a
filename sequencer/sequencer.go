// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sequencer - apply operations one at a time in submission order
//
// A single background goroutine owns the vending machine's write
// path.  Callers submit requests which are queued and executed
// strictly in order; each caller blocks until its own request has
// been applied or rejected.
package sequencer

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/vendingd/background"
	"github.com/bitmark-inc/vendingd/counter"
	"github.com/bitmark-inc/vendingd/fault"
	"github.com/bitmark-inc/vendingd/vending"
)

// Executor - the write side of a vending machine
type Executor interface {
	Instantiate(env vending.Env, setup vending.Setup) (*vending.Outcome, error)
	Execute(env vending.Env, op vending.Operation) (*vending.Outcome, error)
}

// Result - outcome of one applied operation
//
// transfers are attempted once after the commit, failures are
// recorded here and not retried
type Result struct {
	Outcome        *vending.Outcome
	TransferErrors []error
}

// Stats - operation counts since start
type Stats struct {
	Applied  uint64            `json:"applied"`
	Rejected uint64            `json:"rejected"`
	Kinds    map[string]uint64 `json:"kinds"`
}

type reply struct {
	result *Result
	err    error
}

type request struct {
	env   vending.Env
	op    vending.Operation
	setup vending.Setup
	reply chan reply
}

// Sequencer - single writer queue
type Sequencer struct {
	sync.Mutex

	log         *logger.L
	executor    Executor
	transferrer vending.Transferrer
	limiter     *rate.Limiter

	queue      chan *request
	stopped    chan struct{}
	background *background.T

	applied  counter.Counter
	rejected counter.Counter
	kinds    counter.Tally
}

// Options - queue settings
//
// a zero Rate disables the admission limit
type Options struct {
	QueueSize int
	Rate      float64
	Burst     int
}

// New - create a stopped sequencer, transferrer may be nil
func New(executor Executor, transferrer vending.Transferrer, options Options) *Sequencer {
	queueSize := options.QueueSize
	if queueSize <= 0 {
		queueSize = 1
	}

	var limiter *rate.Limiter
	if options.Rate > 0 {
		burst := options.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(options.Rate), burst)
	}

	return &Sequencer{
		log:         logger.New("sequencer"),
		executor:    executor,
		transferrer: transferrer,
		limiter:     limiter,
		queue:       make(chan *request, queueSize),
		stopped:     make(chan struct{}),
	}
}

// Start - begin processing the queue
func (s *Sequencer) Start() {
	s.Lock()
	defer s.Unlock()

	if nil != s.background {
		return
	}
	s.log.Info("starting…")
	s.background = background.Start(background.Processes{s}, nil)
}

// Stop - finish the current request then reject everything queued
func (s *Sequencer) Stop() {
	s.Lock()
	defer s.Unlock()

	if nil == s.background {
		return
	}
	s.log.Info("shutting down…")
	s.background.Stop()

	counts := s.kinds.Snapshot()
	for _, name := range s.kinds.Names() {
		s.log.Infof("rejected: %s: %d", name, counts[name])
	}
	s.log.Info("stopped")
}

// Submit - queue an operation and wait for its result
//
// once queued the operation will run even if the context ends
// before its result arrives
func (s *Sequencer) Submit(ctx context.Context, env vending.Env, op vending.Operation) (*Result, error) {
	return s.submit(ctx, &request{
		env:   env,
		op:    op,
		reply: make(chan reply, 1),
	})
}

// Instantiate - queue the one time set up
func (s *Sequencer) Instantiate(ctx context.Context, env vending.Env, setup vending.Setup) (*Result, error) {
	return s.submit(ctx, &request{
		env:   env,
		setup: setup,
		reply: make(chan reply, 1),
	})
}

func (s *Sequencer) submit(ctx context.Context, r *request) (*Result, error) {
	if nil != s.limiter {
		if err := s.limiter.Wait(ctx); nil != err {
			return nil, err
		}
	}

	select {
	case <-s.stopped:
		return nil, fault.ErrSequencerStopped
	default:
	}

	select {
	case s.queue <- r:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.stopped:
		return nil, fault.ErrSequencerStopped
	}

	select {
	case rp := <-r.reply:
		return rp.result, rp.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.stopped:
		// the request may have completed just before the stop
		select {
		case rp := <-r.reply:
			return rp.result, rp.err
		default:
			return nil, fault.ErrSequencerStopped
		}
	}
}

// Stats - counts of applied and rejected operations
func (s *Sequencer) Stats() Stats {
	return Stats{
		Applied:  s.applied.Uint64(),
		Rejected: s.rejected.Uint64(),
		Kinds:    s.kinds.Snapshot(),
	}
}

// Run - background process, the only caller of the executor
func (s *Sequencer) Run(args interface{}, shutdown <-chan struct{}) {

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case r := <-s.queue:
			r.reply <- s.process(r)
		}
	}

	close(s.stopped)

	// reject anything left in the queue
drain:
	for {
		select {
		case r := <-s.queue:
			r.reply <- reply{err: fault.ErrSequencerStopped}
		default:
			break drain
		}
	}
}

func (s *Sequencer) process(r *request) reply {
	var outcome *vending.Outcome
	var err error

	if nil != r.setup {
		outcome, err = s.executor.Instantiate(r.env, r.setup)
	} else {
		outcome, err = s.executor.Execute(r.env, r.op)
	}
	if nil != err {
		s.rejected.Increment()
		s.kinds.Increment(string(fault.KindOf(err)))
		return reply{err: err}
	}
	s.applied.Increment()

	result := &Result{
		Outcome: outcome,
	}
	if nil == s.transferrer {
		return reply{result: result}
	}

	for _, t := range outcome.Transfers {
		err := s.transferrer.Transfer(t.Token, t.From, t.To, t.Amount)
		if nil != err {
			s.log.Errorf("transfer of %d from %s to %s failed: %s", t.Amount, t.From, t.To, err)
			result.TransferErrors = append(result.TransferErrors, err)
		}
	}
	return reply{result: result}
}
