// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tipcontroller

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/creditd/calendar"
	"github.com/bitmark-inc/creditd/creditsystem"
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/minedcredit"
	"github.com/bitmark-inc/creditd/pending"
	"github.com/bitmark-inc/creditd/proof"
	"github.com/bitmark-inc/creditd/transaction"
	"github.com/bitmark-inc/creditd/validator"
	"github.com/bitmark-inc/logger"
)

// Controller - handler for incoming batches and transactions
type Controller struct {
	sync.Mutex

	log         *logger.L
	cs          *creditsystem.CreditSystem
	pool        *pending.Pool
	validator   *validator.Validator
	fetcher     Fetcher
	broadcaster Broadcaster
	limiter     *rate.Limiter

	// the tip the pool and calendar currently reflect
	tip      digest.Digest
	calendar *calendar.Calendar

	// missing hash -> hashes queued behind it
	waiting map[digest.Digest][]digest.Digest

	// queued for enclosed data
	incomplete map[digest.Digest]struct{}
}

// New - controller over a ledger store, starting from its current main chain tip
//
// a nil limiter allows every fetch signal
func New(cs *creditsystem.CreditSystem, pool *pending.Pool, v *validator.Validator, fetcher Fetcher, broadcaster Broadcaster, limiter *rate.Limiter) (*Controller, error) {
	if nil == limiter {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	tip := cs.CurrentTipOfMainChain()
	cal, err := calendar.New(cs, tip)
	if nil != err {
		return nil, err
	}

	tc := &Controller{
		log:         logger.New("tip"),
		cs:          cs,
		pool:        pool,
		validator:   v,
		fetcher:     fetcher,
		broadcaster: broadcaster,
		limiter:     limiter,
		tip:         tip,
		calendar:    cal,
		waiting:     make(map[digest.Digest][]digest.Digest),
		incomplete:  make(map[digest.Digest]struct{}),
	}
	tc.log.Infof("starting at tip: %v", tip)
	return tc, nil
}

// Tip - hash of the current main chain tip, zero if the chain is empty
func (tc *Controller) Tip() digest.Digest {
	tc.Lock()
	defer tc.Unlock()
	return tc.tip
}

// Calendar - copy of the calendar of the current tip
//
// rebuilt if the last rebuild lacked data
func (tc *Controller) Calendar() (*calendar.Calendar, error) {
	tc.Lock()
	defer tc.Unlock()
	if nil == tc.calendar {
		cal, err := calendar.New(tc.cs, tc.tip)
		if nil != err {
			return nil, err
		}
		tc.calendar = cal
	}
	return tc.calendar.Copy(), nil
}

// HandleMinedCreditMessage - take one batch through its state transitions
//
// Queued is returned with the missing data error that holds it back and
// Rejected with the reason; handling an accepted batch again changes
// nothing
func (tc *Controller) HandleMinedCreditMessage(msg *minedcredit.Message) (State, error) {
	hash := msg.Hash()

	// proof checks read nothing shared so stay outside the lock
	if !tc.cs.QuickCheckProofOfWorkInMinedCreditMessage(msg) {
		tc.Lock()
		defer tc.Unlock()
		tc.log.Warnf("message: %v  failed quick check", hash)
		if !tc.cs.WasHandled(hash) {
			tc.cs.SetHandlingStatus(hash, creditsystem.Rejected)
			delete(tc.incomplete, hash)
			tc.release(hash)
		}
		return tc.stateOf(hash), fault.ErrInvalidProofOfWork
	}
	passed, disproof := msg.ProofOfWork.SpotCheck()
	checked := func() (bool, *proof.Disproof) {
		return passed, disproof
	}

	tc.Lock()
	defer tc.Unlock()
	return tc.process(msg, checked)
}

// HandleTransaction - store an enclosed transaction and make it pending
//
// batches queued for their enclosed data are handled again
func (tc *Controller) HandleTransaction(tx *transaction.Transaction) digest.Digest {
	tc.Lock()
	defer tc.Unlock()

	hash := tc.cs.StoreTransaction(tx)
	tc.pool.Add(hash)
	tc.log.Debugf("transaction: %v", hash)

	tc.retryIncomplete()
	return hash
}

// handle one message then everything released by its outcome
func (tc *Controller) process(msg *minedcredit.Message, spotCheck func() (bool, *proof.Disproof)) (State, error) {
	state, err := tc.handle(msg, spotCheck)
	if state.terminal() {
		tc.release(msg.Hash())
	}
	return state, err
}

// handle again whatever waits on a settled hash, breadth first
func (tc *Controller) release(settled digest.Digest) {
	released := []digest.Digest{settled}
	for 0 != len(released) {
		hash := released[0]
		released = released[1:]

		queued := tc.waiting[hash]
		delete(tc.waiting, hash)
		for _, h := range queued {
			m := tc.cs.Message(h)
			if nil == m {
				continue
			}
			s, e := tc.handle(m, spotCheckOf(m))
			tc.log.Debugf("released: %v  state: %s  error: %v", h, s, e)
			if s.terminal() {
				released = append(released, h)
			}
		}
	}
}

func (tc *Controller) handle(msg *minedcredit.Message, spotCheck func() (bool, *proof.Disproof)) (State, error) {
	hash := msg.Hash()
	switch tc.cs.HandlingStatus(hash) {
	case creditsystem.Accepted, creditsystem.Rejected:
		return tc.stateOf(hash), nil
	}

	tc.cs.StoreMinedCreditMessage(msg)

	previousHash := msg.PreviousHash()
	if !previousHash.IsZero() {
		switch tc.cs.HandlingStatus(previousHash) {
		case creditsystem.Unseen, creditsystem.Queued:
			tc.wait(previousHash, hash)
			return Queued, fault.ErrMissingPredecessor
		}
	}

	state, err := tc.verify(msg, spotCheck)
	if Verified != state {
		return state, err
	}
	return tc.accept(msg), nil
}

// validation then the spot check
func (tc *Controller) verify(msg *minedcredit.Message, spotCheck func() (bool, *proof.Disproof)) (State, error) {
	hash := msg.Hash()

	result := tc.validator.Validate(msg)
	switch result.Outcome {
	case validator.Invalid:
		tc.log.Warnf("message: %v  rejected by: %s  reason: %s", hash, result.Rule, result.Reason)
		tc.cs.SetHandlingStatus(hash, creditsystem.Rejected)
		return Rejected, result.Reason

	case validator.Deferred:
		tc.log.Warnf("message: %v  deferred by: %s  reason: %s", hash, result.Rule, result.Reason)
		tc.deferred(msg)
		return Queued, result.Reason
	}

	if passed, disproof := spotCheck(); !passed {
		tc.log.Warnf("message: %v  failed spot check", hash)
		tc.cs.SetHandlingStatus(hash, creditsystem.Rejected)
		if nil != disproof {
			tc.cs.RecordSpotCheckFailure(hash, disproof)
			tc.broadcaster.BroadcastBadBatch(&BadBatchMessage{
				MessageHash: hash,
				Disproof:    disproof,
			})
		}
		return Rejected, fault.ErrSpotCheckFailed
	}

	tc.log.Debugf("message: %v  verified", hash)
	return Verified, nil
}

// record work and parent then let the tip follow the most work
func (tc *Controller) accept(msg *minedcredit.Message) State {
	hash := msg.Hash()
	tc.cs.SetHandlingStatus(hash, creditsystem.Accepted)
	tc.cs.AcceptAsValidByRecordingTotalWorkAndParent(msg)
	delete(tc.incomplete, hash)

	tc.selectTip()

	state := tc.stateOf(hash)
	tc.log.Infof("message: %v  batch: %d  state: %s", hash, msg.State().BatchNumber, state)
	return state
}

// queue hash behind missing and ask for missing unless it is already stored
func (tc *Controller) wait(missing digest.Digest, hash digest.Digest) {
	tc.cs.SetHandlingStatus(hash, creditsystem.Queued)
	for _, h := range tc.waiting[missing] {
		if h == hash {
			return
		}
	}
	tc.waiting[missing] = append(tc.waiting[missing], hash)
	if !tc.cs.HasMessage(missing) {
		tc.fetchMessage(missing)
	}
}

// a deferred batch lacks enclosed data or some stored ancestor
func (tc *Controller) deferred(msg *minedcredit.Message) {
	hash := msg.Hash()

	if missing := tc.cs.MissingEnclosedData(msg); 0 != len(missing) {
		tc.cs.SetHandlingStatus(hash, creditsystem.Queued)
		tc.incomplete[hash] = struct{}{}
		tc.fetchEnclosedData(hash, missing)
		return
	}
	if ancestor, found := tc.missingAncestor(msg); found {
		tc.wait(ancestor, hash)
		return
	}

	// nothing to name, leave it to the retry process
	tc.cs.SetHandlingStatus(hash, creditsystem.Queued)
	tc.incomplete[hash] = struct{}{}
}

// first ancestor absent from the store, stopping at accepted history
func (tc *Controller) missingAncestor(msg *minedcredit.Message) (digest.Digest, bool) {
	hash := msg.PreviousHash()
	for !hash.IsZero() {
		if !tc.cs.HasMessage(hash) {
			return hash, true
		}
		if creditsystem.Accepted == tc.cs.HandlingStatus(hash) {
			break
		}
		hash = tc.cs.PreviousMessageHash(hash)
	}
	return digest.Zero, false
}

// handle every batch queued for enclosed data again
func (tc *Controller) retryIncomplete() {
	hashes := make([]digest.Digest, 0, len(tc.incomplete))
	for hash := range tc.incomplete {
		hashes = append(hashes, hash)
	}
	for _, hash := range hashes {
		msg := tc.cs.Message(hash)
		if nil == msg {
			delete(tc.incomplete, hash)
			continue
		}
		if missing := tc.cs.MissingEnclosedData(msg); 0 != len(missing) {
			continue
		}
		delete(tc.incomplete, hash)
		state, err := tc.process(msg, spotCheckOf(msg))
		tc.log.Debugf("retried: %v  state: %s  error: %v", hash, state, err)
	}
}

func spotCheckOf(msg *minedcredit.Message) func() (bool, *proof.Disproof) {
	return func() (bool, *proof.Disproof) {
		if nil == msg.ProofOfWork {
			return false, nil
		}
		return msg.ProofOfWork.SpotCheck()
	}
}
