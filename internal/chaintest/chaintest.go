// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaintest - build honest chains for tests
//
// messages are produced by the real builder and mined with the
// reference engine at small difficulties
package chaintest

import (
	"fmt"
	"testing"

	"github.com/bitmark-inc/creditd/credit"
	"github.com/bitmark-inc/creditd/creditsystem"
	"github.com/bitmark-inc/creditd/difficulty"
	"github.com/bitmark-inc/creditd/minedcredit"
	"github.com/bitmark-inc/creditd/pending"
	"github.com/bitmark-inc/creditd/proof"
	"github.com/bitmark-inc/creditd/storage"
	"github.com/bitmark-inc/creditd/transaction"
)

// settings used for every test chain
const (
	NetworkID      = 7
	StartTime      = uint64(1546300800) * 1000000 // 2019-01-01T00:00:00Z
	ShortInterval  = 30 * 1000000
	LongInterval   = 120 * 1000000
	MiningAttempts = 10000
)

// Parameters - low difficulties so mining is quick
func Parameters() difficulty.Parameters {
	return difficulty.Parameters{
		Initial:        1000,
		InitialDiurnal: 1300,
		BatchInterval:  difficulty.TargetBatchInterval,
		DiurnLength:    difficulty.TargetDiurnLength,
	}
}

// ProofParameters - small memory factor for the reference engine
func ProofParameters() proof.Parameters {
	return proof.Parameters{
		MemoryFactor: 12,
		NumSegments:  4,
	}
}

// Chain - a ledger store with a builder and a controllable clock
type Chain struct {
	t       testing.TB
	Store   *storage.Handle
	CS      *creditsystem.CreditSystem
	Pool    *pending.Pool
	Builder *pending.Builder
	KeyData []byte

	clock  uint64
	long   bool
	spends int
}

// New - an empty chain over a memory database
func New(t testing.TB) *Chain {
	store, err := storage.OpenMemory()
	if nil != err {
		t.Fatalf("open memory store error: %s", err)
	}
	cs := creditsystem.New(store, Parameters())
	pool := pending.New(cs)
	c := &Chain{
		t:       t,
		Store:   store,
		CS:      cs,
		Pool:    pool,
		Builder: pending.NewBuilder(cs, pool, proof.LinkChain{}, ProofParameters(), NetworkID),
		KeyData: []byte("test-key-data"),
		clock:   StartTime,
	}
	cs.SetClock(c.Now)
	return c
}

// Close - release the database
func (c *Chain) Close() {
	c.Store.Close()
}

// Now - advance the clock alternately by a short and a long interval
//
// the pair averages out near the batch interval so the difficulty
// stays close to its initial value
func (c *Chain) Now() uint64 {
	if c.long {
		c.clock += LongInterval
	} else {
		c.clock += ShortInterval
	}
	c.long = !c.long
	return c.clock
}

// Time - current clock value without advancing
func (c *Chain) Time() uint64 {
	return c.clock
}

// Build - successor of tip with proof, not stored
//
// a nil tip builds the first batch
func (c *Chain) Build(tip *minedcredit.Message, calend bool) *minedcredit.Message {
	msg, err := c.Builder.GenerateMinedCreditMessageWithoutProofOfWork(tip, c.KeyData)
	if nil != err {
		c.t.Fatalf("build error: %s", err)
	}
	state := msg.State()
	batchDifficulty := state.Difficulty
	diurnal := state.DiurnalDifficulty

	target := batchDifficulty
	accept := func(achieved uint64) bool {
		return achieved >= batchDifficulty && achieved < diurnal
	}
	if calend {
		target = diurnal
		accept = func(achieved uint64) bool {
			return achieved >= diurnal
		}
	}
	if err := c.Builder.Mine(msg, target, MiningAttempts, accept); nil != err {
		c.t.Fatalf("mine batch: %d  calend: %t  error: %s", state.BatchNumber, calend, err)
	}
	return msg
}

// Add - build, store, accept onto the main chain and update the pool
func (c *Chain) Add(tip *minedcredit.Message, calend bool) *minedcredit.Message {
	msg := c.Build(tip, calend)
	c.Accept(msg)
	return msg
}

// Accept - store a message and make it the main chain tip
func (c *Chain) Accept(msg *minedcredit.Message) {
	c.CS.StoreMinedCreditMessage(msg)
	c.CS.SetHandlingStatus(msg.Hash(), creditsystem.Accepted)
	c.CS.AddToMainChain(msg)
	c.Pool.UpdateAcceptedMessagesAfterNewTip(msg)
}

// Extend - add n batches on tip, calends at the given zero based indexes
func (c *Chain) Extend(tip *minedcredit.Message, n int, calends ...int) []*minedcredit.Message {
	isCalend := make(map[int]bool, len(calends))
	for _, i := range calends {
		isCalend[i] = true
	}
	messages := make([]*minedcredit.Message, 0, n)
	for i := 0; i < n; i += 1 {
		tip = c.Add(tip, isCalend[i])
		messages = append(messages, tip)
	}
	return messages
}

// Spend - store a transaction spending positions and queue it for the next batch
func (c *Chain) Spend(inputs []uint64, outputs int) *transaction.Transaction {
	c.spends += 1
	tx := &transaction.Transaction{
		Inputs: inputs,
	}
	for i := 0; i < outputs; i += 1 {
		tx.Outputs = append(tx.Outputs, credit.Credit{
			KeyData: []byte(fmt.Sprintf("output-%d-%d", c.spends, i)),
			Amount:  minedcredit.OneCredit,
		})
	}
	hash := c.CS.StoreTransaction(tx)
	c.Pool.Add(hash)
	return tx
}

// Branch - add n batches on tip that are recorded as valid but kept off the main chain
func (c *Chain) Branch(tip *minedcredit.Message, n int) []*minedcredit.Message {
	messages := make([]*minedcredit.Message, 0, n)
	for i := 0; i < n; i += 1 {
		tip = c.Build(tip, false)
		c.CS.StoreMinedCreditMessage(tip)
		c.CS.AcceptAsValidByRecordingTotalWorkAndParent(tip)
		messages = append(messages, tip)
	}
	return messages
}

// Last - final element, nil for an empty list
func Last(messages []*minedcredit.Message) *minedcredit.Message {
	if 0 == len(messages) {
		return nil
	}
	return messages[len(messages)-1]
}
