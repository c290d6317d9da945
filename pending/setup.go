// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pending - accepted messages waiting to be enclosed in a batch
package pending

import (
	"sync"
	"time"

	"github.com/bitmark-inc/creditd/creditsystem"
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/minedcredit"
	"github.com/bitmark-inc/creditd/transaction"
	"github.com/bitmark-inc/logger"
)

// data items
type dataItem struct {
	hash      digest.Digest
	timestamp time.Time
}

// Pool - ordered set of accepted hashes not yet on the tip's branch
type Pool struct {
	sync.Mutex
	log   *logger.L
	cs    *creditsystem.CreditSystem
	items []dataItem
}

// New - an empty pool over a ledger store
func New(cs *creditsystem.CreditSystem) *Pool {
	return &Pool{
		log:   logger.New("pending"),
		cs:    cs,
		items: make([]dataItem, 0, 100),
	}
}

// Add - include an accepted "tx" or "msg" hash, ignoring duplicates
func (pool *Pool) Add(hash digest.Digest) {
	pool.Lock()
	defer pool.Unlock()
	pool.add(hash)
}

func (pool *Pool) add(hash digest.Digest) {
	if pool.index(hash) >= 0 {
		return
	}
	pool.items = append(pool.items, dataItem{
		hash:      hash,
		timestamp: time.Now(),
	})
	pool.log.Debugf("added: %v", hash)
}

// Remove - drop a hash if present
func (pool *Pool) Remove(hash digest.Digest) {
	pool.Lock()
	defer pool.Unlock()
	pool.remove(hash)
}

func (pool *Pool) remove(hash digest.Digest) {
	if i := pool.index(hash); i >= 0 {
		pool.items = append(pool.items[:i], pool.items[i+1:]...)
	}
}

func (pool *Pool) index(hash digest.Digest) int {
	for i, item := range pool.items {
		if item.hash == hash {
			return i
		}
	}
	return -1
}

// Contains - true if the hash is pending
func (pool *Pool) Contains(hash digest.Digest) bool {
	pool.Lock()
	defer pool.Unlock()
	return pool.index(hash) >= 0
}

// Hashes - pending hashes in arrival order
func (pool *Pool) Hashes() []digest.Digest {
	pool.Lock()
	defer pool.Unlock()
	hashes := make([]digest.Digest, len(pool.items))
	for i, item := range pool.items {
		hashes[i] = item.hash
	}
	return hashes
}

// Transactions - pending hashes of type "tx"
func (pool *Pool) Transactions() []digest.Digest {
	transactions := []digest.Digest{}
	for _, hash := range pool.Hashes() {
		if transaction.Type == pool.cs.MessageType(hash) {
			transactions = append(transactions, hash)
		}
	}
	return transactions
}

// PositionsSpentByAcceptedTransactions - inputs of every pending transaction
func (pool *Pool) PositionsSpentByAcceptedTransactions() creditsystem.PositionSet {
	spent := creditsystem.PositionSet{}
	for _, hash := range pool.Transactions() {
		tx := pool.cs.Transaction(hash)
		if nil == tx {
			continue
		}
		for _, position := range tx.InputPositions() {
			spent.Add(position)
		}
	}
	return spent
}

// UpdateAcceptedMessagesAfterNewTip - drop what the new tip encloses and add the tip itself
func (pool *Pool) UpdateAcceptedMessagesAfterNewTip(msg *minedcredit.Message) {
	enclosed, err := pool.cs.EnclosedHashes(msg)
	if nil != err {
		pool.log.Warnf("new tip: %v  error: %s", msg.Hash(), err)
		enclosed = []digest.Digest{}
	}

	pool.Lock()
	defer pool.Unlock()
	for _, hash := range enclosed {
		pool.remove(hash)
	}
	pool.add(msg.Hash())
}

// UpdateAcceptedMessagesAfterFork - re-add what the old branch held and drop what the new branch holds
//
// afterwards only transactions whose inputs are unspent at the new tip
// remain, and no two of them spend the same position
func (pool *Pool) UpdateAcceptedMessagesAfterFork(oldTip digest.Digest, newTip digest.Digest) {
	fork := pool.cs.FindFork(oldTip, newTip)
	onOldBranch := pool.cs.EnclosedMessagesOnBranch(fork, oldTip)
	onNewBranch := pool.cs.EnclosedMessagesOnBranch(fork, newTip)

	lost := difference(onOldBranch, onNewBranch)
	added := difference(onNewBranch, onOldBranch)

	spentChain := pool.cs.SpentChain(newTip)

	pool.Lock()
	defer pool.Unlock()

	for _, hash := range added {
		pool.remove(hash)
	}
	for _, hash := range lost {
		pool.add(hash)
	}

	kept := make([]dataItem, 0, len(pool.items))
	spent := creditsystem.PositionSet{}
items:
	for _, item := range pool.items {
		if transaction.Type != pool.cs.MessageType(item.hash) {
			continue items
		}
		tx := pool.cs.Transaction(item.hash)
		if nil == tx {
			continue items
		}
		for _, position := range tx.InputPositions() {
			if spentChain.Get(position) || spent.Contains(position) {
				pool.log.Infof("dropped double spend: %v", item.hash)
				continue items
			}
		}
		for _, position := range tx.InputPositions() {
			spent.Add(position)
		}
		kept = append(kept, item)
	}
	pool.items = kept
	pool.log.Infof("fork: %v -> %v  lost: %d  added: %d  pending: %d", oldTip, newTip, len(lost), len(added), len(kept))
}

// hashes of a that are not in b
func difference(a []digest.Digest, b []digest.Digest) []digest.Digest {
	inB := make(map[digest.Digest]struct{}, len(b))
	for _, h := range b {
		inB[h] = struct{}{}
	}
	result := []digest.Digest{}
	for _, h := range a {
		if _, ok := inB[h]; !ok {
			result = append(result, h)
		}
	}
	return result
}
