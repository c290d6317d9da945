// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package creditsystem

import (
	"encoding/binary"

	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/minedcredit"
)

// AddToMainChain - make a message part of the main chain
//
// also accepts it into the work index and, every snapshot interval,
// persists the spent chain after it
func (cs *CreditSystem) AddToMainChain(msg *minedcredit.Message) {
	hash := msg.Hash()
	state := msg.State()
	work := msg.TotalCreditWork()

	cs.update(func() {
		cs.store.MainChain.PutN(hash[:], work)
		cs.store.MainChainIndex.Put(workPrefix(work), hash[:])
		cs.store.BatchRoots.Put(state.BatchRoot[:], hash[:])
		cs.AcceptAsValidByRecordingTotalWorkAndParent(msg)

		if 0 == cs.snapshotInterval || 0 != state.BatchNumber%cs.snapshotInterval {
			return
		}
		chain, err := cs.ConstructSpentChain(msg)
		if nil != err {
			cs.log.Warnf("no snapshot for: %v  error: %s", hash, err)
			return
		}
		cs.StoreSpentChain(hash, chain)
	})
	cs.log.Debugf("main chain add: %v  batch: %d  work: %d", hash, state.BatchNumber, work)
}

// RemoveFromMainChain - drop a message from the main chain
//
// the work index is only cleared when it still refers to this message
func (cs *CreditSystem) RemoveFromMainChain(msg *minedcredit.Message) {
	hash := msg.Hash()
	state := msg.State()

	cs.update(func() {
		recorded, ok := cs.store.MainChain.GetN(hash[:])
		if ok && recorded == msg.TotalCreditWork() {
			k := workPrefix(recorded)
			if current := cs.store.MainChainIndex.Get(k); nil != current && hash == toDigest(current) {
				cs.store.MainChainIndex.Delete(k)
			}
		}
		cs.store.MainChain.Delete(hash[:])
		if current := cs.store.BatchRoots.Get(state.BatchRoot[:]); nil != current && hash == toDigest(current) {
			cs.store.BatchRoots.Delete(state.BatchRoot[:])
		}
	})
	cs.log.Debugf("main chain remove: %v  batch: %d", hash, state.BatchNumber)
}

// RemoveHashFromMainChain - drop a stored message by hash
func (cs *CreditSystem) RemoveHashFromMainChain(hash digest.Digest) {
	if msg := cs.Message(hash); nil != msg {
		cs.RemoveFromMainChain(msg)
	}
}

// IsInMainChain - true if the message is on the main chain
func (cs *CreditSystem) IsInMainChain(hash digest.Digest) bool {
	return cs.store.MainChain.Has(hash[:])
}

// MainChainMessageByBatchRoot - main chain message committing to a batch root
func (cs *CreditSystem) MainChainMessageByBatchRoot(batchRoot digest.Digest) (digest.Digest, bool) {
	value := cs.store.BatchRoots.Get(batchRoot[:])
	if nil == value {
		return digest.Zero, false
	}
	return toDigest(value), true
}

// CurrentTipOfMainChain - main chain message with the most work, zero if empty
func (cs *CreditSystem) CurrentTipOfMainChain() digest.Digest {
	last, found := cs.store.MainChainIndex.LastElement()
	if !found {
		return digest.Zero
	}
	return toDigest(last.Value)
}

// MainChainWork - reported work of the main chain tip
func (cs *CreditSystem) MainChainWork() uint64 {
	last, found := cs.store.MainChainIndex.LastElement()
	if !found || 8 != len(last.Key) {
		return 0
	}
	return binary.BigEndian.Uint64(last.Key)
}

// AddMessageAndPredecessorsToMainChain - walk back until joining the main chain
func (cs *CreditSystem) AddMessageAndPredecessorsToMainChain(hash digest.Digest) {
	cs.update(func() {
		for !hash.IsZero() && !cs.IsInMainChain(hash) {
			msg := cs.Message(hash)
			if nil == msg {
				cs.log.Warnf("main chain: missing: %v", hash)
				return
			}
			cs.SetHandlingStatus(hash, Accepted)
			cs.AddToMainChain(msg)
			hash = msg.PreviousHash()
		}
	})
}

// MessagesOnBranch - hashes after from up to and including to, oldest first
func (cs *CreditSystem) MessagesOnBranch(from digest.Digest, to digest.Digest) []digest.Digest {
	hashes := []digest.Digest{}
	for to != from && !to.IsZero() {
		hashes = append(hashes, to)
		to = cs.PreviousMessageHash(to)
	}
	for i, j := 0, len(hashes)-1; i < j; i, j = i+1, j-1 {
		hashes[i], hashes[j] = hashes[j], hashes[i]
	}
	return hashes
}

// MessagesOnOldAndNewBranchesOfFork - the hashes a tip switch removes and adds
func (cs *CreditSystem) MessagesOnOldAndNewBranchesOfFork(oldTip digest.Digest, newTip digest.Digest) ([]digest.Digest, []digest.Digest) {
	fork := cs.FindFork(oldTip, newTip)
	return cs.MessagesOnBranch(fork, oldTip), cs.MessagesOnBranch(fork, newTip)
}

// SwitchMainChainToOtherBranchOfFork - retract back to the fork then extend to the new tip
func (cs *CreditSystem) SwitchMainChainToOtherBranchOfFork(currentTip digest.Digest, newTip digest.Digest) {
	oldBranch, newBranch := cs.MessagesOnOldAndNewBranchesOfFork(currentTip, newTip)

	cs.update(func() {
		for i := len(oldBranch) - 1; i >= 0; i -= 1 {
			cs.RemoveHashFromMainChain(oldBranch[i])
		}
		for _, hash := range newBranch {
			msg := cs.Message(hash)
			if nil == msg {
				cs.log.Errorf("switch: missing: %v", hash)
				return
			}
			cs.AddToMainChain(msg)
		}
	})
	cs.log.Infof("switched tip: %v -> %v  removed: %d  added: %d", currentTip, newTip, len(oldBranch), len(newBranch))
}

// SwitchMainChainToTipWithTheMostWork - make the best recorded tip current
//
// must not be called while a batch of writes is open since it scans the work index
func (cs *CreditSystem) SwitchMainChainToTipWithTheMostWork() {
	best := cs.MostWorkBatches()
	if 0 == len(best) {
		return
	}
	currentTip := cs.CurrentTipOfMainChain()
	if currentTip == best[0] {
		return
	}
	cs.SwitchMainChainToOtherBranchOfFork(currentTip, best[0])
}

func toDigest(buffer []byte) digest.Digest {
	var d digest.Digest
	copy(d[:], buffer)
	return d
}

// EnclosedMessagesOnBranch - hashes enclosed by the batches after from up to to
func (cs *CreditSystem) EnclosedMessagesOnBranch(from digest.Digest, to digest.Digest) []digest.Digest {
	enclosed := []digest.Digest{}
	for _, hash := range cs.MessagesOnBranch(from, to) {
		msg := cs.Message(hash)
		if nil == msg {
			continue
		}
		hashes, err := cs.EnclosedHashes(msg)
		if nil != err {
			cs.log.Warnf("enclosed messages: %v  error: %s", hash, err)
			continue
		}
		enclosed = append(enclosed, hashes...)
	}
	return enclosed
}
