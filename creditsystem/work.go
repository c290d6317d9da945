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

// work index key: big endian work followed by the hash
func workKey(work uint64, hash digest.Digest) []byte {
	k := make([]byte, 8, 8+digest.Length)
	binary.BigEndian.PutUint64(k, work)
	return append(k, hash[:]...)
}

func workPrefix(work uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, work)
	return k
}

// split a work index key
func splitWorkKey(k []byte) (uint64, digest.Digest, bool) {
	var hash digest.Digest
	if len(k) != 8+digest.Length {
		return 0, hash, false
	}
	copy(hash[:], k[8:])
	return binary.BigEndian.Uint64(k[:8]), hash, true
}

// RecordTotalWork - add a hash to the bucket for its total work
func (cs *CreditSystem) RecordTotalWork(hash digest.Digest, totalWork uint64) {
	cs.update(func() {
		if previous, ok := cs.store.TotalWork.GetN(hash[:]); ok && previous != totalWork {
			cs.store.TotalWorkIndex.Delete(workKey(previous, hash))
		}
		cs.store.TotalWork.PutN(hash[:], totalWork)
		cs.store.TotalWorkIndex.Put(workKey(totalWork, hash), []byte{})
	})
}

// TotalWork - recorded total work of an accepted message
func (cs *CreditSystem) TotalWork(hash digest.Digest) (uint64, bool) {
	return cs.store.TotalWork.GetN(hash[:])
}

// WasRecordedToHaveTotalWork - true if the hash is in the bucket for the work
func (cs *CreditSystem) WasRecordedToHaveTotalWork(hash digest.Digest, totalWork uint64) bool {
	return cs.store.TotalWorkIndex.Has(workKey(totalWork, hash))
}

// DeleteRecordOfTotalWork - remove a message from the work index
func (cs *CreditSystem) DeleteRecordOfTotalWork(msg *minedcredit.Message) {
	hash := msg.Hash()
	cs.update(func() {
		cs.store.TotalWorkIndex.Delete(workKey(msg.TotalCreditWork(), hash))
		if recorded, ok := cs.store.TotalWork.GetN(hash[:]); ok {
			cs.store.TotalWorkIndex.Delete(workKey(recorded, hash))
		}
		cs.store.TotalWork.Delete(hash[:])
	})
}

// MostWorkBatches - every hash in the bucket with the largest total work
func (cs *CreditSystem) MostWorkBatches() []digest.Digest {
	hashes := []digest.Digest{}
	last, found := cs.store.TotalWorkIndex.LastElement()
	if !found {
		return hashes
	}
	work, _, ok := splitWorkKey(last.Key)
	if !ok {
		return hashes
	}
	_ = cs.store.TotalWorkIndex.NewPrefixCursor(workPrefix(work)).Map(func(k []byte, value []byte) error {
		if _, hash, ok := splitWorkKey(k); ok {
			hashes = append(hashes, hash)
		}
		return nil
	})
	return hashes
}

// SetChildBatch - record a parent to child edge
func (cs *CreditSystem) SetChildBatch(parent digest.Digest, child digest.Digest) {
	cs.store.Children.Put(append(parent[:], child[:]...), []byte{})
}

// Children - hashes accepted on top of a message
func (cs *CreditSystem) Children(parent digest.Digest) []digest.Digest {
	children := []digest.Digest{}
	_ = cs.store.Children.NewPrefixCursor(parent[:]).Map(func(k []byte, value []byte) error {
		var child digest.Digest
		if nil == digest.FromBytes(&child, k[digest.Length:]) {
			children = append(children, child)
		}
		return nil
	})
	return children
}

// AcceptAsValidByRecordingTotalWorkAndParent - enter a verified message into the work index
func (cs *CreditSystem) AcceptAsValidByRecordingTotalWorkAndParent(msg *minedcredit.Message) {
	hash := msg.Hash()
	cs.update(func() {
		cs.RecordTotalWork(hash, msg.TotalCreditWork())
		cs.SetChildBatch(msg.PreviousHash(), hash)
	})
}

// RemoveFromMainChainAndDeleteRecordOfTotalWork - retract one message
func (cs *CreditSystem) RemoveFromMainChainAndDeleteRecordOfTotalWork(hash digest.Digest) {
	msg := cs.Message(hash)
	if nil == msg {
		return
	}
	cs.update(func() {
		cs.RemoveFromMainChain(msg)
		cs.DeleteRecordOfTotalWork(msg)
	})
}

// RemoveBatchAndChildrenFromMainChainAndDeleteRecordOfTotalWork - retract a message and everything built on it
//
// uses an explicit work list; returns the retracted hashes in visiting order
func (cs *CreditSystem) RemoveBatchAndChildrenFromMainChainAndDeleteRecordOfTotalWork(hash digest.Digest) []digest.Digest {
	removed := []digest.Digest{}
	visited := map[digest.Digest]struct{}{}
	work := []digest.Digest{hash}

	for 0 != len(work) {
		h := work[len(work)-1]
		work = work[:len(work)-1]
		if _, ok := visited[h]; ok {
			continue
		}
		visited[h] = struct{}{}

		cs.RemoveFromMainChainAndDeleteRecordOfTotalWork(h)
		removed = append(removed, h)
		work = append(work, cs.Children(h)...)
	}
	cs.log.Infof("pruned: %v  removed: %d", hash, len(removed))
	return removed
}
