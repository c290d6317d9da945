// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package creditsystem

import (
	"sort"

	"github.com/bitmark-inc/creditd/bitchain"
	"github.com/bitmark-inc/creditd/credit"
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/minedcredit"
	"github.com/bitmark-inc/creditd/transaction"
)

// PositionSet - a set of global credit positions
type PositionSet map[uint64]struct{}

// Add - include a position
func (s PositionSet) Add(position uint64) {
	s[position] = struct{}{}
}

// Contains - true if the position is present
func (s PositionSet) Contains(position uint64) bool {
	_, ok := s[position]
	return ok
}

// Sorted - positions in increasing order
func (s PositionSet) Sorted() []uint64 {
	positions := make([]uint64, 0, len(s))
	for p := range s {
		positions = append(positions, p)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })
	return positions
}

// FindFork - most recent hash common to both chains, zero if none
func (cs *CreditSystem) FindFork(hash1 digest.Digest, hash2 digest.Digest) digest.Digest {
	fork, _ := cs.ForkSearch(hash1, hash2)
	return fork
}

// ForkSearch - the fork point and the number of predecessor lookups made
//
// walks both chains back in lock step so the cost is bounded by the
// longer branch, not by the shared history; a side that reaches
// genesis stops while the other continues
func (cs *CreditSystem) ForkSearch(hash1 digest.Digest, hash2 digest.Digest) (digest.Digest, int) {
	seen := map[digest.Digest]struct{}{}
	steps := 0

	// true if the hash was already reached from the other side
	visit := func(h digest.Digest) bool {
		if _, ok := seen[h]; ok {
			return true
		}
		seen[h] = struct{}{}
		return false
	}

	for {
		if hash1 == hash2 {
			return hash1, steps
		}
		if !hash1.IsZero() {
			if visit(hash1) {
				return hash1, steps
			}
			hash1 = cs.PreviousMessageHash(hash1)
			steps += 1
		}
		if !hash2.IsZero() {
			if visit(hash2) {
				return hash2, steps
			}
			hash2 = cs.PreviousMessageHash(hash2)
			steps += 1
		}
	}
}

// PositionsOfCreditsSpentInBatch - inputs of every transaction a message encloses
func (cs *CreditSystem) PositionsOfCreditsSpentInBatch(hash digest.Digest) PositionSet {
	spent := PositionSet{}
	msg := cs.Message(hash)
	if nil == msg {
		return spent
	}
	hashes, err := cs.EnclosedHashes(msg)
	if nil != err {
		cs.log.Warnf("spent positions: %v  error: %s", hash, err)
		return spent
	}
	for _, h := range hashes {
		if transaction.Type != cs.MessageType(h) {
			continue
		}
		tx := cs.Transaction(h)
		if nil == tx {
			continue
		}
		for _, position := range tx.InputPositions() {
			spent.Add(position)
		}
	}
	return spent
}

// PositionsOfCreditsSpentBetween - positions spent after from up to and including to
//
// both hashes must lie on one chain, from being an ancestor of to
func (cs *CreditSystem) PositionsOfCreditsSpentBetween(from digest.Digest, to digest.Digest) PositionSet {
	spent := PositionSet{}
	for to != from && !to.IsZero() {
		for position := range cs.PositionsOfCreditsSpentInBatch(to) {
			spent.Add(position)
		}
		to = cs.PreviousMessageHash(to)
	}
	return spent
}

// SpentAndUnspentAcrossFork - positions to set and to clear when moving from one tip to another
func (cs *CreditSystem) SpentAndUnspentAcrossFork(from digest.Digest, to digest.Digest) (PositionSet, PositionSet) {
	fork := cs.FindFork(from, to)
	spent := cs.PositionsOfCreditsSpentBetween(fork, to)
	unspent := cs.PositionsOfCreditsSpentBetween(fork, from)
	return spent, unspent
}

// SpentChainOnOtherProngOfFork - derive the spent chain at to from the one at from
func (cs *CreditSystem) SpentChainOnOtherProngOfFork(chain *bitchain.BitChain, from digest.Digest, to digest.Digest) *bitchain.BitChain {
	spent, unspent := cs.SpentAndUnspentAcrossFork(from, to)

	result := chain.Copy()
	result.SetLength(cs.chainLength(to))
	for position := range unspent {
		result.Clear(position)
	}
	for position := range spent {
		result.Set(position)
	}
	return result
}

// positions that exist once a message is applied
func (cs *CreditSystem) chainLength(hash digest.Digest) uint64 {
	msg := cs.Message(hash)
	if nil == msg {
		return 0
	}
	state := msg.State()
	return state.BatchOffset + uint64(state.BatchSize)
}

// SpentChain - spent chain after a message, from the nearest snapshot
func (cs *CreditSystem) SpentChain(hash digest.Digest) *bitchain.BitChain {
	start := hash
	for !start.IsZero() && !cs.store.SpentChains.Has(start[:]) {
		start = cs.PreviousMessageHash(start)
	}

	chain := bitchain.New()
	if !start.IsZero() {
		snapshot, err := bitchain.Unpack(cs.store.SpentChains.Get(start[:]))
		if nil != err {
			cs.log.Errorf("corrupt spent chain: %v  error: %s", start, err)
			chain = bitchain.New()
			start = digest.Zero
		} else {
			chain = snapshot
		}
	}
	return cs.SpentChainOnOtherProngOfFork(chain, start, hash)
}

// StoreSpentChain - persist a snapshot for a message
func (cs *CreditSystem) StoreSpentChain(hash digest.Digest, chain *bitchain.BitChain) {
	cs.store.SpentChains.Put(hash[:], chain.Pack())
}

// HasSpentChain - true if a snapshot is stored for the message
func (cs *CreditSystem) HasSpentChain(hash digest.Digest) bool {
	return cs.store.SpentChains.Has(hash[:])
}

// ConstructSpentChain - apply a message's contents to its predecessor's spent chain
//
// an enclosed message adds one position for its reward, a transaction
// sets its inputs and adds one position per output
func (cs *CreditSystem) ConstructSpentChain(msg *minedcredit.Message) (*bitchain.BitChain, error) {
	chain := cs.SpentChain(msg.PreviousHash())
	hashes, err := cs.EnclosedHashes(msg)
	if nil != err {
		return nil, err
	}
	for _, h := range hashes {
		switch cs.MessageType(h) {
		case minedcredit.Type:
			chain.Add()
		case transaction.Type:
			tx := cs.Transaction(h)
			if nil == tx {
				return nil, fault.ErrMissingEnclosedData
			}
			for _, position := range tx.InputPositions() {
				chain.Set(position)
			}
			for i := 0; i < tx.OutputCount(); i += 1 {
				chain.Add()
			}
		default:
			return nil, fault.ErrMissingEnclosedData
		}
	}
	return chain, nil
}

// ReconstructBatch - the credit batch a message commits to
//
// transaction outputs and the rewards of enclosed messages, in list order
func (cs *CreditSystem) ReconstructBatch(msg *minedcredit.Message) (*credit.Batch, error) {
	state := msg.State()
	batch := credit.NewBatch(state.PreviousMessageHash, state.BatchOffset)

	hashes, err := cs.EnclosedHashes(msg)
	if nil != err {
		return nil, err
	}
	for _, h := range hashes {
		switch cs.MessageType(h) {
		case minedcredit.Type:
			enclosed := cs.Message(h)
			if nil == enclosed {
				return nil, fault.ErrMissingEnclosedData
			}
			batch.Add(enclosed.MinedCredit.Credit())
		case transaction.Type:
			tx := cs.Transaction(h)
			if nil == tx {
				return nil, fault.ErrMissingEnclosedData
			}
			for _, output := range tx.Outputs {
				batch.Add(output)
			}
		default:
			return nil, fault.ErrMissingEnclosedData
		}
	}
	return batch, nil
}

// SetBatchRootAndSizeAndMessageListHashAndSpentChainHash - fill the content derived fields
func (cs *CreditSystem) SetBatchRootAndSizeAndMessageListHashAndSpentChainHash(msg *minedcredit.Message) error {
	batch, err := cs.ReconstructBatch(msg)
	if nil != err {
		return err
	}
	chain, err := cs.ConstructSpentChain(msg)
	if nil != err {
		return err
	}
	state := msg.State()
	state.BatchSize = batch.Size()
	state.BatchRoot = batch.Root()
	state.MessageListHash = msg.HashList.Hash()
	state.SpentChainHash = chain.Hash()
	return nil
}
