// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package creditsystem

import (
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/hashtree"
	"github.com/bitmark-inc/creditd/minedcredit"
	"github.com/bitmark-inc/creditd/networkstate"
)

// NextDifficulty - batch difficulty of the message following msg
//
// a message with no difficulty yields the initial value; an absent
// predecessor counts as timestamp zero
func (cs *CreditSystem) NextDifficulty(msg *minedcredit.Message) uint64 {
	state := msg.State()
	if 0 == state.Difficulty {
		return cs.parameters.Initial
	}
	previousTimestamp := uint64(0)
	if previous := cs.Message(state.PreviousMessageHash); nil != previous {
		previousTimestamp = previous.State().Timestamp
	}
	return cs.parameters.NextDifficulty(state.Difficulty, interval(state.Timestamp, previousTimestamp))
}

// NextDiurnalDifficulty - diurnal difficulty of the message following msg
//
// only a calend retargets, measured from the calend before it
func (cs *CreditSystem) NextDiurnalDifficulty(msg *minedcredit.Message) (uint64, error) {
	state := msg.State()
	if state.PreviousDiurnRoot.IsZero() {
		return cs.parameters.InitialDiurnal, nil
	}
	if !cs.IsCalend(msg) {
		return state.DiurnalDifficulty, nil
	}
	previousCalend := cs.Message(state.PreviousCalendHash)
	if nil == previousCalend {
		return 0, fault.ErrMissingCalend
	}
	duration := interval(state.Timestamp, previousCalend.State().Timestamp)
	return cs.parameters.NextDiurnalDifficulty(state.DiurnalDifficulty, duration), nil
}

// NextPreviousDiurnRoot - previous diurn root of the message following msg
func (cs *CreditSystem) NextPreviousDiurnRoot(msg *minedcredit.Message) digest.Digest {
	if cs.IsCalend(msg) {
		return msg.DiurnRoot()
	}
	return msg.State().PreviousDiurnRoot
}

// NextPreviousCalendHash - previous calend hash of the message following msg
func (cs *CreditSystem) NextPreviousCalendHash(msg *minedcredit.Message) digest.Digest {
	if cs.IsCalend(msg) {
		return msg.Hash()
	}
	return msg.State().PreviousCalendHash
}

// NextDiurnalBlockRoot - diurnal block root of the message following msg
//
// the block holds the mined credit hashes from msg back to, but not
// including, the preceding calend; a calend starts an empty block
func (cs *CreditSystem) NextDiurnalBlockRoot(msg *minedcredit.Message) (digest.Digest, error) {
	if 0 == msg.State().BatchNumber || cs.IsCalend(msg) {
		return digest.Zero, nil
	}

	creditHashes := []digest.Digest{}
	for current := msg; ; {
		creditHashes = append(creditHashes, current.MinedCredit.Hash())
		previousHash := current.PreviousHash()
		if previousHash.IsZero() {
			break
		}
		previous := cs.Message(previousHash)
		if nil == previous {
			return digest.Zero, fault.ErrMissingPrecedingCalend
		}
		if cs.IsCalend(previous) {
			break
		}
		current = previous
	}

	for i, j := 0, len(creditHashes)-1; i < j; i, j = i+1, j-1 {
		creditHashes[i], creditHashes[j] = creditHashes[j], creditHashes[i]
	}
	return hashtree.Root(creditHashes), nil
}

// DataIsPresentFromMessageToPrecedingCalendOrStart - every message back to the last calend or genesis is stored
func (cs *CreditSystem) DataIsPresentFromMessageToPrecedingCalendOrStart(msg *minedcredit.Message) bool {
	for current := msg; ; {
		previousHash := current.PreviousHash()
		if previousHash.IsZero() {
			return 1 == current.State().BatchNumber
		}
		previous := cs.Message(previousHash)
		if nil == previous {
			return false
		}
		if cs.IsCalend(previous) {
			return true
		}
		current = previous
	}
}

// SucceedingNetworkState - every predecessor derived field of the next state
//
// batch root, batch size, message list hash and spent chain hash are
// left for the caller once the contents are known
func (cs *CreditSystem) SucceedingNetworkState(msg *minedcredit.Message) (*networkstate.State, error) {
	previous := msg.State()

	diurnalDifficulty, err := cs.NextDiurnalDifficulty(msg)
	if nil != err {
		return nil, err
	}
	diurnalBlockRoot, err := cs.NextDiurnalBlockRoot(msg)
	if nil != err {
		return nil, err
	}

	next := &networkstate.State{
		BatchNumber:        previous.BatchNumber + 1,
		BatchOffset:        previous.BatchOffset + uint64(previous.BatchSize),
		PreviousTotalWork:  previous.PreviousTotalWork + previous.Difficulty,
		Difficulty:         cs.NextDifficulty(msg),
		DiurnalDifficulty:  diurnalDifficulty,
		PreviousDiurnRoot:  cs.NextPreviousDiurnRoot(msg),
		DiurnalBlockRoot:   diurnalBlockRoot,
		PreviousCalendHash: cs.NextPreviousCalendHash(msg),
		Timestamp:          cs.now(),
		NetworkID:          previous.NetworkID,
	}
	if 0 != previous.BatchNumber {
		next.PreviousMessageHash = msg.Hash()
	}
	return next, nil
}

// GenesisPredecessor - the empty message a first batch is derived from
func GenesisPredecessor(networkID uint64) *minedcredit.Message {
	return &minedcredit.Message{
		MinedCredit: minedcredit.MinedCredit{
			NetworkState: networkstate.State{
				NetworkID: networkID,
			},
		},
	}
}

// elapsed time, zero if the clock went backwards
func interval(later uint64, earlier uint64) uint64 {
	if later < earlier {
		return 0
	}
	return later - earlier
}
