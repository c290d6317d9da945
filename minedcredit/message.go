// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package minedcredit

import (
	"bytes"

	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/hashtree"
	"github.com/bitmark-inc/creditd/networkstate"
	"github.com/bitmark-inc/creditd/proof"
	"github.com/bitmark-inc/creditd/shorthash"
	"github.com/bitmark-inc/creditd/util"
)

// Type - name used by the enclosed data store
const Type = "msg"

// Message - the unit that is broadcast and chained
//
// its hash identifies the batch everywhere in the ledger
type Message struct {
	MinedCredit MinedCredit            `json:"minedCredit"`
	HashList    *shorthash.List        `json:"hashList"`
	ProofOfWork *proof.NetworkSpecific `json:"proofOfWork"`
}

// State - shortcut to the consensus header
func (msg *Message) State() *networkstate.State {
	return &msg.MinedCredit.NetworkState
}

// PreviousHash - hash of the predecessor, zero for genesis
func (msg *Message) PreviousHash() digest.Digest {
	return msg.MinedCredit.NetworkState.PreviousMessageHash
}

// Pack - mined credit, hash list, proof of work
func (msg *Message) Pack() util.Packed {
	p := util.Packed{}.AppendFixed(msg.MinedCredit.Pack())
	if nil == msg.HashList {
		p = p.AppendFixed(shorthash.New(nil).Pack())
	} else {
		p = p.AppendFixed(msg.HashList.Pack())
	}
	if nil == msg.ProofOfWork {
		return p.AppendFixed((&proof.NetworkSpecific{}).Pack())
	}
	return p.AppendFixed(msg.ProofOfWork.Pack())
}

// Hash - identity of the message
func (msg *Message) Hash() digest.Digest {
	return digest.NewDigest(msg.Pack())
}

// Unpack - decode a packed message
func Unpack(record []byte) (*Message, error) {
	u := util.NewUnpacker(record)
	mc, err := unpackMinedCreditFrom(u)
	if nil != err {
		return nil, err
	}
	msg := &Message{
		MinedCredit: mc,
		HashList:    shorthash.UnpackFrom(u),
		ProofOfWork: proof.UnpackFrom(u),
	}
	if err := u.Done(); nil != err {
		return nil, err
	}
	return msg, nil
}

// Equal - same packed form
func (msg *Message) Equal(other *Message) bool {
	return bytes.Equal(msg.Pack(), other.Pack())
}

// DifficultyAchieved - work done by the enclosed proof
func (msg *Message) DifficultyAchieved() uint64 {
	if nil == msg.ProofOfWork {
		return 0
	}
	return msg.ProofOfWork.DifficultyAchieved()
}

// IsCalend - proof cleared the diurnal difficulty
func (msg *Message) IsCalend() bool {
	diurnal := msg.MinedCredit.NetworkState.DiurnalDifficulty
	if 0 == diurnal {
		return false
	}
	return msg.DifficultyAchieved() >= diurnal
}

// DiurnRoot - root of the diurn this message closes when it is a calend
func (msg *Message) DiurnRoot() digest.Digest {
	state := msg.State()
	return hashtree.SymmetricCombine(state.PreviousDiurnRoot, state.DiurnalBlockRoot)
}

// TotalCreditWork - total work up to and including this message
func (msg *Message) TotalCreditWork() uint64 {
	return msg.MinedCredit.ReportedWork()
}
