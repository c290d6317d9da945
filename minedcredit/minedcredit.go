// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package minedcredit

import (
	"bytes"

	"github.com/bitmark-inc/creditd/credit"
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/hashtree"
	"github.com/bitmark-inc/creditd/networkstate"
	"github.com/bitmark-inc/creditd/util"
)

// OneCredit - the reward for mining a batch
const OneCredit = 100000000

// MinedCredit - the miner's reward carrying the round's consensus header
type MinedCredit struct {
	Amount       uint64             `json:"amount,string"`
	KeyData      []byte             `json:"keyData"`
	NetworkState networkstate.State `json:"networkState"`
}

// Pack - amount, key data, network state
func (mc *MinedCredit) Pack() util.Packed {
	state := mc.NetworkState.Pack()
	return util.Packed{}.
		AppendVarint(mc.Amount).
		AppendBytes(mc.KeyData).
		AppendFixed(state[:])
}

// BranchBridge - hash of the packed credit
func (mc *MinedCredit) BranchBridge() digest.Digest {
	return digest.NewDigest(mc.Pack())
}

// Hash - the credit hash bound to its batch root
func (mc *MinedCredit) Hash() digest.Digest {
	return hashtree.SymmetricCombine(mc.BranchBridge(), mc.NetworkState.BatchRoot)
}

// ReportedWork - previous total work plus difficulty
func (mc *MinedCredit) ReportedWork() uint64 {
	return mc.NetworkState.ReportedWork()
}

// Credit - the reward as a spendable credit
func (mc *MinedCredit) Credit() credit.Credit {
	return credit.Credit{
		KeyData: mc.KeyData,
		Amount:  mc.Amount,
	}
}

// Equal - structural equality
func (mc *MinedCredit) Equal(other *MinedCredit) bool {
	return mc.Amount == other.Amount &&
		bytes.Equal(mc.KeyData, other.KeyData) &&
		mc.NetworkState.Equal(&other.NetworkState)
}

func unpackMinedCreditFrom(u *util.Unpacker) (MinedCredit, error) {
	mc := MinedCredit{}
	mc.Amount = u.Varint()
	mc.KeyData = u.Bytes()
	state, err := networkstate.Unpack(u.Fixed(networkstate.TotalSize))
	if nil != u.Err() {
		return mc, u.Err()
	}
	if nil != err {
		return mc, err
	}
	mc.NetworkState = *state
	return mc, nil
}
