// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tipcontroller

import (
	"github.com/bitmark-inc/creditd/creditsystem"
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/proof"
	"github.com/bitmark-inc/creditd/util"
)

// BadBatchMessage - evidence that a batch's proof of work is wrong
type BadBatchMessage struct {
	MessageHash digest.Digest   `json:"messageHash"`
	Disproof    *proof.Disproof `json:"disproof"`
}

// Pack - hash followed by the packed disproof
func (bad *BadBatchMessage) Pack() util.Packed {
	return util.Packed{}.
		AppendFixed(bad.MessageHash[:]).
		AppendBytes(bad.Disproof.Pack())
}

// UnpackBadBatchMessage - decode a packed bad batch message
func UnpackBadBatchMessage(record []byte) (*BadBatchMessage, error) {
	u := util.NewUnpacker(record)
	bad := &BadBatchMessage{}
	if err := digest.FromBytes(&bad.MessageHash, u.Fixed(digest.Length)); nil != err {
		return nil, err
	}
	packed := u.Bytes()
	if err := u.Done(); nil != err {
		return nil, err
	}
	disproof, err := proof.UnpackDisproof(packed)
	if nil != err {
		return nil, err
	}
	bad.Disproof = disproof
	return bad, nil
}

// HandleBadBatchMessage - check the evidence then drop the batch and its descendants
//
// the batch is rejected whether or not it was accepted; when it was, the
// whole subtree leaves the main chain and the tip is selected once.  The
// evidence is passed on the first time it is seen
func (tc *Controller) HandleBadBatchMessage(bad *BadBatchMessage) error {
	tc.Lock()
	defer tc.Unlock()

	hash := bad.MessageHash
	msg := tc.cs.Message(hash)
	if nil == msg {
		tc.fetchMessage(hash)
		return fault.ErrMissingMessage
	}
	if nil == msg.ProofOfWork || !bad.Disproof.Demonstrates(msg.ProofOfWork.Proof) {
		tc.log.Warnf("bad batch: %v  disproof does not hold", hash)
		return fault.ErrDisproofNotValid
	}
	if nil != tc.cs.SpotCheckFailure(hash) {
		return nil
	}

	tc.cs.RecordSpotCheckFailure(hash, bad.Disproof)
	wasAccepted := creditsystem.Accepted == tc.cs.HandlingStatus(hash)
	tc.cs.SetHandlingStatus(hash, creditsystem.Rejected)
	delete(tc.incomplete, hash)

	if wasAccepted {
		removed := tc.cs.RemoveBatchAndChildrenFromMainChainAndDeleteRecordOfTotalWork(hash)
		for _, h := range removed {
			tc.cs.SetHandlingStatus(h, creditsystem.Rejected)
		}
		tc.log.Warnf("bad batch: %v  pruned: %d", hash, len(removed))
		tc.selectTip()
	}
	tc.release(hash)

	tc.broadcaster.BroadcastBadBatch(bad)
	return nil
}
