// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tipcontroller

import (
	"github.com/bitmark-inc/creditd/creditsystem"
	"github.com/bitmark-inc/creditd/digest"
)

// State - progress of one message hash
type State int

// message states
//
// Queued waits for a predecessor or enclosed data; Verified has passed
// validation and the spot check but is not yet placed; OnTip and OffTip
// are accepted batches on and off the main chain
const (
	Unseen State = iota
	Queued
	Verified
	OnTip
	OffTip
	Rejected
)

// String - name of a state
func (s State) String() string {
	switch s {
	case Unseen:
		return "unseen"
	case Queued:
		return "queued"
	case Verified:
		return "verified"
	case OnTip:
		return "on-tip"
	case OffTip:
		return "off-tip"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// final states release anything waiting on the message
func (s State) terminal() bool {
	return OnTip == s || OffTip == s || Rejected == s
}

// StateOf - current state of a message hash
func (tc *Controller) StateOf(hash digest.Digest) State {
	tc.Lock()
	defer tc.Unlock()
	return tc.stateOf(hash)
}

func (tc *Controller) stateOf(hash digest.Digest) State {
	switch tc.cs.HandlingStatus(hash) {
	case creditsystem.Queued:
		return Queued
	case creditsystem.Rejected:
		return Rejected
	case creditsystem.Accepted:
		if tc.cs.IsInMainChain(hash) {
			return OnTip
		}
		return OffTip
	default:
		return Unseen
	}
}
