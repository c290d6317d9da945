// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tipcontroller

import (
	"github.com/bitmark-inc/creditd/calendar"
	"github.com/bitmark-inc/creditd/digest"
)

// selectTip - move the main chain to the batch with the most work
//
// the current tip stays while it is one of the most work batches.  A
// candidate on the current tip is appended; anything else retracts to
// the fork and extends along the other prong, after which the pending
// pool is reconciled and the calendar rebuilt
func (tc *Controller) selectTip() {
	previous := tc.tip

	target := digest.Zero
	best := tc.cs.MostWorkBatches()
	if 0 != len(best) {
		target = best[0]
	}
	for _, hash := range best {
		if hash == previous {
			return
		}
	}
	if target == previous {
		return
	}

	candidate := tc.cs.Message(target)
	mainTip := tc.cs.CurrentTipOfMainChain()
	if nil != candidate && candidate.PreviousHash() == mainTip {
		tc.cs.AddToMainChain(candidate)
	} else {
		tc.cs.SwitchMainChainToOtherBranchOfFork(mainTip, target)
	}

	if nil != candidate && candidate.PreviousHash() == previous {
		tc.pool.UpdateAcceptedMessagesAfterNewTip(candidate)
		tc.extendCalendar(target)
	} else {
		tc.pool.UpdateAcceptedMessagesAfterFork(previous, target)
		tc.pool.Remove(previous)
		if nil != candidate {
			tc.pool.Add(target)
		}
		tc.rebuildCalendar(target)
		tc.log.Infof("fork: %v -> %v  at: %v", previous, target, tc.cs.FindFork(previous, target))
	}

	tc.tip = target
	tc.log.Infof("tip: %v  work: %d", target, tc.cs.MainChainWork())
}

func (tc *Controller) extendCalendar(hash digest.Digest) {
	if nil == tc.calendar {
		tc.rebuildCalendar(hash)
		return
	}
	if err := tc.calendar.AddToTip(tc.cs.Message(hash)); nil != err {
		tc.log.Warnf("calendar add: %v  error: %s", hash, err)
		tc.rebuildCalendar(hash)
	}
}

// a calendar lacking data is left nil and rebuilt on demand
func (tc *Controller) rebuildCalendar(hash digest.Digest) {
	cal, err := calendar.New(tc.cs, hash)
	if nil != err {
		tc.log.Errorf("calendar rebuild: %v  error: %s", hash, err)
		tc.calendar = nil
		return
	}
	tc.calendar = cal
}
