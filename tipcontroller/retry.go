// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tipcontroller

import (
	"time"

	"github.com/bitmark-inc/creditd/creditsystem"
	"github.com/bitmark-inc/creditd/digest"
)

// RetryInterval - time between passes over the queued messages
const RetryInterval = 30 * time.Second

// Retry - signal fetches again for everything still missing
//
// a missing hash that has since been stored but never handled is
// handled now, and batches waiting for enclosed data are tried again.
// Returns the number of hashes still waiting
func (tc *Controller) Retry() int {
	tc.Lock()
	defer tc.Unlock()

	missing := make([]digest.Digest, 0, len(tc.waiting))
	for hash := range tc.waiting {
		missing = append(missing, hash)
	}

	for _, hash := range missing {
		msg := tc.cs.Message(hash)
		if nil == msg {
			tc.fetchMessage(hash)
			continue
		}
		if creditsystem.Unseen == tc.cs.HandlingStatus(hash) {
			state, err := tc.process(msg, spotCheckOf(msg))
			tc.log.Debugf("retry stored: %v  state: %s  error: %v", hash, state, err)
		}
	}

	for hash := range tc.incomplete {
		msg := tc.cs.Message(hash)
		if nil == msg {
			continue
		}
		if shortHashes := tc.cs.MissingEnclosedData(msg); 0 != len(shortHashes) {
			tc.fetchEnclosedData(hash, shortHashes)
		}
	}
	tc.retryIncomplete()

	n := len(tc.incomplete)
	for _, queued := range tc.waiting {
		n += len(queued)
	}
	return n
}

// Run - periodic retry as a background process
func (tc *Controller) Run(args interface{}, shutdown <-chan struct{}) {
	log := tc.log

	log.Info("starting…")

loop:
	for {
		log.Debug("waiting…")
		select {
		case <-shutdown:
			break loop

		case <-time.After(RetryInterval):
			if n := tc.Retry(); 0 != n {
				log.Infof("queued: %d", n)
			}
		}
	}
	log.Info("stopped")
}
