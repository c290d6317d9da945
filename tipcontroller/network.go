// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tipcontroller

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/creditd/digest"
)

// default signalling limits
const (
	DefaultFetchRate  = rate.Limit(20)
	DefaultFetchBurst = 40
)

// Fetcher - request missing data from peers
//
// calls are signals: they must return at once and the data, if it
// ever arrives, comes back through the Handle methods
type Fetcher interface {
	FetchMessage(hash digest.Digest)
	FetchEnclosedData(hash digest.Digest, shortHashes []uint32)
}

// Broadcaster - tell peers about a disproven batch
type Broadcaster interface {
	BroadcastBadBatch(bad *BadBatchMessage)
}

// NewLimiter - limiter for fetch signals, zero values select the defaults
func NewLimiter(limit rate.Limit, burst int) *rate.Limiter {
	if 0 == limit {
		limit = DefaultFetchRate
	}
	if burst <= 0 {
		burst = DefaultFetchBurst
	}
	return rate.NewLimiter(limit, burst)
}

// dropped signals are repeated by the retry process
func (tc *Controller) fetchMessage(hash digest.Digest) {
	if !tc.limiter.Allow() {
		tc.log.Debugf("fetch message: %v  deferred by rate limit", hash)
		return
	}
	tc.log.Debugf("fetch message: %v", hash)
	tc.fetcher.FetchMessage(hash)
}

func (tc *Controller) fetchEnclosedData(hash digest.Digest, shortHashes []uint32) {
	if !tc.limiter.Allow() {
		tc.log.Debugf("fetch enclosed data for: %v  deferred by rate limit", hash)
		return
	}
	tc.log.Debugf("fetch enclosed data for: %v  items: %d", hash, len(shortHashes))
	tc.fetcher.FetchEnclosedData(hash, shortHashes)
}
