// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pending

import (
	"time"
)

// the maximum time a transaction may wait for inclusion
const (
	Timeout = 60 * time.Minute
)

// Expire - drop pending transactions older than the timeout
//
// returns the number removed
func (pool *Pool) Expire(timeout time.Duration) int {
	pool.Lock()
	defer pool.Unlock()

	kept := pool.items[:0]
	removed := 0
	for _, item := range pool.items {
		if time.Since(item.timestamp) > timeout {
			pool.log.Infof("expired: %v", item.hash)
			removed += 1
			continue
		}
		kept = append(kept, item)
	}
	pool.items = kept
	return removed
}

// Run - expiry loop as a background process
func (pool *Pool) Run(args interface{}, shutdown <-chan struct{}) {
	log := pool.log

	log.Info("starting…")

loop:
	for {
		log.Debug("waiting…")
		select {
		case <-shutdown:
			break loop

		case <-time.After(Timeout / 4):
			pool.Expire(Timeout)
		}
	}
	log.Info("stopped")
}
