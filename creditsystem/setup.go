// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package creditsystem

import (
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/creditd/difficulty"
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/storage"
	"github.com/bitmark-inc/logger"
)

// DefaultSnapshotInterval - main chain batches between persisted spent chains
const DefaultSnapshotInterval = 100

// ProofStatus - memoized quick check result
type ProofStatus int

// proof states
const (
	ProofUnchecked ProofStatus = iota
	ProofValid
	ProofInvalid
)

// CalendStatus - memoized calend test
type CalendStatus int

// calend states
const (
	CalendUnknown CalendStatus = iota
	Calend
	NotCalend
)

// CreditSystem - the ledger store over an explicit database handle
type CreditSystem struct {
	log        *logger.L
	store      *storage.Handle
	parameters difficulty.Parameters

	snapshotInterval uint32
	now              func() uint64

	proofStatus       *cache.Cache
	calendProofStatus *cache.Cache
	calendStatus      *cache.Cache
}

// New - a ledger store using an open database
func New(store *storage.Handle, parameters difficulty.Parameters) *CreditSystem {
	return &CreditSystem{
		log:               logger.New("creditsystem"),
		store:             store,
		parameters:        parameters,
		snapshotInterval:  DefaultSnapshotInterval,
		now:               Now,
		proofStatus:       cache.New(cache.NoExpiration, 0),
		calendProofStatus: cache.New(cache.NoExpiration, 0),
		calendStatus:      cache.New(cache.NoExpiration, 0),
	}
}

// Now - current time in microseconds
func Now() uint64 {
	return uint64(time.Now().UnixNano() / 1000)
}

// SetClock - replace the microsecond clock used for new network states
func (cs *CreditSystem) SetClock(now func() uint64) {
	cs.now = now
}

// Clock - the microsecond clock in use
func (cs *CreditSystem) Clock() func() uint64 {
	return cs.now
}

// SetSnapshotInterval - zero disables spent chain snapshots
func (cs *CreditSystem) SetSnapshotInterval(interval uint32) {
	cs.snapshotInterval = interval
}

// Parameters - the retarget settings
func (cs *CreditSystem) Parameters() difficulty.Parameters {
	return cs.parameters
}

// Store - the underlying database handle
func (cs *CreditSystem) Store() *storage.Handle {
	return cs.store
}

// run a group of writes as one batch, joining an open batch if any
func (cs *CreditSystem) update(f func()) {
	if cs.store.InTransaction() {
		f()
		return
	}
	err := cs.store.Begin()
	fault.PanicIfError("creditsystem: begin", err)
	f()
	err = cs.store.Commit()
	fault.PanicIfError("creditsystem: commit", err)
}

// cache key for a hash
func cacheKey(hash digest.Digest) string {
	return string(hash[:])
}
