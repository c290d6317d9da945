// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package creditsystem

import (
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/storage"
)

// RecordCalendarReportedWork - index a received calendar by the work it claims
func (cs *CreditSystem) RecordCalendarReportedWork(calendarHash digest.Digest, reportedWork uint64) {
	cs.store.ReportedWork.Put(workKey(reportedWork, calendarHash), []byte{})
}

// RecordCalendarScrutinizedWork - index a calendar by the work that survived checking
func (cs *CreditSystem) RecordCalendarScrutinizedWork(calendarHash digest.Digest, scrutinizedWork uint64) {
	cs.store.ScrutinizedWork.Put(workKey(scrutinizedWork, calendarHash), []byte{})
}

// MaximumReportedCalendarWork - largest claimed calendar work
func (cs *CreditSystem) MaximumReportedCalendarWork() (uint64, digest.Digest) {
	return maximumWork(cs.store.ReportedWork)
}

// MaximumScrutinizedCalendarWork - largest checked calendar work
func (cs *CreditSystem) MaximumScrutinizedCalendarWork() (uint64, digest.Digest) {
	return maximumWork(cs.store.ScrutinizedWork)
}

func maximumWork(pool *storage.PoolHandle) (uint64, digest.Digest) {
	last, found := pool.LastElement()
	if !found {
		return 0, digest.Zero
	}
	work, hash, ok := splitWorkKey(last.Key)
	if !ok {
		return 0, digest.Zero
	}
	return work, hash
}
