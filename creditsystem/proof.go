// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package creditsystem

import (
	cache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/minedcredit"
)

// IsCalend - memoized calend test
func (cs *CreditSystem) IsCalend(msg *minedcredit.Message) bool {
	k := cacheKey(msg.Hash())
	if status, found := cs.calendStatus.Get(k); found {
		return Calend == status.(CalendStatus)
	}
	status := NotCalend
	if msg.IsCalend() {
		status = Calend
	}
	cs.calendStatus.Set(k, status, cache.NoExpiration)
	return Calend == status
}

// IsCalendHash - calend test for a stored message
func (cs *CreditSystem) IsCalendHash(hash digest.Digest) bool {
	if status, found := cs.calendStatus.Get(cacheKey(hash)); found {
		return Calend == status.(CalendStatus)
	}
	msg := cs.Message(hash)
	if nil == msg {
		return false
	}
	return cs.IsCalend(msg)
}

// CalendStatusOf - memoized state, CalendUnknown if never tested
func (cs *CreditSystem) CalendStatusOf(hash digest.Digest) CalendStatus {
	if status, found := cs.calendStatus.Get(cacheKey(hash)); found {
		return status.(CalendStatus)
	}
	return CalendUnknown
}

// QuickCheckProofOfWorkInMinedCreditMessage - proof is bound to the credit and clears the difficulty
func (cs *CreditSystem) QuickCheckProofOfWorkInMinedCreditMessage(msg *minedcredit.Message) bool {
	return cs.memoized(cs.proofStatus, msg.Hash(), func() bool {
		if nil == msg.ProofOfWork {
			return false
		}
		if !msg.ProofOfWork.QuickCheck(msg.MinedCredit.Hash()) {
			return false
		}
		return msg.DifficultyAchieved() >= msg.State().Difficulty
	})
}

// QuickCheckProofOfWorkInCalend - quick check plus the diurnal difficulty
func (cs *CreditSystem) QuickCheckProofOfWorkInCalend(msg *minedcredit.Message) bool {
	return cs.memoized(cs.calendProofStatus, msg.Hash(), func() bool {
		if !cs.QuickCheckProofOfWorkInMinedCreditMessage(msg) {
			return false
		}
		return msg.DifficultyAchieved() >= msg.State().DiurnalDifficulty
	})
}

// ProofStatusOf - memoized quick check result
func (cs *CreditSystem) ProofStatusOf(hash digest.Digest) ProofStatus {
	if status, found := cs.proofStatus.Get(cacheKey(hash)); found {
		return status.(ProofStatus)
	}
	return ProofUnchecked
}

func (cs *CreditSystem) memoized(c *cache.Cache, hash digest.Digest, check func() bool) bool {
	k := cacheKey(hash)
	if status, found := c.Get(k); found {
		return ProofValid == status.(ProofStatus)
	}
	status := ProofInvalid
	if check() {
		status = ProofValid
	}
	c.Set(k, status, cache.NoExpiration)
	return ProofValid == status
}
