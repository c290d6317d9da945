// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package calendar

import (
	"github.com/bitmark-inc/creditd/difficulty"
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/hashtree"
	"github.com/bitmark-inc/creditd/minedcredit"
)

// CheckRootsAndDifficulties - structural self consistency
//
// batch proofs are left to CheckProofsOfWork but each calend must
// still show the diurnal work it claims
func (c *Calendar) CheckRootsAndDifficulties() bool {
	checks := []struct {
		name  string
		check func() bool
	}{
		{"diurn roots", c.CheckDiurnRoots},
		{"calend hashes", c.CheckCalendHashes},
		{"credit message hashes", c.CheckCreditMessageHashesInCurrentDiurn},
		{"extra work hashes", c.CheckCreditHashesInExtraWork},
		{"difficulties", c.CheckDifficulties},
		{"calend difficulties", c.CheckCalendDifficulties},
		{"diurnal difficulties", c.CheckDiurnalDifficultiesInCurrentDiurn},
		{"calend work", c.CheckProofsOfWorkInCalends},
	}
	for _, item := range checks {
		if !item.check() {
			c.log.Warnf("calendar tip: %v  failed check: %s", c.LastMessageHash(), item.name)
			return false
		}
	}
	return true
}

// CheckProofsOfWork - quick check every proof the calendar carries
func (c *Calendar) CheckProofsOfWork() bool {
	return c.CheckProofsOfWorkInCurrentDiurn() &&
		c.CheckProofsOfWorkInCalends() &&
		c.CheckExtraWork()
}

// CheckDiurnRoots - each calend follows the diurn root of the one before
func (c *Calendar) CheckDiurnRoots() bool {
	previous := digest.Zero
	for _, calend := range c.Calends {
		if calend.State().PreviousDiurnRoot != previous {
			return false
		}
		previous = calend.DiurnRoot()
	}
	if c.CurrentDiurn.PreviousDiurnRoot != previous {
		return false
	}
	for _, msg := range c.CurrentDiurn.Credits {
		if msg.State().PreviousDiurnRoot != previous {
			return false
		}
	}
	return true
}

// CheckCalendHashes - calends chain through their previous calend hashes
func (c *Calendar) CheckCalendHashes() bool {
	previous := digest.Zero
	for _, calend := range c.Calends {
		if calend.State().PreviousCalendHash != previous {
			return false
		}
		previous = calend.Hash()
	}
	for _, msg := range c.CurrentDiurn.Credits {
		if msg.State().PreviousCalendHash != previous {
			return false
		}
	}
	return true
}

// CheckCreditMessageHashesInCurrentDiurn - the current diurn is a
// consecutive run from the last calend, each carrying the block root
// of the entries before it
func (c *Calendar) CheckCreditMessageHashesInCurrentDiurn() bool {
	credits := c.CurrentDiurn.Credits
	if 0 == len(credits) {
		return true
	}

	previous := c.lastCalendHash()
	if previous.IsZero() && 1 != credits[0].State().BatchNumber {
		return false
	}

	creditHashes := make([]digest.Digest, 0, len(credits))
	for _, msg := range credits {
		state := msg.State()
		if state.PreviousMessageHash != previous {
			return false
		}
		if state.DiurnalBlockRoot != hashtree.Root(creditHashes) {
			return false
		}
		creditHashes = append(creditHashes, msg.MinedCredit.Hash())
		previous = msg.Hash()
	}
	return true
}

// CheckCreditHashesInExtraWork - one consecutive run per calend ending at that calend
func (c *Calendar) CheckCreditHashesInExtraWork() bool {
	if len(c.ExtraWork) != len(c.Calends) {
		return false
	}
	for i, list := range c.ExtraWork {
		if 0 == len(list) {
			continue
		}
		if !consecutive(list) {
			return false
		}
		if list[len(list)-1].Hash() != c.Calends[i].Hash() {
			return false
		}
	}
	return true
}

// CheckDifficulties - batch difficulties retarget correctly along every
// consecutive run the calendar holds
func (c *Calendar) CheckDifficulties() bool {
	parameters := c.cs.Parameters()

	credits := c.CurrentDiurn.Credits
	if 0 == len(c.Calends) {
		if 0 != len(credits) && parameters.Initial != credits[0].State().Difficulty {
			return false
		}
		if !CheckDifficultiesOfConsecutiveSequence(parameters, credits) {
			return false
		}
	} else {
		sequence := make([]*minedcredit.Message, 0, len(credits)+1)
		sequence = append(sequence, c.Calends[len(c.Calends)-1])
		sequence = append(sequence, credits...)
		if !CheckDifficultiesOfConsecutiveSequence(parameters, sequence) {
			return false
		}
	}

	for _, list := range c.ExtraWork {
		if !CheckDifficultiesOfConsecutiveSequence(parameters, list) {
			return false
		}
	}
	return true
}

// CheckDifficultiesOfConsecutiveSequence - each difficulty follows from
// the two messages before it
//
// the predecessor of the first message is unknown so the second may be
// either raised or lowered
func CheckDifficultiesOfConsecutiveSequence(parameters difficulty.Parameters, sequence []*minedcredit.Message) bool {
	if len(sequence) < 2 {
		return true
	}

	first := sequence[0].State().Difficulty
	second := sequence[1].State().Difficulty
	if second != difficulty.Raise(first) && second != difficulty.Lower(first) {
		return false
	}

	for i := 2; i < len(sequence); i += 1 {
		previous := sequence[i-1].State()
		preceding := sequence[i-2].State()
		expected := parameters.NextDifficulty(previous.Difficulty, elapsed(previous.Timestamp, preceding.Timestamp))
		if sequence[i].State().Difficulty != expected {
			return false
		}
	}
	return true
}

// CheckCalendDifficulties - the first two calends carry the initial
// diurnal difficulty, later ones retarget over the diurn before
func (c *Calendar) CheckCalendDifficulties() bool {
	parameters := c.cs.Parameters()
	for i, calend := range c.Calends {
		if calend.State().DiurnalDifficulty != expectedDiurnalDifficulty(parameters, c.Calends[:i]) {
			return false
		}
	}
	return true
}

// CheckDiurnalDifficultiesInCurrentDiurn - every message after the last
// calend carries the diurnal difficulty that calend set
func (c *Calendar) CheckDiurnalDifficultiesInCurrentDiurn() bool {
	expected := expectedDiurnalDifficulty(c.cs.Parameters(), c.Calends)
	for _, msg := range c.CurrentDiurn.Credits {
		if msg.State().DiurnalDifficulty != expected {
			return false
		}
	}
	return true
}

// CheckProofsOfWorkInCurrentDiurn - quick check batch proofs after the last calend
func (c *Calendar) CheckProofsOfWorkInCurrentDiurn() bool {
	for _, msg := range c.CurrentDiurn.Credits {
		if !c.cs.QuickCheckProofOfWorkInMinedCreditMessage(msg) {
			return false
		}
	}
	return true
}

// CheckProofsOfWorkInCalends - quick check calend proofs against the diurnal difficulty
func (c *Calendar) CheckProofsOfWorkInCalends() bool {
	for _, calend := range c.Calends {
		if !c.cs.QuickCheckProofOfWorkInCalend(calend) {
			c.log.Warnf("calend: %v  failed quick check", calend.Hash())
			return false
		}
	}
	return true
}

// CheckExtraWork - extra work lists are well formed and their proofs pass
func (c *Calendar) CheckExtraWork() bool {
	if !c.CheckCreditHashesInExtraWork() {
		return false
	}
	for _, list := range c.ExtraWork {
		for _, msg := range list {
			if !c.cs.QuickCheckProofOfWorkInMinedCreditMessage(msg) {
				return false
			}
		}
	}
	return true
}

// diurnal difficulty of a message given every calend before it
func expectedDiurnalDifficulty(parameters difficulty.Parameters, calends []*minedcredit.Message) uint64 {
	n := len(calends)
	if n < 2 {
		return parameters.InitialDiurnal
	}
	previous := calends[n-1].State()
	preceding := calends[n-2].State()
	return parameters.NextDiurnalDifficulty(previous.DiurnalDifficulty, elapsed(previous.Timestamp, preceding.Timestamp))
}

func consecutive(messages []*minedcredit.Message) bool {
	for i := 1; i < len(messages); i += 1 {
		if messages[i].PreviousHash() != messages[i-1].Hash() {
			return false
		}
	}
	return true
}

func elapsed(later uint64, earlier uint64) uint64 {
	if later < earlier {
		return 0
	}
	return later - earlier
}
