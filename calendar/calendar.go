// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package calendar

import (
	"github.com/bitmark-inc/creditd/credit"
	"github.com/bitmark-inc/creditd/creditsystem"
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/hashtree"
	"github.com/bitmark-inc/creditd/minedcredit"
	"github.com/bitmark-inc/creditd/proof"
	"github.com/bitmark-inc/logger"
)

// Calendar - compact summary of a chain ending at a tip
//
// every calend back to genesis, the diurn in progress and, for each
// calend, the messages whose work tops the calendar up to the credit
// work reported by the tip
type Calendar struct {
	Calends      []*minedcredit.Message   `json:"calends"`
	CurrentDiurn *Diurn                   `json:"currentDiurn"`
	ExtraWork    [][]*minedcredit.Message `json:"extraWork"`

	log *logger.L
	cs  *creditsystem.CreditSystem
}

// New - calendar of the chain ending at tipHash
//
// a zero hash gives an empty calendar; any message missing from the
// store gives a missing data error
func New(cs *creditsystem.CreditSystem, tipHash digest.Digest) (*Calendar, error) {
	c := &Calendar{
		Calends:      []*minedcredit.Message{},
		CurrentDiurn: NewDiurn(digest.Zero),
		ExtraWork:    [][]*minedcredit.Message{},
		log:          logger.New("calendar"),
		cs:           cs,
	}
	if tipHash.IsZero() {
		return c, nil
	}

	tip := cs.Message(tipHash)
	if nil == tip {
		return nil, fault.ErrMissingMessage
	}
	if err := c.PopulateCalends(tip); nil != err {
		return nil, err
	}
	if err := c.PopulateCurrentDiurn(tip); nil != err {
		return nil, err
	}
	if err := c.PopulateTopUpWork(); nil != err {
		return nil, err
	}
	return c, nil
}

// PopulateCalends - the tip if it is a calend, then each preceding calend, oldest first
func (c *Calendar) PopulateCalends(tip *minedcredit.Message) error {
	calends := []*minedcredit.Message{}

	hash := tip.State().PreviousCalendHash
	if c.cs.IsCalend(tip) {
		calends = append(calends, tip)
	}
	for !hash.IsZero() {
		calend := c.cs.Message(hash)
		if nil == calend {
			return fault.ErrMissingCalend
		}
		calends = append(calends, calend)
		hash = calend.State().PreviousCalendHash
	}

	reverse(calends)
	c.Calends = calends
	return nil
}

// PopulateCurrentDiurn - the messages after the last calend up to the tip
func (c *Calendar) PopulateCurrentDiurn(tip *minedcredit.Message) error {
	if c.cs.IsCalend(tip) {
		c.CurrentDiurn = NewDiurn(tip.DiurnRoot())
		return nil
	}

	messages := []*minedcredit.Message{}
	for current := tip; ; {
		messages = append(messages, current)
		previousHash := current.PreviousHash()
		if previousHash.IsZero() {
			if 1 != current.State().BatchNumber {
				return fault.ErrCalendarNotConsistent
			}
			break
		}
		previous := c.cs.Message(previousHash)
		if nil == previous {
			return fault.ErrMissingPrecedingCalend
		}
		if c.cs.IsCalend(previous) {
			break
		}
		current = previous
	}

	reverse(messages)
	diurn := NewDiurn(tip.State().PreviousDiurnRoot)
	for _, msg := range messages {
		diurn.Add(msg)
	}
	c.CurrentDiurn = diurn
	return nil
}

// PopulateTopUpWork - messages behind each calend that make up the
// difference between calendar work and reported credit work
//
// walks back from each calend, newest calend first, adding batch
// difficulties to the calendar work.  A walk ends once the calendar
// work reaches the credit work reported by the tip, or once what is
// left of the calend's total credit work after subtracting the
// difficulties taken is no more than its diurnal difficulty.  That
// total is the cumulative credit work up to the calend, not the work
// of its diurn alone
func (c *Calendar) PopulateTopUpWork() error {
	c.ExtraWork = [][]*minedcredit.Message{}

	last := c.LastMessage()
	if nil == last {
		return nil
	}
	totalCreditWork := last.TotalCreditWork()
	totalCalendarWork := c.CalendWork() + c.CurrentDiurn.Work()

	for i := len(c.Calends) - 1; i >= 0; i -= 1 {
		calend := c.Calends[i]
		// credit work up to this calend not yet covered by the walk
		remaining := calend.TotalCreditWork()
		diurnal := calend.State().DiurnalDifficulty

		list := []*minedcredit.Message{}
		for current := calend; remaining > diurnal && totalCreditWork > totalCalendarWork; {
			work := current.State().Difficulty
			list = append(list, current)
			totalCalendarWork += work
			if work >= remaining {
				remaining = 0
			} else {
				remaining -= work
			}

			previousHash := current.PreviousHash()
			if previousHash.IsZero() {
				break
			}
			current = c.cs.Message(previousHash)
			if nil == current {
				return fault.ErrMissingMessage
			}
		}
		reverse(list)
		c.ExtraWork = append(c.ExtraWork, list)
	}

	for i, j := 0, len(c.ExtraWork)-1; i < j; i, j = i+1, j-1 {
		c.ExtraWork[i], c.ExtraWork[j] = c.ExtraWork[j], c.ExtraWork[i]
	}
	return nil
}

// CalendWork - sum of the diurnal difficulties of the calends
func (c *Calendar) CalendWork() uint64 {
	total := uint64(0)
	for _, calend := range c.Calends {
		total += calend.State().DiurnalDifficulty
	}
	return total
}

// TopUpWork - sum of the difficulties of the extra work
func (c *Calendar) TopUpWork() uint64 {
	total := uint64(0)
	for _, list := range c.ExtraWork {
		for _, msg := range list {
			total += msg.State().Difficulty
		}
	}
	return total
}

// TotalWork - work this calendar demonstrates
func (c *Calendar) TotalWork() uint64 {
	return c.CalendWork() + c.TopUpWork() + c.CurrentDiurn.Work()
}

// LastMessage - the tip: last of the current diurn, else the last calend
func (c *Calendar) LastMessage() *minedcredit.Message {
	if msg := c.CurrentDiurn.Last(); nil != msg {
		return msg
	}
	if 0 == len(c.Calends) {
		return nil
	}
	return c.Calends[len(c.Calends)-1]
}

// LastMessageHash - hash of the tip, zero for an empty calendar
func (c *Calendar) LastMessageHash() digest.Digest {
	msg := c.LastMessage()
	if nil == msg {
		return digest.Zero
	}
	return msg.Hash()
}

// lastCalendHash - zero before the first calend
func (c *Calendar) lastCalendHash() digest.Digest {
	if 0 == len(c.Calends) {
		return digest.Zero
	}
	return c.Calends[len(c.Calends)-1].Hash()
}

// ContainsDiurn - true if the root closes one of the calendar's diurns
// or is the root of the current one
func (c *Calendar) ContainsDiurn(diurnRoot digest.Digest) bool {
	for _, calend := range c.Calends {
		if calend.DiurnRoot() == diurnRoot {
			return true
		}
	}
	return c.CurrentDiurn.Root() == diurnRoot
}

// AddToTip - extend the calendar by one message
//
// the message must follow the current tip; a calend closes the
// current diurn and starts an empty one
func (c *Calendar) AddToTip(msg *minedcredit.Message) error {
	if msg.PreviousHash() != c.LastMessageHash() {
		return fault.ErrNotExtendingTip
	}

	if c.cs.IsCalend(msg) {
		c.Calends = append(c.Calends, msg)
		c.CurrentDiurn = NewDiurn(msg.DiurnRoot())
		c.log.Infof("calend: %v  batch: %d  closed diurn: %v", msg.Hash(), msg.State().BatchNumber, msg.DiurnRoot())
	} else {
		c.CurrentDiurn.Add(msg)
	}
	return c.PopulateTopUpWork()
}

// RemoveLast - revert the calendar to the predecessor of its tip
func (c *Calendar) RemoveLast() error {
	last := c.LastMessage()
	if nil == last {
		return nil
	}
	previous, err := New(c.cs, last.PreviousHash())
	if nil != err {
		return err
	}
	c.Calends = previous.Calends
	c.CurrentDiurn = previous.CurrentDiurn
	c.ExtraWork = previous.ExtraWork
	return nil
}

// Copy - a calendar that later changes to this one do not reach
//
// messages are shared since they never change once created
func (c *Calendar) Copy() *Calendar {
	extra := make([][]*minedcredit.Message, len(c.ExtraWork))
	for i, list := range c.ExtraWork {
		extra[i] = append([]*minedcredit.Message{}, list...)
	}
	return &Calendar{
		Calends:      append([]*minedcredit.Message{}, c.Calends...),
		CurrentDiurn: c.CurrentDiurn.Copy(),
		ExtraWork:    extra,
		log:          c.log,
		cs:           c.cs,
	}
}

// Equal - same calends, current diurn and extra work
func (c *Calendar) Equal(other *Calendar) bool {
	if !equalMessages(c.Calends, other.Calends) {
		return false
	}
	if !c.CurrentDiurn.Equal(other.CurrentDiurn) {
		return false
	}
	if len(c.ExtraWork) != len(other.ExtraWork) {
		return false
	}
	for i, list := range c.ExtraWork {
		if !equalMessages(list, other.ExtraWork[i]) {
			return false
		}
	}
	return true
}

// SpotCheckWork - first calend whose proof fails a spot check
//
// returns nil when every calend passes; the disproof is nil when the
// proof is malformed rather than wrong
func (c *Calendar) SpotCheckWork() (*minedcredit.Message, *proof.Disproof) {
	for _, calend := range c.Calends {
		if nil == calend.ProofOfWork {
			return calend, nil
		}
		if ok, disproof := calend.ProofOfWork.SpotCheck(); !ok {
			c.log.Warnf("calend: %v  failed spot check", calend.Hash())
			return calend, disproof
		}
	}
	return nil, nil
}

// ValidateCreditInBatch - the credit belongs to a batch this calendar covers
//
// without a diurn branch the batch must be in the current diurn or be
// a calend; with one the combined branch must reach a diurn root the
// calendar contains
func (c *Calendar) ValidateCreditInBatch(in credit.InBatch, diurnBranch []digest.Digest) error {
	if !in.Verify() {
		return fault.ErrCreditNotInBatch
	}

	if 0 == len(diurnBranch) {
		batchRoot := in.Root()
		for _, msg := range c.CurrentDiurn.Credits {
			if msg.State().BatchRoot == batchRoot {
				return nil
			}
		}
		for _, calend := range c.Calends {
			if calend.State().BatchRoot == batchRoot {
				return nil
			}
		}
		return fault.ErrCreditNotInBatch
	}

	long := make([]digest.Digest, 0, len(in.Branch)-1+len(diurnBranch))
	long = append(long, in.Branch[:len(in.Branch)-1]...)
	long = append(long, diurnBranch...)
	if !hashtree.VerifyBranch(long) {
		return fault.ErrCreditNotInBatch
	}
	if !c.ContainsDiurn(long[len(long)-1]) {
		return fault.ErrCreditNotInBatch
	}
	return nil
}

func equalMessages(a []*minedcredit.Message, b []*minedcredit.Message) bool {
	if len(a) != len(b) {
		return false
	}
	for i, msg := range a {
		if !msg.Equal(b[i]) {
			return false
		}
	}
	return true
}

func reverse(messages []*minedcredit.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
