// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package validator

import (
	"github.com/bitmark-inc/creditd/creditsystem"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/minedcredit"
	"github.com/bitmark-inc/logger"
)

// DefaultLeeway - microseconds a timestamp may run ahead of the local clock
const DefaultLeeway = 2 * 1000000

// Outcome - verdict on a message
type Outcome int

// possible outcomes
const (
	Valid Outcome = iota
	Invalid
	Deferred
)

// String - name of an outcome
func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	case Deferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// Result - outcome with the rule that decided it
type Result struct {
	Outcome Outcome
	Rule    string
	Reason  error
}

// IsValid - every rule passed
func (r Result) IsValid() bool {
	return Valid == r.Outcome
}

// IsDeferred - some rule needs data that is not yet stored
func (r Result) IsDeferred() bool {
	return Deferred == r.Outcome
}

// Validator - checks a message against the store without changing it
type Validator struct {
	log       *logger.L
	cs        *creditsystem.CreditSystem
	networkID uint64
	leeway    uint64
	now       func() uint64
}

// New - validator for one network
func New(cs *creditsystem.CreditSystem, networkID uint64) *Validator {
	return &Validator{
		log:       logger.New("validator"),
		cs:        cs,
		networkID: networkID,
		leeway:    DefaultLeeway,
		now:       creditsystem.Now,
	}
}

// SetClock - replace the microsecond clock used for the future check
func (v *Validator) SetClock(now func() uint64) {
	v.now = now
}

// Validate - apply each rule in order, stopping at the first that does not pass
//
// a missing data error from a rule defers the message, any other
// error rejects it
func (v *Validator) Validate(msg *minedcredit.Message) Result {
	predecessor, err := v.predecessor(msg)
	if nil != err {
		return v.result("predecessor", err)
	}

	for _, r := range rules {
		if err := r.check(v, msg, predecessor); nil != err {
			return v.result(r.name, err)
		}
	}
	return Result{
		Outcome: Valid,
	}
}

// stored predecessor, or the empty genesis predecessor for a first batch
func (v *Validator) predecessor(msg *minedcredit.Message) (*minedcredit.Message, error) {
	previousHash := msg.PreviousHash()
	if previousHash.IsZero() {
		return creditsystem.GenesisPredecessor(v.networkID), nil
	}
	if creditsystem.Rejected == v.cs.HandlingStatus(previousHash) {
		return nil, fault.ErrPredecessorFailed
	}
	predecessor := v.cs.Message(previousHash)
	if nil == predecessor {
		return nil, fault.ErrMissingPredecessor
	}
	return predecessor, nil
}

func (v *Validator) result(rule string, err error) Result {
	outcome := Invalid
	if fault.IsErrMissingData(err) {
		outcome = Deferred
	}
	v.log.Debugf("rule: %s  outcome: %s  reason: %s", rule, outcome, err)
	return Result{
		Outcome: outcome,
		Rule:    rule,
		Reason:  err,
	}
}
