// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package validator

import (
	"github.com/bitmark-inc/creditd/creditsystem"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/minedcredit"
	"github.com/bitmark-inc/creditd/transaction"
)

type rule struct {
	name  string
	check func(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error
}

// order matters: cheap field comparisons first, then the rules that
// read enclosed data or walk back through the store
var rules = []rule{
	{"batch number", checkBatchNumber},
	{"network id", checkNetworkID},
	{"amount", checkAmount},
	{"previous total work", checkPreviousTotalWork},
	{"difficulty", checkDifficulty},
	{"diurnal difficulty", checkDiurnalDifficulty},
	{"batch offset", checkBatchOffset},
	{"timestamp not in future", checkTimestampNotInFuture},
	{"previous diurn root", checkPreviousDiurnRoot},
	{"previous calend hash", checkPreviousCalendHash},
	{"timestamp after predecessor", checkTimestampAfterPredecessor},
	{"batch root", checkBatchRoot},
	{"batch size", checkBatchSize},
	{"diurnal block root", checkDiurnalBlockRoot},
	{"double spend", checkNoDoubleSpend},
	{"spent chain hash", checkSpentChainHash},
	{"message list hash", checkMessageListHash},
	{"hash list contains predecessor", checkHashListContainsPredecessor},
}

func checkBatchNumber(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	n := msg.State().BatchNumber
	if 0 == n {
		return fault.ErrBatchNumberZero
	}
	if n != predecessor.State().BatchNumber+1 {
		return fault.ErrInvalidBatchNumber
	}
	return nil
}

func checkNetworkID(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	if v.networkID != msg.State().NetworkID {
		return fault.ErrInvalidNetworkID
	}
	return nil
}

func checkAmount(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	if minedcredit.OneCredit != msg.MinedCredit.Amount {
		return fault.ErrInvalidAmount
	}
	return nil
}

func checkPreviousTotalWork(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	if msg.State().PreviousTotalWork != predecessor.State().ReportedWork() {
		return fault.ErrInvalidPreviousTotalWork
	}
	return nil
}

// needs the predecessor's predecessor for the interval
func checkDifficulty(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	state := predecessor.State()
	if state.BatchNumber > 1 && !v.cs.HasMessage(state.PreviousMessageHash) {
		return fault.ErrMissingPredecessor
	}
	if msg.State().Difficulty != v.cs.NextDifficulty(predecessor) {
		return fault.ErrInvalidDifficulty
	}
	return nil
}

func checkDiurnalDifficulty(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	expected, err := v.cs.NextDiurnalDifficulty(predecessor)
	if nil != err {
		return err
	}
	if msg.State().DiurnalDifficulty != expected {
		return fault.ErrInvalidDiurnalDifficulty
	}
	return nil
}

func checkBatchOffset(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	state := predecessor.State()
	if msg.State().BatchOffset != state.BatchOffset+uint64(state.BatchSize) {
		return fault.ErrInvalidBatchOffset
	}
	return nil
}

func checkTimestampNotInFuture(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	if msg.State().Timestamp > v.now()+v.leeway {
		return fault.ErrTimestampInFuture
	}
	return nil
}

func checkPreviousDiurnRoot(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	if msg.State().PreviousDiurnRoot != v.cs.NextPreviousDiurnRoot(predecessor) {
		return fault.ErrInvalidPreviousDiurnRoot
	}
	return nil
}

func checkPreviousCalendHash(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	if msg.State().PreviousCalendHash != v.cs.NextPreviousCalendHash(predecessor) {
		return fault.ErrInvalidPreviousCalendHash
	}
	return nil
}

func checkTimestampAfterPredecessor(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	if msg.State().Timestamp <= predecessor.State().Timestamp {
		return fault.ErrTimestampBeforePredecessor
	}
	return nil
}

func checkBatchRoot(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	batch, err := v.cs.ReconstructBatch(msg)
	if nil != err {
		return err
	}
	if msg.State().BatchRoot != batch.Root() {
		return fault.ErrInvalidBatchRoot
	}
	return nil
}

func checkBatchSize(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	batch, err := v.cs.ReconstructBatch(msg)
	if nil != err {
		return err
	}
	if msg.State().BatchSize != batch.Size() {
		return fault.ErrInvalidBatchSize
	}
	return nil
}

// needs every message back to the preceding calend
func checkDiurnalBlockRoot(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	expected, err := v.cs.NextDiurnalBlockRoot(predecessor)
	if nil != err {
		return err
	}
	if msg.State().DiurnalBlockRoot != expected {
		return fault.ErrInvalidDiurnalBlockRoot
	}
	return nil
}

// inputs must be unspent before this batch and spent at most once within it
func checkNoDoubleSpend(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	hashes, err := v.cs.EnclosedHashes(msg)
	if nil != err {
		return err
	}
	chain := v.cs.SpentChain(msg.PreviousHash())
	spent := creditsystem.PositionSet{}
	for _, h := range hashes {
		if transaction.Type != v.cs.MessageType(h) {
			continue
		}
		tx := v.cs.Transaction(h)
		if nil == tx {
			return fault.ErrMissingEnclosedData
		}
		for _, position := range tx.InputPositions() {
			if chain.Get(position) || spent.Contains(position) {
				return fault.ErrDoubleSpend
			}
			spent.Add(position)
		}
	}
	return nil
}

func checkSpentChainHash(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	chain, err := v.cs.ConstructSpentChain(msg)
	if nil != err {
		return err
	}
	if msg.State().SpentChainHash != chain.Hash() {
		return fault.ErrInvalidSpentChainHash
	}
	return nil
}

func checkMessageListHash(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	if nil == msg.HashList || msg.State().MessageListHash != msg.HashList.Hash() {
		return fault.ErrInvalidMessageListHash
	}
	return nil
}

// the first batch has nothing to enclose
func checkHashListContainsPredecessor(v *Validator, msg *minedcredit.Message, predecessor *minedcredit.Message) error {
	previousHash := msg.PreviousHash()
	if previousHash.IsZero() {
		return nil
	}
	hashes, err := v.cs.EnclosedHashes(msg)
	if nil != err {
		return err
	}
	for _, h := range hashes {
		if h == previousHash {
			return nil
		}
	}
	return fault.ErrHashListMissingPredecessor
}
