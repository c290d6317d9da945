// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pending

import (
	"github.com/bitmark-inc/creditd/creditsystem"
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/minedcredit"
	"github.com/bitmark-inc/creditd/proof"
	"github.com/bitmark-inc/creditd/shorthash"
	"github.com/bitmark-inc/logger"
)

// Builder - assembles the next batch on top of a tip
type Builder struct {
	log        *logger.L
	cs         *creditsystem.CreditSystem
	pool       *Pool
	engine     proof.Engine
	parameters proof.Parameters
	networkID  uint64
}

// NewBuilder - a builder drawing transactions from a pool
func NewBuilder(cs *creditsystem.CreditSystem, pool *Pool, engine proof.Engine, parameters proof.Parameters, networkID uint64) *Builder {
	return &Builder{
		log:        logger.New("builder"),
		cs:         cs,
		pool:       pool,
		engine:     engine,
		parameters: parameters,
		networkID:  networkID,
	}
}

// Pool - the pending pool in use
func (b *Builder) Pool() *Pool {
	return b.pool
}

// GenerateMinedCreditMessageWithoutProofOfWork - the successor of tip with every field but the proof
//
// a nil tip builds the first batch of the network; the predecessor's
// hash is enclosed first, followed by pending transactions whose
// inputs are still unspent
func (b *Builder) GenerateMinedCreditMessageWithoutProofOfWork(tip *minedcredit.Message, keyData []byte) (*minedcredit.Message, error) {
	if nil == tip {
		tip = creditsystem.GenesisPredecessor(b.networkID)
	}
	state, err := b.cs.SucceedingNetworkState(tip)
	if nil != err {
		return nil, err
	}

	hashes := []digest.Digest{}
	if state.BatchNumber > 1 {
		hashes = append(hashes, state.PreviousMessageHash)
	} else {
		state.NetworkID = b.networkID
	}

	spentChain := b.cs.SpentChain(state.PreviousMessageHash)
	spent := creditsystem.PositionSet{}
transactions:
	for _, hash := range b.pool.Transactions() {
		tx := b.cs.Transaction(hash)
		if nil == tx {
			continue transactions
		}
		for _, position := range tx.InputPositions() {
			if spent.Contains(position) || spentChain.Get(position) {
				continue transactions
			}
		}
		for _, position := range tx.InputPositions() {
			spent.Add(position)
		}
		hashes = append(hashes, hash)
	}

	msg := &minedcredit.Message{
		MinedCredit: minedcredit.MinedCredit{
			Amount:       minedcredit.OneCredit,
			KeyData:      append([]byte{}, keyData...),
			NetworkState: *state,
		},
		HashList: shorthash.New(hashes),
	}
	if err := b.cs.SetBatchRootAndSizeAndMessageListHashAndSpentChainHash(msg); nil != err {
		return nil, err
	}
	b.log.Debugf("built batch: %d  enclosed: %d", state.BatchNumber, len(hashes))
	return msg, nil
}

// Mine - attach a proof accepted by the predicate
//
// a nil predicate accepts any proof clearing the batch difficulty
func (b *Builder) Mine(msg *minedcredit.Message, target uint64, attempts int, accept func(achieved uint64) bool) error {
	difficulty := msg.State().Difficulty
	if nil == accept {
		accept = func(achieved uint64) bool {
			return achieved >= difficulty
		}
	}
	if 0 == target {
		target = difficulty
	}
	ns, err := proof.Mine(b.engine, b.parameters, msg.MinedCredit.Hash(), target, attempts, accept)
	if nil != err {
		return err
	}
	msg.ProofOfWork = ns
	return nil
}
