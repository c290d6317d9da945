// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"time"

	"github.com/bitmark-inc/creditd/creditsystem"
	"github.com/bitmark-inc/creditd/minedcredit"
	"github.com/bitmark-inc/creditd/pending"
	"github.com/bitmark-inc/creditd/tipcontroller"
	"github.com/bitmark-inc/logger"
)

// pause between rounds that did not produce a batch
const minerRetryDelay = 5 * time.Second

type miner struct {
	log        *logger.L
	cs         *creditsystem.CreditSystem
	builder    *pending.Builder
	controller *tipcontroller.Controller
	keyData    []byte
	limit      int
	attempts   int
	mined      int
}

func newMiner(cs *creditsystem.CreditSystem, builder *pending.Builder, controller *tipcontroller.Controller, options MiningType) *miner {
	return &miner{
		log:        logger.New("miner"),
		cs:         cs,
		builder:    builder,
		controller: controller,
		keyData:    []byte(options.KeyData),
		limit:      options.Batches,
		attempts:   options.Attempts,
	}
}

// Run - mine on the current tip until shutdown or the batch limit
func (m *miner) Run(args interface{}, shutdown <-chan struct{}) {
	log := m.log

	log.Info("starting…")

	delay := time.Duration(0)
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-time.After(delay):
		}

		if 0 != m.limit && m.mined >= m.limit {
			log.Infof("mined: %d  limit reached", m.mined)
			<-shutdown
			break loop
		}

		if m.mineOne() {
			delay = 0
		} else {
			delay = minerRetryDelay
		}
	}
	log.Info("stopped")
}

// one batch on the current tip, true if it reached the main chain
func (m *miner) mineOne() bool {
	var tip *minedcredit.Message
	if tipHash := m.controller.Tip(); !tipHash.IsZero() {
		tip = m.cs.Message(tipHash)
	}

	msg, err := m.builder.GenerateMinedCreditMessageWithoutProofOfWork(tip, m.keyData)
	if nil != err {
		m.log.Errorf("generate batch error: %s", err)
		return false
	}
	if err := m.builder.Mine(msg, 0, m.attempts, nil); nil != err {
		m.log.Debugf("batch: %d  mine error: %s", msg.State().BatchNumber, err)
		return false
	}

	state, err := m.controller.HandleMinedCreditMessage(msg)
	if nil != err {
		m.log.Warnf("batch: %v  state: %s  error: %s", msg.Hash(), state, err)
		return false
	}
	m.mined += 1
	m.log.Infof("mined batch: %d  hash: %v  state: %s", msg.State().BatchNumber, msg.Hash(), state)
	return tipcontroller.OnTip == state
}
