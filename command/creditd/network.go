// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/tipcontroller"
	"github.com/bitmark-inc/logger"
)

// standalone node without peers: signals are only logged
type standalone struct {
	log *logger.L
}

func newStandalone() *standalone {
	return &standalone{
		log: logger.New("network"),
	}
}

func (s *standalone) FetchMessage(hash digest.Digest) {
	s.log.Infof("no peers to fetch message: %v", hash)
}

func (s *standalone) FetchEnclosedData(hash digest.Digest, shortHashes []uint32) {
	s.log.Infof("no peers to fetch enclosed data for: %v  short hashes: %x", hash, shortHashes)
}

func (s *standalone) BroadcastBadBatch(bad *tipcontroller.BadBatchMessage) {
	s.log.Warnf("no peers to tell of bad batch: %v", bad.MessageHash)
}
