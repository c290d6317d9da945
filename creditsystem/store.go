// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package creditsystem

import (
	"encoding/binary"

	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/minedcredit"
	"github.com/bitmark-inc/creditd/proof"
	"github.com/bitmark-inc/creditd/shorthash"
	"github.com/bitmark-inc/creditd/transaction"
)

// HandlingStatus - progress of a message through the handler
type HandlingStatus byte

// handling states
const (
	Unseen HandlingStatus = iota
	Queued
	Accepted
	Rejected
)

func (status HandlingStatus) String() string {
	switch status {
	case Unseen:
		return "unseen"
	case Queued:
		return "queued"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// StoreMinedCreditMessage - persist a message by its hash
//
// storing the same message again leaves the store unchanged
func (cs *CreditSystem) StoreMinedCreditMessage(msg *minedcredit.Message) digest.Digest {
	hash := msg.Hash()
	if cs.store.Messages.Has(hash[:]) {
		cs.storeFullHashes(hash, msg)
		return hash
	}
	cs.update(func() {
		cs.store.Messages.Put(hash[:], msg.Pack())
		cs.store.MessageTypes.Put(hash[:], []byte(minedcredit.Type))
		cs.storeShortHash(hash)
		cs.storeFullHashes(hash, msg)
	})
	cs.log.Debugf("stored message: %v  batch: %d", hash, msg.State().BatchNumber)
	return hash
}

// StoreTransaction - persist an enclosed transaction by its hash
func (cs *CreditSystem) StoreTransaction(tx *transaction.Transaction) digest.Digest {
	hash := tx.Hash()
	if cs.store.EnclosedData.Has(hash[:]) {
		return hash
	}
	cs.update(func() {
		cs.store.EnclosedData.Put(hash[:], tx.Pack())
		cs.store.MessageTypes.Put(hash[:], []byte(transaction.Type))
		cs.storeShortHash(hash)
	})
	return hash
}

// index key: little endian short hash followed by the full hash
func (cs *CreditSystem) storeShortHash(hash digest.Digest) {
	k := make([]byte, 4, 4+digest.Length)
	binary.LittleEndian.PutUint32(k, shorthash.Short(hash))
	cs.store.ShortHashes.Put(append(k, hash[:]...), []byte{})
}

// keep the full hashes once known so later reads skip recovery
func (cs *CreditSystem) storeFullHashes(hash digest.Digest, msg *minedcredit.Message) {
	if nil == msg.HashList || 0 == msg.HashList.Len() || !msg.HashList.Complete() {
		return
	}
	if cs.store.HashLists.Has(hash[:]) {
		return
	}
	buffer := make([]byte, 0, digest.Length*len(msg.HashList.FullHashes))
	for _, h := range msg.HashList.FullHashes {
		buffer = append(buffer, h[:]...)
	}
	cs.store.HashLists.Put(hash[:], buffer)
}

// Matches - every stored hash with the given short hash
func (cs *CreditSystem) Matches(shortHash uint32) []digest.Digest {
	prefix := make([]byte, 4)
	binary.LittleEndian.PutUint32(prefix, shortHash)

	matches := []digest.Digest{}
	_ = cs.store.ShortHashes.NewPrefixCursor(prefix).Map(func(k []byte, value []byte) error {
		var d digest.Digest
		if nil == digest.FromBytes(&d, k[4:]) {
			matches = append(matches, d)
		}
		return nil
	})
	return matches
}

// HasMessage - true if the message is stored
func (cs *CreditSystem) HasMessage(hash digest.Digest) bool {
	return cs.store.Messages.Has(hash[:])
}

// Message - a stored message, nil if not present
//
// full hashes of its hash list are attached when previously recovered
func (cs *CreditSystem) Message(hash digest.Digest) *minedcredit.Message {
	if hash.IsZero() {
		return nil
	}
	packed := cs.store.Messages.Get(hash[:])
	if nil == packed {
		return nil
	}
	msg, err := minedcredit.Unpack(packed)
	if nil != err {
		cs.log.Errorf("corrupt message: %v  error: %s", hash, err)
		return nil
	}
	full := cs.store.HashLists.Get(hash[:])
	if nil != full && len(full) == digest.Length*msg.HashList.Len() {
		hashes := make([]digest.Digest, msg.HashList.Len())
		for i := range hashes {
			copy(hashes[i][:], full[i*digest.Length:])
		}
		msg.HashList.FullHashes = hashes
	}
	return msg
}

// Transaction - a stored transaction, nil if not present
func (cs *CreditSystem) Transaction(hash digest.Digest) *transaction.Transaction {
	packed := cs.store.EnclosedData.Get(hash[:])
	if nil == packed {
		return nil
	}
	tx, err := transaction.Unpack(packed)
	if nil != err {
		cs.log.Errorf("corrupt transaction: %v  error: %s", hash, err)
		return nil
	}
	return tx
}

// MessageType - "msg", "tx" or empty if unknown
func (cs *CreditSystem) MessageType(hash digest.Digest) string {
	return string(cs.store.MessageTypes.Get(hash[:]))
}

// EnclosedHashes - full hashes of a message's hash list
//
// a short hash matching nothing stored gives a missing data error, a
// list that no stored combination satisfies is returned as unrecoverable
func (cs *CreditSystem) EnclosedHashes(msg *minedcredit.Message) ([]digest.Digest, error) {
	if nil == msg.HashList {
		return []digest.Digest{}, nil
	}
	if msg.HashList.Complete() {
		return msg.HashList.FullHashes, nil
	}
	if err := msg.HashList.Recover(cs); nil != err {
		return nil, err
	}
	return msg.HashList.FullHashes, nil
}

// MissingEnclosedData - short hashes of the list that match nothing stored
func (cs *CreditSystem) MissingEnclosedData(msg *minedcredit.Message) []uint32 {
	missing := []uint32{}
	if nil == msg.HashList {
		return missing
	}
	for _, s := range msg.HashList.ShortHashes {
		if 0 == len(cs.Matches(s)) {
			missing = append(missing, s)
		}
	}
	return missing
}

// PreviousMessageHash - predecessor of a stored message, zero if unknown
func (cs *CreditSystem) PreviousMessageHash(hash digest.Digest) digest.Digest {
	msg := cs.Message(hash)
	if nil == msg {
		return digest.Zero
	}
	return msg.PreviousHash()
}

// PrecedingCalendHash - previous calend recorded in a stored message
func (cs *CreditSystem) PrecedingCalendHash(hash digest.Digest) digest.Digest {
	msg := cs.Message(hash)
	if nil == msg {
		return digest.Zero
	}
	return msg.State().PreviousCalendHash
}

// SetHandlingStatus - record progress of a message
func (cs *CreditSystem) SetHandlingStatus(hash digest.Digest, status HandlingStatus) {
	cs.store.Handled.Put(hash[:], []byte{byte(status)})
}

// HandlingStatus - recorded progress of a message
func (cs *CreditSystem) HandlingStatus(hash digest.Digest) HandlingStatus {
	status := cs.store.Handled.Get(hash[:])
	if 1 != len(status) {
		return Unseen
	}
	return HandlingStatus(status[0])
}

// WasHandled - accepted or rejected
func (cs *CreditSystem) WasHandled(hash digest.Digest) bool {
	status := cs.HandlingStatus(hash)
	return Accepted == status || Rejected == status
}

// RecordSpotCheckFailure - keep the disproof of a failed message
func (cs *CreditSystem) RecordSpotCheckFailure(hash digest.Digest, disproof *proof.Disproof) {
	cs.store.SpotCheckFailures.Put(hash[:], disproof.Pack())
}

// SpotCheckFailure - recorded disproof, nil if none
func (cs *CreditSystem) SpotCheckFailure(hash digest.Digest) *proof.Disproof {
	packed := cs.store.SpotCheckFailures.Get(hash[:])
	if nil == packed {
		return nil
	}
	disproof, err := proof.UnpackDisproof(packed)
	if nil != err {
		return nil
	}
	return disproof
}
