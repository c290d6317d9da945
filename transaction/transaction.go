// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transaction - the part of a transfer the ledger core needs
//
// signatures and scripts belong to the wallet layer, the core only
// replays which positions a transaction consumes and how many credits
// it creates
package transaction

import (
	"github.com/bitmark-inc/creditd/credit"
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/util"
)

// Type - name used by the enclosed data store
const Type = "tx"

// Transaction - spends positions, creates credits
type Transaction struct {
	Inputs  []uint64        `json:"inputs"`
	Outputs []credit.Credit `json:"outputs"`
}

// InputPositions - global positions consumed
func (tx *Transaction) InputPositions() []uint64 {
	return tx.Inputs
}

// OutputCount - number of credits created
func (tx *Transaction) OutputCount() int {
	return len(tx.Outputs)
}

// Pack - input count, inputs, output count, outputs
func (tx *Transaction) Pack() util.Packed {
	p := util.Packed{}.AppendVarint(uint64(len(tx.Inputs)))
	for _, position := range tx.Inputs {
		p = p.AppendVarint(position)
	}
	p = p.AppendVarint(uint64(len(tx.Outputs)))
	for _, c := range tx.Outputs {
		p = p.AppendFixed(c.Pack())
	}
	return p
}

// Hash - identity of the transaction
func (tx *Transaction) Hash() digest.Digest {
	return digest.NewDigest(tx.Pack())
}

// Unpack - decode a packed transaction
func Unpack(record []byte) (*Transaction, error) {
	u := util.NewUnpacker(record)

	tx := &Transaction{}
	n := u.Varint()
	for i := uint64(0); i < n && nil == u.Err(); i += 1 {
		tx.Inputs = append(tx.Inputs, u.Varint())
	}
	n = u.Varint()
	for i := uint64(0); i < n && nil == u.Err(); i += 1 {
		tx.Outputs = append(tx.Outputs, credit.UnpackFrom(u))
	}
	if err := u.Done(); nil != err {
		return nil, err
	}
	return tx, nil
}
