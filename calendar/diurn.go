// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package calendar

import (
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/hashtree"
	"github.com/bitmark-inc/creditd/minedcredit"
)

// Diurn - the messages mined since the last calend
//
// the block is a hash tree over the mined credit hashes, the root
// binds it to the diurn before
type Diurn struct {
	PreviousDiurnRoot digest.Digest          `json:"previousDiurnRoot"`
	Credits           []*minedcredit.Message `json:"credits"`

	block *hashtree.Tree
}

// NewDiurn - empty diurn following the given root
func NewDiurn(previousDiurnRoot digest.Digest) *Diurn {
	return &Diurn{
		PreviousDiurnRoot: previousDiurnRoot,
		Credits:           []*minedcredit.Message{},
		block:             hashtree.New(nil),
	}
}

// Add - append a message to the diurn
func (d *Diurn) Add(msg *minedcredit.Message) {
	d.tree().Add(msg.MinedCredit.Hash())
	d.Credits = append(d.Credits, msg)
}

// Size - number of messages
func (d *Diurn) Size() int {
	return len(d.Credits)
}

// Last - most recent message, nil if empty
func (d *Diurn) Last() *minedcredit.Message {
	if 0 == len(d.Credits) {
		return nil
	}
	return d.Credits[len(d.Credits)-1]
}

// Contains - true if the mined credit hash is in the block
func (d *Diurn) Contains(creditHash digest.Digest) bool {
	return d.tree().Contains(creditHash)
}

// BlockRoot - root over the mined credit hashes, zero when empty
func (d *Diurn) BlockRoot() digest.Digest {
	return d.tree().Root()
}

// Root - the diurn root a closing calend would carry
func (d *Diurn) Root() digest.Digest {
	return hashtree.SymmetricCombine(d.PreviousDiurnRoot, d.BlockRoot())
}

// Work - sum of the batch difficulties
func (d *Diurn) Work() uint64 {
	total := uint64(0)
	for _, msg := range d.Credits {
		total += msg.State().Difficulty
	}
	return total
}

// Branch - path from a batch root to the diurn root
//
// the result is [branch bridge, block siblings..., previous diurn root, root]
// and evaluates from the batch root of the named mined credit; nil if
// the credit is not in this diurn
func (d *Diurn) Branch(creditHash digest.Digest) []digest.Digest {
	n, ok := d.tree().Position(creditHash)
	if !ok {
		return nil
	}
	block := d.tree().Branch(n)

	branch := make([]digest.Digest, 0, len(block)+2)
	branch = append(branch, d.Credits[n].MinedCredit.BranchBridge())
	branch = append(branch, block[1:len(block)-1]...)
	return append(branch, d.PreviousDiurnRoot, d.Root())
}

// Copy - same messages with a block tree of its own
func (d *Diurn) Copy() *Diurn {
	return &Diurn{
		PreviousDiurnRoot: d.PreviousDiurnRoot,
		Credits:           append([]*minedcredit.Message{}, d.Credits...),
	}
}

// Equal - same predecessor root and same messages in order
func (d *Diurn) Equal(other *Diurn) bool {
	if d.PreviousDiurnRoot != other.PreviousDiurnRoot || len(d.Credits) != len(other.Credits) {
		return false
	}
	for i, msg := range d.Credits {
		if !msg.Equal(other.Credits[i]) {
			return false
		}
	}
	return true
}

// VerifyBranch - a diurn branch evaluated from a batch root leads to its last element
func VerifyBranch(batchRoot digest.Digest, branch []digest.Digest) bool {
	if len(branch) < 3 {
		return false
	}
	return hashtree.EvaluateBranchWithHash(branch, batchRoot, 0) == branch[len(branch)-1]
}

// block tree, rebuilt after unpacking or copying
func (d *Diurn) tree() *hashtree.Tree {
	if nil == d.block || d.block.Len() != len(d.Credits) {
		leaves := make([]digest.Digest, len(d.Credits))
		for i, msg := range d.Credits {
			leaves[i] = msg.MinedCredit.Hash()
		}
		d.block = hashtree.New(leaves)
	}
	return d.block
}
