// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package credit

import (
	"encoding/binary"

	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/hashtree"
)

// Batch - the credits produced in one round
//
// a credit's global position is Offset plus its index
type Batch struct {
	PreviousMessageHash digest.Digest `json:"previousMessageHash"`
	Offset              uint64        `json:"offset,string"`
	Credits             []Credit      `json:"credits"`

	tree *hashtree.Tree
}

// InBatch - a credit with its position and the branch proving it
// belongs to a batch root
type InBatch struct {
	Credit   Credit          `json:"credit"`
	Position uint64          `json:"position,string"`
	Branch   []digest.Digest `json:"branch"`
}

// NewBatch - empty batch following a message
func NewBatch(previous digest.Digest, offset uint64) *Batch {
	return &Batch{
		PreviousMessageHash: previous,
		Offset:              offset,
		Credits:             []Credit{},
	}
}

// Add - append a credit
func (batch *Batch) Add(c Credit) {
	batch.Credits = append(batch.Credits, c)
	batch.tree = nil
}

// Size - number of credits
func (batch *Batch) Size() uint32 {
	return uint32(len(batch.Credits))
}

// Root - root of the symmetric tree over the positioned credits
func (batch *Batch) Root() digest.Digest {
	return batch.build().Root()
}

// Position - index of a credit in the batch, false if absent
func (batch *Batch) Position(c Credit) (uint64, bool) {
	for i, item := range batch.Credits {
		if item.Equal(c) {
			return batch.Offset + uint64(i), true
		}
	}
	return 0, false
}

// Branch - proof of membership for the credit at a global position
func (batch *Batch) Branch(position uint64) []digest.Digest {
	if position < batch.Offset {
		return nil
	}
	return batch.build().Branch(int(position - batch.Offset))
}

// InBatch - positioned credit with branch, false if the position is outside the batch
func (batch *Batch) InBatch(position uint64) (InBatch, bool) {
	branch := batch.Branch(position)
	if nil == branch {
		return InBatch{}, false
	}
	return InBatch{
		Credit:   batch.Credits[position-batch.Offset],
		Position: position,
		Branch:   branch,
	}, true
}

func (batch *Batch) build() *hashtree.Tree {
	if nil != batch.tree {
		return batch.tree
	}
	leaves := make([]digest.Digest, len(batch.Credits))
	for i, c := range batch.Credits {
		leaves[i] = Leaf(c, batch.Offset+uint64(i))
	}
	batch.tree = hashtree.New(leaves)
	return batch.tree
}

// Leaf - tree leaf binding a credit to its position
func Leaf(c Credit, position uint64) digest.Digest {
	p := make([]byte, 8)
	binary.LittleEndian.PutUint64(p, position)
	return hashtree.AsymmetricCombine(c.Hash(), digest.NewDigest(p))
}

// Root - the batch root the branch leads to
func (in InBatch) Root() digest.Digest {
	if 0 == len(in.Branch) {
		return digest.Zero
	}
	return in.Branch[len(in.Branch)-1]
}

// Verify - branch starts at this credit's leaf and evaluates to its root
func (in InBatch) Verify() bool {
	if 0 == len(in.Branch) {
		return false
	}
	if Leaf(in.Credit, in.Position) != in.Branch[0] {
		return false
	}
	return hashtree.VerifyBranch(in.Branch)
}
