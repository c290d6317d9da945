// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/hashtree"
	"github.com/bitmark-inc/creditd/internal/chaintest"
	"github.com/bitmark-inc/creditd/minedcredit"
)

// each Add puts exactly one leaf into the existing block tree
func TestDiurnAddKeepsTree(t *testing.T) {
	c := chaintest.New(t)
	defer c.Close()

	messages := c.Extend(nil, 4)

	d := NewDiurn(digest.Zero)
	block := d.block
	leaves := []digest.Digest{}
	for i, msg := range messages {
		d.Add(msg)
		leaves = append(leaves, msg.MinedCredit.Hash())

		assert.Truef(t, block == d.block, "rebuilt[%d]", i)
		assert.Equalf(t, len(d.Credits), d.block.Len(), "leaves[%d]", i)
		assert.Equalf(t, leaves, d.block.Leaves(), "leaf order[%d]", i)
		assert.Equalf(t, hashtree.Root(leaves), d.BlockRoot(), "root[%d]", i)
	}

	// an unpacked diurn has no tree until first use
	copied := &Diurn{
		PreviousDiurnRoot: d.PreviousDiurnRoot,
		Credits:           append([]*minedcredit.Message{}, d.Credits[:2]...),
	}
	copied.Add(messages[2])
	assert.Equal(t, 3, copied.block.Len(), "leaves after rebuild")
	assert.Equal(t, hashtree.Root(leaves[:3]), copied.BlockRoot(), "root after rebuild")
}
