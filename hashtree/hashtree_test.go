// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hashtree_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/hashtree"
)

func makeLeaves(n int) []digest.Digest {
	leaves := make([]digest.Digest, n)
	for i := 0; i < n; i += 1 {
		leaves[i] = digest.NewDigest([]byte(fmt.Sprintf("leaf-%d", i)))
	}
	return leaves
}

func TestSymmetricCombine(t *testing.T) {
	a := digest.NewDigest([]byte("a"))
	b := digest.NewDigest([]byte("b"))

	assert.Equal(t, hashtree.SymmetricCombine(a, b), hashtree.SymmetricCombine(b, a), "order independent")
	assert.NotEqual(t, hashtree.AsymmetricCombine(a, b), hashtree.AsymmetricCombine(b, a), "order dependent")
	assert.NotEqual(t, hashtree.SymmetricCombine(a, b), hashtree.AsymmetricCombine(a, b), "distinct schemes")
}

func TestEmptyAndSingle(t *testing.T) {
	assert.Equal(t, digest.Zero, hashtree.Root(nil), "empty root")

	leaves := makeLeaves(1)
	tree := hashtree.New(leaves)
	assert.Equal(t, leaves[0], tree.Root(), "single leaf root")
	assert.True(t, hashtree.VerifyBranch(tree.Branch(0)), "single leaf branch")
}

func TestBranches(t *testing.T) {
	for n := 1; n <= 17; n += 1 {
		leaves := makeLeaves(n)
		tree := hashtree.New(leaves)
		root := tree.Root()
		for i := 0; i < n; i += 1 {
			branch := tree.Branch(i)
			if !hashtree.VerifyBranch(branch) {
				t.Errorf("n: %d  branch[%d] does not verify", n, i)
			}
			assert.Equal(t, leaves[i], branch[0], "leaf first")
			assert.Equal(t, root, branch[len(branch)-1], "root last")
		}
		assert.Nil(t, tree.Branch(n), "out of range")
	}
}

func TestAddRebuildsRoot(t *testing.T) {
	leaves := makeLeaves(5)
	tree := hashtree.New(leaves[:4])
	r4 := tree.Root()
	tree.Add(leaves[4])
	r5 := tree.Root()

	assert.NotEqual(t, r4, r5, "root changes after add")
	assert.Equal(t, hashtree.Root(leaves), r5, "same as fresh tree")
	assert.True(t, tree.Contains(leaves[4]), "contains")

	n, ok := tree.Position(leaves[3])
	assert.True(t, ok, "position found")
	assert.Equal(t, 3, n, "position")
}

func TestTamperedBranch(t *testing.T) {
	tree := hashtree.New(makeLeaves(8))
	branch := tree.Branch(5)
	branch[1][0] ^= 0x01
	assert.False(t, hashtree.VerifyBranch(branch), "tampered branch")
	assert.False(t, hashtree.VerifyBranch(nil), "empty branch")
}
