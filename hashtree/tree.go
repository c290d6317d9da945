// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hashtree

import (
	"github.com/bitmark-inc/creditd/digest"
)

// Tree - symmetric hash tree over an ordered list of leaves
//
// structure is:
//   level 0:    N * leaf digests
//   level 1..m: pairwise SymmetricCombine, an odd last node moves up unchanged
//   level m:    single root digest
//
// levels are rebuilt lazily after an Add
type Tree struct {
	leaves   []digest.Digest
	position map[digest.Digest]int
	levels   [][]digest.Digest
	upToDate bool
}

// New - create a tree from an initial set of leaves
func New(leaves []digest.Digest) *Tree {
	t := &Tree{
		leaves:   make([]digest.Digest, 0, len(leaves)),
		position: make(map[digest.Digest]int),
	}
	for _, leaf := range leaves {
		t.Add(leaf)
	}
	return t
}

// Add - append a leaf
func (t *Tree) Add(leaf digest.Digest) {
	if nil == t.position {
		t.position = make(map[digest.Digest]int)
	}
	if _, ok := t.position[leaf]; !ok {
		t.position[leaf] = len(t.leaves)
	}
	t.leaves = append(t.leaves, leaf)
	t.upToDate = false
}

// Len - number of leaves
func (t *Tree) Len() int {
	return len(t.leaves)
}

// Leaves - copy of the leaves in order
func (t *Tree) Leaves() []digest.Digest {
	l := make([]digest.Digest, len(t.leaves))
	copy(l, t.leaves)
	return l
}

// Position - index of the first occurrence of a leaf
func (t *Tree) Position(leaf digest.Digest) (int, bool) {
	n, ok := t.position[leaf]
	return n, ok
}

// Contains - true if the leaf is present
func (t *Tree) Contains(leaf digest.Digest) bool {
	_, ok := t.position[leaf]
	return ok
}

// Root - the root digest, zero for an empty tree
func (t *Tree) Root() digest.Digest {
	if 0 == len(t.leaves) {
		return digest.Zero
	}
	t.build()
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Branch - the path from a leaf to the root
//
// structure is:
//   [leaf, sibling at level 0, sibling at level 1, ..., root]
//
// levels where the node had no sibling contribute nothing
// returns nil if the index is out of range
func (t *Tree) Branch(index int) []digest.Digest {
	if index < 0 || index >= len(t.leaves) {
		return nil
	}
	t.build()

	branch := []digest.Digest{t.leaves[index]}
	n := index
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := n ^ 1
		if sibling < len(level) {
			branch = append(branch, level[sibling])
		}
		n /= 2
	}
	return append(branch, t.Root())
}

// BranchOf - the branch of a leaf digest, nil if not present
func (t *Tree) BranchOf(leaf digest.Digest) []digest.Digest {
	n, ok := t.position[leaf]
	if !ok {
		return nil
	}
	return t.Branch(n)
}

func (t *Tree) build() {
	if t.upToDate {
		return
	}

	level := make([]digest.Digest, len(t.leaves))
	copy(level, t.leaves)
	t.levels = [][]digest.Digest{level}

	for len(level) > 1 {
		next := make([]digest.Digest, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i]) // odd node moves up
			} else {
				next = append(next, SymmetricCombine(level[i], level[i+1]))
			}
		}
		t.levels = append(t.levels, next)
		level = next
	}
	t.upToDate = true
}

// Root - convenience for a one-off tree root
func Root(leaves []digest.Digest) digest.Digest {
	return New(leaves).Root()
}
