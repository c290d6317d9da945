// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package shorthash - compact lists of message hashes
//
// a list travels as 32 bit prefixes plus the XOR of all the full
// hashes; a receiver that already holds the referenced data recovers
// the full hashes from its own index and uses the XOR to choose
// between colliding prefixes
package shorthash

import (
	"encoding/binary"

	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/util"
)

// MaximumEntries - a list longer than this is never recovered
const MaximumEntries = 30000

// List - the short form of an ordered list of hashes
type List struct {
	ShortHashes   []uint32      `json:"shortHashes"`
	Disambiguator digest.Digest `json:"disambiguator"`

	// not packed, present after construction or recovery
	FullHashes []digest.Digest `json:"-"`
}

// Index - source of candidate full hashes for a short hash
type Index interface {
	Matches(shortHash uint32) []digest.Digest
}

// Short - the first four bytes of a hash
func Short(hash digest.Digest) uint32 {
	return binary.LittleEndian.Uint32(hash[:4])
}

// New - build a list from full hashes
func New(hashes []digest.Digest) *List {
	l := &List{}
	for _, h := range hashes {
		l.Add(h)
	}
	return l
}

// Add - append a full hash
func (l *List) Add(hash digest.Digest) {
	l.FullHashes = append(l.FullHashes, hash)
	l.ShortHashes = append(l.ShortHashes, Short(hash))
	l.Disambiguator = l.Disambiguator.Xor(hash)
}

// Contains - true if the full hash is in the list
func (l *List) Contains(hash digest.Digest) bool {
	for _, h := range l.FullHashes {
		if h == hash {
			return true
		}
	}
	return false
}

// Complete - full hashes are present and agree with the short form
func (l *List) Complete() bool {
	if len(l.FullHashes) != len(l.ShortHashes) {
		return false
	}
	x := digest.Zero
	for i, h := range l.FullHashes {
		if Short(h) != l.ShortHashes[i] {
			return false
		}
		x = x.Xor(h)
	}
	return x == l.Disambiguator
}

// Len - number of entries
func (l *List) Len() int {
	return len(l.ShortHashes)
}

// Pack - count, short hashes, disambiguator
func (l *List) Pack() util.Packed {
	p := util.Packed{}.AppendVarint(uint64(len(l.ShortHashes)))
	b := make([]byte, 4)
	for _, s := range l.ShortHashes {
		binary.LittleEndian.PutUint32(b, s)
		p = p.AppendFixed(b)
	}
	return p.AppendFixed(l.Disambiguator[:])
}

// Hash - the message list hash
func (l *List) Hash() digest.Digest {
	return digest.NewDigest(l.Pack())
}

// Equal - same packed form
func (l *List) Equal(other *List) bool {
	if len(l.ShortHashes) != len(other.ShortHashes) || l.Disambiguator != other.Disambiguator {
		return false
	}
	for i, s := range l.ShortHashes {
		if s != other.ShortHashes[i] {
			return false
		}
	}
	return true
}

// UnpackFrom - read a list from an unpacker
func UnpackFrom(u *util.Unpacker) *List {
	l := &List{}
	n := u.Varint()
	if n > MaximumEntries {
		n = 0
	}
	for i := uint64(0); i < n && nil == u.Err(); i += 1 {
		b := u.Fixed(4)
		if nil != b {
			l.ShortHashes = append(l.ShortHashes, binary.LittleEndian.Uint32(b))
		}
	}
	_ = digest.FromBytes(&l.Disambiguator, u.Fixed(digest.Length))
	return l
}

// Recover - fill FullHashes from an index
//
// each entry may have several candidates, a combination is accepted
// only if the XOR of the chosen hashes equals the disambiguator.  An
// entry without candidates is missing data; a list whose candidates
// never match the disambiguator cannot be recovered
func (l *List) Recover(index Index) error {
	if len(l.ShortHashes) > MaximumEntries {
		return fault.ErrBadHashListEntries
	}

	candidates := make([][]digest.Digest, len(l.ShortHashes))
	for i, s := range l.ShortHashes {
		candidates[i] = index.Matches(s)
		if 0 == len(candidates[i]) {
			return fault.ErrMissingEnclosedData
		}
	}

	choice, ok := search(candidates, l.Disambiguator)
	if !ok {
		return fault.ErrUnrecoverableHashList
	}

	full := make([]digest.Digest, len(choice))
	for i, c := range choice {
		full[i] = candidates[i][c]
	}
	l.FullHashes = full
	return nil
}

// depth first search over candidate choices, without recursion
//
// xor[k] holds the XOR of the first k chosen hashes
func search(candidates [][]digest.Digest, target digest.Digest) ([]int, bool) {
	n := len(candidates)
	if 0 == n {
		return []int{}, target.IsZero()
	}

	choice := make([]int, n)
	xor := make([]digest.Digest, n+1)
	k := 0
	choice[0] = -1

	for k >= 0 {
		choice[k] += 1
		if choice[k] >= len(candidates[k]) {
			k -= 1 // exhausted, backtrack
			continue
		}
		xor[k+1] = xor[k].Xor(candidates[k][choice[k]])
		if k+1 == n {
			if xor[n] == target {
				return choice, true
			}
			continue
		}
		k += 1
		choice[k] = -1
	}
	return nil, false
}
