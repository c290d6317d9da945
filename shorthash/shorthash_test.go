// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shorthash_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/shorthash"
	"github.com/bitmark-inc/creditd/util"
)

type mapIndex map[uint32][]digest.Digest

func (m mapIndex) Matches(s uint32) []digest.Digest {
	return m[s]
}

func (m mapIndex) add(h digest.Digest) {
	s := shorthash.Short(h)
	m[s] = append(m[s], h)
}

func makeHashes(n int) []digest.Digest {
	hashes := make([]digest.Digest, n)
	for i := range hashes {
		hashes[i] = digest.NewDigest([]byte(fmt.Sprintf("message-%d", i)))
	}
	return hashes
}

func TestPackUnpack(t *testing.T) {
	l := shorthash.New(makeHashes(5))

	u := util.NewUnpacker(l.Pack())
	r := shorthash.UnpackFrom(u)
	if err := u.Done(); nil != err {
		t.Fatalf("unpack error: %s", err)
	}
	assert.True(t, l.Equal(r), "round trip")
	assert.Equal(t, l.Hash(), r.Hash(), "hash")
	assert.Nil(t, r.FullHashes, "full hashes are not packed")
}

func TestRecover(t *testing.T) {
	hashes := makeHashes(6)
	index := mapIndex{}
	for _, h := range hashes {
		index.add(h)
	}

	l := shorthash.New(hashes)
	r := &shorthash.List{ShortHashes: l.ShortHashes, Disambiguator: l.Disambiguator}
	err := r.Recover(index)
	if nil != err {
		t.Fatalf("recover error: %s", err)
	}
	assert.Equal(t, hashes, r.FullHashes, "recovered")
}

func TestRecoverWithCollision(t *testing.T) {
	hashes := makeHashes(4)
	index := mapIndex{}
	for _, h := range hashes {
		index.add(h)
	}

	// a decoy sharing the prefix of hashes[2]
	decoy := hashes[2]
	decoy[19] ^= 0xff
	index.add(decoy)
	// make the decoy the first candidate
	s := shorthash.Short(hashes[2])
	index[s][0], index[s][1] = index[s][1], index[s][0]

	l := shorthash.New(hashes)
	r := &shorthash.List{ShortHashes: l.ShortHashes, Disambiguator: l.Disambiguator}
	err := r.Recover(index)
	if nil != err {
		t.Fatalf("recover error: %s", err)
	}
	assert.Equal(t, hashes, r.FullHashes, "disambiguated")
}

func TestRecoverMissing(t *testing.T) {
	hashes := makeHashes(3)
	index := mapIndex{}
	index.add(hashes[0])
	index.add(hashes[2])

	l := shorthash.New(hashes)
	r := &shorthash.List{ShortHashes: l.ShortHashes, Disambiguator: l.Disambiguator}
	assert.Equal(t, fault.ErrMissingEnclosedData, r.Recover(index), "missing entry")
}

func TestRecoverWrongDisambiguator(t *testing.T) {
	hashes := makeHashes(3)
	index := mapIndex{}
	for _, h := range hashes {
		index.add(h)
	}

	l := shorthash.New(hashes)
	wrong := l.Disambiguator
	wrong[0] ^= 0x01
	r := &shorthash.List{ShortHashes: l.ShortHashes, Disambiguator: wrong}
	err := r.Recover(index)
	assert.Equal(t, fault.ErrUnrecoverableHashList, err, "no combination matches")
	assert.False(t, fault.IsErrMissingData(err), "not missing data")
}

func TestEmptyList(t *testing.T) {
	l := shorthash.New(nil)
	assert.Nil(t, l.Recover(mapIndex{}), "empty list recovers")
	assert.Equal(t, 0, l.Len(), "length")
}

func TestComplete(t *testing.T) {
	l := shorthash.New(makeHashes(3))
	assert.True(t, l.Complete(), "constructed list")

	r := &shorthash.List{ShortHashes: l.ShortHashes, Disambiguator: l.Disambiguator}
	assert.False(t, r.Complete(), "no full hashes")

	r.FullHashes = []digest.Digest{l.FullHashes[0], l.FullHashes[2], l.FullHashes[1]}
	assert.False(t, r.Complete(), "wrong order")

	assert.True(t, shorthash.New(nil).Complete(), "empty list")
}
