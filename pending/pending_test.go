// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pending_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/internal/chaintest"
	"github.com/bitmark-inc/creditd/pending"
)

func TestMain(m *testing.M) {
	chaintest.Main(m)
}

func TestPoolAddRemove(t *testing.T) {
	c := chaintest.New(t)
	defer c.Close()

	pool := pending.New(c.CS)
	h1 := digest.NewDigest([]byte("first"))
	h2 := digest.NewDigest([]byte("second"))

	pool.Add(h1)
	pool.Add(h2)
	pool.Add(h1)
	assert.Equal(t, []digest.Digest{h1, h2}, pool.Hashes(), "arrival order without duplicates")
	assert.True(t, pool.Contains(h2), "contains")

	pool.Remove(h1)
	pool.Remove(h1)
	assert.False(t, pool.Contains(h1), "removed")
	assert.Equal(t, []digest.Digest{h2}, pool.Hashes(), "remaining")
	assert.Empty(t, pool.Transactions(), "no stored transactions")
}

func TestExpire(t *testing.T) {
	c := chaintest.New(t)
	defer c.Close()

	pool := pending.New(c.CS)
	pool.Add(digest.NewDigest([]byte("item")))

	assert.Equal(t, 0, pool.Expire(time.Hour), "too young")
	assert.Equal(t, 1, pool.Expire(-time.Second), "expired")
	assert.Empty(t, pool.Hashes(), "empty")
}

func TestBuilderEnclosesPendingTransactions(t *testing.T) {
	c := chaintest.New(t)
	defer c.Close()

	tip := chaintest.Last(c.Extend(nil, 7))
	first := c.CS.StoreTransaction(c.Spend([]uint64{5}, 1))
	second := c.CS.StoreTransaction(c.Spend([]uint64{5}, 2))

	assert.Equal(t, []digest.Digest{first, second}, c.Pool.Transactions(), "pending transactions")
	assert.Equal(t, []uint64{5}, c.Pool.PositionsSpentByAcceptedTransactions().Sorted(), "spent by pending")

	next := c.Build(tip, false)
	enclosed, err := c.CS.EnclosedHashes(next)
	require.NoError(t, err, "enclosed hashes")
	assert.Equal(t, []digest.Digest{tip.Hash(), first}, enclosed, "predecessor then the first spend of position 5")

	c.Accept(next)
	assert.False(t, c.Pool.Contains(first), "enclosed transaction leaves the pool")
	assert.True(t, c.Pool.Contains(second), "conflicting transaction stays until a fork")
	assert.True(t, c.Pool.Contains(next.Hash()), "new tip is pending")
}

func TestUpdateAfterFork(t *testing.T) {
	c := chaintest.New(t)
	defer c.Close()

	tip := chaintest.Last(c.Extend(nil, 7))
	alternative := chaintest.Last(c.Branch(tip, 2))

	lost := c.CS.StoreTransaction(c.Spend([]uint64{5}, 1))
	old := c.Add(tip, false)
	require.False(t, c.Pool.Contains(lost), "enclosed by the old tip")

	conflicting := c.CS.StoreTransaction(c.Spend([]uint64{5}, 1))

	c.CS.SwitchMainChainToOtherBranchOfFork(old.Hash(), alternative.Hash())
	c.Pool.UpdateAcceptedMessagesAfterFork(old.Hash(), alternative.Hash())

	assert.Equal(t, []digest.Digest{conflicting}, c.Pool.Hashes(), "one spend of position 5 survives")
	assert.False(t, c.Pool.Contains(old.Hash()), "messages are dropped")
	assert.False(t, c.CS.SpentChain(alternative.Hash()).Get(5), "unspent on the new branch")
}
