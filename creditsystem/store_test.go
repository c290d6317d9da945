// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package creditsystem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/creditd/creditsystem"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/internal/chaintest"
	"github.com/bitmark-inc/creditd/minedcredit"
	"github.com/bitmark-inc/creditd/shorthash"
	"github.com/bitmark-inc/creditd/transaction"
)

func TestStoreIsIdempotent(t *testing.T) {
	c := chaintest.New(t)
	defer c.Close()

	genesis := c.Add(nil, false)
	msg := c.Build(genesis, false)

	c.CS.StoreMinedCreditMessage(msg)
	pools := c.Store.Pools
	before := []int{
		count(t, pools.Messages),
		count(t, pools.MessageTypes),
		count(t, pools.ShortHashes),
		count(t, pools.HashLists),
	}
	stored := c.CS.Message(msg.Hash())

	hash := c.CS.StoreMinedCreditMessage(msg)
	assert.Equal(t, msg.Hash(), hash, "hash")

	after := []int{
		count(t, pools.Messages),
		count(t, pools.MessageTypes),
		count(t, pools.ShortHashes),
		count(t, pools.HashLists),
	}
	assert.Equal(t, before, after, "element counts")
	assert.True(t, stored.Equal(c.CS.Message(msg.Hash())), "stored message changed")
}

func TestMessageRoundTrip(t *testing.T) {
	c := chaintest.New(t)
	defer c.Close()

	messages := c.Extend(nil, 3)
	for i, msg := range messages {
		stored := c.CS.Message(msg.Hash())
		require.NotNilf(t, stored, "message[%d] missing", i)
		assert.Truef(t, msg.Equal(stored), "message[%d] differs", i)
		assert.Equalf(t, minedcredit.Type, c.CS.MessageType(msg.Hash()), "message[%d] type", i)
	}
	assert.Nil(t, c.CS.Message(chaintest.Last(messages).State().BatchRoot), "unknown hash")
}

func TestEnclosedHashesRecovered(t *testing.T) {
	c := chaintest.New(t)
	defer c.Close()

	messages := c.Extend(nil, 3)
	tip := chaintest.Last(messages)

	// only the packed short form arrives from a peer
	received, err := minedcredit.Unpack(tip.Pack())
	require.NoError(t, err, "unpack")
	assert.False(t, received.HashList.Complete(), "complete before recovery")

	hashes, err := c.CS.EnclosedHashes(received)
	require.NoError(t, err, "recover")
	assert.Equal(t, tip.HashList.FullHashes, hashes, "recovered hashes")
}

func TestMissingEnclosedData(t *testing.T) {
	c := chaintest.New(t)
	defer c.Close()

	genesis := c.Add(nil, false)
	tx := &transaction.Transaction{Inputs: []uint64{0}}

	msg := c.Build(genesis, false)
	msg.HashList = shorthash.New(nil)
	msg.HashList.Add(genesis.Hash())
	msg.HashList.Add(tx.Hash())

	received, err := minedcredit.Unpack(msg.Pack())
	require.NoError(t, err, "unpack")

	missing := c.CS.MissingEnclosedData(received)
	assert.Equal(t, []uint32{shorthash.Short(tx.Hash())}, missing, "missing short hashes")

	_, err = c.CS.EnclosedHashes(received)
	assert.Equal(t, fault.ErrMissingEnclosedData, err, "recovery must wait for the transaction")

	c.CS.StoreTransaction(tx)
	assert.Equal(t, []uint32{}, c.CS.MissingEnclosedData(received), "nothing missing")
	hashes, err := c.CS.EnclosedHashes(received)
	require.NoError(t, err, "recover")
	assert.Equal(t, tx.Hash(), hashes[1], "transaction hash")
	assert.Equal(t, transaction.Type, c.CS.MessageType(tx.Hash()), "type")
}

func TestBatchRootReconstruction(t *testing.T) {
	c := chaintest.New(t)
	defer c.Close()

	messages := c.Extend(nil, 4)
	c.Spend([]uint64{1}, 3)
	messages = append(messages, c.Extend(chaintest.Last(messages), 3)...)

	for i, msg := range messages {
		batch, err := c.CS.ReconstructBatch(msg)
		require.NoErrorf(t, err, "reconstruct[%d]", i)
		state := msg.State()
		assert.Equalf(t, state.BatchRoot, batch.Root(), "batch root[%d]", i)
		assert.Equalf(t, state.BatchSize, batch.Size(), "batch size[%d]", i)
	}

	// reward of the predecessor plus three outputs
	assert.Equal(t, uint32(4), messages[4].State().BatchSize, "size with transaction")
}

func TestHandlingStatus(t *testing.T) {
	c := chaintest.New(t)
	defer c.Close()

	msg := c.Build(nil, false)
	hash := msg.Hash()

	assert.Equal(t, creditsystem.Unseen, c.CS.HandlingStatus(hash), "initial")
	assert.False(t, c.CS.WasHandled(hash), "handled")

	c.CS.SetHandlingStatus(hash, creditsystem.Queued)
	assert.False(t, c.CS.WasHandled(hash), "queued is not handled")

	c.CS.SetHandlingStatus(hash, creditsystem.Rejected)
	assert.True(t, c.CS.WasHandled(hash), "rejected is handled")
	assert.Equal(t, "rejected", c.CS.HandlingStatus(hash).String(), "string")
	assert.Equal(t, "unknown", creditsystem.HandlingStatus(9).String(), "out of range")
}
