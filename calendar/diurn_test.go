// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package calendar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/creditd/calendar"
	"github.com/bitmark-inc/creditd/credit"
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/hashtree"
	"github.com/bitmark-inc/creditd/internal/chaintest"
	"github.com/bitmark-inc/creditd/minedcredit"
)

func TestDiurn(t *testing.T) {
	c := chaintest.New(t)
	defer c.Close()

	messages := c.Extend(nil, 5, 4)
	calend := messages[4]

	d := calendar.NewDiurn(digest.Zero)
	assert.Nil(t, d.Last(), "empty")
	assert.Equal(t, digest.Zero, d.BlockRoot(), "empty block")

	work := uint64(0)
	for _, msg := range messages[:4] {
		d.Add(msg)
		work += msg.State().Difficulty
	}
	assert.Equal(t, 4, d.Size(), "size")
	assert.Equal(t, messages[3].Hash(), d.Last().Hash(), "last")
	assert.Equal(t, work, d.Work(), "work")
	assert.True(t, d.Contains(messages[1].MinedCredit.Hash()), "contains")
	assert.False(t, d.Contains(calend.MinedCredit.Hash()), "calend is outside")

	// the calend closes exactly this diurn
	assert.Equal(t, calend.State().DiurnalBlockRoot, d.BlockRoot(), "block root")
	assert.Equal(t, calend.DiurnRoot(), d.Root(), "diurn root")

	other := calendar.NewDiurn(digest.Zero)
	for _, msg := range messages[:4] {
		other.Add(msg)
	}
	assert.True(t, d.Equal(other), "equal")
	other.Add(calend)
	assert.False(t, d.Equal(other), "longer")
}

func TestDiurnBranch(t *testing.T) {
	c := chaintest.New(t)
	defer c.Close()

	messages := c.Extend(nil, 5)

	d := calendar.NewDiurn(digest.NewDigest([]byte("previous diurn")))
	for _, msg := range messages {
		d.Add(msg)
	}

	for i, msg := range messages {
		branch := d.Branch(msg.MinedCredit.Hash())
		require.NotNilf(t, branch, "branch[%d]", i)
		assert.Equalf(t, msg.MinedCredit.BranchBridge(), branch[0], "bridge[%d]", i)
		assert.Equalf(t, d.Root(), branch[len(branch)-1], "root[%d]", i)
		assert.Equalf(t, d.PreviousDiurnRoot, branch[len(branch)-2], "previous root[%d]", i)
		assert.Truef(t, calendar.VerifyBranch(msg.State().BatchRoot, branch), "verify[%d]", i)
		assert.Falsef(t, calendar.VerifyBranch(digest.NewDigest([]byte("wrong")), branch), "wrong batch root[%d]", i)
	}

	assert.Nil(t, d.Branch(digest.NewDigest([]byte("absent"))), "not in diurn")
}

// positioned credit of a message's batch
func inBatch(t *testing.T, c *chaintest.Chain, msg *minedcredit.Message) credit.InBatch {
	batch, err := c.CS.ReconstructBatch(msg)
	require.NoError(t, err, "reconstruct")
	in, ok := batch.InBatch(msg.State().BatchOffset)
	require.True(t, ok, "in batch")
	return in
}

func TestValidateCreditInBatch(t *testing.T) {
	c := chaintest.New(t)
	defer c.Close()

	messages := c.Extend(nil, 8, 4)

	cal, err := calendar.New(c.CS, chaintest.Last(messages).Hash())
	require.NoError(t, err, "new")

	// batch in the current diurn
	recent := inBatch(t, c, messages[6])
	assert.NoError(t, cal.ValidateCreditInBatch(recent, nil), "current diurn")

	// batch in the diurn the calend closed needs a diurn branch
	closed := calendar.NewDiurn(digest.Zero)
	for _, msg := range messages[:4] {
		closed.Add(msg)
	}
	older := inBatch(t, c, messages[2])
	assert.Equal(t, fault.ErrCreditNotInBatch, cal.ValidateCreditInBatch(older, nil), "no branch")

	branch := closed.Branch(messages[2].MinedCredit.Hash())
	assert.NoError(t, cal.ValidateCreditInBatch(older, branch), "with diurn branch")

	// a branch to a diurn the calendar never saw
	foreign := calendar.NewDiurn(digest.NewDigest([]byte("elsewhere")))
	foreign.Add(messages[2])
	assert.Equal(t, fault.ErrCreditNotInBatch, cal.ValidateCreditInBatch(older, foreign.Branch(messages[2].MinedCredit.Hash())), "foreign diurn")

	// an altered credit no longer matches its leaf
	tampered := recent
	tampered.Credit.Amount += 1
	assert.Equal(t, fault.ErrCreditNotInBatch, cal.ValidateCreditInBatch(tampered, nil), "tampered credit")

	require.True(t, hashtree.VerifyBranch(recent.Branch), "original branch untouched")
}
