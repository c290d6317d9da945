// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tipcontroller_test

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/creditd/background"
	"github.com/bitmark-inc/creditd/calendar"
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/internal/chaintest"
	"github.com/bitmark-inc/creditd/minedcredit"
	"github.com/bitmark-inc/creditd/proof"
	"github.com/bitmark-inc/creditd/tipcontroller"
	"github.com/bitmark-inc/creditd/tipcontroller/mocks"
	"github.com/bitmark-inc/creditd/validator"
)

func TestMain(m *testing.M) {
	chaintest.Main(m)
}

// batches are mined on source and handed to a controller over node
type fixture struct {
	ctl         *gomock.Controller
	fetcher     *mocks.MockFetcher
	broadcaster *mocks.MockBroadcaster
	source      *chaintest.Chain
	node        *chaintest.Chain
	tc          *tipcontroller.Controller
	frozen      uint64
}

func setup(t *testing.T) *fixture {
	ctl := gomock.NewController(t)
	f := &fixture{
		ctl:         ctl,
		fetcher:     mocks.NewMockFetcher(ctl),
		broadcaster: mocks.NewMockBroadcaster(ctl),
		source:      chaintest.New(t),
		node:        chaintest.New(t),
	}
	f.tc = f.controller(t)
	return f
}

// a controller over whatever the node already holds
func (f *fixture) controller(t *testing.T) *tipcontroller.Controller {
	v := validator.New(f.node.CS, chaintest.NetworkID)
	v.SetClock(f.now)
	tc, err := tipcontroller.New(f.node.CS, f.node.Pool, v, f.fetcher, f.broadcaster, nil)
	require.NoError(t, err, "new controller")
	return tc
}

// latest of both clocks unless frozen
func (f *fixture) now() uint64 {
	if 0 != f.frozen {
		return f.frozen
	}
	if f.node.Time() > f.source.Time() {
		return f.node.Time()
	}
	return f.source.Time()
}

func (f *fixture) close() {
	f.ctl.Finish()
	f.source.Close()
	f.node.Close()
}

func (f *fixture) handleAll(t *testing.T, messages []*minedcredit.Message) {
	for i, msg := range messages {
		_, err := f.tc.HandleMinedCreditMessage(msg)
		require.NoErrorf(t, err, "handle[%d]", i)
	}
}

// inflate every segment and recommit so only a spot check can tell
func forge(msg *minedcredit.Message) *minedcredit.Message {
	p := msg.ProofOfWork.Proof
	for i := range p.LinkLengths {
		p.LinkLengths[i] += 1
	}
	p.Commitment = proof.Commit(p.Seed, p.Links, p.LinkLengths)
	return msg
}

func TestAcceptHonestChain(t *testing.T) {
	f := setup(t)
	defer f.close()

	messages := f.source.Extend(nil, 7, 2, 5)
	for i, msg := range messages {
		state, err := f.tc.HandleMinedCreditMessage(msg)
		require.NoErrorf(t, err, "handle[%d]", i)
		assert.Equalf(t, tipcontroller.OnTip, state, "state[%d]", i)
		assert.Equalf(t, msg.Hash(), f.tc.Tip(), "tip[%d]", i)
	}

	tip := chaintest.Last(messages)
	assert.Equal(t, tip.Hash(), f.node.CS.CurrentTipOfMainChain(), "main chain tip")
	assert.True(t, f.node.Pool.Contains(tip.Hash()), "tip pending for the next batch")

	cal, err := f.tc.Calendar()
	require.NoError(t, err, "calendar")
	expected, err := calendar.New(f.node.CS, tip.Hash())
	require.NoError(t, err, "rebuilt calendar")
	assert.True(t, expected.Equal(cal), "incremental calendar")
	assert.Len(t, cal.Calends, 2, "calends")

	// handling an accepted batch again changes nothing
	state, err := f.tc.HandleMinedCreditMessage(messages[3])
	assert.NoError(t, err, "again")
	assert.Equal(t, tipcontroller.OnTip, state, "state again")
	assert.Equal(t, tip.Hash(), f.tc.Tip(), "tip unchanged")
}

func TestCalendarIsACopy(t *testing.T) {
	f := setup(t)
	defer f.close()

	messages := f.source.Extend(nil, 4, 1)
	f.handleAll(t, messages[:3])

	exported, err := f.tc.Calendar()
	require.NoError(t, err, "calendar")
	before, err := calendar.New(f.node.CS, messages[2].Hash())
	require.NoError(t, err, "calendar at batch 3")
	require.True(t, before.Equal(exported), "exported at batch 3")

	f.handleAll(t, messages[3:])

	assert.True(t, before.Equal(exported), "exported unchanged by a new tip")
	assert.Equal(t, messages[2].Hash(), exported.LastMessageHash(), "exported tip")

	current, err := f.tc.Calendar()
	require.NoError(t, err, "calendar again")
	assert.Equal(t, messages[3].Hash(), current.LastMessageHash(), "current tip")

	// changing an export leaves the controller's calendar alone
	require.NoError(t, current.RemoveLast(), "remove last")
	again, err := f.tc.Calendar()
	require.NoError(t, err, "calendar once more")
	assert.Equal(t, messages[3].Hash(), again.LastMessageHash(), "controller tip")
}

func TestQueuedBehindPredecessor(t *testing.T) {
	f := setup(t)
	defer f.close()

	messages := f.source.Extend(nil, 4)
	f.fetcher.EXPECT().FetchMessage(messages[1].Hash()).Times(1)

	f.handleAll(t, messages[:1])

	state, err := f.tc.HandleMinedCreditMessage(messages[2])
	assert.Equal(t, fault.ErrMissingPredecessor, err, "missing predecessor")
	assert.Equal(t, tipcontroller.Queued, state, "queued")

	// the predecessor is stored so it is not fetched again
	state, _ = f.tc.HandleMinedCreditMessage(messages[3])
	assert.Equal(t, tipcontroller.Queued, state, "queued behind queued")
	assert.Equal(t, tipcontroller.Queued, f.tc.StateOf(messages[2].Hash()), "still queued")
	assert.Equal(t, messages[0].Hash(), f.tc.Tip(), "tip before arrival")

	state, err = f.tc.HandleMinedCreditMessage(messages[1])
	require.NoError(t, err, "arrival")
	assert.Equal(t, tipcontroller.OnTip, state, "arrival state")

	for i, msg := range messages {
		assert.Equalf(t, tipcontroller.OnTip, f.tc.StateOf(msg.Hash()), "state[%d]", i)
	}
	assert.Equal(t, messages[3].Hash(), f.tc.Tip(), "tip after release")
	assert.Equal(t, 0, f.tc.Retry(), "nothing waiting")
}

func TestRetrySignalsAgain(t *testing.T) {
	f := setup(t)
	defer f.close()

	messages := f.source.Extend(nil, 2)
	f.fetcher.EXPECT().FetchMessage(messages[0].Hash()).Times(2)

	state, _ := f.tc.HandleMinedCreditMessage(messages[1])
	assert.Equal(t, tipcontroller.Queued, state, "queued")
	assert.Equal(t, 1, f.tc.Retry(), "one waiting")
}

func TestDeferredForEnclosedData(t *testing.T) {
	f := setup(t)
	defer f.close()

	messages := f.source.Extend(nil, 3)
	tx := f.source.Spend([]uint64{0}, 1)
	next := f.source.Add(chaintest.Last(messages), false)

	f.handleAll(t, messages)

	f.fetcher.EXPECT().FetchEnclosedData(next.Hash(), gomock.Any()).Times(1)
	state, err := f.tc.HandleMinedCreditMessage(next)
	assert.Equal(t, tipcontroller.Queued, state, "queued")
	assert.True(t, fault.IsErrMissingData(err), "missing data: %v", err)

	f.tc.HandleTransaction(tx)

	assert.Equal(t, tipcontroller.OnTip, f.tc.StateOf(next.Hash()), "accepted on arrival")
	assert.Equal(t, next.Hash(), f.tc.Tip(), "tip")
	assert.True(t, f.node.CS.SpentChain(next.Hash()).Get(0), "position spent")
	assert.False(t, f.node.Pool.Contains(tx.Hash()), "enclosed transaction left the pool")
}

func TestForkSwitchMovesSpentPosition(t *testing.T) {
	f := setup(t)
	defer f.close()

	common := f.source.Extend(nil, 7)
	fork := chaintest.Last(common)
	tx := f.source.Spend([]uint64{5}, 1)
	branchA := f.source.Extend(fork, 2)
	branchB := f.source.Branch(fork, 3)

	f.tc.HandleTransaction(tx)
	f.handleAll(t, common)
	f.handleAll(t, branchA)

	tipA := chaintest.Last(branchA)
	require.Equal(t, tipA.Hash(), f.tc.Tip(), "tip on A")
	assert.True(t, f.node.CS.SpentChain(tipA.Hash()).Get(5), "position 5 spent on A")
	assert.False(t, f.node.Pool.Contains(tx.Hash()), "transaction enclosed on A")

	f.handleAll(t, branchB)

	tipB := chaintest.Last(branchB)
	require.Equal(t, tipB.Hash(), f.tc.Tip(), "tip on B")
	assert.Equal(t, tipcontroller.OffTip, f.tc.StateOf(tipA.Hash()), "A off the main chain")
	assert.Equal(t, tipcontroller.OnTip, f.tc.StateOf(fork.Hash()), "fork point stays")
	assert.False(t, f.node.CS.SpentChain(tipB.Hash()).Get(5), "position 5 clear on B")
	assert.True(t, f.node.Pool.Contains(tx.Hash()), "transaction pending again")

	cal, err := f.tc.Calendar()
	require.NoError(t, err, "calendar")
	assert.Equal(t, tipB.Hash(), cal.LastMessageHash(), "calendar follows B")

	// A grows past B and the main chain switches back
	extension := f.source.Branch(tipA, 3)
	f.handleAll(t, extension)

	tip := chaintest.Last(extension)
	require.Equal(t, tip.Hash(), f.tc.Tip(), "tip back on A")
	assert.Equal(t, tipcontroller.OffTip, f.tc.StateOf(tipB.Hash()), "B off the main chain")
	assert.True(t, f.node.CS.SpentChain(tip.Hash()).Get(5), "position 5 spent again")
	assert.False(t, f.node.Pool.Contains(tx.Hash()), "transaction enclosed again")
}

func TestRejectionReleasesQueued(t *testing.T) {
	f := setup(t)
	defer f.close()

	messages := f.source.Extend(nil, 3)
	f.fetcher.EXPECT().FetchMessage(messages[1].Hash()).Times(1)

	f.handleAll(t, messages[:1])
	state, _ := f.tc.HandleMinedCreditMessage(messages[2])
	require.Equal(t, tipcontroller.Queued, state, "queued")

	// a clock far behind makes the predecessor look like it is from the future
	f.frozen = chaintest.StartTime
	state, err := f.tc.HandleMinedCreditMessage(messages[1])
	assert.Equal(t, tipcontroller.Rejected, state, "rejected")
	assert.Equal(t, fault.ErrTimestampInFuture, err, "reason")

	assert.Equal(t, tipcontroller.Rejected, f.tc.StateOf(messages[2].Hash()), "successor rejected")
	assert.Equal(t, messages[0].Hash(), f.tc.Tip(), "tip unchanged")
	assert.Equal(t, 0, f.tc.Retry(), "nothing waiting")
}

func TestQuickCheckFailure(t *testing.T) {
	f := setup(t)
	defer f.close()

	msg := *f.source.Build(nil, false)
	msg.ProofOfWork = nil

	state, err := f.tc.HandleMinedCreditMessage(&msg)
	assert.Equal(t, tipcontroller.Rejected, state, "state")
	assert.Equal(t, fault.ErrInvalidProofOfWork, err, "reason")
	assert.Equal(t, digest.Zero, f.tc.Tip(), "empty chain")
}

func TestQuickCheckFailureReleasesQueued(t *testing.T) {
	f := setup(t)
	defer f.close()

	// a predecessor whose proof stays below its difficulty
	parent, err := f.source.Builder.GenerateMinedCreditMessageWithoutProofOfWork(nil, f.source.KeyData)
	require.NoError(t, err, "generate")
	difficulty := parent.State().Difficulty
	err = f.source.Builder.Mine(parent, 1, chaintest.MiningAttempts, func(achieved uint64) bool {
		return achieved < difficulty
	})
	require.NoError(t, err, "mine weak proof")
	f.source.Accept(parent)
	child := f.source.Build(parent, false)

	f.fetcher.EXPECT().FetchMessage(parent.Hash()).Times(1)

	state, err := f.tc.HandleMinedCreditMessage(child)
	assert.Equal(t, tipcontroller.Queued, state, "child queued")
	assert.Equal(t, fault.ErrMissingPredecessor, err, "child reason")

	state, err = f.tc.HandleMinedCreditMessage(parent)
	assert.Equal(t, tipcontroller.Rejected, state, "parent state")
	assert.Equal(t, fault.ErrInvalidProofOfWork, err, "parent reason")

	assert.Equal(t, tipcontroller.Rejected, f.tc.StateOf(child.Hash()), "child rejected")
	assert.Equal(t, digest.Zero, f.tc.Tip(), "empty chain")
	assert.Equal(t, 0, f.tc.Retry(), "nothing waiting")
}

func TestForgedProofIsReported(t *testing.T) {
	f := setup(t)
	defer f.close()

	messages := f.source.Extend(nil, 3)
	f.handleAll(t, messages)

	forged := forge(f.source.Build(chaintest.Last(messages), false))
	require.True(t, f.node.CS.QuickCheckProofOfWorkInMinedCreditMessage(forged), "forgery passes quick check")

	var reported *tipcontroller.BadBatchMessage
	f.broadcaster.EXPECT().BroadcastBadBatch(gomock.Any()).Times(1).Do(func(bad *tipcontroller.BadBatchMessage) {
		reported = bad
	})

	state, err := f.tc.HandleMinedCreditMessage(forged)
	assert.Equal(t, tipcontroller.Rejected, state, "state")
	assert.Equal(t, fault.ErrSpotCheckFailed, err, "reason")
	assert.True(t, fault.IsErrDisproof(err), "disproof class")

	require.NotNil(t, reported, "reported")
	assert.Equal(t, forged.Hash(), reported.MessageHash, "reported hash")
	assert.True(t, reported.Disproof.Demonstrates(forged.ProofOfWork.Proof), "disproof holds")
	assert.NotNil(t, f.node.CS.SpotCheckFailure(forged.Hash()), "failure recorded")
	assert.Equal(t, chaintest.Last(messages).Hash(), f.tc.Tip(), "tip unchanged")
}

func TestBadBatchPrunesAcceptedSubtree(t *testing.T) {
	f := setup(t)
	defer f.close()

	// a chain accepted before the forgery was known
	honest := f.node.Extend(nil, 3)
	forged := forge(f.node.Build(chaintest.Last(honest), false))
	f.node.Accept(forged)
	descendants := f.node.Extend(forged, 2)
	alternative := f.node.Branch(chaintest.Last(honest), 1)

	tc := f.controller(t)
	require.Equal(t, chaintest.Last(descendants).Hash(), tc.Tip(), "tip on the forged branch")

	_, disproof := forged.ProofOfWork.SpotCheck()
	require.NotNil(t, disproof, "disproof")
	bad := &tipcontroller.BadBatchMessage{
		MessageHash: forged.Hash(),
		Disproof:    disproof,
	}

	unpacked, err := tipcontroller.UnpackBadBatchMessage(bad.Pack())
	require.NoError(t, err, "unpack")
	assert.Equal(t, bad, unpacked, "packed form")

	f.broadcaster.EXPECT().BroadcastBadBatch(bad).Times(1)
	require.NoError(t, tc.HandleBadBatchMessage(bad), "bad batch")

	assert.Equal(t, alternative[0].Hash(), tc.Tip(), "tip moved to the alternative")
	assert.Equal(t, alternative[0].Hash(), f.node.CS.CurrentTipOfMainChain(), "main chain tip")
	assert.Equal(t, tipcontroller.Rejected, tc.StateOf(forged.Hash()), "forged rejected")
	for i, msg := range descendants {
		assert.Equalf(t, tipcontroller.Rejected, tc.StateOf(msg.Hash()), "descendant[%d]", i)
		_, found := f.node.CS.TotalWork(msg.Hash())
		assert.Falsef(t, found, "descendant[%d] work", i)
	}
	assert.Equal(t, tipcontroller.OnTip, tc.StateOf(chaintest.Last(honest).Hash()), "fork point")

	cal, err := tc.Calendar()
	require.NoError(t, err, "calendar")
	assert.Equal(t, alternative[0].Hash(), cal.LastMessageHash(), "calendar follows the tip")

	// known evidence is neither applied nor passed on twice
	assert.NoError(t, tc.HandleBadBatchMessage(bad), "again")

	wrong := &tipcontroller.BadBatchMessage{
		MessageHash: honest[1].Hash(),
		Disproof:    disproof,
	}
	assert.Equal(t, fault.ErrDisproofNotValid, tc.HandleBadBatchMessage(wrong), "disproof of another proof")

	unknown := digest.NewDigest([]byte("unknown batch"))
	f.fetcher.EXPECT().FetchMessage(unknown).Times(1)
	missing := &tipcontroller.BadBatchMessage{
		MessageHash: unknown,
		Disproof:    disproof,
	}
	assert.Equal(t, fault.ErrMissingMessage, tc.HandleBadBatchMessage(missing), "unknown batch")
}

func TestRunStops(t *testing.T) {
	f := setup(t)
	defer f.close()

	processes := background.Processes{f.tc}
	p := background.Start(processes, nil)
	p.Stop()
}

func TestStateString(t *testing.T) {
	items := map[tipcontroller.State]string{
		tipcontroller.Unseen:   "unseen",
		tipcontroller.Queued:   "queued",
		tipcontroller.Verified: "verified",
		tipcontroller.OnTip:    "on-tip",
		tipcontroller.OffTip:   "off-tip",
		tipcontroller.Rejected: "rejected",
	}
	for state, name := range items {
		assert.Equal(t, name, state.String(), "state name")
	}
}
