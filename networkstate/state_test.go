// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package networkstate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/networkstate"
)

func sampleState() *networkstate.State {
	return &networkstate.State{
		BatchNumber:         17,
		PreviousMessageHash: digest.NewDigest([]byte("previous")),
		BatchOffset:         1234,
		BatchSize:           9,
		BatchRoot:           digest.NewDigest([]byte("root")),
		PreviousTotalWork:   987654321,
		Difficulty:          100000,
		DiurnalDifficulty:   5000000,
		PreviousDiurnRoot:   digest.NewDigest([]byte("diurn")),
		DiurnalBlockRoot:    digest.NewDigest([]byte("block")),
		PreviousCalendHash:  digest.NewDigest([]byte("calend")),
		MessageListHash:     digest.NewDigest([]byte("list")),
		SpentChainHash:      digest.NewDigest([]byte("spent")),
		Timestamp:           1571900000000000,
		NetworkID:           42,
	}
}

func TestPackUnpack(t *testing.T) {
	state := sampleState()
	packed := state.Pack()
	assert.Equal(t, networkstate.TotalSize, len(packed), "packed size")

	r, err := networkstate.Unpack(packed[:])
	if nil != err {
		t.Fatalf("unpack error: %s", err)
	}
	assert.Equal(t, state, r, "round trip")
	assert.True(t, state.Equal(r), "equal")
	assert.Equal(t, state.Digest(), r.Digest(), "digest")
}

func TestFieldOrder(t *testing.T) {
	state := sampleState()
	packed := state.Pack()

	// batch number leads, network id closes
	assert.Equal(t, []byte{17, 0, 0, 0}, packed[0:4], "batch number")
	assert.Equal(t, state.PreviousMessageHash[:], packed[4:24], "previous hash")
	assert.Equal(t, []byte{42, 0, 0, 0, 0, 0, 0, 0}, packed[networkstate.TotalSize-8:], "network id")
}

func TestUnpackShort(t *testing.T) {
	_, err := networkstate.Unpack(make([]byte, networkstate.TotalSize-1))
	assert.Equal(t, fault.ErrBadPackedLength, err, "short record")
}

func TestReportedWork(t *testing.T) {
	state := sampleState()
	assert.Equal(t, uint64(987654321+100000), state.ReportedWork(), "reported work")
}
