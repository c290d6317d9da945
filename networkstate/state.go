// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package networkstate

import (
	"encoding/binary"

	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/fault"
)

// PackedState - use fix size array to simplify validation
type PackedState [totalStateSize]byte

// byte sizes for various fields
const (
	BatchNumberSize        = 4
	PreviousMessageSize    = digest.Length
	BatchOffsetSize        = 8
	BatchSizeSize          = 4
	BatchRootSize          = digest.Length
	PreviousTotalWorkSize  = 8
	DifficultySize         = 8
	DiurnalDifficultySize  = 8
	PreviousDiurnRootSize  = digest.Length
	DiurnalBlockRootSize   = digest.Length
	PreviousCalendHashSize = digest.Length
	MessageListHashSize    = digest.Length
	SpentChainHashSize     = digest.Length
	TimestampSize          = 8 // microseconds since 1970-01-01T00:00 UTC
	NetworkIDSize          = 8
)

// offsets of the fields
const (
	batchNumberOffset        = 0
	previousMessageOffset    = batchNumberOffset + BatchNumberSize
	batchOffsetOffset        = previousMessageOffset + PreviousMessageSize
	batchSizeOffset          = batchOffsetOffset + BatchOffsetSize
	batchRootOffset          = batchSizeOffset + BatchSizeSize
	previousTotalWorkOffset  = batchRootOffset + BatchRootSize
	difficultyOffset         = previousTotalWorkOffset + PreviousTotalWorkSize
	diurnalDifficultyOffset  = difficultyOffset + DifficultySize
	previousDiurnRootOffset  = diurnalDifficultyOffset + DiurnalDifficultySize
	diurnalBlockRootOffset   = previousDiurnRootOffset + PreviousDiurnRootSize
	previousCalendHashOffset = diurnalBlockRootOffset + DiurnalBlockRootSize
	messageListHashOffset    = previousCalendHashOffset + PreviousCalendHashSize
	spentChainHashOffset     = messageListHashOffset + MessageListHashSize
	timestampOffset          = spentChainHashOffset + SpentChainHashSize
	networkIDOffset          = timestampOffset + TimestampSize

	// to set size of state array
	totalStateSize = networkIDOffset + NetworkIDSize
)

// TotalSize - bytes in a packed state
const TotalSize = totalStateSize

// State - the consensus header of one round
//
// all fields except BatchRoot, MessageListHash and SpentChainHash
// follow from the predecessor's state plus work and time
type State struct {
	BatchNumber         uint32        `json:"batchNumber"`
	PreviousMessageHash digest.Digest `json:"previousMessageHash"`
	BatchOffset         uint64        `json:"batchOffset,string"`
	BatchSize           uint32        `json:"batchSize"`
	BatchRoot           digest.Digest `json:"batchRoot"`
	PreviousTotalWork   uint64        `json:"previousTotalWork,string"`
	Difficulty          uint64        `json:"difficulty,string"`
	DiurnalDifficulty   uint64        `json:"diurnalDifficulty,string"`
	PreviousDiurnRoot   digest.Digest `json:"previousDiurnRoot"`
	DiurnalBlockRoot    digest.Digest `json:"diurnalBlockRoot"`
	PreviousCalendHash  digest.Digest `json:"previousCalendHash"`
	MessageListHash     digest.Digest `json:"messageListHash"`
	SpentChainHash      digest.Digest `json:"spentChainHash"`
	Timestamp           uint64        `json:"timestamp,string"`
	NetworkID           uint64        `json:"networkId,string"`
}

// Pack - turn a state into an array of bytes
func (state *State) Pack() PackedState {
	buffer := PackedState{}

	binary.LittleEndian.PutUint32(buffer[batchNumberOffset:], state.BatchNumber)
	copy(buffer[previousMessageOffset:], state.PreviousMessageHash[:])
	binary.LittleEndian.PutUint64(buffer[batchOffsetOffset:], state.BatchOffset)
	binary.LittleEndian.PutUint32(buffer[batchSizeOffset:], state.BatchSize)
	copy(buffer[batchRootOffset:], state.BatchRoot[:])
	binary.LittleEndian.PutUint64(buffer[previousTotalWorkOffset:], state.PreviousTotalWork)
	binary.LittleEndian.PutUint64(buffer[difficultyOffset:], state.Difficulty)
	binary.LittleEndian.PutUint64(buffer[diurnalDifficultyOffset:], state.DiurnalDifficulty)
	copy(buffer[previousDiurnRootOffset:], state.PreviousDiurnRoot[:])
	copy(buffer[diurnalBlockRootOffset:], state.DiurnalBlockRoot[:])
	copy(buffer[previousCalendHashOffset:], state.PreviousCalendHash[:])
	copy(buffer[messageListHashOffset:], state.MessageListHash[:])
	copy(buffer[spentChainHashOffset:], state.SpentChainHash[:])
	binary.LittleEndian.PutUint64(buffer[timestampOffset:], state.Timestamp)
	binary.LittleEndian.PutUint64(buffer[networkIDOffset:], state.NetworkID)

	return buffer
}

// Unpack - turn a byte slice into a state
func Unpack(record []byte) (*State, error) {
	if len(record) < totalStateSize {
		return nil, fault.ErrBadPackedLength
	}

	state := &State{}
	state.BatchNumber = binary.LittleEndian.Uint32(record[batchNumberOffset:])
	copy(state.PreviousMessageHash[:], record[previousMessageOffset:batchOffsetOffset])
	state.BatchOffset = binary.LittleEndian.Uint64(record[batchOffsetOffset:])
	state.BatchSize = binary.LittleEndian.Uint32(record[batchSizeOffset:])
	copy(state.BatchRoot[:], record[batchRootOffset:previousTotalWorkOffset])
	state.PreviousTotalWork = binary.LittleEndian.Uint64(record[previousTotalWorkOffset:])
	state.Difficulty = binary.LittleEndian.Uint64(record[difficultyOffset:])
	state.DiurnalDifficulty = binary.LittleEndian.Uint64(record[diurnalDifficultyOffset:])
	copy(state.PreviousDiurnRoot[:], record[previousDiurnRootOffset:diurnalBlockRootOffset])
	copy(state.DiurnalBlockRoot[:], record[diurnalBlockRootOffset:previousCalendHashOffset])
	copy(state.PreviousCalendHash[:], record[previousCalendHashOffset:messageListHashOffset])
	copy(state.MessageListHash[:], record[messageListHashOffset:spentChainHashOffset])
	copy(state.SpentChainHash[:], record[spentChainHashOffset:timestampOffset])
	state.Timestamp = binary.LittleEndian.Uint64(record[timestampOffset:])
	state.NetworkID = binary.LittleEndian.Uint64(record[networkIDOffset:])

	return state, nil
}

// Digest - hash of the packed state
func (state *State) Digest() digest.Digest {
	packed := state.Pack()
	return digest.NewDigest(packed[:])
}

// Equal - structural equality
func (state *State) Equal(other *State) bool {
	return state.Pack() == other.Pack()
}

// ReportedWork - total work claimed by a batch carrying this state
func (state *State) ReportedWork() uint64 {
	return state.PreviousTotalWork + state.Difficulty
}
