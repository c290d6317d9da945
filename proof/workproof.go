// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package proof

import (
	"encoding/binary"
	"math"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/util"
)

// number of segments recomputed by a spot check
const spotCheckSegments = 3

// WorkProof - a seed derived link chain
type WorkProof struct {
	Seed          digest.Digest `json:"seed"`
	MemoryFactor  uint32        `json:"memoryFactor"`
	LinkThreshold uint64        `json:"linkThreshold,string"`
	NumSegments   uint32        `json:"numSegments"`
	Links         []uint64      `json:"links"`
	LinkLengths   []uint32      `json:"linkLengths"`
	Commitment    digest.Digest `json:"commitment"`
}

// Disproof - a segment whose recomputation differs from the claim
type Disproof struct {
	Segment    uint32 `json:"segment"`
	Link       uint64 `json:"link,string"`
	LinkLength uint32 `json:"linkLength"`
}

// LinkThreshold - threshold giving an expected total of target steps
func LinkThreshold(target uint64, numSegments uint32) uint64 {
	if 0 == numSegments {
		numSegments = 1
	}
	perSegment := target / uint64(numSegments)
	if perSegment <= 1 {
		return math.MaxUint64
	}
	return math.MaxUint64 / perSegment
}

// maximum steps in one segment
func maximumLinkLength(memoryFactor uint32) uint32 {
	if memoryFactor > 30 {
		memoryFactor = 30
	}
	return uint32(1) << memoryFactor
}

// compute one segment: its end value and length
func segment(seed digest.Digest, index uint32, previousLink uint64, threshold uint64, maximum uint32) (uint64, uint32) {
	start := make([]byte, digest.Length+4+8)
	copy(start, seed[:])
	binary.LittleEndian.PutUint32(start[digest.Length:], index)
	binary.LittleEndian.PutUint64(start[digest.Length+4:], previousLink)

	h := sha3.Sum256(start)
	for length := uint32(1); ; length += 1 {
		h = sha3.Sum256(h[:])
		value := binary.LittleEndian.Uint64(h[:8])
		if value < threshold || length >= maximum {
			return value, length
		}
	}
}

// Commit - commitment over the claimed links
func Commit(seed digest.Digest, links []uint64, lengths []uint32) digest.Digest {
	p := util.Packed{}.AppendFixed(seed[:])
	b := make([]byte, 12)
	for i := range links {
		binary.LittleEndian.PutUint64(b, links[i])
		binary.LittleEndian.PutUint32(b[8:], lengths[i])
		p = p.AppendFixed(b)
	}
	return digest.NewDigest(p)
}

// Generate - compute a complete proof
func Generate(seed digest.Digest, memoryFactor uint32, linkThreshold uint64, numSegments uint32) *WorkProof {
	maximum := maximumLinkLength(memoryFactor)
	p := &WorkProof{
		Seed:          seed,
		MemoryFactor:  memoryFactor,
		LinkThreshold: linkThreshold,
		NumSegments:   numSegments,
		Links:         make([]uint64, numSegments),
		LinkLengths:   make([]uint32, numSegments),
	}
	previous := uint64(0)
	for i := uint32(0); i < numSegments; i += 1 {
		p.Links[i], p.LinkLengths[i] = segment(seed, i, previous, linkThreshold, maximum)
		previous = p.Links[i]
	}
	p.Commitment = Commit(seed, p.Links, p.LinkLengths)
	return p
}

// DifficultyAchieved - total steps claimed
func (p *WorkProof) DifficultyAchieved() uint64 {
	total := uint64(0)
	for _, length := range p.LinkLengths {
		total += uint64(length)
	}
	return total
}

// QuickCheck - structure and commitment, no hashing of the chain
func (p *WorkProof) QuickCheck() bool {
	if 0 == p.NumSegments || 0 == p.LinkThreshold {
		return false
	}
	if uint32(len(p.Links)) != p.NumSegments || uint32(len(p.LinkLengths)) != p.NumSegments {
		return false
	}
	maximum := maximumLinkLength(p.MemoryFactor)
	for i, length := range p.LinkLengths {
		if 0 == length || length > maximum {
			return false
		}
		if length < maximum && p.Links[i] >= p.LinkThreshold {
			return false
		}
	}
	return Commit(p.Seed, p.Links, p.LinkLengths) == p.Commitment
}

// SpotCheck - recompute a few segments chosen by the commitment
//
// returns true if all agree, otherwise false and the first disagreement
func (p *WorkProof) SpotCheck() (bool, *Disproof) {
	if !p.QuickCheck() {
		return false, nil
	}
	maximum := maximumLinkLength(p.MemoryFactor)

	checks := uint32(spotCheckSegments)
	if checks > p.NumSegments {
		checks = p.NumSegments
	}
	for k := uint32(0); k < checks; k += 1 {
		i := binary.LittleEndian.Uint32(p.Commitment[4*k:]) % p.NumSegments
		if d := p.check(i, maximum); nil != d {
			return false, d
		}
	}
	return true, nil
}

// Verify - recompute every segment
func (p *WorkProof) Verify() bool {
	if !p.QuickCheck() {
		return false
	}
	maximum := maximumLinkLength(p.MemoryFactor)
	for i := uint32(0); i < p.NumSegments; i += 1 {
		if nil != p.check(i, maximum) {
			return false
		}
	}
	return true
}

func (p *WorkProof) check(i uint32, maximum uint32) *Disproof {
	previous := uint64(0)
	if i > 0 {
		previous = p.Links[i-1]
	}
	link, length := segment(p.Seed, i, previous, p.LinkThreshold, maximum)
	if link != p.Links[i] || length != p.LinkLengths[i] {
		return &Disproof{
			Segment:    i,
			Link:       link,
			LinkLength: length,
		}
	}
	return nil
}

// Demonstrates - true if the disproof correctly shows the proof is wrong
func (d *Disproof) Demonstrates(p *WorkProof) bool {
	if nil == d || d.Segment >= p.NumSegments || uint32(len(p.Links)) != p.NumSegments {
		return false
	}
	actual := p.check(d.Segment, maximumLinkLength(p.MemoryFactor))
	return nil != actual && *actual == *d
}

// Pack - fixed parameters followed by the links
func (p *WorkProof) Pack() util.Packed {
	r := util.Packed{}.AppendFixed(p.Seed[:])
	r = r.AppendVarint(uint64(p.MemoryFactor))
	r = r.AppendVarint(p.LinkThreshold)
	r = r.AppendVarint(uint64(p.NumSegments))
	r = r.AppendVarint(uint64(len(p.Links)))
	for i := range p.Links {
		r = r.AppendVarint(p.Links[i])
		r = r.AppendVarint(uint64(p.LinkLengths[i]))
	}
	return r.AppendFixed(p.Commitment[:])
}

// maximum links accepted when unpacking
const maximumLinks = 1 << 16

// UnpackWorkProofFrom - read a proof from an unpacker
func UnpackWorkProofFrom(u *util.Unpacker) *WorkProof {
	p := &WorkProof{}
	_ = digest.FromBytes(&p.Seed, u.Fixed(digest.Length))
	p.MemoryFactor = uint32(u.Varint())
	p.LinkThreshold = u.Varint()
	p.NumSegments = uint32(u.Varint())
	n := u.Varint()
	if n > maximumLinks {
		n = 0
	}
	p.Links = make([]uint64, 0, n)
	p.LinkLengths = make([]uint32, 0, n)
	for i := uint64(0); i < n && nil == u.Err(); i += 1 {
		p.Links = append(p.Links, u.Varint())
		p.LinkLengths = append(p.LinkLengths, uint32(u.Varint()))
	}
	_ = digest.FromBytes(&p.Commitment, u.Fixed(digest.Length))
	return p
}

// Pack - the disproof as varints
func (d *Disproof) Pack() util.Packed {
	return util.Packed{}.
		AppendVarint(uint64(d.Segment)).
		AppendVarint(d.Link).
		AppendVarint(uint64(d.LinkLength))
}

// UnpackDisproof - decode a packed disproof
func UnpackDisproof(record []byte) (*Disproof, error) {
	u := util.NewUnpacker(record)
	d := &Disproof{
		Segment:    uint32(u.Varint()),
		Link:       u.Varint(),
		LinkLength: uint32(u.Varint()),
	}
	if err := u.Done(); nil != err {
		return nil, err
	}
	return d, nil
}
