// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package proof

import (
	"encoding/binary"

	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/hashtree"
	"github.com/bitmark-inc/creditd/util"
)

// defaults for the reference engine
const (
	DefaultMemoryFactor = 19
	DefaultNumSegments  = 4
)

// Engine - producer of proofs
type Engine interface {
	GenerateProof(seed digest.Digest, memoryFactor uint32, target uint64, linkThreshold uint64, numSegments uint32) *WorkProof
}

// LinkChain - the reference engine
type LinkChain struct{}

// GenerateProof - a zero link threshold is derived from the target
func (LinkChain) GenerateProof(seed digest.Digest, memoryFactor uint32, target uint64, linkThreshold uint64, numSegments uint32) *WorkProof {
	if 0 == linkThreshold {
		linkThreshold = LinkThreshold(target, numSegments)
	}
	return Generate(seed, memoryFactor, linkThreshold, numSegments)
}

// Parameters - fixed settings of a network's proofs
type Parameters struct {
	MemoryFactor uint32 `gluamapper:"memory_factor" json:"memory_factor"`
	NumSegments  uint32 `gluamapper:"num_segments" json:"num_segments"`
}

// NetworkSpecific - a work proof bound to a mined credit
//
// Branch is [mined credit hash, nonce digest, seed] so the seed is
// derived from the credit and a miner varies only the nonce
type NetworkSpecific struct {
	Branch []digest.Digest `json:"branch"`
	Proof  *WorkProof      `json:"proof"`
}

// NonceDigest - second element of the branch
func NonceDigest(nonce uint64) digest.Digest {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, nonce)
	return digest.NewDigest(b)
}

// SeedBranch - branch from a mined credit hash to the seed for a nonce
func SeedBranch(creditHash digest.Digest, nonce uint64) []digest.Digest {
	n := NonceDigest(nonce)
	return []digest.Digest{creditHash, n, hashtree.SymmetricCombine(creditHash, n)}
}

// Seed - last element of the branch
func (ns *NetworkSpecific) Seed() digest.Digest {
	if 0 == len(ns.Branch) {
		return digest.Zero
	}
	return ns.Branch[len(ns.Branch)-1]
}

// DifficultyAchieved - work of the enclosed proof
func (ns *NetworkSpecific) DifficultyAchieved() uint64 {
	if nil == ns.Proof {
		return 0
	}
	return ns.Proof.DifficultyAchieved()
}

// QuickCheck - the branch binds the proof to this credit and the proof is well formed
func (ns *NetworkSpecific) QuickCheck(creditHash digest.Digest) bool {
	if nil == ns.Proof || len(ns.Branch) < 2 {
		return false
	}
	if ns.Branch[0] != creditHash || !hashtree.VerifyBranch(ns.Branch) {
		return false
	}
	if ns.Proof.Seed != ns.Seed() {
		return false
	}
	return ns.Proof.QuickCheck()
}

// SpotCheck - delegate to the work proof
func (ns *NetworkSpecific) SpotCheck() (bool, *Disproof) {
	if nil == ns.Proof {
		return false, nil
	}
	return ns.Proof.SpotCheck()
}

// Mine - try nonces until the achieved work satisfies accept
//
// returns fault.ErrProofNotFound after the given number of attempts
func Mine(engine Engine, parameters Parameters, creditHash digest.Digest, target uint64, attempts int, accept func(achieved uint64) bool) (*NetworkSpecific, error) {
	for nonce := uint64(0); nonce < uint64(attempts); nonce += 1 {
		branch := SeedBranch(creditHash, nonce)
		p := engine.GenerateProof(branch[len(branch)-1], parameters.MemoryFactor, target, 0, parameters.NumSegments)
		if accept(p.DifficultyAchieved()) {
			return &NetworkSpecific{
				Branch: branch,
				Proof:  p,
			}, nil
		}
	}
	return nil, fault.ErrProofNotFound
}

// Pack - branch then proof
func (ns *NetworkSpecific) Pack() util.Packed {
	p := util.Packed{}.AppendVarint(uint64(len(ns.Branch)))
	for _, d := range ns.Branch {
		p = p.AppendFixed(d[:])
	}
	if nil == ns.Proof {
		return p.AppendVarint(0)
	}
	p = p.AppendVarint(1)
	return p.AppendFixed(ns.Proof.Pack())
}

// maximum branch entries accepted when unpacking
const maximumBranch = 64

// UnpackFrom - read a network specific proof from an unpacker
func UnpackFrom(u *util.Unpacker) *NetworkSpecific {
	ns := &NetworkSpecific{}
	n := u.Varint()
	if n > maximumBranch {
		n = 0
	}
	for i := uint64(0); i < n && nil == u.Err(); i += 1 {
		var d digest.Digest
		_ = digest.FromBytes(&d, u.Fixed(digest.Length))
		ns.Branch = append(ns.Branch, d)
	}
	if 1 == u.Varint() {
		ns.Proof = UnpackWorkProofFrom(u)
	}
	return ns
}
