// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hashtree

import (
	"github.com/bitmark-inc/creditd/digest"
)

// TreeHash - hash of a tree node's input bytes
func TreeHash(input []byte) digest.Digest {
	return digest.NewDigest(input)
}

// AsymmetricCombine - order dependent combination: H(a || b)
func AsymmetricCombine(a digest.Digest, b digest.Digest) digest.Digest {
	input := make([]byte, 2*digest.Length)
	copy(input, a[:])
	copy(input[digest.Length:], b[:])
	return TreeHash(input)
}

// SymmetricCombine - order independent combination:
//   H( (a XOR b) || (H(a) OR H(b)) )
//
// since neither half depends on the order of the arguments a branch
// needs no left/right markers
func SymmetricCombine(a digest.Digest, b digest.Digest) digest.Digest {
	ha := TreeHash(a[:])
	hb := TreeHash(b[:])

	xor := a.Xor(b)
	or := ha.Or(hb)

	input := make([]byte, 2*digest.Length)
	copy(input, xor[:])
	copy(input[digest.Length:], or[:])
	return TreeHash(input)
}

// EvaluateBranchWithHash - fold the interior of a branch onto a starting hash
//
// the last element of the branch (the claimed root) is not used
func EvaluateBranchWithHash(branch []digest.Digest, hash digest.Digest, start int) digest.Digest {
	for k := start; k+1 < len(branch); k += 1 {
		hash = SymmetricCombine(hash, branch[k])
	}
	return hash
}

// EvaluateBranch - compute the root a branch leads to from its first element
func EvaluateBranch(branch []digest.Digest) digest.Digest {
	if 0 == len(branch) {
		return digest.Zero
	}
	return EvaluateBranchWithHash(branch, branch[0], 1)
}

// VerifyBranch - true if the branch evaluates to its own last element
func VerifyBranch(branch []digest.Digest) bool {
	if len(branch) < 2 {
		return false
	}
	return EvaluateBranch(branch) == branch[len(branch)-1]
}
