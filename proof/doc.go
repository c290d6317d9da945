// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package proof - boundary with the proof of work engine
//
// the ledger only needs four things from a proof: produce one, how
// much work it achieved, a cheap structural check and a probabilistic
// spot check that yields a disproof on failure.
//
// LinkChain is a reference engine: a seed starts a chain of hashes
// split into segments, each segment ends at the first hash below the
// link threshold and its length is the work it represents.  It is not
// memory hard; it exists so that the ledger can be exercised end to end.
package proof
