// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package creditsystem - the ledger store
//
// persists mined credit messages and their enclosed transactions,
// derives spent chains, tracks accumulated work and the main chain,
// and computes the predecessor derived fields of the next network
// state
//
// read paths return zero values when data is missing; mutations
// assume validated input and must be serialised by the caller
package creditsystem
