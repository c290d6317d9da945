// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package tipcontroller - decide main chain membership of incoming batches
//
// each message moves through the states
//
//   Unseen -> Queued -> Verified -> OnTip | OffTip | Rejected
//
// a message waits in Queued while its predecessor or enclosed data is
// missing and is handled again as soon as that data arrives.  Accepting
// a batch may extend the current tip, leave the batch on a side branch
// or switch the main chain across a fork; the pending pool and the
// calendar follow the tip in every case.
//
// one mutex serialises validation of the predecessor state with the
// resulting tip change so no two switches interleave
package tipcontroller
