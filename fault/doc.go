// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches.
//
// The ledger classes decide what a caller does next: a MissingDataError
// means fetch and retry, a ValidationError rejects one batch for good
// and a DisproofError withdraws a batch that was already accepted.
package fault
