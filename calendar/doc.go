// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package calendar - compact, self checking summary of a chain
//
// a calend is a batch whose proof of work also meets the diurnal
// difficulty; it closes the diurn of batches mined since the calend
// before it and its diurn root commits to all of them
package calendar
