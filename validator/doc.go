// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package validator - network state rules for an incoming batch
//
// every field of a network state except the content roots follows
// from the predecessor, so each rule recomputes one field and
// compares; rules that need history not yet stored defer the batch
// instead of rejecting it
package validator
