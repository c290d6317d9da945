// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the ledger's key/value store
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the available tables.
//
// There are no package globals: Open returns a *Handle and every
// component that touches the store is given that handle.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++      = concatenation of byte data
// 3. hash    = 20 byte Hash160 digest
// 4. work    = big endian uint64 (8 bytes) so keys sort by work
// 5. short   = little endian uint32 taken from the first 4 bytes of a hash
//
// Messages:
//
//   M ++ hash                - mined credit message store
//                              data: packed message
//   L ++ hash                - recovered full hashes of a message's hash list
//                              data: concatenated hashes
//   E ++ hash                - enclosed transactions
//                              data: packed transaction
//   Y ++ hash                - type of a stored item
//                              data: "msg" | "tx"
//   S ++ short ++ hash       - short hash lookup
//                              data: (none)
//
// Work:
//
//   W ++ hash                - total work of an accepted message
//                              data: work
//   w ++ work ++ hash        - ordered total work index
//                              data: (none)
//   C ++ parent ++ child     - children of an accepted message
//                              data: (none)
//
// Main chain:
//
//   m ++ hash                - main chain membership
//                              data: reported work
//   n ++ work                - main chain in order
//                              data: hash
//   R ++ batch root          - main chain batch lookup
//                              data: hash
//   P ++ hash                - spent chain snapshot
//                              data: packed bit chain
//
// Calendars:
//
//   r ++ work ++ hash        - reported calendar work
//                              data: (none)
//   s ++ work ++ hash        - scrutinized calendar work
//                              data: (none)
//
// Handling:
//
//   H ++ hash                - message handling status
//                              data: status byte
//   F ++ hash                - failed spot check
//                              data: packed disproof
package storage
