// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bitchain - the spent output bitmap
//
// bit n is set when the credit at global position n has been spent
package bitchain

import (
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/util"
)

// BitChain - growable bit vector
//
// bits beyond length are always clear so equal chains pack equally
type BitChain struct {
	length uint64
	bits   []byte
}

// New - an empty chain
func New() *BitChain {
	return &BitChain{}
}

// Length - number of positions
func (chain *BitChain) Length() uint64 {
	return chain.length
}

// SetLength - grow with clear bits or truncate
func (chain *BitChain) SetLength(length uint64) {
	n := (length + 7) / 8
	if uint64(len(chain.bits)) < n {
		chain.bits = append(chain.bits, make([]byte, n-uint64(len(chain.bits)))...)
	} else {
		chain.bits = chain.bits[:n]
	}
	chain.length = length

	// clear the unused tail of the last byte
	if 0 != length%8 {
		chain.bits[n-1] &= byte(1)<<(length%8) - 1
	}
}

// Add - append one clear position
func (chain *BitChain) Add() {
	chain.SetLength(chain.length + 1)
}

// Get - true if position is set, false beyond the end
func (chain *BitChain) Get(position uint64) bool {
	if position >= chain.length {
		return false
	}
	return 0 != chain.bits[position/8]&(1<<(position%8))
}

// Set - mark a position, growing the chain if needed
func (chain *BitChain) Set(position uint64) {
	if position >= chain.length {
		chain.SetLength(position + 1)
	}
	chain.bits[position/8] |= 1 << (position % 8)
}

// Clear - unmark a position
func (chain *BitChain) Clear(position uint64) {
	if position >= chain.length {
		return
	}
	chain.bits[position/8] &^= 1 << (position % 8)
}

// Copy - an independent duplicate
func (chain *BitChain) Copy() *BitChain {
	bits := make([]byte, len(chain.bits))
	copy(bits, chain.bits)
	return &BitChain{
		length: chain.length,
		bits:   bits,
	}
}

// Count - number of set positions
func (chain *BitChain) Count() int {
	n := 0
	for _, b := range chain.bits {
		for ; 0 != b; b &= b - 1 {
			n += 1
		}
	}
	return n
}

// Equal - same length and same bits
func (chain *BitChain) Equal(other *BitChain) bool {
	if chain.length != other.length {
		return false
	}
	for i, b := range chain.bits {
		if b != other.bits[i] {
			return false
		}
	}
	return true
}

// Pack - length followed by the bit bytes
func (chain *BitChain) Pack() util.Packed {
	return util.Packed{}.
		AppendVarint(chain.length).
		AppendFixed(chain.bits)
}

// Hash - the value carried as spent chain hash
func (chain *BitChain) Hash() digest.Digest {
	return digest.NewDigest(chain.Pack())
}

// Unpack - decode a packed chain
func Unpack(record []byte) (*BitChain, error) {
	u := util.NewUnpacker(record)
	length := u.Varint()
	if nil != u.Err() {
		return nil, u.Err()
	}
	n := (length + 7) / 8
	if uint64(len(u.Remaining())) != n {
		return nil, fault.ErrBadPackedLength
	}
	chain := &BitChain{
		length: length,
		bits:   u.Fixed(int(n)),
	}
	if err := u.Done(); nil != err {
		return nil, err
	}
	if 0 != length%8 && 0 != chain.bits[n-1]&^(byte(1)<<(length%8)-1) {
		return nil, fault.ErrBadPackedLength
	}
	return chain, nil
}
