// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"github.com/bitmark-inc/creditd/fault"
)

// Packed - a record under construction
type Packed []byte

// AppendVarint - add a Varint64
func (p Packed) AppendVarint(value uint64) Packed {
	return append(p, ToVarint64(value)...)
}

// AppendBytes - add a Varint64 length followed by the bytes
func (p Packed) AppendBytes(data []byte) Packed {
	p = p.AppendVarint(uint64(len(data)))
	return append(p, data...)
}

// AppendFixed - add bytes whose length is implied by the record layout
func (p Packed) AppendFixed(data []byte) Packed {
	return append(p, data...)
}

// Unpacker - sequential reader for a Packed record
//
// the first error is retained and all later reads return zero values
type Unpacker struct {
	buffer []byte
	err    error
}

// NewUnpacker - start reading a record
func NewUnpacker(buffer []byte) *Unpacker {
	return &Unpacker{
		buffer: buffer,
	}
}

// Varint - read a Varint64
func (u *Unpacker) Varint() uint64 {
	if nil != u.err {
		return 0
	}
	value, n := FromVarint64(u.buffer)
	if 0 == n {
		u.err = fault.ErrVarintTruncated
		return 0
	}
	u.buffer = u.buffer[n:]
	return value
}

// Bytes - read a length prefixed byte string, the result is a copy
func (u *Unpacker) Bytes() []byte {
	length := u.Varint()
	if nil != u.err {
		return nil
	}
	if length > uint64(len(u.buffer)) {
		u.err = fault.ErrBadPackedLength
		return nil
	}
	return u.Fixed(int(length))
}

// Fixed - read n bytes, the result is a copy
func (u *Unpacker) Fixed(n int) []byte {
	if nil != u.err {
		return nil
	}
	if n < 0 || n > len(u.buffer) {
		u.err = fault.ErrBadPackedLength
		return nil
	}
	data := make([]byte, n)
	copy(data, u.buffer[:n])
	u.buffer = u.buffer[n:]
	return data
}

// Remaining - the unread part of the record
func (u *Unpacker) Remaining() []byte {
	return u.buffer
}

// Err - the first error encountered
func (u *Unpacker) Err() error {
	return u.err
}

// Done - error unless the record was read completely without error
func (u *Unpacker) Done() error {
	if nil != u.err {
		return u.err
	}
	if 0 != len(u.buffer) {
		return fault.ErrBadPackedLength
	}
	return nil
}
