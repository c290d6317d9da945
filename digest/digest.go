// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package digest

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/creditd/fault"
)

// Length - number of bytes in the digest
const Length = 20

// Digest - type for a 160 bit hash
//
// this is the identity of every message, transaction and tree node
// to convert to bytes just use d[:]
type Digest [Length]byte

// Zero - the digest of nothing, used as "no predecessor"
var Zero = Digest{}

// NewDigest - create a digest from a byte slice
//
// SHA3-256 applied twice, truncated to the first 160 bits
func NewDigest(record []byte) Digest {
	first := sha3.Sum256(record)
	second := sha3.Sum256(first[:])
	var d Digest
	copy(d[:], second[:Length])
	return d
}

// IsZero - true for the zero digest
func (digest Digest) IsZero() bool {
	return Zero == digest
}

// Xor - bitwise exclusive or of two digests
func (digest Digest) Xor(other Digest) Digest {
	var d Digest
	for i := 0; i < Length; i += 1 {
		d[i] = digest[i] ^ other[i]
	}
	return d
}

// Or - bitwise or of two digests
func (digest Digest) Or(other Digest) Digest {
	var d Digest
	for i := 0; i < Length; i += 1 {
		d[i] = digest[i] | other[i]
	}
	return d
}

// Cmp - compare two digests as byte strings
func (digest Digest) Cmp(other Digest) int {
	return bytes.Compare(digest[:], other[:])
}

// String - convert a binary digest to hex string for use by the fmt package (for %s)
func (digest Digest) String() string {
	return hex.EncodeToString(digest[:])
}

// GoString - convert a binary digest to hex string for use by the fmt package (for %#v)
func (digest Digest) GoString() string {
	return "<Hash160:" + hex.EncodeToString(digest[:]) + ">"
}

// Scan - convert a hex representation to a digest for use by the format package scan routines
func (digest *Digest) Scan(state fmt.ScanState, verb rune) error {
	token, err := state.Token(true, func(c rune) bool {
		if c >= '0' && c <= '9' {
			return true
		}
		if c >= 'A' && c <= 'F' {
			return true
		}
		if c >= 'a' && c <= 'f' {
			return true
		}
		return false
	})
	if nil != err {
		return err
	}
	return digest.UnmarshalText(token)
}

// MarshalText - convert digest to hex text
func (digest Digest) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(len(digest))
	buffer := make([]byte, size)
	hex.Encode(buffer, digest[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a digest
func (digest *Digest) UnmarshalText(s []byte) error {
	if Length != hex.DecodedLen(len(s)) {
		return fault.ErrDigestLength
	}
	buffer := make([]byte, Length)
	_, err := hex.Decode(buffer, s)
	if nil != err {
		return err
	}
	copy(digest[:], buffer)
	return nil
}

// FromBytes - convert and validate a binary byte slice to a digest
func FromBytes(digest *Digest, buffer []byte) error {
	if Length != len(buffer) {
		return fault.ErrDigestLength
	}
	copy(digest[:], buffer)
	return nil
}

// FromHex - convert a hex string into a digest
func FromHex(s string) (Digest, error) {
	var d Digest
	err := d.UnmarshalText([]byte(s))
	return d, err
}
