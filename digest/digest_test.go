// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package digest_test

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/fault"
)

func TestNewDigestIsDoubleHashTruncated(t *testing.T) {
	data := []byte("some ledger data")

	first := sha3.Sum256(data)
	second := sha3.Sum256(first[:])

	d := digest.NewDigest(data)
	assert.Equal(t, second[:digest.Length], d[:], "truncated double hash")
	assert.Equal(t, d, digest.NewDigest(data), "deterministic")
	assert.NotEqual(t, d, digest.NewDigest([]byte("other data")), "distinct")
}

func TestScanFmt(t *testing.T) {
	stringDigest := "00112233445566778899aabbccddeeff01234567"

	var d digest.Digest
	n, err := fmt.Sscan(stringDigest, &d)
	if nil != err {
		t.Fatalf("hex to digest error: %s", err)
	}
	if 1 != n {
		t.Fatalf("scanned %d items expected to scan 1", n)
	}

	expected, _ := hex.DecodeString(stringDigest)
	assert.Equal(t, expected, d[:], "bytes")

	assert.Equal(t, stringDigest, fmt.Sprintf("%s", d), "string")
	assert.Equal(t, "<Hash160:"+stringDigest+">", fmt.Sprintf("%#v", d), "go string")
}

func TestText(t *testing.T) {
	d := digest.NewDigest([]byte("text"))

	buffer, err := d.MarshalText()
	if nil != err {
		t.Fatalf("marshal text error: %s", err)
	}

	var r digest.Digest
	err = r.UnmarshalText(buffer)
	if nil != err {
		t.Fatalf("unmarshal text error: %s", err)
	}
	assert.Equal(t, d, r, "text round trip")

	err = r.UnmarshalText([]byte("abcd"))
	assert.Equal(t, fault.ErrDigestLength, err, "short text")
}

func TestBitOperations(t *testing.T) {
	a := digest.Digest{0xf0, 0x0f}
	b := digest.Digest{0xff, 0x01}

	assert.Equal(t, digest.Digest{0x0f, 0x0e}, a.Xor(b), "xor")
	assert.Equal(t, digest.Digest{0xff, 0x0f}, a.Or(b), "or")
	assert.True(t, a.Xor(a).IsZero(), "self xor")
	assert.True(t, a.Cmp(b) < 0, "compare")
}

func TestFromBytes(t *testing.T) {
	var d digest.Digest
	err := digest.FromBytes(&d, make([]byte, 19))
	assert.Equal(t, fault.ErrDigestLength, err, "short buffer")

	err = digest.FromBytes(&d, make([]byte, 20))
	assert.Nil(t, err, "correct length")
	assert.True(t, d.IsZero(), "zero")
}
