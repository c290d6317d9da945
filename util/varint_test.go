// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/creditd/util"
)

func TestVarint64Encoding(t *testing.T) {
	tests := []struct {
		value   uint64
		encoded []byte
	}{
		{0, []byte{0x00}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{1 << 56, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}},
		{0xffffffffffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for i, item := range tests {
		assert.Equal(t, item.encoded, util.ToVarint64(item.value), "%d: encode: %d", i, item.value)

		// trailing bytes are left for the caller
		buffer := append(append([]byte{}, item.encoded...), 0xaa, 0x55)
		value, n := util.FromVarint64(buffer)
		assert.Equal(t, item.value, value, "%d: decode", i)
		assert.Equal(t, len(item.encoded), n, "%d: length", i)
	}
}

func TestVarint64Truncated(t *testing.T) {
	for i, buffer := range [][]byte{nil, {0x81}, {0xff, 0xff, 0x80}} {
		value, n := util.FromVarint64(buffer)
		assert.Equal(t, uint64(0), value, "%d: value", i)
		assert.Equal(t, 0, n, "%d: length", i)
	}
}
