// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package credit

import (
	"bytes"

	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/util"
)

// Credit - a spendable unit
type Credit struct {
	KeyData []byte `json:"keyData"`
	Amount  uint64 `json:"amount,string"`
}

// Pack - amount followed by length prefixed key data
func (c Credit) Pack() util.Packed {
	return util.Packed{}.AppendVarint(c.Amount).AppendBytes(c.KeyData)
}

// Hash - digest of the packed credit
func (c Credit) Hash() digest.Digest {
	return digest.NewDigest(c.Pack())
}

// Equal - structural equality
func (c Credit) Equal(other Credit) bool {
	return c.Amount == other.Amount && bytes.Equal(c.KeyData, other.KeyData)
}

// UnpackFrom - read a credit from an unpacker
func UnpackFrom(u *util.Unpacker) Credit {
	c := Credit{}
	c.Amount = u.Varint()
	c.KeyData = u.Bytes()
	return c
}

// Unpack - decode a packed credit
func Unpack(record []byte) (Credit, error) {
	u := util.NewUnpacker(record)
	c := UnpackFrom(u)
	return c, u.Done()
}
