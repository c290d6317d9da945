// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package difficulty - retarget arithmetic for batch and diurnal work
//
// a difficulty is an amount of work, the value a proof must reach
// each retarget moves it by the fixed ratio 95/100 or 100/95
package difficulty

import (
	"math"
	"math/big"
)

// time values are in microseconds
const (
	TargetBatchInterval = 60 * 1000000           // one batch per minute
	TargetDiurnLength   = 24 * 60 * 60 * 1000000 // one calend per day

	DefaultInitial        = 100000
	DefaultInitialDiurnal = 120000000
)

// the retarget ratio
var (
	numerator   = big.NewInt(95)
	denominator = big.NewInt(100)
)

// Parameters - network retarget configuration
type Parameters struct {
	Initial        uint64 `gluamapper:"initial" json:"initial"`
	InitialDiurnal uint64 `gluamapper:"initial_diurnal" json:"initial_diurnal"`
	BatchInterval  uint64 `gluamapper:"batch_interval_us" json:"batch_interval_us"`
	DiurnLength    uint64 `gluamapper:"diurn_length_us" json:"diurn_length_us"`
}

// DefaultParameters - values used when configuration omits them
func DefaultParameters() Parameters {
	return Parameters{
		Initial:        DefaultInitial,
		InitialDiurnal: DefaultInitialDiurnal,
		BatchInterval:  TargetBatchInterval,
		DiurnLength:    TargetDiurnLength,
	}
}

// Adjust - retarget current given the observed interval
//
// slower than target lowers the difficulty by 95/100, otherwise it
// rises by 100/95; integer division truncates in both directions
// the result is never zero and saturates at the uint64 maximum
func Adjust(current uint64, interval uint64, target uint64) uint64 {
	n := new(big.Int).SetUint64(current)
	if interval > target {
		n.Mul(n, numerator)
		n.Quo(n, denominator)
	} else {
		n.Mul(n, denominator)
		n.Quo(n, numerator)
	}
	if !n.IsUint64() {
		return math.MaxUint64
	}
	if 0 == n.Sign() {
		return 1
	}
	return n.Uint64()
}

// Lower - the difficulty after a slow interval
func Lower(current uint64) uint64 {
	return Adjust(current, 1, 0)
}

// Raise - the difficulty after a fast interval
func Raise(current uint64) uint64 {
	return Adjust(current, 0, 0)
}

// NextDifficulty - retarget a batch difficulty
func (p Parameters) NextDifficulty(current uint64, interval uint64) uint64 {
	return Adjust(current, interval, p.BatchInterval)
}

// NextDiurnalDifficulty - retarget a diurnal difficulty
func (p Parameters) NextDiurnalDifficulty(current uint64, interval uint64) uint64 {
	return Adjust(current, interval, p.DiurnLength)
}
