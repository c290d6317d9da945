// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/creditd/fault"
)

// FetchCursor - cursor structure
type FetchCursor struct {
	pool     *PoolHandle
	maxRange util.Range
}

// NewFetchCursor - initialise a cursor to the start of a key range
func (p *PoolHandle) NewFetchCursor() *FetchCursor {
	return &FetchCursor{
		pool:     p,
		maxRange: *p.keyRange(nil),
	}
}

// NewPrefixCursor - initialise a cursor over keys starting with prefix
func (p *PoolHandle) NewPrefixCursor(prefix []byte) *FetchCursor {
	return &FetchCursor{
		pool:     p,
		maxRange: *p.keyRange(prefix),
	}
}

// Seek - move cursor to specific key position
func (cursor *FetchCursor) Seek(key []byte) *FetchCursor {
	cursor.maxRange.Start = cursor.pool.prefixKey(key)
	return cursor
}

// Fetch - return some elements starting from key
func (cursor *FetchCursor) Fetch(count int) ([]Element, error) {
	if nil == cursor {
		return nil, fault.ErrInvalidCursor
	}
	if count <= 0 {
		return nil, fault.ErrInvalidCount
	}

	iter := cursor.pool.handle.database().NewIterator(&cursor.maxRange, nil)

	results := make([]Element, 0, count)
	n := 0
iterating:
	for iter.Next() {
		results = append(results, cursor.pool.element(iter.Key(), iter.Value()))
		n += 1
		if n >= count {
			break iterating
		}
	}
	iter.Release()
	err := iter.Error()

	// the smallest key after the last one returned
	if n > 0 {
		next := cursor.pool.prefixKey(results[n-1].Key)
		cursor.maxRange.Start = append(next, 0x00)
	}
	return results, err
}

// Map - run a function on all elements in the range
func (cursor *FetchCursor) Map(f func(key []byte, value []byte) error) error {
	return cursor.iterate(false, f)
}

// ReverseMap - run a function on all elements in the range, last key first
func (cursor *FetchCursor) ReverseMap(f func(key []byte, value []byte) error) error {
	return cursor.iterate(true, f)
}

func (cursor *FetchCursor) iterate(reverse bool, f func(key []byte, value []byte) error) error {
	if nil == cursor {
		return fault.ErrInvalidCursor
	}

	iter := cursor.pool.handle.database().NewIterator(&cursor.maxRange, nil)

	step := iter.Next
	if reverse {
		tail := true
		step = func() bool {
			if tail {
				tail = false
				return iter.Last()
			}
			return iter.Prev()
		}
	}

	var err error
iterating:
	for step() {
		e := cursor.pool.element(iter.Key(), iter.Value())
		err = f(e.Key, e.Value)
		if nil != err {
			break iterating
		}
	}
	iter.Release()
	if nil == err {
		err = iter.Error()
	}
	return err
}
