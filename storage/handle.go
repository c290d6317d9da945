// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"
)

// PoolHandle - one prefixed table of a database
type PoolHandle struct {
	prefix byte
	limit  []byte
	handle *Handle
}

// Element - a binary data item
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value bytes pair to the database
func (p *PoolHandle) Put(key []byte, value []byte) {
	err := p.handle.put(p.prefixKey(key), value)
	logger.PanicIfError("pool.Put", err)
}

// PutN - store a uint64 as an 8 byte big endian value
func (p *PoolHandle) PutN(key []byte, value uint64) {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, value)
	p.Put(key, buffer)
}

// Delete - remove a key from the database
func (p *PoolHandle) Delete(key []byte) {
	err := p.handle.remove(p.prefixKey(key))
	logger.PanicIfError("pool.Delete", err)
}

// Get - read a value for a given key
//
// this returns the actual element - copy the result if it must be preserved
func (p *PoolHandle) Get(key []byte) []byte {
	value, err := p.handle.get(p.prefixKey(key))
	if leveldb.ErrNotFound == err {
		return nil
	}
	logger.PanicIfError("pool.Get", err)
	return value
}

// GetN - read a record and decode first 8 bytes as big endian uint64
//
// second parameter is false if record was not found
// panics if not 8 (or more) bytes in the record
func (p *PoolHandle) GetN(key []byte) (uint64, bool) {
	buffer := p.Get(key)
	if nil == buffer {
		return 0, false
	}
	if len(buffer) < 8 {
		logger.Panicf("pool.GetN truncated record for: %x: %x", key, buffer)
	}
	n := binary.BigEndian.Uint64(buffer[:8])
	return n, true
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) bool {
	_, err := p.handle.get(p.prefixKey(key))
	if leveldb.ErrNotFound == err {
		return false
	}
	logger.PanicIfError("pool.Has", err)
	return true
}

// LastElement - get the last element in a pool
func (p *PoolHandle) LastElement() (Element, bool) {
	return p.edge(nil, true)
}

// FirstElement - get the first element in a pool
func (p *PoolHandle) FirstElement() (Element, bool) {
	return p.edge(nil, false)
}

// LastElementWithPrefix - get the last element whose key starts with prefix
func (p *PoolHandle) LastElementWithPrefix(prefix []byte) (Element, bool) {
	return p.edge(prefix, true)
}

func (p *PoolHandle) edge(prefix []byte, last bool) (Element, bool) {
	maxRange := p.keyRange(prefix)

	iter := p.handle.database().NewIterator(maxRange, nil)

	found := false
	result := Element{}
	ok := false
	if last {
		ok = iter.Last()
	} else {
		ok = iter.First()
	}
	if ok {
		result = p.element(iter.Key(), iter.Value())
		found = true
	}
	iter.Release()
	err := iter.Error()
	logger.PanicIfError("pool.LastElement", err)
	return result, found
}

// range covering the whole pool or a key prefix within it
func (p *PoolHandle) keyRange(prefix []byte) *ldb_util.Range {
	if 0 == len(prefix) {
		return &ldb_util.Range{
			Start: []byte{p.prefix}, // Start of key range, included in the range
			Limit: p.limit,          // Limit of key range, excluded from the range
		}
	}
	return ldb_util.BytesPrefix(p.prefixKey(prefix))
}

// copy an iterator item stripping the pool prefix
//
// contents of iterator slices must not be modified, and are
// only valid until the next call to Next
func (p *PoolHandle) element(key []byte, value []byte) Element {
	dataKey := make([]byte, len(key)-1) // strip the prefix
	copy(dataKey, key[1:])              // ...

	dataValue := make([]byte, len(value))
	copy(dataValue, value)

	return Element{
		Key:   dataKey,
		Value: dataValue,
	}
}
