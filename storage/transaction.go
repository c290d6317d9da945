// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/creditd/fault"
)

// Begin - start collecting writes into a single batch
//
// reads through the pools see the uncommitted values, cursors do not
func (handle *Handle) Begin() error {
	handle.Lock()
	defer handle.Unlock()
	if nil != handle.trx {
		return fault.ErrTransactionAlreadyInProgress
	}
	handle.trx = new(leveldb.Batch)
	return nil
}

// Commit - atomically write the collected batch
func (handle *Handle) Commit() error {
	handle.Lock()
	defer handle.Unlock()
	if nil == handle.trx {
		return nil
	}
	err := handle.database().Write(handle.trx, nil)
	handle.trx = nil
	handle.pending.Clear()
	return err
}

// Abort - discard the collected batch
func (handle *Handle) Abort() {
	handle.Lock()
	defer handle.Unlock()
	handle.trx = nil
	handle.pending.Clear()
}

// InTransaction - true between Begin and Commit/Abort
func (handle *Handle) InTransaction() bool {
	handle.Lock()
	defer handle.Unlock()
	return nil != handle.trx
}

func (handle *Handle) put(key []byte, value []byte) error {
	handle.Lock()
	defer handle.Unlock()
	if nil != handle.trx {
		handle.trx.Put(key, value)
		handle.pending.Set(dbPut, string(key), value)
		return nil
	}
	return handle.database().Put(key, value, nil)
}

func (handle *Handle) remove(key []byte) error {
	handle.Lock()
	defer handle.Unlock()
	if nil != handle.trx {
		handle.trx.Delete(key)
		handle.pending.Set(dbDelete, string(key), nil)
		return nil
	}
	return handle.database().Delete(key, nil)
}

func (handle *Handle) get(key []byte) ([]byte, error) {
	handle.Lock()
	inTransaction := nil != handle.trx
	db := handle.database()
	handle.Unlock()

	if inTransaction {
		value, exists, known := handle.pending.Get(string(key))
		if known {
			if !exists {
				return nil, leveldb.ErrNotFound
			}
			return value, nil
		}
	}
	return db.Get(key, nil)
}
