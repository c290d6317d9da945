// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/creditd/fault"
)

func TestTransactionCommit(t *testing.T) {
	handle := setup(t)
	defer handle.Close()

	p := handle.TestData
	p.Put([]byte("old"), []byte("value"))

	err := handle.Begin()
	if nil != err {
		t.Fatalf("begin error: %s", err)
	}
	assert.True(t, handle.InTransaction(), "in transaction")
	assert.Equal(t, fault.ErrTransactionAlreadyInProgress, handle.Begin(), "nested begin")

	p.Put([]byte("new"), []byte("value"))
	p.Delete([]byte("old"))

	// reads see uncommitted writes
	assert.True(t, p.Has([]byte("new")), "uncommitted put")
	assert.False(t, p.Has([]byte("old")), "uncommitted delete")

	// cursors see only committed data
	_, found := p.LastElementWithPrefix([]byte("new"))
	assert.False(t, found, "cursor before commit")

	err = handle.Commit()
	if nil != err {
		t.Fatalf("commit error: %s", err)
	}
	assert.False(t, handle.InTransaction(), "after commit")

	_, found = p.LastElementWithPrefix([]byte("new"))
	assert.True(t, found, "cursor after commit")
	assert.False(t, p.Has([]byte("old")), "committed delete")
}

func TestTransactionAbort(t *testing.T) {
	handle := setup(t)
	defer handle.Close()

	p := handle.TestData

	err := handle.Begin()
	if nil != err {
		t.Fatalf("begin error: %s", err)
	}
	p.Put([]byte("discard"), []byte("value"))
	handle.Abort()

	assert.False(t, p.Has([]byte("discard")), "aborted put")
	assert.Nil(t, handle.Begin(), "begin after abort")
	assert.Nil(t, handle.Commit(), "empty commit")
}
