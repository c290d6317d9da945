// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/creditd/storage"
)

const (
	testingDirName   = "testing"
	databaseFileName = "testing/test.leveldb"
)

// a string data item
type stringElement struct {
	key   string
	value string
}

// make an element array
func makeElements(input []stringElement) []storage.Element {
	output := make([]storage.Element, 0, len(input))
	for _, e := range input {
		output = append(output, storage.Element{
			Key:   []byte(e.key),
			Value: []byte(e.value),
		})
	}
	return output
}

// this is the expected order
var expectedElements = makeElements([]stringElement{
	{"key-five", "data-five"},
	{"key-four", "data-four"},
	{"key-one", "data-one(NEW)"},
	{"key-seven", "data-seven"},
	{"key-six", "data-six"},
	{"key-three", "data-three"},
	{"key-two", "data-two"},
})

func TestMain(m *testing.M) {
	removeFiles()
	_ = os.Mkdir(testingDirName, 0o700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	if err := logger.Initialise(logging); nil != err {
		panic("logger setup failed: " + err.Error())
	}

	rc := m.Run()

	logger.Finalise()
	removeFiles()
	os.Exit(rc)
}

func removeFiles() {
	os.RemoveAll(testingDirName)
}

func setup(t *testing.T) *storage.Handle {
	handle, err := storage.OpenMemory()
	if nil != err {
		t.Fatalf("storage open error: %s", err)
	}
	return handle
}

func fillPool(p *storage.PoolHandle) {
	p.Put([]byte("key-one"), []byte("data-one"))
	p.Put([]byte("key-two"), []byte("data-two"))
	p.Put([]byte("key-remove-me"), []byte("to be deleted"))
	p.Delete([]byte("key-remove-me"))
	p.Put([]byte("key-three"), []byte("data-three"))
	p.Put([]byte("key-one"), []byte("data-one"))     // duplicate
	p.Put([]byte("key-three"), []byte("data-three")) // duplicate
	p.Put([]byte("key-four"), []byte("data-four"))
	p.Put([]byte("key-delete-this"), []byte("to be deleted"))
	p.Put([]byte("key-five"), []byte("data-five"))
	p.Put([]byte("key-six"), []byte("data-six"))
	p.Delete([]byte("key-delete-this"))
	p.Put([]byte("key-seven"), []byte("data-seven"))
	p.Put([]byte("key-one"), []byte("data-one(NEW)")) // duplicate
}
