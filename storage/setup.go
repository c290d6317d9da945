// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_storage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/logger"
)

// Pools - the set of exported pools
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type Pools struct {
	Messages          *PoolHandle `prefix:"M"`
	HashLists         *PoolHandle `prefix:"L"`
	EnclosedData      *PoolHandle `prefix:"E"`
	MessageTypes      *PoolHandle `prefix:"Y"`
	ShortHashes       *PoolHandle `prefix:"S"`
	TotalWork         *PoolHandle `prefix:"W"`
	TotalWorkIndex    *PoolHandle `prefix:"w"`
	Children          *PoolHandle `prefix:"C"`
	MainChain         *PoolHandle `prefix:"m"`
	MainChainIndex    *PoolHandle `prefix:"n"`
	BatchRoots        *PoolHandle `prefix:"R"`
	SpentChains       *PoolHandle `prefix:"P"`
	ReportedWork      *PoolHandle `prefix:"r"`
	ScrutinizedWork   *PoolHandle `prefix:"s"`
	Handled           *PoolHandle `prefix:"H"`
	SpotCheckFailures *PoolHandle `prefix:"F"`
	TestData          *PoolHandle `prefix:"Z"`
}

// Handle - an open database and its pools
type Handle struct {
	sync.Mutex
	Pools

	log     *logger.L
	db      *leveldb.DB
	trx     *leveldb.Batch
	pending Cache
}

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const currentDBVersion = 0x100

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// Open - open a database file
func Open(database string, readOnly bool) (*Handle, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(database, opt)
	if nil != err {
		return nil, err
	}
	return newHandle(db, readOnly)
}

// OpenMemory - open a database held entirely in memory
func OpenMemory() (*Handle, error) {
	db, err := leveldb.Open(ldb_storage.NewMemStorage(), nil)
	if nil != err {
		return nil, err
	}
	return newHandle(db, ReadWrite)
}

func newHandle(db *leveldb.DB, readOnly bool) (*Handle, error) {

	ok := false
	defer func() {
		if !ok {
			db.Close()
		}
	}()

	version, err := getVersion(db)
	if nil != err {
		return nil, err
	}

	// ensure no database downgrade
	if version > currentDBVersion {
		return nil, fmt.Errorf("database version: %d > current version: %d", version, currentDBVersion)
	}
	if readOnly && version != currentDBVersion {
		return nil, fmt.Errorf("database version: %d  is not current: %d", version, currentDBVersion)
	}
	if 0 == version {
		// database was empty so tag as current version
		err = putVersion(db, currentDBVersion)
		if nil != err {
			return nil, err
		}
	}

	handle := &Handle{
		log:     logger.New("storage"),
		db:      db,
		pending: newCache(),
	}

	// this will be a struct type
	poolType := reflect.TypeOf(handle.Pools)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&handle.Pools).Elem()

	// scan each field
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			return nil, fmt.Errorf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
		}

		prefix := prefixTag[0]
		limit := []byte(nil)
		if prefix < 255 {
			limit = []byte{prefix + 1}
		}

		p := &PoolHandle{
			prefix: prefix,
			limit:  limit,
			handle: handle,
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))
	}

	ok = true // prevent db close
	return handle, nil
}

// Close - close the database connection
func (handle *Handle) Close() {
	handle.Lock()
	defer handle.Unlock()
	if nil != handle.db {
		handle.db.Close()
		handle.db = nil
	}
}

func getVersion(db *leveldb.DB) (int, error) {
	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return 0, nil
	} else if nil != err {
		return 0, err
	}

	if 4 != len(versionValue) {
		return 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	return int(binary.BigEndian.Uint32(versionValue)), nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}

// ensure the handle is usable
func (handle *Handle) database() *leveldb.DB {
	if nil == handle.db {
		logger.Panicf("storage: %s", fault.ErrNotInitialised)
	}
	return handle.db
}
