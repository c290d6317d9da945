// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaintest

import (
	"os"
	"testing"

	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/logger"
)

const testingDirName = "testing"

// Main - run a package's tests with file logging under a testing directory
//
// call from TestMain; does not return
func Main(m *testing.M) {
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
	if err := fault.Initialise(); nil != err {
		panic("fault setup failed: " + err.Error())
	}

	rc := m.Run()

	fault.Finalise()
	logger.Finalise()
	removeFiles()
	os.Exit(rc)
}

func removeFiles() {
	os.RemoveAll(testingDirName)
}
