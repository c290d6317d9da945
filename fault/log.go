// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
)

// last-chance log channel
var globalData struct {
	sync.Mutex
	log *logger.L
}

// Initialise - setup a log channel for reporting fatal conditions
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if nil != globalData.log {
		return ErrAlreadyInitialised
	}
	globalData.log = logger.New("PANIC")
	if nil == globalData.log {
		return ErrInvalidLoggerChannel
	}
	return nil
}

// Finalise - flush any data
func Finalise() {
	globalData.Lock()
	defer globalData.Unlock()

	if nil != globalData.log {
		globalData.log.Flush()
		globalData.log = nil
	}
}

// Criticalf - log a formatted string prefixed by the caller's location
func Criticalf(format string, arguments ...interface{}) {
	criticalf(2, format, arguments...)
}

// Panicf - log the formatted message then panic
//
// used when the ledger store is found in a state that can only be
// caused by a programming error (e.g. a main chain entry with no message)
func Panicf(format string, arguments ...interface{}) {
	criticalf(2, format, arguments...)
	message := fmt.Sprintf(format, arguments...)
	time.Sleep(100 * time.Millisecond) // to allow logging output
	panic(message)
}

// PanicIfError - conditional panic
func PanicIfError(message string, err error) {
	if nil == err {
		return
	}
	criticalf(2, "%s failed with error: %s", message, err)
	time.Sleep(100 * time.Millisecond)
	panic(fmt.Sprintf("%s failed with error: %s", message, err))
}

func criticalf(depth int, format string, arguments ...interface{}) {
	if _, file, line, ok := runtime.Caller(depth); ok {
		a := make([]interface{}, 2, 2+len(arguments))
		a[0] = file
		a[1] = line
		a = append(a, arguments...)
		format = "(%q:%d) " + format
		arguments = a
	}

	globalData.Lock()
	log := globalData.log
	globalData.Unlock()

	if nil == log {
		fmt.Printf("*** "+format+"\n", arguments...)
		return
	}
	log.Criticalf(format, arguments...)
	log.Flush()
}
