// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/creditd/fault"
)

var (
	ErrExistsOne     = fault.ExistsError("exists one ")
	ErrExistsTwo     = fault.ExistsError("exists two")
	ErrInvalidOne    = fault.InvalidError("invalid one")
	ErrInvalidTwo    = fault.InvalidError("invalid two")
	ErrLengthOne     = fault.LengthError("length one")
	ErrNotFoundOne   = fault.NotFoundError("not found one")
	ErrProcessOne    = fault.ProcessError("process one")
	ErrMissingOne    = fault.MissingDataError("missing one")
	ErrMissingTwo    = fault.MissingDataError("missing two")
	ErrValidationOne = fault.ValidationError("validation one")
	ErrValidationTwo = fault.ValidationError("validation two")
	ErrDisproofOne   = fault.DisproofError("disproof one")
)

// test that the classes of error can be distinguished
func TestClasses(t *testing.T) {
	errorList := []struct {
		err        error
		exists     bool
		invalid    bool
		length     bool
		notFound   bool
		process    bool
		missing    bool
		validation bool
		disproof   bool
	}{
		{ErrExistsOne, true, false, false, false, false, false, false, false},
		{ErrExistsTwo, true, false, false, false, false, false, false, false},
		{ErrInvalidOne, false, true, false, false, false, false, false, false},
		{ErrInvalidTwo, false, true, false, false, false, false, false, false},
		{ErrLengthOne, false, false, true, false, false, false, false, false},
		{ErrNotFoundOne, false, false, false, true, false, false, false, false},
		{ErrProcessOne, false, false, false, false, true, false, false, false},
		{ErrMissingOne, false, false, false, false, false, true, false, false},
		{ErrMissingTwo, false, false, false, false, false, true, false, false},
		{ErrValidationOne, false, false, false, false, false, false, true, false},
		{ErrValidationTwo, false, false, false, false, false, false, true, false},
		{ErrDisproofOne, false, false, false, false, false, false, false, true},
		{fault.ErrMissingPredecessor, false, false, false, false, false, true, false, false},
		{fault.ErrInvalidBatchRoot, false, false, false, false, false, false, true, false},
		{fault.ErrSpotCheckFailed, false, false, false, false, false, false, false, true},
	}

	for i, e := range errorList {
		err := e.err
		if fault.IsErrExists(err) != e.exists {
			t.Errorf("%d: expected 'exists' == %v for err = %v", i, e.exists, err)
		}
		if fault.IsErrInvalid(err) != e.invalid {
			t.Errorf("%d: expected 'invalid' == %v for err = %v", i, e.invalid, err)
		}
		if fault.IsErrLength(err) != e.length {
			t.Errorf("%d: expected 'length' == %v for err = %v", i, e.length, err)
		}
		if fault.IsErrNotFound(err) != e.notFound {
			t.Errorf("%d: expected 'not found' == %v for err = %v", i, e.notFound, err)
		}
		if fault.IsErrProcess(err) != e.process {
			t.Errorf("%d: expected 'process' == %v for err = %v", i, e.process, err)
		}
		if fault.IsErrMissingData(err) != e.missing {
			t.Errorf("%d: expected 'missing data' == %v for err = %v", i, e.missing, err)
		}
		if fault.IsErrValidation(err) != e.validation {
			t.Errorf("%d: expected 'validation' == %v for err = %v", i, e.validation, err)
		}
		if fault.IsErrDisproof(err) != e.disproof {
			t.Errorf("%d: expected 'disproof' == %v for err = %v", i, e.disproof, err)
		}
	}
}

func TestPanicIfError(t *testing.T) {
	assert.NotPanics(t, func() {
		fault.PanicIfError("no error", nil)
	}, "nil error")

	assert.PanicsWithValue(t, "store failed with error: length one", func() {
		fault.PanicIfError("store", ErrLengthOne)
	}, "error")

	assert.PanicsWithValue(t, "missing entry: 7", func() {
		fault.Panicf("missing entry: %d", 7)
	}, "formatted")
}
