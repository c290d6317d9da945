// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/creditd/util"
)

func TestEnsureAbsolute(t *testing.T) {
	assert.Equal(t, "/data/credits.leveldb", util.EnsureAbsolute("/data", "credits.leveldb"), "relative")
	assert.Equal(t, "/var/log", util.EnsureAbsolute("/data", "/var/log/"), "absolute")
	assert.Equal(t, "/log", util.EnsureAbsolute("/data", "../log"), "cleaned")
}

func TestEnsureDirectory(t *testing.T) {
	dir, err := ioutil.TempDir("", "paths")
	require.NoError(t, err, "temporary directory")
	defer os.RemoveAll(dir)

	nested := filepath.Join(dir, "a", "b")
	assert.NoError(t, util.EnsureDirectory(nested), "create")
	assert.NoError(t, util.EnsureDirectory(nested), "already present")

	file := filepath.Join(dir, "file")
	require.NoError(t, ioutil.WriteFile(file, []byte("x"), 0600), "write")
	assert.Error(t, util.EnsureDirectory(file), "not a directory")
}
