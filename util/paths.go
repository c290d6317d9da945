// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureAbsolute - a relative path is taken relative to directory
func EnsureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}

// EnsureDirectory - create a directory and its parents unless present
//
// fails if the path exists and is not a directory
func EnsureDirectory(directory string) error {
	if err := os.MkdirAll(directory, 0700); nil != err {
		return err
	}
	info, err := os.Stat(directory)
	if nil != err {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path: %q is not a directory", directory)
	}
	return nil
}
