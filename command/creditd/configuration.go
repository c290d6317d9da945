// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/creditd/configuration"
	"github.com/bitmark-inc/creditd/difficulty"
	"github.com/bitmark-inc/creditd/proof"
	"github.com/bitmark-inc/creditd/util"
	"github.com/bitmark-inc/logger"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultNetworkID = 1

	defaultLevelDBDirectory = "data"
	defaultDatabase         = "credits.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "creditd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultMiningAttempts = 1000
)

// path expanded or calculated defaults
var (
	defaultLogLevels = map[string]string{
		logger.DefaultTag: "critical",
	}
)

// DatabaseType - location of the ledger store
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// MiningType - local batch production
//
// zero batches mines without limit, a blank key disables mining
type MiningType struct {
	KeyData  string `gluamapper:"key_data" json:"key_data"`
	Batches  int    `gluamapper:"batches" json:"batches"`
	Attempts int    `gluamapper:"attempts" json:"attempts"`
}

// FetchType - limits on signals for missing data
type FetchType struct {
	Rate  float64 `gluamapper:"rate" json:"rate"`
	Burst int     `gluamapper:"burst" json:"burst"`
}

// Configuration - everything read from the configuration file
type Configuration struct {
	DataDirectory string                `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string                `gluamapper:"pidfile" json:"pidfile"`
	NetworkID     uint64                `gluamapper:"network_id" json:"network_id"`
	Database      DatabaseType          `gluamapper:"database" json:"database"`
	Difficulty    difficulty.Parameters `gluamapper:"difficulty" json:"difficulty"`
	Proof         proof.Parameters      `gluamapper:"proof" json:"proof"`
	Mining        MiningType            `gluamapper:"mining" json:"mining"`
	Fetch         FetchType             `gluamapper:"fetch" json:"fetch"`
	Logging       logger.Configuration  `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{
		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		NetworkID:     defaultNetworkID,

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabase,
		},

		Difficulty: difficulty.DefaultParameters(),

		Proof: proof.Parameters{
			MemoryFactor: proof.DefaultMemoryFactor,
			NumSegments:  proof.DefaultNumSegments,
		},

		Mining: MiningType{
			Attempts: defaultMiningAttempts,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); nil != err {
		return nil, err
	}

	if 0 == options.NetworkID {
		return nil, fmt.Errorf("network_id: %d is not valid", options.NetworkID)
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	if "" != options.PidFile {
		options.PidFile = util.EnsureAbsolute(options.DataDirectory, options.PidFile)
	}

	// fail if any of these are not simple file names i.e. must
	// not contain path seperator, then add the correct directory
	// prefix, file item is first and corresponding directory is
	// second (or nil if no prefix can be added)
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			if nil != f[1] {
				*f[0] = util.EnsureAbsolute(*f[1], *f[0])
			}
		default:
			return nil, fmt.Errorf("Files: %q is not plain name", *f[0])
		}
	}

	// create directories if they do not already exist
	for _, d := range []string{options.Database.Directory, options.Logging.Directory} {
		if err := util.EnsureDirectory(d); nil != err {
			return nil, err
		}
	}

	return options, nil
}
