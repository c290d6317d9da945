// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/bitmark-inc/exitwithstatus"
)

// a configuration with every setting at its default
const exampleConfiguration = `-- creditd.conf  -*- mode: lua -*-

local M = {}

-- "." is the directory of this file
M.data_directory = "."

-- optional pid file if not absolute path then it is created relative to data_directory
-- M.pidfile = "creditd.pid"

-- every node of a network must agree on these
M.network_id = 1

M.database = {
    directory = "data",
    name = "credits.leveldb",
}

-- all times are in microseconds
M.difficulty = {
    initial = 100000,
    initial_diurnal = 120000000,
    batch_interval_us = 60 * 1000000,
    diurn_length_us = 24 * 60 * 60 * 1000000,
}

M.proof = {
    memory_factor = 19,
    num_segments = 4,
}

-- blank key data disables mining, zero batches is unlimited
M.mining = {
    key_data = "",
    batches = 0,
    attempts = 1000,
}

-- signals per second for missing data, zero selects the default
M.fetch = {
    rate = 0,
    burst = 0,
}

M.logging = {
    size = 1048576,
    count = 10,
    directory = "log",
    file = "creditd.log",
    levels = {
        ["*"] = "info",
    },
}

return M
`

// setup command handler
//
// commands that run before the configuration file is read
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "example-config", "ex":
		fmt.Print(exampleConfiguration)

	case "start", "run":
		return false // continue processing

	case "config-test", "cfg":
		return false // defer processing until configuration is read

	case "version", "v":
		fmt.Printf("%s\n", version)

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}

		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)      - display this message\n\n")
		fmt.Printf("  version                    (v)      - display version sting\n\n")
		fmt.Printf("  example-config             (ex)     - print a configuration file with the default settings\n")
		fmt.Printf("\n")
		fmt.Printf("  start                      (run)    - just run the program, same as no arguments\n")
		fmt.Printf("                                        for convienience when passing script arguments\n")
		fmt.Printf("\n")
		fmt.Printf("  config-test                (cfg)    - just check the configuration file\n")
		fmt.Printf("\n")
		exitwithstatus.Exit(1)
	}

	// indicate processing complete and preform normal exit from main
	return true
}

// configuration file enquiry commands
// have configuration file read and decoded, but nothing else
func processConfigCommand(arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "config-test", "cfg":
		b, err := json.Marshal(options)
		if nil != err {
			exitwithstatus.Message("error: %s", err)
		}
		var out bytes.Buffer
		json.Indent(&out, b, "", "  ")
		out.WriteTo(os.Stdout)
		os.Stdout.WriteString("\n")

	default:
		return false
	}

	// indicate processing complete and perform normal exit from main
	return true
}
