// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/creditd/creditsystem"
	"github.com/bitmark-inc/creditd/difficulty"
	"github.com/bitmark-inc/creditd/storage"
	"github.com/bitmark-inc/logger"
)

type metadata struct {
	store   *storage.Handle
	cs      *creditsystem.CreditSystem
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "creditdump"
	app.Usage = "inspect a credit ledger database"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "database, d",
			Value: "",
			Usage: "*leveldb `DIRECTORY` to read",
		},
		cli.StringFlag{
			Name:  "log-directory, l",
			Value: ".",
			Usage: " directory for the log `DIRECTORY`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "tip",
			Usage:  "current tip of the main chain and its work",
			Action: runTip,
		},
		{
			Name:      "message",
			Usage:     "a stored mined credit message",
			ArgsUsage: "HASH",
			Action:    runMessage,
		},
		{
			Name:      "calendar",
			Usage:     "calendar of the main chain tip or of a given message",
			ArgsUsage: "[HASH]",
			Action:    runCalendar,
		},
		{
			Name:      "spent",
			Usage:     "spent positions as of a message",
			ArgsUsage: "HASH",
			Action:    runSpent,
		},
		{
			Name:   "mostwork",
			Usage:  "every batch sharing the greatest total work",
			Action: runMostWork,
		},
		{
			Name:  "version",
			Usage: "display creditdump version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// open the database
	app.Before = func(c *cli.Context) error {

		command := c.Args().Get(0)
		switch command {
		case "", "help", "h", "version":
			return nil
		}

		database := c.GlobalString("database")
		if "" == database {
			return fmt.Errorf("database directory is required")
		}

		logging := logger.Configuration{
			Directory: c.GlobalString("log-directory"),
			File:      "creditdump.log",
			Size:      1048576,
			Count:     10,
			Console:   c.GlobalBool("verbose"),
			Levels: map[string]string{
				logger.DefaultTag: "critical",
			},
		}
		if err := logger.Initialise(logging); nil != err {
			return err
		}

		if c.GlobalBool("verbose") {
			fmt.Fprintf(c.App.ErrWriter, "database: %q\n", database)
		}
		store, err := storage.Open(database, storage.ReadOnly)
		if nil != err {
			logger.Finalise()
			return err
		}

		c.App.Metadata["data"] = &metadata{
			store:   store,
			cs:      creditsystem.New(store, difficulty.DefaultParameters()),
			verbose: c.GlobalBool("verbose"),
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
		}
		return nil
	}

	app.After = func(c *cli.Context) error {
		m, ok := c.App.Metadata["data"].(*metadata)
		if !ok {
			return nil
		}
		m.store.Close()
		logger.Finalise()
		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
