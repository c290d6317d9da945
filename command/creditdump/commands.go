// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/creditd/calendar"
	"github.com/bitmark-inc/creditd/creditsystem"
	"github.com/bitmark-inc/creditd/digest"
	"github.com/bitmark-inc/creditd/fault"
	"github.com/bitmark-inc/creditd/minedcredit"
)

type tipInfo struct {
	Tip         digest.Digest `json:"tip"`
	BatchNumber uint32        `json:"batchNumber"`
	Work        uint64        `json:"work,string"`
}

type messageInfo struct {
	Hash        digest.Digest        `json:"hash"`
	Status      string               `json:"status"`
	InMainChain bool                 `json:"inMainChain"`
	TotalWork   uint64               `json:"totalWork,string"`
	Message     *minedcredit.Message `json:"message"`
}

type spentInfo struct {
	Hash      digest.Digest `json:"hash"`
	Length    uint64        `json:"length"`
	Spent     []uint64      `json:"spent"`
	SpentHash digest.Digest `json:"spentHash"`
}

type calendarInfo struct {
	Tip        digest.Digest      `json:"tip"`
	TotalWork  uint64             `json:"totalWork,string"`
	CalendWork uint64             `json:"calendWork,string"`
	Valid      bool               `json:"valid"`
	Calendar   *calendar.Calendar `json:"calendar"`
}

func runTip(c *cli.Context) error {
	m := c.App.Metadata["data"].(*metadata)

	info := tipInfo{
		Tip:  m.cs.CurrentTipOfMainChain(),
		Work: m.cs.MainChainWork(),
	}
	if msg := m.cs.Message(info.Tip); nil != msg {
		info.BatchNumber = msg.State().BatchNumber
	}
	return printJson(m.w, info)
}

func runMessage(c *cli.Context) error {
	m := c.App.Metadata["data"].(*metadata)

	hash, err := hashArgument(c, 0)
	if nil != err {
		return err
	}
	msg := m.cs.Message(hash)
	if nil == msg {
		return fault.ErrMissingMessage
	}
	work, _ := m.cs.TotalWork(hash)
	return printJson(m.w, messageInfo{
		Hash:        hash,
		Status:      m.cs.HandlingStatus(hash).String(),
		InMainChain: m.cs.IsInMainChain(hash),
		TotalWork:   work,
		Message:     msg,
	})
}

func runCalendar(c *cli.Context) error {
	m := c.App.Metadata["data"].(*metadata)

	hash := m.cs.CurrentTipOfMainChain()
	if c.NArg() > 0 {
		h, err := hashArgument(c, 0)
		if nil != err {
			return err
		}
		hash = h
	}
	cal, err := calendar.New(m.cs, hash)
	if nil != err {
		return err
	}
	if m.verbose {
		fmt.Fprintf(m.e, "calends: %d  current diurn: %d\n", len(cal.Calends), cal.CurrentDiurn.Size())
	}
	return printJson(m.w, calendarInfo{
		Tip:        cal.LastMessageHash(),
		TotalWork:  cal.TotalWork(),
		CalendWork: cal.CalendWork(),
		Valid:      cal.CheckRootsAndDifficulties() && cal.CheckProofsOfWork(),
		Calendar:   cal,
	})
}

func runSpent(c *cli.Context) error {
	m := c.App.Metadata["data"].(*metadata)

	hash, err := hashArgument(c, 0)
	if nil != err {
		return err
	}
	if !m.cs.HasMessage(hash) {
		return fault.ErrMissingMessage
	}
	chain := m.cs.SpentChain(hash)

	spent := creditsystem.PositionSet{}
	for position := uint64(0); position < chain.Length(); position += 1 {
		if chain.Get(position) {
			spent.Add(position)
		}
	}
	return printJson(m.w, spentInfo{
		Hash:      hash,
		Length:    chain.Length(),
		Spent:     spent.Sorted(),
		SpentHash: chain.Hash(),
	})
}

func runMostWork(c *cli.Context) error {
	m := c.App.Metadata["data"].(*metadata)

	hashes := m.cs.MostWorkBatches()
	work := uint64(0)
	if 0 != len(hashes) {
		work, _ = m.cs.TotalWork(hashes[0])
	}
	return printJson(m.w, struct {
		Work    uint64          `json:"work,string"`
		Batches []digest.Digest `json:"batches"`
	}{
		Work:    work,
		Batches: hashes,
	})
}

func hashArgument(c *cli.Context, n int) (digest.Digest, error) {
	if c.NArg() <= n {
		return digest.Zero, fmt.Errorf("missing hash argument")
	}
	return digest.FromHex(c.Args().Get(n))
}

func printJson(handle io.Writer, message interface{}) error {

	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		return err
	}

	fmt.Fprintf(handle, "%s\n", b)
	return nil
}
