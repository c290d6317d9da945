// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"fmt"

	"github.com/bitmark-inc/creditd/background"
)

type retrier struct {
	attempts int
}

func (state *retrier) Run(args interface{}, shutdown <-chan struct{}) {
	work := args.(chan int)
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case n := <-work:
			state.attempts += n
		}
	}
}

func Example() {
	work := make(chan int)
	proc := &retrier{}

	p := background.Start(background.Processes{proc}, work)
	work <- 2
	work <- 3
	p.Stop()

	fmt.Printf("attempts: %d\n", proc.attempts)
	// Output: attempts: 5
}
