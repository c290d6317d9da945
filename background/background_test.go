// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/creditd/background"
)

type counter struct {
	ticks    int64
	finished int64
}

func (state *counter) Run(args interface{}, shutdown <-chan struct{}) {
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-time.After(time.Millisecond):
			atomic.AddInt64(&state.ticks, 1)
		}
	}
	atomic.StoreInt64(&state.finished, 1)
}

func TestStartStop(t *testing.T) {
	proc1 := &counter{}
	proc2 := &counter{}

	p := background.Start(background.Processes{proc1, proc2}, nil)
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	for i, proc := range []*counter{proc1, proc2} {
		assert.Equalf(t, int64(1), atomic.LoadInt64(&proc.finished), "process[%d] not finished", i)
		assert.Truef(t, atomic.LoadInt64(&proc.ticks) > 0, "process[%d] never ran", i)
	}
}

func TestFuncReceivesArgs(t *testing.T) {
	received := make(chan interface{}, 1)
	f := background.Func(func(args interface{}, shutdown <-chan struct{}) {
		received <- args
		<-shutdown
	})

	p := background.Start(background.Processes{f}, "the-args")
	assert.Equal(t, "the-args", <-received, "args")
	p.Stop()
}

func TestStopTwice(t *testing.T) {
	p := background.Start(background.Processes{&counter{}}, nil)
	p.Stop()
	p.Stop()
}
