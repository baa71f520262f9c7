// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/trigon/core"
)

func TestTimeUnthrottled(t *testing.T) {
	c := qt.New(t)

	ts := core.NewTime(core.TimeConfiguration{})
	defer ts.Stop()

	start := time.Now()
	for i := 0; i < 1000; i++ {
		ts.Pace()
	}
	c.Assert(time.Since(start) < time.Second, qt.IsTrue)
	c.Assert(ts.EventsDue(), qt.IsTrue)
}

func TestTimeFrameCounter(t *testing.T) {
	c := qt.New(t)

	ts := core.NewTime(core.TimeConfiguration{FramesPerSecond: 1000})
	defer ts.Stop()

	for i := 0; i < 5; i++ {
		ts.Pace()
		ts.FrameDone()
	}
	c.Assert(ts.TakeFrames(), qt.Equals, int64(5))
	c.Assert(ts.TakeFrames(), qt.Equals, int64(0))
	c.Assert(ts.Fps(), qt.Equals, 1000)
}

func TestTimeEventsDue(t *testing.T) {
	c := qt.New(t)

	ts := core.NewTime(core.TimeConfiguration{EventPollDelay: 200})
	defer ts.Stop()

	// The ticker has not fired yet.
	c.Assert(ts.EventsDue(), qt.IsFalse)

	time.Sleep(250 * time.Millisecond)
	c.Assert(ts.EventsDue(), qt.IsTrue)
	c.Assert(ts.EventsDue(), qt.IsFalse)
}
