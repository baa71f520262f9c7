// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"sync/atomic"
	"time"
)

// NewTime creates a new time service
func NewTime(cfg TimeConfiguration) *Time {
	t := &Time{
		fps:            cfg.FramesPerSecond,
		eventPollDelay: cfg.EventPollDelay,
	}
	if cfg.FramesPerSecond > 0 {
		t.fpsTicker = time.NewTicker(time.Second / time.Duration(cfg.FramesPerSecond))
	}
	if cfg.EventPollDelay > 0 {
		t.eventTicker = time.NewTicker(time.Duration(cfg.EventPollDelay) * time.Millisecond)
	}
	return t
}

// Time contains all the time services and tickers
type Time struct {
	fps       int
	fpsTicker *time.Ticker

	eventPollDelay int
	eventTicker    *time.Ticker

	frames int64
}

// Fps gets the set frames per second
func (t *Time) Fps() int {
	return t.fps
}

// Pace blocks until the next frame is due. Unthrottled time returns at once.
func (t *Time) Pace() {
	if t.fpsTicker != nil {
		<-t.fpsTicker.C
	}
}

// EventsDue reports whether window events should be pumped now. Without
// an EventPollDelay events are due on every call.
func (t *Time) EventsDue() bool {
	if t.eventTicker == nil {
		return true
	}
	select {
	case <-t.eventTicker.C:
		return true
	default:
		return false
	}
}

// FrameDone counts a presented frame.
func (t *Time) FrameDone() {
	atomic.AddInt64(&t.frames, 1)
}

// TakeFrames returns the frames counted since the last call.
func (t *Time) TakeFrames() int64 {
	return atomic.SwapInt64(&t.frames, 0)
}

// Stop releases the tickers
func (t *Time) Stop() {
	if t.fpsTicker != nil {
		t.fpsTicker.Stop()
	}
	if t.eventTicker != nil {
		t.eventTicker.Stop()
	}
}
