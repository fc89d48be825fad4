//go:build rp2040

package main

import (
	"time"

	"quasar/core"
)

// tickClock paces the controller at core.TickPeriod. Power loss is never
// observed: the MCU simply stops.
type tickClock struct {
	next time.Time
}

// Wait sleeps until the next tick boundary. A late caller does not
// accumulate drift beyond one period.
func (c *tickClock) Wait() bool {
	now := time.Now()
	if c.next.IsZero() || now.Sub(c.next) > core.TickPeriod {
		c.next = now
	}
	c.next = c.next.Add(core.TickPeriod)
	if d := time.Until(c.next); d > 0 {
		time.Sleep(d)
	}
	return true
}
