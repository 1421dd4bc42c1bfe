// event/hysteresis.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package event

// Transition is the result of feeding one sample to a Hysteresis.
type Transition int

const (
	// Idle: no span is open and the sample did not trigger.
	Idle Transition = iota
	// Opened: the sample triggered and started a new span.
	Opened
	// Extended: the sample triggered and extended the open span.
	Extended
	// Bridging: the sample did not trigger but the span stays open.
	Bridging
	// Closed: the span ended with enough triggering samples and should
	// be emitted.
	Closed
	// Discarded: the span ended without enough triggering samples.
	Discarded
)

func (t Transition) String() string {
	return [...]string{"Idle", "Opened", "Extended", "Bridging", "Closed", "Discarded"}[t]
}

// Hysteresis debounces a boolean trigger signal. A span opens on the
// first triggering sample and closes after StopBuffer consecutive
// non-triggering samples; it is only reported if it saw at least
// StartBuffer triggering samples.
type Hysteresis struct {
	StartBuffer int
	StopBuffer  int

	open         bool
	triggerCount int
	missCount    int
}

func (h *Hysteresis) Open() bool {
	return h.open
}

// TriggerCount returns the number of triggering samples in the open span.
func (h *Hysteresis) TriggerCount() int {
	return h.triggerCount
}

func (h *Hysteresis) Observe(triggered bool) Transition {
	if !h.open {
		if !triggered {
			return Idle
		}
		h.open = true
		h.triggerCount, h.missCount = 1, 0
		return Opened
	}

	if triggered {
		h.triggerCount++
		h.missCount = 0
		return Extended
	}

	h.missCount++
	if h.missCount < h.StopBuffer {
		return Bridging
	}

	h.open = false
	if h.triggerCount >= h.StartBuffer {
		return Closed
	}
	return Discarded
}

// Flush ends the stream. It reports whether a span was still open; such
// spans are emitted regardless of how many samples triggered.
func (h *Hysteresis) Flush() bool {
	open := h.open
	h.Reset()
	return open
}

func (h *Hysteresis) Reset() {
	h.open = false
	h.triggerCount, h.missCount = 0, 0
}
