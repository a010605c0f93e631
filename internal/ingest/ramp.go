package ingest

import "time"

// Tick intervals for the simulated progress shown while a request is in
// flight.
const (
	UploadTick = 200 * time.Millisecond
	CloneTick  = 500 * time.Millisecond
)

const (
	rampStep    = 10
	rampCeiling = 90
)

// Ramp is a cosmetic progress value for calls that report no progress of
// their own. It climbs by 10 per tick, holds at 90 until the call returns,
// then snaps to 100 or drops to 0.
type Ramp struct {
	value int
}

// Tick advances the ramp and returns the new value.
func (r *Ramp) Tick() int {
	if r.value < rampCeiling {
		r.value += rampStep
		if r.value > rampCeiling {
			r.value = rampCeiling
		}
	}
	return r.value
}

// Complete snaps the ramp to 100.
func (r *Ramp) Complete() int {
	r.value = 100
	return r.value
}

// Fail resets the ramp to 0.
func (r *Ramp) Fail() int {
	r.value = 0
	return r.value
}

// Reset returns the ramp to its starting point.
func (r *Ramp) Reset() {
	r.value = 0
}

// Value returns the current value.
func (r *Ramp) Value() int {
	return r.value
}

// Scale maps sent out of total bytes onto the ramp's 0-90 band.
func Scale(sent, total int64) int {
	if total <= 0 {
		return 0
	}
	pct := int(sent * rampCeiling / total)
	if pct > rampCeiling {
		pct = rampCeiling
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}
