package internal

import (
	"strconv"
	"sync/atomic"
)

// SignalID identifies a signal's shared storage. Every handle cloned from the
// same signal reports the same id.
type SignalID uint64

// EffectID identifies an effect.
type EffectID uint64

// ids are process-wide, monotonically increasing and never reused
var (
	signalIDs atomic.Uint64
	effectIDs atomic.Uint64
)

func NextSignalID() SignalID {
	return SignalID(signalIDs.Add(1))
}

func NextEffectID() EffectID {
	return EffectID(effectIDs.Add(1))
}

func (id SignalID) String() string {
	return "signal#" + strconv.FormatUint(uint64(id), 10)
}

func (id EffectID) String() string {
	return "effect#" + strconv.FormatUint(uint64(id), 10)
}
