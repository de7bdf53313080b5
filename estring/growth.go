package estring

import "github.com/fleetmod/escadra/errors"

// growCapacity returns the capacity for need content bytes, starting from
// the current capacity and doubling the buffer (capacity plus terminator)
// until it is larger than need.
func growCapacity(current, need uint64) (uint64, error) {
	if need > MaxCapacity {
		return 0, errors.CapacityExceeded(errors.PhaseEncode, nil, need, MaxCapacity)
	}
	size := current + 1
	for size <= need {
		size *= 2
	}
	return size - 1, nil
}
