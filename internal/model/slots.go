package model

import (
	"sort"
	"time"
)

// NormalizeSlots sorts timestamps ascending and drops duplicates in place.
func NormalizeSlots(slots []time.Time) []time.Time {
	if len(slots) < 2 {
		return slots
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
	out := slots[:1]
	for _, ts := range slots[1:] {
		if !ts.Equal(out[len(out)-1]) {
			out = append(out, ts)
		}
	}
	return out
}

// DiffSlots returns the timestamps present in a but not in b, preserving
// order. Both inputs are compared by instant, not by location.
func DiffSlots(a, b []time.Time) []time.Time {
	if len(a) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(b))
	for _, ts := range b {
		seen[ts.UnixNano()] = struct{}{}
	}
	var out []time.Time
	for _, ts := range a {
		if _, ok := seen[ts.UnixNano()]; !ok {
			out = append(out, ts)
		}
	}
	return out
}
