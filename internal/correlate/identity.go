package correlate

import (
	"maps"
	"slices"
)

// ResolveIdentity pairs the values observed entering a call with the values
// observed leaving it, for calls that forward elements unchanged. Outputs
// holding a value are handed out in time order, one to each input holding
// that value, inputs also taken in time order. The empty Ref stands for null;
// nulls pair with each other.
//
// direct maps every input time to its output times: exactly one, or none
// when the value never left the call or every output holding it is taken.
// reverse maps every paired output time back to its input time.
func ResolveIdentity(before, after map[int64]Ref) (direct, reverse map[int64][]int64) {
	outputs := make(map[Ref][]int64)
	for _, t := range slices.Sorted(maps.Keys(after)) {
		outputs[after[t]] = append(outputs[after[t]], t)
	}

	next := make(map[Ref]int)
	direct = make(map[int64][]int64, len(before))
	reverse = make(map[int64][]int64, len(after))
	for _, t := range slices.Sorted(maps.Keys(before)) {
		v := before[t]
		i := next[v]
		if i >= len(outputs[v]) {
			direct[t] = []int64{}
			continue
		}
		next[v] = i + 1
		out := outputs[v][i]
		direct[t] = []int64{out}
		reverse[out] = []int64{t}
	}
	return direct, reverse
}

// Observed returns the values seen entering and leaving the call, keyed by
// time, as the peek tracers around it record them.
func (t Trace) Observed() (before, after map[int64]Ref) {
	before = make(map[int64]Ref, len(t.Before))
	for _, b := range t.Before {
		before[b.Time] = b.Value
	}
	after = make(map[int64]Ref, len(t.After))
	for _, a := range t.After {
		after[a.Time] = a.Value
	}
	return before, after
}
