package correlate

import (
	"cmp"
	"slices"
)

// Reconstruct maps every input time to the output time it collapsed into.
//
// Input times are grouped by key in encounter order. Each output, in order,
// is matched to the first input holding the identical value that has no
// transition yet, and every input time sharing that input's key transitions
// to the output's time.
//
// The result is sorted by input time. Empty traces yield no transitions.
func Reconstruct(before []BeforeEvent, after []AfterEvent) ([]Transition, error) {
	keys2Times := groupByKey(len(before), func(i int) (string, int64) {
		return before[i].Key, before[i].Time
	})

	transitions := make(map[int64]int64, len(before))
	for _, a := range after {
		match, seen := -1, false
		for j, b := range before {
			if b.Value != a.Value {
				continue
			}
			seen = true
			if _, consumed := transitions[b.Time]; !consumed {
				match = j
				break
			}
		}
		if match < 0 {
			reason := ReasonNoMatch
			if seen {
				reason = ReasonKeyReused
			}
			return nil, &InconsistencyError{Reason: reason, AfterTime: a.Time, Value: a.Value}
		}
		if err := assign(transitions, keys2Times[before[match].Key], a); err != nil {
			return nil, err
		}
	}
	return sorted(transitions), nil
}

// wrapper boxes a recorded input so that it can be looked up by the
// identity of the object it holds.
type wrapper struct {
	value Ref
	time  int64
}

// ReconstructByWrapper is the wrapper-based formulation of Reconstruct.
//
// Every input is boxed in a wrapper paired with its time; a map from wrapper
// to key replaces the identity scan. Wrappers holding the same object are
// equal, so lookups go through the first wrapper seen for an object and its
// key is the one recorded last. On traces produced by first-occurrence
// deduplication both formulations return the same transitions.
func ReconstructByWrapper(before []BeforeEvent, after []AfterEvent) ([]Transition, error) {
	wrappers := make([]*wrapper, 0, len(before))
	canonical := make(map[Ref]*wrapper)
	utility := make(map[*wrapper]string)
	for _, b := range before {
		w := &wrapper{value: b.Value, time: b.Time}
		wrappers = append(wrappers, w)
		if first, ok := canonical[b.Value]; ok {
			utility[first] = b.Key
			continue
		}
		canonical[b.Value] = w
		utility[w] = b.Key
	}

	keys2Times := groupByKey(len(wrappers), func(i int) (string, int64) {
		w := wrappers[i]
		return utility[canonical[w.value]], w.time
	})

	transitions := make(map[int64]int64, len(before))
	for _, a := range after {
		lookup, ok := canonical[a.Value]
		if !ok {
			return nil, &InconsistencyError{Reason: ReasonNoMatch, AfterTime: a.Time, Value: a.Value}
		}
		if err := assign(transitions, keys2Times[utility[lookup]], a); err != nil {
			return nil, err
		}
	}
	return sorted(transitions), nil
}

func groupByKey(n int, at func(i int) (string, int64)) map[string][]int64 {
	groups := make(map[string][]int64)
	for i := range n {
		key, t := at(i)
		groups[key] = append(groups[key], t)
	}
	return groups
}

func assign(transitions map[int64]int64, times []int64, a AfterEvent) error {
	for _, t := range times {
		if prev, ok := transitions[t]; ok && prev != a.Time {
			return &InconsistencyError{Reason: ReasonKeyReused, AfterTime: a.Time, Value: a.Value}
		}
		transitions[t] = a.Time
	}
	return nil
}

func sorted(transitions map[int64]int64) []Transition {
	out := make([]Transition, 0, len(transitions))
	for before, after := range transitions {
		out = append(out, Transition{Before: before, After: after})
	}
	slices.SortFunc(out, func(a, b Transition) int {
		return cmp.Compare(a.Before, b.Before)
	})
	return out
}
