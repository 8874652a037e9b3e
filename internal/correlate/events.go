package correlate

// Ref is an opaque object identity.
type Ref string

// BeforeEvent is one element entering the deduplication, recorded while its
// key was computed.
type BeforeEvent struct {
	Time  int64  `json:"time"`
	Value Ref    `json:"value"`
	Key   string `json:"key"`
}

// AfterEvent is one element leaving the deduplication.
type AfterEvent struct {
	Time  int64 `json:"time"`
	Value Ref   `json:"value"`
}

// Transition asserts that the element entering at Before was collapsed into
// the element leaving at After.
type Transition struct {
	Before int64 `json:"before"`
	After  int64 `json:"after"`
}

// Trace is the full recording of one deduplication call.
type Trace struct {
	Before []BeforeEvent `json:"before"`
	After  []AfterEvent  `json:"after"`
}

// Simulate runs first-occurrence deduplication over elements, stamping
// events from clock exactly as the injected observers would: an element is
// stamped on entry, and stamped again on exit if it is the first of its key.
func Simulate(elements []Ref, keyOf func(Ref) string, clock TimeSource) Trace {
	var trace Trace
	seen := make(map[string]bool)
	for _, v := range elements {
		key := keyOf(v)
		trace.Before = append(trace.Before, BeforeEvent{Time: clock.Next(), Value: v, Key: key})
		if seen[key] {
			continue
		}
		seen[key] = true
		trace.After = append(trace.After, AfterEvent{Time: clock.Next(), Value: v})
	}
	return trace
}
