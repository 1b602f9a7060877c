package allocation

// Kind classifies how the local allocation of an index changed.
type Kind int

const (
	// KindUnchanged means the new set equals the tracked one.
	KindUnchanged Kind = iota

	// KindLostAll means the node no longer hosts any active copy.
	KindLostAll

	// KindChanged means the node hosts a non-empty set that differs from the tracked one.
	KindChanged
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnchanged:
		return "unchanged"
	case KindLostAll:
		return "lost_all"
	case KindChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// Change describes the transition between the tracked set and a new set.
type Change struct {
	Index string
	Old   Set
	New   Set
	Kind  Kind

	// FirstObservation is true when the tracker has not recorded this index
	// since it was created or last reset.
	FirstObservation bool
}

// Tracker remembers the last recorded Set per index.
//
// Tracker is not safe for concurrent use; the owner serializes access.
type Tracker struct {
	sets map[string]Set
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{sets: make(map[string]Set)}
}

// Previous returns the tracked set of index (empty when nothing is tracked).
func (t *Tracker) Previous(index string) Set {
	if s, ok := t.sets[index]; ok {
		return s
	}

	return Set{}
}

// Observed reports whether a set has been recorded for index since the last reset.
func (t *Tracker) Observed(index string) bool {
	_, ok := t.sets[index]
	return ok
}

// Diff classifies next against the tracked set of index without recording it.
//
// Parameters:
//   - index: System index name
//   - next: Freshly computed set
//
// Returns:
//   - Change: Transition from the tracked set to next
func (t *Tracker) Diff(index string, next Set) Change {
	prev, observed := t.sets[index]
	if prev == nil {
		prev = Set{}
	}

	ch := Change{
		Index:            index,
		Old:              prev,
		New:              next,
		FirstObservation: !observed,
	}

	switch {
	case next.Len() == 0 && (prev.Len() > 0 || !observed):
		ch.Kind = KindLostAll
	case next.Len() > 0 && !next.Equal(prev):
		ch.Kind = KindChanged
	default:
		ch.Kind = KindUnchanged
	}

	return ch
}

// Record replaces the tracked set of index.
func (t *Tracker) Record(index string, set Set) {
	if set == nil {
		set = Set{}
	}
	t.sets[index] = set
}

// Reset forgets index. The next Diff is a first observation.
func (t *Tracker) Reset(index string) {
	delete(t.sets, index)
}

// Indices returns the names of all tracked indices.
func (t *Tracker) Indices() []string {
	out := make([]string, 0, len(t.sets))
	for name := range t.sets {
		out = append(out, name)
	}

	return out
}
