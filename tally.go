package maker

// Group is a set of equivalent candidates. The representative is the first
// candidate that was seen for the group.
type Group[T any] struct {
	Representative T
	Count          int
}

// lookup finds the group that a candidate belongs to.
type lookup[T any] interface {
	// find returns the index of the group of c, or false if c starts a new group.
	find(groups []Group[T], c T) (int, bool)
	// added is called after c has created the group at index idx.
	added(c T, idx int)
	reset()
}

// keyed finds groups by direct map lookup.
type keyed[T comparable] struct {
	index map[T]int
}

func (k *keyed[T]) find(_ []Group[T], c T) (int, bool) {
	idx, ok := k.index[c]
	return idx, ok
}

func (k *keyed[T]) added(c T, idx int) {
	k.index[c] = idx
}

func (k *keyed[T]) reset() {
	k.index = make(map[T]int)
}

// scanned finds groups by comparing against the representative of each group.
type scanned[T any] struct {
	eq Equivalence[T]
}

func (s scanned[T]) find(groups []Group[T], c T) (int, bool) {
	for i := range groups {
		if s.eq(c, groups[i].Representative) {
			return i, true
		}
	}
	return 0, false
}

func (scanned[T]) added(T, int) {}

func (scanned[T]) reset() {}

// Tally counts the candidates of a single vote.
//
// The groups are kept in the order they were created. The tally tracks the
// leading group and the count of the runner-up as candidates arrive, so the
// margin is known in constant time. When two groups have the same count,
// the group that reached that count first is the leader.
type Tally[T any] struct {
	lookup lookup[T]
	groups []Group[T]
	total  int
	// leader is the index of the leading group; only valid if groups is not empty.
	leader int
	// second is the highest count among the groups that are not the leader.
	second int
}

// NewTally returns a tally that groups candidates by value equality.
func NewTally[T comparable]() *Tally[T] {
	return &Tally[T]{lookup: &keyed[T]{index: make(map[T]int)}}
}

// NewTallyFunc returns a tally that groups candidates with the given equivalence.
// It panics if eq is nil.
func NewTallyFunc[T any](eq Equivalence[T]) *Tally[T] {
	if eq == nil {
		panic("maker: nil equivalence")
	}
	return &Tally[T]{lookup: scanned[T]{eq: eq}}
}

// Add counts a candidate and returns the index of its group.
func (t *Tally[T]) Add(c T) int {
	t.total++

	idx, ok := t.lookup.find(t.groups, c)
	if !ok {
		idx = len(t.groups)
		t.groups = append(t.groups, Group[T]{Representative: c, Count: 1})
		t.lookup.added(c, idx)
		if idx == 0 {
			t.leader = 0
		} else if t.second < 1 {
			t.second = 1
		}
		return idx
	}

	t.groups[idx].Count++
	count := t.groups[idx].Count
	switch {
	case idx == t.leader:
		// the leader only pulls further ahead
	case count > t.groups[t.leader].Count:
		// the group was tied with the leader and has now overtaken it;
		// the old leader becomes the runner-up
		t.second = t.groups[t.leader].Count
		t.leader = idx
	case count > t.second:
		t.second = count
	}
	return idx
}

// Leader returns the leading group, or false if the tally is empty.
func (t *Tally[T]) Leader() (Group[T], bool) {
	if len(t.groups) == 0 {
		return Group[T]{}, false
	}
	return t.groups[t.leader], true
}

// RunnerUpCount returns the highest count among the groups that are not the leader.
// It is zero if there are fewer than two groups.
func (t *Tally[T]) RunnerUpCount() int {
	return t.second
}

// Margin returns the lead of the leading group over the runner-up.
// With a single group, the margin is the count of that group.
func (t *Tally[T]) Margin() int {
	if len(t.groups) == 0 {
		return 0
	}
	return t.groups[t.leader].Count - t.second
}

// Total returns the number of candidates counted so far.
func (t *Tally[T]) Total() int {
	return t.total
}

// Len returns the number of groups.
func (t *Tally[T]) Len() int {
	return len(t.groups)
}

// Groups returns a copy of the groups in the order they were created.
func (t *Tally[T]) Groups() []Group[T] {
	groups := make([]Group[T], len(t.groups))
	copy(groups, t.groups)
	return groups
}

// Reset empties the tally so that it can be used for a new vote.
func (t *Tally[T]) Reset() {
	t.groups = t.groups[:0]
	t.total = 0
	t.leader = 0
	t.second = 0
	t.lookup.reset()
}
