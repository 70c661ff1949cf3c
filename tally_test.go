package maker

import (
	"fmt"
	"testing"
)

func TestTallyLeaderAndRunnerUp(t *testing.T) {
	tally := NewTally[string]()
	steps := []struct {
		add        string
		wantLeader string
		wantSecond int
		wantMargin int
	}{
		{add: "A", wantLeader: "A", wantSecond: 0, wantMargin: 1},
		{add: "B", wantLeader: "A", wantSecond: 1, wantMargin: 0},
		{add: "B", wantLeader: "B", wantSecond: 1, wantMargin: 1},
		// A ties with B, but B reached 2 first
		{add: "A", wantLeader: "B", wantSecond: 2, wantMargin: 0},
		{add: "C", wantLeader: "B", wantSecond: 2, wantMargin: 0},
		{add: "A", wantLeader: "A", wantSecond: 2, wantMargin: 1},
		{add: "A", wantLeader: "A", wantSecond: 2, wantMargin: 2},
		{add: "C", wantLeader: "A", wantSecond: 2, wantMargin: 2},
		{add: "C", wantLeader: "A", wantSecond: 3, wantMargin: 1},
	}
	for i, step := range steps {
		tally.Add(step.add)
		leader, ok := tally.Leader()
		if !ok {
			t.Fatalf("step %d: tally has no leader", i)
		}
		if leader.Representative != step.wantLeader {
			t.Errorf("step %d: leader = %q; want %q", i, leader.Representative, step.wantLeader)
		}
		if got := tally.RunnerUpCount(); got != step.wantSecond {
			t.Errorf("step %d: runner-up count = %d; want %d", i, got, step.wantSecond)
		}
		if got := tally.Margin(); got != step.wantMargin {
			t.Errorf("step %d: margin = %d; want %d", i, got, step.wantMargin)
		}
	}
}

func TestTallyCountsSumToTotal(t *testing.T) {
	for _, tally := range []*Tally[string]{NewTally[string](), NewTallyFunc(EqualFold)} {
		for _, c := range []string{"a", "b", "A", "c", "b", "a", "d", "d"} {
			tally.Add(c)
		}
		sum := 0
		for _, g := range tally.Groups() {
			if g.Count < 1 {
				t.Errorf("group %q has count %d", g.Representative, g.Count)
			}
			sum += g.Count
		}
		if sum != tally.Total() {
			t.Errorf("sum of counts = %d; want %d", sum, tally.Total())
		}
	}
}

func TestTallyGroupsInFirstSeenOrder(t *testing.T) {
	tally := NewTallyFunc(EqualFold)
	for _, c := range []string{"b", "A", "B", "a", "c", "a"} {
		tally.Add(c)
	}
	want := []Group[string]{
		{Representative: "b", Count: 2},
		{Representative: "A", Count: 3},
		{Representative: "c", Count: 1},
	}
	got := tally.Groups()
	if len(got) != len(want) {
		t.Fatalf("Groups() = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Groups()[%d] = %v; want %v", i, got[i], want[i])
		}
	}

	// the returned slice is a copy
	got[0].Count = 100
	if g := tally.Groups()[0]; g.Count != 2 {
		t.Errorf("Groups() returned the internal slice")
	}
}

func TestTallyReset(t *testing.T) {
	tally := NewTally[int]()
	for i := 0; i < 5; i++ {
		tally.Add(i % 2)
	}
	tally.Reset()
	if tally.Total() != 0 || tally.Len() != 0 || tally.Margin() != 0 {
		t.Fatalf("after Reset: total=%d len=%d margin=%d; want all zero", tally.Total(), tally.Len(), tally.Margin())
	}
	if _, ok := tally.Leader(); ok {
		t.Error("after Reset: tally has a leader")
	}
	if idx := tally.Add(1); idx != 0 {
		t.Errorf("after Reset: first group index = %d; want 0", idx)
	}
}

func TestNewTallyFuncPanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewTallyFunc(nil) did not panic")
		}
	}()
	NewTallyFunc[string](nil)
}

func BenchmarkTally(b *testing.B) {
	for _, groups := range []int{2, 16, 128} {
		candidates := make([]string, 1024)
		for i := range candidates {
			candidates[i] = fmt.Sprintf("answer-%d", i%groups)
		}
		b.Run(fmt.Sprintf("keyed/groups=%d", groups), func(b *testing.B) {
			tally := NewTally[string]()
			for i := 0; i < b.N; i++ {
				tally.Add(candidates[i%len(candidates)])
			}
		})
		b.Run(fmt.Sprintf("scanned/groups=%d", groups), func(b *testing.B) {
			tally := NewTallyFunc(Equal[string])
			for i := 0; i < b.N; i++ {
				tally.Add(candidates[i%len(candidates)])
			}
		})
	}
}
