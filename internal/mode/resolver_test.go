package mode

import (
	"testing"

	"github.com/corvid/aria/internal/shuffle"
)

func TestModeCycleOrder(t *testing.T) {
	order := []Mode{Linear, RepeatAll, RepeatOne, Shuffle, Linear}
	m := Linear
	for i := 1; i < len(order); i++ {
		m = m.Cycle()
		if m != order[i] {
			t.Fatalf("cycle step %d = %v, want %v", i, m, order[i])
		}
	}
}

func TestModeStringParseRoundTrip(t *testing.T) {
	for _, m := range []Mode{Linear, RepeatAll, RepeatOne, Shuffle} {
		if got := Parse(m.String()); got != m {
			t.Errorf("Parse(%q) = %v, want %v", m.String(), got, m)
		}
	}
	if got := Parse("bogus"); got != Linear {
		t.Errorf("Parse(bogus) = %v, want Linear", got)
	}
}

func TestLinearNextStopsAtEnd(t *testing.T) {
	r := NewResolver(Linear, shuffle.NewSeeded(1, 1))

	if next, ok := r.Next(1, 3); !ok || next != 2 {
		t.Errorf("Next(1, 3) = (%d, %v), want (2, true)", next, ok)
	}
	if _, ok := r.Next(2, 3); ok {
		t.Error("Next at last index = ok, want stop")
	}
	if _, ok := r.Prev(0, 3); ok {
		t.Error("Prev at first index = ok, want stop")
	}
}

func TestRepeatAllWraps(t *testing.T) {
	r := NewResolver(RepeatAll, shuffle.NewSeeded(1, 1))

	if next, ok := r.Next(2, 3); !ok || next != 0 {
		t.Errorf("Next(2, 3) = (%d, %v), want (0, true)", next, ok)
	}
	if prev, ok := r.Prev(0, 3); !ok || prev != 2 {
		t.Errorf("Prev(0, 3) = (%d, %v), want (2, true)", prev, ok)
	}
}

func TestRepeatOneResolvesToCurrent(t *testing.T) {
	r := NewResolver(RepeatOne, shuffle.NewSeeded(1, 1))

	for i := 0; i < 3; i++ {
		if next, ok := r.Next(i, 3); !ok || next != i {
			t.Errorf("Next(%d, 3) = (%d, %v), want (%d, true)", i, next, ok, i)
		}
		if prev, ok := r.Prev(i, 3); !ok || prev != i {
			t.Errorf("Prev(%d, 3) = (%d, %v), want (%d, true)", i, prev, ok, i)
		}
	}
}

func TestShuffleDelegatesAndPrevUndoes(t *testing.T) {
	r := NewResolver(Shuffle, shuffle.NewSeeded(42, 42))

	next, ok := r.Next(0, 3)
	if !ok {
		t.Fatal("shuffle Next not ok")
	}
	if next == 0 {
		t.Fatalf("shuffle Next(0, 3) = 0, want a different index")
	}

	prev, ok := r.Prev(next, 3)
	if !ok || prev != 0 {
		t.Errorf("Prev immediately after Next = (%d, %v), want (0, true)", prev, ok)
	}
}

func TestSetModeResetsShuffleBag(t *testing.T) {
	seq := shuffle.NewSeeded(5, 5)
	r := NewResolver(Shuffle, seq)

	first, _ := r.Next(0, 4)

	// Leaving and re-entering shuffle must clear undo history.
	r.SetMode(Linear)
	r.SetMode(Shuffle)

	// With the undo stack cleared, Prev falls back to a fresh pick that
	// excludes the current index.
	if prev, _ := r.Prev(first, 4); prev == first {
		t.Error("Prev returned current index after mode round trip")
	}
}

func TestEmptyPlaylistNeverResolves(t *testing.T) {
	for _, m := range []Mode{Linear, RepeatAll, RepeatOne, Shuffle} {
		r := NewResolver(m, shuffle.NewSeeded(1, 2))
		if _, ok := r.Next(0, 0); ok {
			t.Errorf("%v: Next on empty playlist = ok", m)
		}
		if _, ok := r.Prev(-1, 5); ok {
			t.Errorf("%v: Prev with no current track = ok", m)
		}
	}
}
