package rules

import (
	"errors"
	"sort"
	"testing"

	"github.com/hoshiten/goban/internal/goban/board"
)

func place(b board.Board, c board.Cell, points ...board.Point) board.Board {
	for _, p := range points {
		b = b.With(p, c)
	}
	return b
}

func sortedPoints(points []board.Point) []board.Point {
	out := append([]board.Point(nil), points...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func TestAdjacentClipsToGrid(t *testing.T) {
	b := board.New(9)

	tests := []struct {
		name  string
		point board.Point
		want  int
	}{
		{"center", board.Point{X: 4, Y: 4}, 4},
		{"edge", board.Point{X: 0, Y: 4}, 3},
		{"corner", board.Point{X: 0, Y: 0}, 2},
		{"far corner", board.Point{X: 8, Y: 8}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Adjacent(b, tt.point)
			if len(got) != tt.want {
				t.Fatalf("expected %d neighbors, got %d: %v", tt.want, len(got), got)
			}
			for _, n := range got {
				if !b.Contains(n) {
					t.Fatalf("neighbor %v outside grid", n)
				}
			}
		})
	}
}

func TestGroupOfEmptyPointHasNoStones(t *testing.T) {
	b := board.New(9)
	g := GroupOf(b, board.Point{X: 3, Y: 3})
	if g.Size() != 0 || g.LibertyCount() != 0 {
		t.Fatalf("expected empty group, got %d stones %d liberties", g.Size(), g.LibertyCount())
	}
}

func TestGroupOfMembershipInvariantUnderStartingPoint(t *testing.T) {
	// An L-shaped black group; every stone must discover the same group.
	stones := []board.Point{
		{X: 2, Y: 2}, {X: 2, Y: 3}, {X: 2, Y: 4}, {X: 3, Y: 4},
	}
	b := place(board.New(9), board.Black, stones...)

	reference := GroupOf(b, stones[0])
	if reference.Size() != len(stones) {
		t.Fatalf("expected %d stones, got %d", len(stones), reference.Size())
	}

	for _, start := range stones[1:] {
		g := GroupOf(b, start)
		if g.Size() != reference.Size() {
			t.Fatalf("group from %v has %d stones, want %d", start, g.Size(), reference.Size())
		}
		if g.LibertyCount() != reference.LibertyCount() {
			t.Fatalf("group from %v has %d liberties, want %d", start, g.LibertyCount(), reference.LibertyCount())
		}
		got := sortedPoints(g.Stones)
		want := sortedPoints(reference.Stones)
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("group from %v differs at %d: %v vs %v", start, i, got[i], want[i])
			}
		}
	}
}

func TestGroupOfLibertiesAreExactAndDeduplicated(t *testing.T) {
	// Two adjacent stones in the corner: liberties are the three distinct
	// empty points touching the pair.
	b := place(board.New(9), board.White, board.Point{X: 0, Y: 0}, board.Point{X: 1, Y: 0})
	g := GroupOf(b, board.Point{X: 0, Y: 0})

	want := map[board.Point]struct{}{
		{X: 2, Y: 0}: {},
		{X: 0, Y: 1}: {},
		{X: 1, Y: 1}: {},
	}
	if g.LibertyCount() != len(want) {
		t.Fatalf("expected %d liberties, got %d", len(want), g.LibertyCount())
	}
	for lib := range want {
		if _, ok := g.Liberties[lib]; !ok {
			t.Fatalf("missing liberty %v", lib)
		}
	}
}

func TestGroupOfStopsAtOpponentStones(t *testing.T) {
	b := place(board.New(9), board.Black, board.Point{X: 4, Y: 4})
	b = place(b, board.White, board.Point{X: 5, Y: 4})

	g := GroupOf(b, board.Point{X: 4, Y: 4})
	if g.Size() != 1 {
		t.Fatalf("expected single-stone group, got %d", g.Size())
	}
	if g.LibertyCount() != 3 {
		t.Fatalf("expected 3 liberties, got %d", g.LibertyCount())
	}
}

func TestApplyCapturesRemovesSurroundedGroup(t *testing.T) {
	// White pair at (4,4),(5,4) surrounded by black except (6,4); black
	// plays (6,4) to finish the capture.
	b := place(board.New(9), board.White, board.Point{X: 4, Y: 4}, board.Point{X: 5, Y: 4})
	b = place(b, board.Black,
		board.Point{X: 3, Y: 4},
		board.Point{X: 4, Y: 3}, board.Point{X: 5, Y: 3},
		board.Point{X: 4, Y: 5}, board.Point{X: 5, Y: 5},
	)
	placement := board.Point{X: 6, Y: 4}
	b = place(b, board.Black, placement)

	result, captured := ApplyCaptures(b, placement, board.Black)
	if captured != 2 {
		t.Fatalf("expected 2 captures, got %d", captured)
	}
	if result.At(board.Point{X: 4, Y: 4}) != board.Empty || result.At(board.Point{X: 5, Y: 4}) != board.Empty {
		t.Fatal("expected captured stones removed")
	}
	if result.At(placement) != board.Black {
		t.Fatal("expected placed stone to remain")
	}
}

func TestApplyCapturesIgnoresNonAdjacentGroups(t *testing.T) {
	// A dead white group far from the placement must not be touched even
	// if it has zero liberties.
	far := place(board.New(9), board.White, board.Point{X: 0, Y: 0})
	far = place(far, board.Black, board.Point{X: 1, Y: 0}, board.Point{X: 0, Y: 1})

	placement := board.Point{X: 7, Y: 7}
	far = place(far, board.Black, placement)

	result, captured := ApplyCaptures(far, placement, board.Black)
	if captured != 0 {
		t.Fatalf("expected no captures, got %d", captured)
	}
	if result.At(board.Point{X: 0, Y: 0}) != board.White {
		t.Fatal("expected distant zero-liberty group untouched")
	}
}

func TestApplyRejectsOccupiedPoint(t *testing.T) {
	b := place(board.New(9), board.Black, board.Point{X: 2, Y: 2})
	_, _, err := Apply(b, board.Point{X: 2, Y: 2}, board.White, nil)
	if !errors.Is(err, ErrOccupied) {
		t.Fatalf("expected ErrOccupied, got %v", err)
	}
}

func TestApplyRejectsSuicide(t *testing.T) {
	// (0,0) has both neighbors black; white playing there dies instantly.
	b := place(board.New(9), board.Black, board.Point{X: 1, Y: 0}, board.Point{X: 0, Y: 1})
	_, _, err := Apply(b, board.Point{X: 0, Y: 0}, board.White, nil)
	if !errors.Is(err, ErrSuicide) {
		t.Fatalf("expected ErrSuicide, got %v", err)
	}
}

func TestApplyAllowsCaptureThatFreesLiberty(t *testing.T) {
	// Black stone at (0,0) with its single liberty at (1,0) already
	// flanked: white playing (1,0) captures it and gains the freed point,
	// so the move is not suicide.
	b := place(board.New(9), board.Black, board.Point{X: 0, Y: 0})
	b = place(b, board.White, board.Point{X: 0, Y: 1}, board.Point{X: 2, Y: 0}, board.Point{X: 1, Y: 1})

	result, captured, err := Apply(b, board.Point{X: 1, Y: 0}, board.White, nil)
	if err != nil {
		t.Fatalf("expected legal capture, got %v", err)
	}
	if captured != 1 {
		t.Fatalf("expected 1 capture, got %d", captured)
	}
	if result.At(board.Point{X: 0, Y: 0}) != board.Empty {
		t.Fatal("expected captured stone removed")
	}
}

// koPosition builds the classic ko shape:
//
//	. X O .
//	X O . O      <- prior: white stone on (1,1), point (2,1) empty
//	. X O .
//
// Black captures the white stone by playing (2,1); white retaking at (1,1)
// would recreate the prior position exactly.
func koPosition(t *testing.T) (current board.Board, prior board.Board) {
	t.Helper()
	base := place(board.New(9), board.Black,
		board.Point{X: 1, Y: 0}, board.Point{X: 0, Y: 1}, board.Point{X: 1, Y: 2},
	)
	base = place(base, board.White,
		board.Point{X: 2, Y: 0}, board.Point{X: 3, Y: 1}, board.Point{X: 2, Y: 2},
	)
	prior = place(base, board.White, board.Point{X: 1, Y: 1})

	current, captured, err := Apply(prior, board.Point{X: 2, Y: 1}, board.Black, nil)
	if err != nil || captured != 1 {
		t.Fatalf("setup capture failed: captured=%d err=%v", captured, err)
	}
	return current, prior
}

func TestApplyRejectsImmediateKoRetake(t *testing.T) {
	current, prior := koPosition(t)

	_, _, err := Apply(current, board.Point{X: 1, Y: 1}, board.White, &prior)
	if !errors.Is(err, ErrKo) {
		t.Fatalf("expected ErrKo, got %v", err)
	}
}

func TestApplyAllowsRetakeWithoutPriorPosition(t *testing.T) {
	// Same shape, but no repetition reference: the retake is a plain
	// capture. This is also why older (non-immediate) repetitions pass.
	current, _ := koPosition(t)

	_, captured, err := Apply(current, board.Point{X: 1, Y: 1}, board.White, nil)
	if err != nil {
		t.Fatalf("expected legal retake, got %v", err)
	}
	if captured != 1 {
		t.Fatalf("expected 1 capture, got %d", captured)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	b := place(board.New(9), board.White, board.Point{X: 4, Y: 4})
	snapshot := b.Clone()

	if _, _, err := Apply(b, board.Point{X: 3, Y: 3}, board.Black, nil); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !b.Equal(snapshot) {
		t.Fatal("expected input board unchanged")
	}
}

func TestFullBoardCaptureScenario(t *testing.T) {
	// On an empty 19x19: black (3,3); white (3,4); black (3,5) leaves the
	// white stone two liberties; black (2,4) then (4,4) captures it.
	b := board.New(19)

	var err error
	b, _, err = Apply(b, board.Point{X: 3, Y: 3}, board.Black, nil)
	if err != nil {
		t.Fatalf("black (3,3): %v", err)
	}
	b, _, err = Apply(b, board.Point{X: 3, Y: 4}, board.White, nil)
	if err != nil {
		t.Fatalf("white (3,4): %v", err)
	}
	b, captured, err := Apply(b, board.Point{X: 3, Y: 5}, board.Black, nil)
	if err != nil {
		t.Fatalf("black (3,5): %v", err)
	}
	if captured != 0 {
		t.Fatalf("expected no capture yet, got %d", captured)
	}
	if g := GroupOf(b, board.Point{X: 3, Y: 4}); g.LibertyCount() != 2 {
		t.Fatalf("expected white group to keep 2 liberties, got %d", g.LibertyCount())
	}

	b, captured, err = Apply(b, board.Point{X: 2, Y: 4}, board.Black, nil)
	if err != nil || captured != 0 {
		t.Fatalf("black (2,4): captured=%d err=%v", captured, err)
	}
	b, captured, err = Apply(b, board.Point{X: 4, Y: 4}, board.Black, nil)
	if err != nil {
		t.Fatalf("black (4,4): %v", err)
	}
	if captured != 1 {
		t.Fatalf("expected 1 capture, got %d", captured)
	}
	if b.At(board.Point{X: 3, Y: 4}) != board.Empty {
		t.Fatal("expected white stone at (3,4) removed")
	}
}
