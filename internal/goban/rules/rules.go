package rules

import (
	"errors"

	"github.com/hoshiten/goban/internal/goban/board"
)

// ErrOccupied indicates the target point already holds a stone.
var ErrOccupied = errors.New("point is occupied")

// ErrSuicide indicates the placed group would end with zero liberties.
var ErrSuicide = errors.New("move is suicide")

// ErrKo indicates the move would recreate the immediately preceding position.
var ErrKo = errors.New("move repeats previous position")

// Group is a maximal connected same-color stone set together with its
// liberties. Groups are transient: recomputed on demand, never persisted.
type Group struct {
	Color     board.Cell
	Stones    []board.Point
	Liberties map[board.Point]struct{}
}

// Size returns the number of stones in the group.
func (g Group) Size() int {
	return len(g.Stones)
}

// LibertyCount returns the number of distinct empty points adjacent to the
// group.
func (g Group) LibertyCount() int {
	return len(g.Liberties)
}

// Adjacent returns the up-to-four orthogonal neighbors of p that are inside
// the grid. No diagonals.
func Adjacent(b board.Board, p board.Point) []board.Point {
	candidates := [4]board.Point{
		{X: p.X - 1, Y: p.Y},
		{X: p.X + 1, Y: p.Y},
		{X: p.X, Y: p.Y - 1},
		{X: p.X, Y: p.Y + 1},
	}
	neighbors := make([]board.Point, 0, 4)
	for _, n := range candidates {
		if b.Contains(n) {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors
}

// GroupOf discovers the group containing p by breadth-first traversal over
// same-color cells. When p is empty the returned group has no stones and no
// liberties; callers must guard. Membership does not depend on traversal
// order.
func GroupOf(b board.Board, p board.Point) Group {
	color := b.At(p)
	group := Group{
		Color:     color,
		Liberties: make(map[board.Point]struct{}),
	}
	if color == board.Empty {
		return group
	}

	visited := map[board.Point]struct{}{p: {}}
	queue := []board.Point{p}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		group.Stones = append(group.Stones, current)

		for _, n := range Adjacent(b, current) {
			switch b.At(n) {
			case board.Empty:
				group.Liberties[n] = struct{}{}
			case color:
				if _, seen := visited[n]; !seen {
					visited[n] = struct{}{}
					queue = append(queue, n)
				}
			}
		}
	}
	return group
}

// ApplyCaptures removes every opponent group adjacent to the just-placed
// stone that has no liberties left, returning the resulting board and the
// number of stones removed. Only groups touching the placement are examined:
// placing a stone can only reduce liberties of groups it touches.
func ApplyCaptures(b board.Board, placed board.Point, color board.Cell) (board.Board, int) {
	opponent := color.Opponent()
	result := b.Clone()
	captured := 0

	for _, n := range Adjacent(b, placed) {
		if result.At(n) != opponent {
			continue
		}
		group := GroupOf(result, n)
		if group.LibertyCount() > 0 {
			continue
		}
		for _, stone := range group.Stones {
			result.Cells[stone.Y*result.Size+stone.X] = board.Empty
		}
		captured += group.Size()
	}
	return result, captured
}

// Apply validates and resolves placing a stone of the given color at p.
//
// On success it returns the post-capture board and the number of opponent
// stones captured. It fails with ErrOccupied, ErrSuicide, or ErrKo; the
// board passed in is never modified. prior is the position that existed
// immediately before the previous move, or nil when no move has been played.
func Apply(b board.Board, p board.Point, color board.Cell, prior *board.Board) (board.Board, int, error) {
	if b.At(p) != board.Empty {
		return board.Board{}, 0, ErrOccupied
	}

	placed := b.With(p, color)
	resolved, captured := ApplyCaptures(placed, p, color)

	// Suicide applies after opponent removal: a capture that frees a
	// liberty for the placed stone keeps the move legal.
	if GroupOf(resolved, p).LibertyCount() == 0 {
		return board.Board{}, 0, ErrSuicide
	}

	if prior != nil && resolved.Equal(*prior) {
		return board.Board{}, 0, ErrKo
	}

	return resolved, captured, nil
}
