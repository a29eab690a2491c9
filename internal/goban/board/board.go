package board

import (
	"fmt"
	"strings"
)

// DefaultSize is the standard full-size grid.
const DefaultSize = 19

// Cell is the occupancy state of a single intersection.
type Cell uint8

const (
	Empty Cell = iota
	Black
	White
)

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "unknown"
	}
}

// Opponent returns the opposing stone color. Empty has no opponent and maps
// to Empty.
func (c Cell) Opponent() Cell {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

// Point addresses an intersection. Both coordinates are in [0, Size).
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Board is a square grid of cells. The size is fixed for the lifetime of a
// match. Boards are treated as immutable between turns: mutation goes
// through With, which returns a copy.
type Board struct {
	Size  int    `json:"size"`
	Cells []Cell `json:"cells"`
}

// New returns an empty board of the given size. Sizes below 2 fall back to
// DefaultSize.
func New(size int) Board {
	if size < 2 {
		size = DefaultSize
	}
	return Board{
		Size:  size,
		Cells: make([]Cell, size*size),
	}
}

// Contains reports whether p is inside the grid.
func (b Board) Contains(p Point) bool {
	return p.X >= 0 && p.X < b.Size && p.Y >= 0 && p.Y < b.Size
}

// At returns the cell at p. Out-of-grid points read as Empty; callers that
// care must check Contains first.
func (b Board) At(p Point) Cell {
	if !b.Contains(p) {
		return Empty
	}
	return b.Cells[p.Y*b.Size+p.X]
}

// With returns a copy of the board with p set to c. The receiver is left
// untouched.
func (b Board) With(p Point, c Cell) Board {
	next := b.Clone()
	if next.Contains(p) {
		next.Cells[p.Y*next.Size+p.X] = c
	}
	return next
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	cells := make([]Cell, len(b.Cells))
	copy(cells, b.Cells)
	return Board{Size: b.Size, Cells: cells}
}

// Equal reports whether two boards have identical size and cell contents.
func (b Board) Equal(other Board) bool {
	if b.Size != other.Size || len(b.Cells) != len(other.Cells) {
		return false
	}
	for i := range b.Cells {
		if b.Cells[i] != other.Cells[i] {
			return false
		}
	}
	return true
}

// Count returns the number of cells holding c.
func (b Board) Count(c Cell) int {
	total := 0
	for _, cell := range b.Cells {
		if cell == c {
			total++
		}
	}
	return total
}

// String renders the grid for logs and the CLI. Row 0 prints first so the
// origin is the top-left corner.
func (b Board) String() string {
	var sb strings.Builder
	for y := 0; y < b.Size; y++ {
		for x := 0; x < b.Size; x++ {
			if x > 0 {
				sb.WriteByte(' ')
			}
			switch b.At(Point{X: x, Y: y}) {
			case Black:
				sb.WriteByte('X')
			case White:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
