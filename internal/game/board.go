package game

import (
	"fmt"
	"strings"
)

const (
	MinSize     = 2
	MaxSize     = 26
	DefaultSize = 9
)

var directions = [4]Position{{X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: -1}, {X: 0, Y: 1}}

// Board is an N×N grid of roles. Cells are set and never cleared; a fresh
// board is the only way to empty one.
type Board struct {
	size  int
	cells []Role
}

func ValidSize(size int) error {
	if size < MinSize || size > MaxSize {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidSize, size, MinSize, MaxSize)
	}
	return nil
}

// NewBoard panics on a size outside [MinSize, MaxSize]; configuration is
// validated before any board is built.
func NewBoard(size int) Board {
	if err := ValidSize(size); err != nil {
		panic(err)
	}
	return Board{size: size, cells: make([]Role, size*size)}
}

func (b Board) Size() int { return b.size }

func (b Board) InBounds(p Position) bool {
	return p.X >= 0 && p.X < b.size && p.Y >= 0 && p.Y < b.size
}

func (b Board) index(p Position) int { return p.X*b.size + p.Y }

func (b Board) At(p Position) Role {
	if !b.InBounds(p) {
		return None
	}
	return b.cells[b.index(p)]
}

func (b Board) Clone() Board {
	cells := make([]Role, len(b.cells))
	copy(cells, b.cells)
	return Board{size: b.size, cells: cells}
}

// With returns a copy of the board with r placed at p.
func (b Board) With(p Position, r Role) Board {
	next := b.Clone()
	next.cells[next.index(p)] = r
	return next
}

// Positions lists every cell, column-major like the cell layout.
func (b Board) Positions() []Position {
	out := make([]Position, 0, len(b.cells))
	for x := 0; x < b.size; x++ {
		for y := 0; y < b.size; y++ {
			out = append(out, Position{X: x, Y: y})
		}
	}
	return out
}

func (b Board) Neighbors(p Position) []Position {
	out := make([]Position, 0, len(directions))
	for _, d := range directions {
		if n := p.Add(d); b.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// Liberties reports whether the group of same-role stones containing p
// touches at least one empty cell.
func (b Board) Liberties(p Position) bool {
	role := b.At(p)
	visited := make([]bool, len(b.cells))
	visited[b.index(p)] = true
	stack := []Position{p}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range b.Neighbors(cur) {
			i := b.index(n)
			switch c := b.cells[i]; {
			case c == None:
				return true
			case c == role && !visited[i]:
				visited[i] = true
				stack = append(stack, n)
			}
		}
	}
	return false
}

// Captures reports whether the stone at p left an adjacent opponent group
// without liberties.
func (b Board) Captures(p Position) bool {
	role := b.At(p)
	if role == None {
		return false
	}
	for _, n := range b.Neighbors(p) {
		if b.At(n) == role.Opponent() && !b.Liberties(n) {
			return true
		}
	}
	return false
}

// IsSuicide reports whether the group at p has no liberties.
func (b Board) IsSuicide(p Position) bool {
	return b.At(p) != None && !b.Liberties(p)
}

// IsCapturing reports whether the stone at p ends the match either way.
func (b Board) IsCapturing(p Position) bool {
	return b.IsSuicide(p) || b.Captures(p)
}

func (b Board) String() string {
	var sb strings.Builder
	for y := b.size - 1; y >= 0; y-- {
		for x := 0; x < b.size; x++ {
			switch b.At(Position{X: x, Y: y}) {
			case Black:
				sb.WriteByte('B')
			case White:
				sb.WriteByte('W')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
