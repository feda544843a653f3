package game

import (
	"fmt"
	"strconv"
)

type Position struct {
	X int
	Y int
}

// NoPosition marks the absence of a move.
var NoPosition = Position{X: -1, Y: -1}

func (p Position) Valid() bool { return p.X >= 0 && p.Y >= 0 }

func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

func (p Position) Less(o Position) bool {
	if p.X != o.X {
		return p.X < o.X
	}
	return p.Y < o.Y
}

// String renders the column as a letter and the row as a 1-based number,
// so (2, 3) becomes "C4".
func (p Position) String() string {
	if !p.Valid() || p.X >= MaxSize {
		return "??"
	}
	return string(rune('A'+p.X)) + strconv.Itoa(p.Y+1)
}

// ParsePosition is the inverse of String. Rows may have several digits.
// Bounds against a concrete board are checked by the caller.
func ParsePosition(s string) (Position, error) {
	if len(s) < 2 {
		return NoPosition, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	col := s[0]
	if col < 'A' || col >= 'A'+MaxSize {
		return NoPosition, fmt.Errorf("%w: bad column in %q", ErrInvalidPosition, s)
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil || row < 1 || s[1] == '+' {
		return NoPosition, fmt.Errorf("%w: bad row in %q", ErrInvalidPosition, s)
	}
	return Position{X: int(col - 'A'), Y: row - 1}, nil
}
