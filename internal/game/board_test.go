package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(t *testing.T, s string) Position {
	t.Helper()
	p, err := ParsePosition(s)
	require.NoError(t, err)
	return p
}

// play applies the moves in order, alternating from Black.
func play(t *testing.T, size int, moves ...string) State {
	t.Helper()
	s := NewState(size)
	for _, m := range moves {
		s = s.Next(pos(t, m))
	}
	return s
}

func TestNewBoardPanicsOnBadSize(t *testing.T) {
	assert.Panics(t, func() { NewBoard(1) })
	assert.Panics(t, func() { NewBoard(27) })
	assert.NotPanics(t, func() { NewBoard(DefaultSize) })
}

func TestNeighbors(t *testing.T) {
	b := NewBoard(9)
	assert.Len(t, b.Neighbors(Position{X: 0, Y: 0}), 2)
	assert.Len(t, b.Neighbors(Position{X: 0, Y: 4}), 3)
	assert.Equal(t,
		[]Position{{X: 3, Y: 4}, {X: 5, Y: 4}, {X: 4, Y: 3}, {X: 4, Y: 5}},
		b.Neighbors(Position{X: 4, Y: 4}),
	)
	for _, p := range b.Positions() {
		for _, n := range b.Neighbors(p) {
			assert.True(t, b.InBounds(n))
		}
	}
}

func TestLibertiesSingleStone(t *testing.T) {
	b := NewBoard(9).With(Position{X: 4, Y: 4}, Black)
	assert.True(t, b.Liberties(Position{X: 4, Y: 4}))
}

func TestLibertiesGroup(t *testing.T) {
	// Black chain A1-A2 walled in by White.
	b := NewBoard(5).
		With(pos(t, "A1"), Black).
		With(pos(t, "A2"), Black).
		With(pos(t, "B1"), White).
		With(pos(t, "B2"), White)
	assert.True(t, b.Liberties(pos(t, "A1")))

	b = b.With(pos(t, "A3"), White)
	assert.False(t, b.Liberties(pos(t, "A1")))
	assert.False(t, b.Liberties(pos(t, "A2")))
	assert.True(t, b.Captures(pos(t, "A3")))
	assert.True(t, b.IsCapturing(pos(t, "A3")))
	assert.False(t, b.IsSuicide(pos(t, "A3")))
}

func TestLibertiesLargeGroup(t *testing.T) {
	b := NewBoard(MaxSize)
	for _, p := range b.Positions() {
		if p != (Position{X: MaxSize - 1, Y: MaxSize - 1}) {
			b = b.With(p, Black)
		}
	}
	assert.True(t, b.Liberties(Position{X: 0, Y: 0}))
	b = b.With(Position{X: MaxSize - 1, Y: MaxSize - 1}, Black)
	assert.False(t, b.Liberties(Position{X: 0, Y: 0}))
}

func TestIsCapturingSuicide(t *testing.T) {
	b := NewBoard(9).
		With(pos(t, "B1"), Black).
		With(pos(t, "A2"), Black).
		With(pos(t, "A1"), White)
	assert.True(t, b.IsSuicide(pos(t, "A1")))
	assert.False(t, b.Captures(pos(t, "A1")))
	assert.True(t, b.IsCapturing(pos(t, "A1")))
}

func TestIsCapturingIsPure(t *testing.T) {
	b := NewBoard(9).
		With(pos(t, "B1"), Black).
		With(pos(t, "A1"), White).
		With(pos(t, "A2"), Black)
	before := b.String()
	assert.True(t, b.IsCapturing(pos(t, "A2")))
	assert.Equal(t, before, b.String())
}

func TestSurroundedStoneHasNoLiberties(t *testing.T) {
	center := Position{X: 4, Y: 4}
	b := NewBoard(9).
		With(center, Black).
		With(Position{X: 3, Y: 4}, White).
		With(Position{X: 5, Y: 4}, White).
		With(Position{X: 4, Y: 3}, White)
	assert.True(t, b.Liberties(center))

	last := Position{X: 4, Y: 5}
	b = b.With(last, White)
	assert.False(t, b.Liberties(center))
	assert.True(t, b.IsCapturing(last))
	assert.True(t, b.Liberties(Position{X: 3, Y: 4}))
}
