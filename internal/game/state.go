package game

// State is an immutable snapshot of a match: the board, the role to move
// and the last placement. Next always returns a fresh value.
type State struct {
	board    Board
	role     Role
	lastMove Position
}

func NewState(size int) State {
	return State{
		board:    NewBoard(size),
		role:     Black,
		lastMove: NoPosition,
	}
}

func (s State) Board() Board { return s.board }

// Role is the role to move.
func (s State) Role() Role { return s.role }

func (s State) LastMove() (Position, bool) {
	return s.lastMove, s.lastMove.Valid()
}

// Next places the mover's stone at p without any legality check.
func (s State) Next(p Position) State {
	return State{
		board:    s.board.With(p, s.role),
		role:     s.role.Opponent(),
		lastMove: p,
	}
}

// AvailableActions lists the empty cells where the mover can play without
// ending the match.
func (s State) AvailableActions() []Position {
	scratch := s.board.Clone()
	var out []Position
	for _, p := range scratch.Positions() {
		i := scratch.index(p)
		if scratch.cells[i] != None {
			continue
		}
		scratch.cells[i] = s.role
		if !scratch.IsCapturing(p) {
			out = append(out, p)
		}
		scratch.cells[i] = None
	}
	return out
}

// IsOver returns the winner, or None while the match goes on. A placement
// that captured an opponent group wins for the mover; one that only took
// its own last liberty wins for the opponent.
func (s State) IsOver() Role {
	last, ok := s.LastMove()
	if !ok {
		return None
	}
	mover := s.role.Opponent()
	switch {
	case s.board.Captures(last):
		return mover
	case s.board.IsSuicide(last):
		return s.role
	default:
		return None
	}
}
