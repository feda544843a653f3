package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/chess-vn/slgo/internal/game"
	"github.com/chess-vn/slgo/pkg/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MatchResult struct {
	Winner    game.Role
	Kind      ResultKind
	Confirmed bool
}

// Match is the state machine of one match inside a room. It is owned by the
// room loop and never touched concurrently.
type Match struct {
	id          string
	size        int
	status      MatchStatus
	state       game.State
	moves       []game.Position
	players     roster
	result      MatchResult
	startAt     time.Time
	endAt       time.Time
	mustForfeit bool

	now func() time.Time
}

func newMatch(size int) *Match {
	m := &Match{size: size, now: time.Now}
	m.Clear()
	return m
}

func (m *Match) ID() string { return m.id }
func (m *Match) Size() int { return m.size }
func (m *Match) Status() MatchStatus { return m.status }
func (m *Match) State() game.State { return m.state }
func (m *Match) Result() MatchResult { return m.result }
func (m *Match) StartedAt() time.Time { return m.startAt }
func (m *Match) EndedAt() time.Time { return m.endAt }
func (m *Match) MustForfeit() bool { return m.mustForfeit }
func (m *Match) Players() []Player { return m.players.list() }
func (m *Match) Turn() game.Role { return m.state.Role() }

func (m *Match) Moves() []game.Position {
	out := make([]game.Position, len(m.moves))
	copy(out, m.moves)
	return out
}

// Round counts full turns, starting at 1.
func (m *Match) Round() int { return len(m.moves)/2 + 1 }

func (m *Match) expect(status MatchStatus) error {
	if m.status == status {
		return nil
	}
	var err error
	switch status {
	case NOT_PREPARED:
		err = ErrMatchNotPrepared
	default:
		err = ErrMatchNotOnGoing
	}
	return fmt.Errorf("%w: status %s", err, m.status)
}

func (m *Match) fail(op string, err error) error {
	logging.Error("match precondition violated",
		zap.String("match_id", m.id),
		zap.String("op", op),
		zap.Error(err),
	)
	return err
}

func (m *Match) finish(winner game.Role, kind ResultKind) {
	m.status = GAME_OVER
	m.result = MatchResult{Winner: winner, Kind: kind}
	m.endAt = m.now()
	logging.Info("match ended",
		zap.String("match_id", m.id),
		zap.Stringer("winner", winner),
		zap.Stringer("method", kind),
		zap.Int("moves", len(m.moves)),
	)
}

// Enroll adds a player while the match is being prepared. The match starts
// once both roles are taken.
func (m *Match) Enroll(player Player) (Player, error) {
	if err := m.expect(NOT_PREPARED); err != nil {
		return Player{}, m.fail("enroll", err)
	}
	enrolled, err := m.players.insert(player)
	if err != nil {
		return Player{}, m.fail("enroll", err)
	}
	if m.players.contains(game.Black) && m.players.contains(game.White) {
		m.status = ON_GOING
		m.startAt = m.now()
		logging.Info("match started", zap.String("match_id", m.id))
	}
	return enrolled, nil
}

func (m *Match) Reject() error {
	if err := m.expect(NOT_PREPARED); err != nil {
		return m.fail("reject", err)
	}
	m.players.clear()
	return nil
}

func (m *Match) Play(player Player, p game.Position) error {
	if err := m.expect(ON_GOING); err != nil {
		return m.fail("play", err)
	}
	if player.Role != m.state.Role() {
		return m.fail("play", fmt.Errorf("%w: %s to move", ErrNotYourTurn, m.state.Role()))
	}
	board := m.state.Board()
	if !board.InBounds(p) {
		return m.fail("play", fmt.Errorf("%w: %s", ErrOutOfBoard, p))
	}
	if board.At(p) != game.None {
		return m.fail("play", fmt.Errorf("%w: %s", ErrCellOccupied, p))
	}

	m.state = m.state.Next(p)
	m.moves = append(m.moves, p)
	if winner := m.state.IsOver(); winner != game.None {
		m.finish(winner, WIN_BY_CAPTURE)
		return nil
	}
	if !m.mustForfeit && len(m.state.AvailableActions()) == 0 {
		m.mustForfeit = true
		logging.Info("no safe move left", zap.String("match_id", m.id), zap.Stringer("role", m.state.Role()))
	}
	return nil
}

func (m *Match) isCurrent(player Player) error {
	current, err := m.players.at(m.state.Role(), nil)
	if err != nil {
		return err
	}
	if !current.Equal(player) {
		return fmt.Errorf("%w: %s to move", ErrNotYourTurn, m.state.Role())
	}
	return nil
}

func (m *Match) Concede(player Player) error {
	if err := m.expect(ON_GOING); err != nil {
		return m.fail("concede", err)
	}
	if err := m.isCurrent(player); err != nil {
		return m.fail("concede", err)
	}
	m.finish(player.Role.Opponent(), WIN_BY_GIVEUP)
	return nil
}

func (m *Match) Timeout(player Player) error {
	if err := m.expect(ON_GOING); err != nil {
		return m.fail("timeout", err)
	}
	if err := m.isCurrent(player); err != nil {
		return m.fail("timeout", err)
	}
	m.finish(player.Role.Opponent(), WIN_BY_TIMEOUT)
	return nil
}

func (m *Match) Confirm() { m.result.Confirmed = true }

// Clear resets the match to a fresh, unprepared one with a new id.
func (m *Match) Clear() {
	m.id = uuid.NewString()
	m.status = NOT_PREPARED
	m.state = game.NewState(m.size)
	m.moves = nil
	m.players.clear()
	m.result = MatchResult{}
	m.startAt = time.Time{}
	m.endAt = time.Time{}
	m.mustForfeit = false
}

// Encode renders the move history followed by the result terminator,
// e.g. "A1 B2 G".
func (m *Match) Encode() string {
	moves := make([]string, len(m.moves))
	for i, p := range m.moves {
		moves[i] = p.String()
	}
	return strings.Join(moves, " ") + " " + m.result.Kind.terminator()
}
