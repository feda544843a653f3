package server

import (
	"testing"

	"github.com/chess-vn/slgo/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollStartsMatch(t *testing.T) {
	m := newMatch(9)
	assert.Equal(t, NOT_PREPARED, m.Status())
	assert.True(t, m.StartedAt().IsZero())

	_, err := m.Enroll(Player{Participant: newFake("1", false), Name: "alice", Role: game.Black})
	require.NoError(t, err)
	assert.Equal(t, NOT_PREPARED, m.Status())

	_, err = m.Enroll(Player{Participant: newFake("2", false), Name: "bob", Role: game.White})
	require.NoError(t, err)
	assert.Equal(t, ON_GOING, m.Status())
	assert.False(t, m.StartedAt().IsZero())

	_, err = m.Enroll(Player{Participant: newFake("3", false), Name: "carol"})
	assert.ErrorIs(t, err, ErrMatchNotPrepared)
	assert.Len(t, m.Players(), 2)
}

func TestEnrollAssignsOpenRole(t *testing.T) {
	m := newMatch(9)
	p, err := m.Enroll(Player{Participant: newFake("1", false), Name: "alice"})
	require.NoError(t, err)
	assert.Equal(t, game.Black, p.Role)

	p, err = m.Enroll(Player{Participant: newFake("2", false), Name: "bob"})
	require.NoError(t, err)
	assert.Equal(t, game.White, p.Role)
}

func TestRosterRejects(t *testing.T) {
	var r roster
	alice := Player{Participant: newFake("1", false), Name: "alice", Role: game.Black}

	_, err := r.insert(alice)
	require.NoError(t, err)
	_, err = r.insert(alice)
	assert.ErrorIs(t, err, ErrPlayerEnrolled)
	_, err = r.insert(Player{Participant: newFake("2", false), Name: "bob", Role: game.Black})
	assert.ErrorIs(t, err, ErrRoleOccupied)

	_, err = r.insert(Player{Participant: newFake("2", false), Name: "bob"})
	require.NoError(t, err)
	_, err = r.insert(Player{Participant: newFake("3", false), Name: "carol"})
	assert.ErrorIs(t, err, ErrNoOpenRole)
	assert.Equal(t, 2, r.size())
}

func TestRosterFind(t *testing.T) {
	var r roster
	p1 := newFake("1", true)
	_, err := r.insert(Player{Participant: p1, Name: "BLACK", Role: game.Black})
	require.NoError(t, err)
	_, err = r.insert(Player{Participant: p1, Name: "WHITE", Role: game.White})
	require.NoError(t, err)

	got, ok := r.find(game.White, p1)
	require.True(t, ok)
	assert.Equal(t, "WHITE", got.Name)

	_, ok = r.find(game.Black, newFake("2", false))
	assert.False(t, ok)

	_, err = r.at(game.None, newFake("2", false))
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestReject(t *testing.T) {
	m := newMatch(9)
	_, err := m.Enroll(Player{Participant: newFake("1", false), Name: "alice"})
	require.NoError(t, err)
	require.NoError(t, m.Reject())
	assert.Empty(t, m.Players())

	m, _, _ = enrolledMatch(t, 9)
	assert.ErrorIs(t, m.Reject(), ErrMatchNotPrepared)
}

func TestPlayRejectsLeaveStateUnchanged(t *testing.T) {
	m, black, white := enrolledMatch(t, 9)
	require.NoError(t, m.Play(black, mustPos(t, "E5")))
	before := m.State()

	assert.ErrorIs(t, m.Play(black, mustPos(t, "D4")), ErrNotYourTurn)
	assert.ErrorIs(t, m.Play(white, mustPos(t, "E5")), ErrCellOccupied)
	assert.ErrorIs(t, m.Play(white, game.Position{X: 9, Y: 0}), ErrOutOfBoard)

	assert.Equal(t, before, m.State())
	assert.Len(t, m.Moves(), 1)
	assert.Equal(t, game.White, m.Turn())
}

func TestPlayAppendsAndFlips(t *testing.T) {
	m, black, white := enrolledMatch(t, 9)
	assert.Equal(t, 1, m.Round())

	require.NoError(t, m.Play(black, mustPos(t, "C3")))
	assert.Equal(t, []game.Position{mustPos(t, "C3")}, m.Moves())
	assert.Equal(t, game.White, m.Turn())

	require.NoError(t, m.Play(white, mustPos(t, "D4")))
	assert.Len(t, m.Moves(), 2)
	assert.Equal(t, game.Black, m.Turn())
	assert.Equal(t, 2, m.Round())

	board := m.State().Board()
	assert.Equal(t, game.Black, board.At(mustPos(t, "C3")))
	assert.Equal(t, game.White, board.At(mustPos(t, "D4")))
}

func TestPlayOutsideOnGoing(t *testing.T) {
	m := newMatch(9)
	err := m.Play(Player{Role: game.Black}, mustPos(t, "A1"))
	assert.ErrorIs(t, err, ErrMatchNotOnGoing)
}

func TestCaptureEndsMatch(t *testing.T) {
	m, black, white := enrolledMatch(t, 9)
	moves := []struct {
		p   Player
		pos string
	}{
		{black, "E5"}, {white, "D5"}, {black, "A1"}, {white, "F5"},
		{black, "A3"}, {white, "E4"}, {black, "A5"}, {white, "E6"},
	}
	for _, mv := range moves {
		require.NoError(t, m.Play(mv.p, mustPos(t, mv.pos)))
	}

	assert.Equal(t, GAME_OVER, m.Status())
	assert.Equal(t, MatchResult{Winner: game.White, Kind: WIN_BY_CAPTURE}, m.Result())
	assert.False(t, m.EndedAt().IsZero())
	assert.ErrorIs(t, m.Play(black, mustPos(t, "H8")), ErrMatchNotOnGoing)
	assert.ErrorIs(t, m.Concede(black), ErrMatchNotOnGoing)
	assert.Equal(t, "E5 D5 A1 F5 A3 E4 A5 E6 ", m.Encode())
}

func TestStonesAreNeverCleared(t *testing.T) {
	m, black, white := enrolledMatch(t, 5)
	seq := []string{"A1", "B2", "C3", "D4", "E5", "A5", "E1"}
	players := []Player{black, white}
	for i, s := range seq {
		require.NoError(t, m.Play(players[i%2], mustPos(t, s)))
		board := m.State().Board()
		for j := 0; j <= i; j++ {
			assert.Equal(t, players[j%2].Role, board.At(mustPos(t, seq[j])))
		}
	}
}

func TestConcede(t *testing.T) {
	m, black, white := enrolledMatch(t, 9)
	require.NoError(t, m.Play(black, mustPos(t, "A1")))
	require.NoError(t, m.Play(white, mustPos(t, "B2")))

	assert.ErrorIs(t, m.Concede(white), ErrNotYourTurn)
	require.NoError(t, m.Concede(black))
	assert.Equal(t, MatchResult{Winner: game.White, Kind: WIN_BY_GIVEUP}, m.Result())
	assert.Equal(t, "A1 B2 G", m.Encode())
}

func TestTimeout(t *testing.T) {
	m, black, white := enrolledMatch(t, 9)
	require.NoError(t, m.Play(black, mustPos(t, "A1")))

	assert.ErrorIs(t, m.Timeout(black), ErrNotYourTurn)
	require.NoError(t, m.Timeout(white))
	assert.Equal(t, MatchResult{Winner: game.Black, Kind: WIN_BY_TIMEOUT}, m.Result())
	assert.Equal(t, "A1 T", m.Encode())
	assert.ErrorIs(t, m.Timeout(white), ErrMatchNotOnGoing)
}

func TestConcedeBeforeStart(t *testing.T) {
	m := newMatch(9)
	assert.ErrorIs(t, m.Concede(Player{Role: game.Black}), ErrMatchNotOnGoing)
	assert.ErrorIs(t, m.Timeout(Player{Role: game.Black}), ErrMatchNotOnGoing)
}

func TestConfirmAndClear(t *testing.T) {
	m, black, _ := enrolledMatch(t, 9)
	id := m.ID()
	require.NoError(t, m.Concede(black))

	m.Confirm()
	m.Confirm()
	assert.True(t, m.Result().Confirmed)

	m.Clear()
	assert.NotEqual(t, id, m.ID())
	assert.Equal(t, NOT_PREPARED, m.Status())
	assert.Empty(t, m.Players())
	assert.Empty(t, m.Moves())
	assert.Equal(t, MatchResult{}, m.Result())
	assert.Equal(t, game.Black, m.Turn())
}

func TestMustForfeitIsSticky(t *testing.T) {
	m, black, white := enrolledMatch(t, 2)
	require.NoError(t, m.Play(black, mustPos(t, "A1")))
	require.NoError(t, m.Play(white, mustPos(t, "B2")))
	assert.False(t, m.MustForfeit())

	require.NoError(t, m.Play(black, mustPos(t, "A2")))
	assert.Equal(t, ON_GOING, m.Status())
	assert.True(t, m.MustForfeit())
}

func TestEncodeEmpty(t *testing.T) {
	m, black, _ := enrolledMatch(t, 9)
	require.NoError(t, m.Concede(black))
	assert.Equal(t, " G", m.Encode())
}
