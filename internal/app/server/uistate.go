package server

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/chess-vn/slgo/internal/game"
)

type uiPlayerData struct {
	Name      string     `json:"name"`
	Avatar    string     `json:"avatar"`
	Type      PlayerType `json:"type"`
	ChessType game.Role  `json:"chess_type"`
}

type uiGameMetadata struct {
	Size           int          `json:"size"`
	PlayerOpposing uiPlayerData `json:"player_opposing"`
	PlayerOur      uiPlayerData `json:"player_our"`
	TurnTimeout    int          `json:"turn_timeout"`
}

type uiStatistic struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type uiGame struct {
	Chessboard         [][]game.Role  `json:"chessboard"`
	IsOurPlayerPlaying bool           `json:"is_our_player_playing"`
	GameMetadata       uiGameMetadata `json:"gamemetadata"`
	Statistics         []uiStatistic  `json:"statistics"`
}

type uiState struct {
	IsGaming bool    `json:"is_gaming"`
	Game     *uiGame `json:"game,omitempty"`
}

func playerData(p Player, ok bool, role game.Role) uiPlayerData {
	if !ok {
		return uiPlayerData{ChessType: role}
	}
	return uiPlayerData{Name: p.Name, Type: p.Type, ChessType: p.Role}
}

// buildUIState renders the match as seen by viewer. The viewer's own player
// is the one to move when it owns both roles.
func buildUIState(m *Match, viewer Participant, moveTimeout time.Duration, now time.Time) uiState {
	if m.Status() != ON_GOING {
		return uiState{IsGaming: false}
	}

	turn := m.Turn()
	our, ok := m.players.find(turn, viewer)
	if !ok {
		our, ok = m.players.find(game.None, viewer)
	}
	ourRole := turn
	if ok {
		ourRole = our.Role
	}
	opposing, opposingOk := m.players.find(ourRole.Opponent(), nil)

	board := m.State().Board()
	cells := make([][]game.Role, board.Size())
	for x := range cells {
		cells[x] = make([]game.Role, board.Size())
		for y := range cells[x] {
			cells[x][y] = board.At(game.Position{X: x, Y: y})
		}
	}

	return uiState{
		IsGaming: true,
		Game: &uiGame{
			Chessboard:         cells,
			IsOurPlayerPlaying: ok && our.Role == turn,
			GameMetadata: uiGameMetadata{
				Size:           board.Size(),
				PlayerOpposing: playerData(opposing, opposingOk, ourRole.Opponent()),
				PlayerOur:      playerData(our, ok, ourRole),
				TurnTimeout:    int(moveTimeout / time.Second),
			},
			Statistics: []uiStatistic{
				{ID: "round", Name: "Round", Value: int64(m.Round())},
				{ID: "elapsed", Name: "Elapsed", Value: int64(now.Sub(m.StartedAt()) / time.Second)},
			},
		},
	}
}

func uiStateMessage(state uiState, now time.Time) (Message, error) {
	b, err := json.Marshal(state)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Op:    UPDATE_UI_STATE,
		Data1: strconv.FormatInt(now.Unix(), 10),
		Data2: string(b),
	}, nil
}
