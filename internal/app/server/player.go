package server

import (
	"fmt"

	"github.com/chess-vn/slgo/internal/game"
)

// Participant is anything the room can deliver messages to. Connections
// implement it; tests use fakes.
type Participant interface {
	ID() string
	IsLocal() bool
	Deliver(msg Message)
	Stop()
}

type Player struct {
	Participant Participant
	Name        string
	Role        game.Role
	Type        PlayerType
}

func sameParticipant(a, b Participant) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

func (p Player) Equal(o Player) bool {
	return sameParticipant(p.Participant, o.Participant) &&
		p.Name == o.Name &&
		p.Role == o.Role &&
		p.Type == o.Type
}

func isValidName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}

// roster holds at most one player per non-None role.
type roster struct {
	players []Player
}

func (r *roster) size() int { return len(r.players) }

func (r *roster) list() []Player {
	out := make([]Player, len(r.players))
	copy(out, r.players)
	return out
}

func (r *roster) contains(role game.Role) bool {
	_, ok := r.find(role, nil)
	return ok
}

// find returns the first player matching role and participant. A None role
// or nil participant matches anything.
func (r *roster) find(role game.Role, participant Participant) (Player, bool) {
	for _, p := range r.players {
		if role != game.None && p.Role != role {
			continue
		}
		if participant != nil && !sameParticipant(p.Participant, participant) {
			continue
		}
		return p, true
	}
	return Player{}, false
}

func (r *roster) at(role game.Role, participant Participant) (Player, error) {
	p, ok := r.find(role, participant)
	if !ok {
		return Player{}, fmt.Errorf("%w: role %s", ErrPlayerNotFound, role)
	}
	return p, nil
}

// insert adds the player, picking the open role when none is requested.
// It returns the player as stored.
func (r *roster) insert(player Player) (Player, error) {
	for _, p := range r.players {
		if p.Equal(player) {
			return Player{}, fmt.Errorf("%w: %s", ErrPlayerEnrolled, player.Name)
		}
	}
	if player.Role == game.None {
		switch {
		case !r.contains(game.Black):
			player.Role = game.Black
		case !r.contains(game.White):
			player.Role = game.White
		default:
			return Player{}, ErrNoOpenRole
		}
	}
	if r.contains(player.Role) {
		return Player{}, fmt.Errorf("%w: %s", ErrRoleOccupied, player.Role)
	}
	r.players = append(r.players, player)
	return player, nil
}

func (r *roster) clear() { r.players = nil }
