package server

import (
	"errors"

	"github.com/chess-vn/slgo/internal/game"
)

const (
	ErrStatusInvalidMessage = "INVALID_MESSAGE"
	ErrStatusInvalidMove    = "INVALID_MOVE"
	ErrStatusWrongTurn      = "WRONG_TURN"
	ErrStatusWrongStatus    = "WRONG_STATUS"
	ErrStatusInvalidPlayer  = "INVALID_PLAYER"
)

var (
	ErrMatchNotPrepared = errors.New("match is not being prepared")
	ErrMatchNotOnGoing  = errors.New("match is not on going")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrCellOccupied     = errors.New("cell is occupied")
	ErrOutOfBoard       = errors.New("position is out of board")
	ErrRoleOccupied     = errors.New("role is occupied")
	ErrNoOpenRole       = errors.New("no open role")
	ErrPlayerEnrolled   = errors.New("player already enrolled")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrInvalidName      = errors.New("invalid player name")
	ErrUnknownOpCode    = errors.New("unknown opcode")
	ErrMalformedMessage = errors.New("malformed message")
	ErrLineTooLong      = errors.New("line too long")
	ErrRoomClosed       = errors.New("room closed")
)

// statusFor maps an error to the status code sent in an ERROR message.
func statusFor(err error) string {
	switch {
	case errors.Is(err, ErrNotYourTurn):
		return ErrStatusWrongTurn
	case errors.Is(err, ErrMatchNotPrepared), errors.Is(err, ErrMatchNotOnGoing):
		return ErrStatusWrongStatus
	case errors.Is(err, ErrCellOccupied), errors.Is(err, ErrOutOfBoard),
		errors.Is(err, game.ErrInvalidPosition):
		return ErrStatusInvalidMove
	case errors.Is(err, ErrRoleOccupied), errors.Is(err, ErrNoOpenRole),
		errors.Is(err, ErrPlayerEnrolled), errors.Is(err, ErrPlayerNotFound),
		errors.Is(err, ErrInvalidName):
		return ErrStatusInvalidPlayer
	default:
		return ErrStatusInvalidMessage
	}
}
