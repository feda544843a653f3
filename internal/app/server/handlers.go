package server

import (
	"context"
	"fmt"
	"strconv"

	"github.com/chess-vn/slgo/internal/domains/entities"
	"github.com/chess-vn/slgo/internal/game"
	"github.com/chess-vn/slgo/pkg/logging"
	"go.uber.org/zap"
)

// handle dispatches one inbound message. A non-nil error rejects it and
// costs the sender its connection.
func (r *Room) handle(from Participant, msg Message) error {
	switch msg.Op {
	case UPDATE_UI_STATE:
		r.sendUIState(from)
		return nil
	case START_LOCAL_GAME:
		return r.handleStartLocalGame(from)
	case READY:
		return r.handleReady(from, msg)
	case REJECT:
		return r.match.Reject()
	case MOVE:
		return r.handleMove(from, msg)
	case GIVEUP:
		return r.handleGiveUp(from, msg)
	case LOCAL_GAME_TIMEOUT:
		return r.handleLocalGameTimeout(from, msg)
	case TIMEOUT_END, SUICIDE_END, GIVEUP_END, ERROR:
		logging.Warn("outbound opcode received",
			zap.String("room_id", r.id),
			zap.String("participant_id", from.ID()),
			zap.Stringer("opcode", msg.Op),
		)
		return nil
	case LEAVE:
		r.leave(from)
		from.Stop()
		return nil
	case CHAT:
		r.deliver(msg, nil)
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnknownOpCode, uint8(msg.Op))
	}
}

// handleStartLocalGame seats the sender on both sides of a fresh match.
func (r *Room) handleStartLocalGame(from Participant) error {
	if r.match.Status() == GAME_OVER {
		r.match.Clear()
	}
	// Both seats are taken together or not at all.
	if err := r.match.expect(NOT_PREPARED); err != nil {
		return err
	}
	if n := r.match.players.size(); n > 0 {
		return fmt.Errorf("%w: %d seat(s) already taken", ErrRoleOccupied, n)
	}
	for _, role := range []game.Role{game.Black, game.White} {
		_, err := r.match.Enroll(Player{
			Participant: from,
			Name:        role.String(),
			Role:        role,
			Type:        LOCAL_HUMAN,
		})
		if err != nil {
			return err
		}
	}
	r.sendUIStateIfLocal(from)
	return nil
}

func (r *Room) handleReady(from Participant, msg Message) error {
	if !isValidName(msg.Data1) {
		return fmt.Errorf("%w: %q", ErrInvalidName, msg.Data1)
	}
	player, err := r.match.Enroll(Player{
		Participant: from,
		Name:        msg.Data1,
		Role:        game.ParseRole(msg.Data2),
		Type:        REMOTE_HUMAN,
	})
	if err != nil {
		return err
	}
	logging.Info("player ready",
		zap.String("room_id", r.id),
		zap.String("match_id", r.match.ID()),
		zap.String("player", player.Name),
		zap.Stringer("role", player.Role),
	)
	return nil
}

// handleMove always cancels the pending deadline. A rejected move gets the
// previous deadline back with whatever budget it had left.
func (r *Room) handleMove(from Participant, msg Message) (err error) {
	resume := r.suspendTimer()
	defer func() {
		if err != nil {
			resume()
		}
	}()

	pos, err := game.ParsePosition(msg.Data1)
	if err != nil {
		return err
	}
	var elapsed int
	if msg.Data2 != "" {
		if elapsed, err = strconv.Atoi(msg.Data2); err != nil {
			return fmt.Errorf("%w: elapsed %q", ErrMalformedMessage, msg.Data2)
		}
	}
	if err := r.match.expect(ON_GOING); err != nil {
		return err
	}

	turn := r.match.Turn()
	player, err := r.match.players.at(turn, from)
	if err != nil {
		return fmt.Errorf("%w: %s to move", ErrNotYourTurn, turn)
	}
	opponent, err := r.match.players.at(turn.Opponent(), nil)
	if err != nil {
		return err
	}
	if err := r.match.Play(player, pos); err != nil {
		return err
	}
	logging.Debug("move played",
		zap.String("match_id", r.match.ID()),
		zap.String("player", player.Name),
		zap.Stringer("position", pos),
		zap.Int("elapsed_ms", elapsed),
	)
	r.sendUIStateIfLocal(from)

	if r.match.Status() == ON_GOING {
		r.armTimer(opponent)
		r.broadcast(msg, from)
		return nil
	}
	switch r.match.Result().Winner {
	case opponent.Role:
		from.Deliver(Message{Op: SUICIDE_END})
		r.deliver(msg, from)
	case player.Role:
		from.Deliver(Message{Op: GIVEUP})
		opponent.Participant.Deliver(Message{Op: GIVEUP_END})
	}
	return nil
}

func (r *Room) handleGiveUp(from Participant, msg Message) error {
	player, err := r.match.players.at(game.ParseRole(msg.Data2), from)
	if err != nil {
		return err
	}
	if err := r.match.Concede(player); err != nil {
		return err
	}
	r.cancelTimer()
	r.sendUIStateIfLocal(from)
	if opponent, ok := r.match.players.find(player.Role.Opponent(), nil); ok &&
		!sameParticipant(opponent.Participant, from) {
		opponent.Participant.Deliver(Message{Op: GIVEUP_END})
	}
	return nil
}

func (r *Room) handleLocalGameTimeout(from Participant, msg Message) error {
	player, err := r.match.players.at(game.ParseRole(msg.Data1), from)
	if err != nil {
		return err
	}
	if err := r.match.Timeout(player); err != nil {
		return err
	}
	r.cancelTimer()
	r.sendUIStateIfLocal(from)
	return nil
}

// handleEndGame hands a finished match to the archive sink without holding
// up the room loop. Start waits for these writes before returning.
func (s *server) handleEndGame(record entities.MatchRecord) {
	if s.sink == nil {
		return
	}
	s.archiving.Add(1)
	go func() {
		defer s.archiving.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.config.Archive.Timeout)
		defer cancel()
		if err := s.sink.SaveMatchRecord(ctx, record); err != nil {
			logging.Error("failed to archive match",
				zap.String("match_id", record.MatchId),
				zap.Error(err),
			)
			return
		}
		logging.Info("match archived",
			zap.String("match_id", record.MatchId),
			zap.String("winner", record.Winner),
			zap.String("method", record.Method),
		)
	}()
}
