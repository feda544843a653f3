package server

import (
	"context"
	"time"

	"github.com/chess-vn/slgo/internal/domains/entities"
	"github.com/chess-vn/slgo/internal/game"
	"github.com/chess-vn/slgo/pkg/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const roomEventBuffer = 64

type RoomConfig struct {
	// ID names the room in archived records. Empty means a random uuid.
	ID           string
	BoardSize    int
	MoveTimeout  time.Duration
	ChatCapacity int
	Local        bool
}

type stopper interface {
	Stop() bool
}

type (
	joinEvent struct {
		participant Participant
	}
	leaveEvent struct {
		participant Participant
	}
	inboundEvent struct {
		from Participant
		msg  Message
	}
	timerEvent struct {
		gen      uint64
		opponent Player
	}
)

// Room multiplexes participants onto a single match. All of its state is
// owned by the goroutine running Run; everything else talks to it through
// events.
type Room struct {
	id     string
	config RoomConfig

	match        *Match
	chats        []Message
	participants []Participant

	timer         stopper
	timerGen      uint64
	timerOwner    Player
	timerDeadline time.Time

	events chan any
	done   chan struct{}

	endGameHandler func(entities.MatchRecord)
	afterFunc      func(time.Duration, func()) stopper
	now            func() time.Time
}

func NewRoom(config RoomConfig, endGameHandler func(entities.MatchRecord)) *Room {
	if config.BoardSize == 0 {
		config.BoardSize = game.DefaultSize
	}
	if config.MoveTimeout <= 0 {
		config.MoveTimeout = 60 * time.Second
	}
	if config.ChatCapacity <= 0 {
		config.ChatCapacity = 100
	}
	if endGameHandler == nil {
		endGameHandler = func(entities.MatchRecord) {}
	}
	if config.ID == "" {
		config.ID = uuid.NewString()
	}
	return &Room{
		id:             config.ID,
		config:         config,
		match:          newMatch(config.BoardSize),
		events:         make(chan any, roomEventBuffer),
		done:           make(chan struct{}),
		endGameHandler: endGameHandler,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		now: time.Now,
	}
}

func (r *Room) ID() string { return r.id }
func (r *Room) IsLocal() bool { return r.config.Local }

// Run processes room events until ctx is cancelled. Remaining participants
// are stopped on exit.
func (r *Room) Run(ctx context.Context) {
	defer close(r.done)
	logging.Info("room started", zap.String("room_id", r.id), zap.Bool("local", r.config.Local))
	for {
		select {
		case <-ctx.Done():
			r.cancelTimer()
			for _, p := range r.participants {
				p.Stop()
			}
			r.participants = nil
			logging.Info("room stopped", zap.String("room_id", r.id))
			return
		case ev := <-r.events:
			r.handleEvent(ev)
		}
	}
}

func (r *Room) post(ev any) error {
	select {
	case <-r.done:
		return ErrRoomClosed
	default:
	}
	select {
	case r.events <- ev:
		return nil
	case <-r.done:
		return ErrRoomClosed
	}
}

func (r *Room) Join(p Participant) error { return r.post(joinEvent{participant: p}) }

func (r *Room) Leave(p Participant) error { return r.post(leaveEvent{participant: p}) }

func (r *Room) Dispatch(from Participant, msg Message) error {
	return r.post(inboundEvent{from: from, msg: msg})
}

func (r *Room) handleEvent(ev any) {
	switch ev := ev.(type) {
	case joinEvent:
		r.join(ev.participant)
	case leaveEvent:
		r.leave(ev.participant)
	case inboundEvent:
		r.process(ev.from, ev.msg)
	case timerEvent:
		r.handleTimer(ev)
	}
}

func (r *Room) has(p Participant) bool {
	for _, q := range r.participants {
		if sameParticipant(p, q) {
			return true
		}
	}
	return false
}

// join registers p and replays the chat log to it.
func (r *Room) join(p Participant) {
	if r.has(p) {
		return
	}
	r.participants = append(r.participants, p)
	for _, msg := range r.chats {
		p.Deliver(msg)
	}
	logging.Info("participant joined",
		zap.String("room_id", r.id),
		zap.String("participant_id", p.ID()),
		zap.Int("participants", len(r.participants)),
	)
}

// leave deregisters p. The match is left untouched.
func (r *Room) leave(p Participant) {
	for i, q := range r.participants {
		if sameParticipant(p, q) {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			logging.Info("participant left",
				zap.String("room_id", r.id),
				zap.String("participant_id", p.ID()),
			)
			return
		}
	}
}

func (r *Room) broadcast(msg Message, exclude Participant) {
	for _, p := range r.participants {
		if exclude != nil && sameParticipant(p, exclude) {
			continue
		}
		p.Deliver(msg)
	}
}

// deliver records msg in the chat log and sends it to everyone but exclude.
func (r *Room) deliver(msg Message, exclude Participant) {
	r.chats = append(r.chats, msg)
	if over := len(r.chats) - r.config.ChatCapacity; over > 0 {
		r.chats = append(r.chats[:0], r.chats[over:]...)
	}
	r.broadcast(msg, exclude)
}

func (r *Room) process(from Participant, msg Message) {
	if !r.has(from) {
		logging.Warn("message from unknown participant",
			zap.String("room_id", r.id),
			zap.String("participant_id", from.ID()),
			zap.Stringer("opcode", msg.Op),
		)
		return
	}
	wasOver := r.match.Status() == GAME_OVER
	err := r.handle(from, msg)
	r.checkEnded(wasOver)
	if err != nil {
		logging.Error("rejected message",
			zap.String("room_id", r.id),
			zap.String("participant_id", from.ID()),
			zap.Stringer("opcode", msg.Op),
			zap.Error(err),
		)
		from.Deliver(errorMessage(err))
		r.leave(from)
		from.Stop()
	}
}

func (r *Room) sendUIState(p Participant) {
	now := r.now()
	msg, err := uiStateMessage(buildUIState(r.match, p, r.config.MoveTimeout, now), now)
	if err != nil {
		logging.Error("failed to build ui state", zap.String("room_id", r.id), zap.Error(err))
		return
	}
	p.Deliver(msg)
}

func (r *Room) sendUIStateIfLocal(p Participant) {
	if p.IsLocal() {
		r.sendUIState(p)
	}
}

func (r *Room) cancelTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.timerGen++
}

// armTimer replaces any pending deadline with a full move budget for opponent.
func (r *Room) armTimer(opponent Player) {
	r.startTimer(opponent, r.config.MoveTimeout)
}

func (r *Room) startTimer(opponent Player, d time.Duration) {
	r.cancelTimer()
	gen := r.timerGen
	r.timerOwner = opponent
	r.timerDeadline = r.now().Add(d)
	r.timer = r.afterFunc(d, func() {
		_ = r.post(timerEvent{gen: gen, opponent: opponent})
	})
}

// suspendTimer cancels the pending deadline and returns a func that re-arms
// it with the budget that was left.
func (r *Room) suspendTimer() (resume func()) {
	if r.timer == nil {
		r.cancelTimer()
		return func() {}
	}
	owner, left := r.timerOwner, max(r.timerDeadline.Sub(r.now()), 0)
	r.cancelTimer()
	return func() { r.startTimer(owner, left) }
}

func (r *Room) handleTimer(ev timerEvent) {
	if ev.gen != r.timerGen {
		logging.Debug("stale timer ignored", zap.String("room_id", r.id), zap.Uint64("gen", ev.gen))
		return
	}
	r.timer = nil
	wasOver := r.match.Status() == GAME_OVER
	if err := r.match.Timeout(ev.opponent); err != nil {
		logging.Error("move timer fired against a stale roster",
			zap.String("room_id", r.id),
			zap.String("player", ev.opponent.Name),
			zap.Error(err),
		)
		return
	}
	ev.opponent.Participant.Deliver(Message{Op: TIMEOUT_END})
	r.checkEnded(wasOver)
}

func (r *Room) checkEnded(wasOver bool) {
	if wasOver || r.match.Status() != GAME_OVER {
		return
	}
	record := r.matchRecord()
	r.match.Confirm()
	r.endGameHandler(record)
}

func (r *Room) matchRecord() entities.MatchRecord {
	m := r.match
	players := make([]entities.PlayerRecord, 0, 2)
	for _, p := range m.Players() {
		players = append(players, entities.PlayerRecord{
			Name: p.Name,
			Role: p.Role.String(),
			Type: p.Type.String(),
		})
	}
	return entities.MatchRecord{
		MatchId:   m.ID(),
		RoomId:    r.id,
		BoardSize: m.Size(),
		Players:   players,
		Moves:     m.Encode(),
		Winner:    m.Result().Winner.String(),
		Method:    m.Result().Kind.String(),
		StartedAt: m.StartedAt(),
		EndedAt:   m.EndedAt(),
	}
}
