package server

import (
	"sync"
	"testing"
	"time"

	"github.com/chess-vn/slgo/internal/domains/entities"
	"github.com/chess-vn/slgo/internal/game"
	"github.com/stretchr/testify/require"
)

type fakeParticipant struct {
	id    string
	local bool

	mu      sync.Mutex
	msgs    []Message
	stopped int
}

func newFake(id string, local bool) *fakeParticipant {
	return &fakeParticipant{id: id, local: local}
}

func (f *fakeParticipant) ID() string    { return f.id }
func (f *fakeParticipant) IsLocal() bool { return f.local }

func (f *fakeParticipant) Deliver(msg Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
}

func (f *fakeParticipant) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
}

func (f *fakeParticipant) ops() []OpCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]OpCode, len(f.msgs))
	for i, m := range f.msgs {
		out[i] = m.Op
	}
	return out
}

func (f *fakeParticipant) last() Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.msgs) == 0 {
		return Message{}
	}
	return f.msgs[len(f.msgs)-1]
}

func (f *fakeParticipant) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = nil
}

func (f *fakeParticipant) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped > 0
}

type fakeTimer struct {
	d       time.Duration
	fire    func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// harness drives a room synchronously, without its event loop.
type harness struct {
	t       *testing.T
	room    *Room
	timers  []*fakeTimer
	records []entities.MatchRecord
}

func newHarness(t *testing.T, config RoomConfig) *harness {
	t.Helper()
	h := &harness{t: t}
	h.room = NewRoom(config, func(r entities.MatchRecord) {
		h.records = append(h.records, r)
	})
	h.room.afterFunc = func(d time.Duration, f func()) stopper {
		ft := &fakeTimer{d: d, fire: f}
		h.timers = append(h.timers, ft)
		return ft
	}
	return h
}

func (h *harness) join(ps ...*fakeParticipant) {
	for _, p := range ps {
		h.room.join(p)
	}
}

func (h *harness) send(p Participant, op OpCode, data ...string) {
	msg := Message{Op: op}
	if len(data) > 0 {
		msg.Data1 = data[0]
	}
	if len(data) > 1 {
		msg.Data2 = data[1]
	}
	h.room.process(p, msg)
}

func (h *harness) pending() int {
	n := 0
	for _, t := range h.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// fire runs timer i and feeds the posted event back into the room.
func (h *harness) fire(i int) {
	h.t.Helper()
	h.timers[i].fire()
	select {
	case ev := <-h.room.events:
		h.room.handleEvent(ev)
	default:
		h.t.Fatalf("timer %d posted no event", i)
	}
}

// remoteMatch seats alice as Black and bob as White.
func (h *harness) remoteMatch() (*fakeParticipant, *fakeParticipant) {
	h.t.Helper()
	alice, bob := newFake("alice-conn", false), newFake("bob-conn", false)
	h.join(alice, bob)
	h.send(alice, READY, "alice", "b")
	h.send(bob, READY, "bob", "w")
	require.Equal(h.t, ON_GOING, h.room.match.Status())
	alice.reset()
	bob.reset()
	return alice, bob
}

func enrolledMatch(t *testing.T, size int) (*Match, Player, Player) {
	t.Helper()
	m := newMatch(size)
	black, err := m.Enroll(Player{Participant: newFake("b", false), Name: "alice", Role: game.Black, Type: REMOTE_HUMAN})
	require.NoError(t, err)
	white, err := m.Enroll(Player{Participant: newFake("w", false), Name: "bob", Role: game.White, Type: REMOTE_HUMAN})
	require.NoError(t, err)
	return m, black, white
}

func mustPos(t *testing.T, s string) game.Position {
	t.Helper()
	p, err := game.ParsePosition(s)
	require.NoError(t, err)
	return p
}
