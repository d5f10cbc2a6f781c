// Package room fans locally-originated mutations out to every other
// connected scorer, so peer views converge without each client re-fetching
// from the remote authority. Delivery is best-effort to currently-connected
// sessions only; a reconnecting client gets a full snapshot instead of a
// replay of missed events.
package room

import (
	"context"

	"go.uber.org/zap"

	"github.com/czrobotics/scorehost/pkg/types"
)

type Msg interface{ isRoomMsg() }

// Join registers a session and immediately sends it a full-state snapshot.
type Join struct {
	SessionID string
	Outbox    chan types.ServerMessage
}

func (Join) isRoomMsg() {}

type Leave struct{ SessionID string }

func (Leave) isRoomMsg() {}

// Broadcast re-emits an event to every session except the originator. An
// empty From reaches everyone (used for server-initiated refreshes).
type Broadcast struct {
	From  string
	Event types.ServerMessage
}

func (Broadcast) isRoomMsg() {}

// Unicast delivers an event to one session only. All outbox sends funnel
// through the room loop, so nothing races with an outbox being closed.
type Unicast struct {
	SessionID string
	Event     types.ServerMessage
}

func (Unicast) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// GetState exists so tests can observe internals without data races.
type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type View struct {
	NumSessions int
}

// SnapshotFunc builds the full-state event sent to a newly joined session.
type SnapshotFunc func() types.ServerMessage

type Room struct {
	inbox    chan Msg
	sessions map[string]chan types.ServerMessage
	snapshot SnapshotFunc
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(parent context.Context, snapshot SnapshotFunc, log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		inbox:    make(chan Msg, 64),
		sessions: make(map[string]chan types.ServerMessage),
		snapshot: snapshot,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
	go r.loop()
	return r
}

// Inbox exposes the message channel to the ws layer and tests.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.sessions[msg.SessionID] = msg.Outbox
				r.deliver(msg.SessionID, msg.Outbox, r.snapshot())
				r.log.Debug("session joined", zap.String("session", msg.SessionID), zap.Int("sessions", len(r.sessions)))

			case Leave:
				if ch, ok := r.sessions[msg.SessionID]; ok {
					close(ch)
					delete(r.sessions, msg.SessionID)
				}

			case Broadcast:
				r.fanOut(msg)

			case Unicast:
				if ch, ok := r.sessions[msg.SessionID]; ok {
					r.deliver(msg.SessionID, ch, msg.Event)
				}

			case GetState:
				msg.Reply <- View{NumSessions: len(r.sessions)}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) fanOut(msg Broadcast) {
	for id, ch := range r.sessions {
		if id == msg.From {
			continue
		}
		r.deliver(id, ch, msg.Event)
	}
}

func (r *Room) deliver(id string, ch chan types.ServerMessage, ev types.ServerMessage) {
	select {
	case ch <- ev:
	default:
		// Session is slow/full - drop it. It re-syncs via snapshot on reconnect.
		r.log.Warn("dropping slow session", zap.String("session", id))
		close(ch)
		delete(r.sessions, id)
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.sessions {
		close(ch)
		delete(r.sessions, id)
	}
	r.cancel()
}
