package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/czrobotics/scorehost/internal/directory"
	"github.com/czrobotics/scorehost/internal/engine"
	"github.com/czrobotics/scorehost/internal/room"
	"github.com/czrobotics/scorehost/pkg/types"
)

// Deps is everything a session needs to service client events.
type Deps struct {
	Engine    *engine.Engine
	Room      *room.Room
	Usernames *directory.Usernames
	Log       *zap.Logger
}

// session is one connected scorer. Handlers receive it explicitly; there is
// no hidden per-connection state outside of it.
type session struct {
	id   string
	deps Deps
	out  chan types.ServerMessage
}

// handlerFunc services one client event. The dispatch table below is the
// complete client-facing protocol.
type handlerFunc func(ctx context.Context, s *session, msg types.ClientMessage)

// dispatch maps event names to handlers. Registered once; every session
// shares the same table.
var dispatch = map[string]handlerFunc{
	types.EventSubmitScore:    handleSubmitScore,
	types.EventAddSet:         handleAddSet,
	types.EventRemoveSet:      handleRemoveSet,
	types.EventRefreshBracket: handleRefreshBracket,
	types.EventSetUsername:    handleSetUsername,
}

func Handler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		s := &session{
			id:   uuid.NewString(),
			deps: deps,
			out:  make(chan types.ServerMessage, 16),
		}

		deps.Room.Inbox() <- room.Join{SessionID: s.id, Outbox: s.out}
		defer func() {
			deps.Room.Inbox() <- room.Leave{SessionID: s.id}
			deps.Usernames.Release(s.id)
		}()

		// Writer goroutine: serializes everything the room or a handler
		// queues for this session.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for ev := range s.out {
				payload, err := json.Marshal(ev)
				if err != nil {
					deps.Log.Error("encode server event", zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
			// Outbox closed: either the session left normally or the room
			// dropped it as too slow. Closing the conn unblocks the reader.
			conn.Close(websocket.StatusPolicyViolation, "session closed")
		}()

		// Reader loop.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var msg types.ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				s.reply(types.ServerMessage{Event: types.EventError, Error: "bad json"})
				continue
			}

			h, ok := dispatch[msg.Event]
			if !ok {
				s.reply(types.ServerMessage{Event: types.EventError, Error: "unknown event"})
				continue
			}
			h(r.Context(), s, msg)
		}
	}
}

// reply queues an event for this session only. Routed through the room so
// every outbox send happens on the room loop.
func (s *session) reply(ev types.ServerMessage) {
	s.deps.Room.Inbox() <- room.Unicast{SessionID: s.id, Event: ev}
}

// broadcast fans an event out to every peer session.
func (s *session) broadcast(ev types.ServerMessage) {
	s.deps.Room.Inbox() <- room.Broadcast{From: s.id, Event: ev}
}

func handleSubmitScore(ctx context.Context, s *session, msg types.ClientMessage) {
	side, ok := engine.ParseSide(msg.Side)
	if !ok || msg.ScoreInfo == nil || msg.SetIndex < 0 || msg.SetIndex >= engine.MaxSetsPerMatch {
		s.reply(types.ServerMessage{Event: types.EventError, Error: "bad submitScore payload"})
		return
	}

	matchID, err := s.deps.Engine.MatchID(msg.MatchIndex)
	if err != nil {
		s.reply(types.ServerMessage{Event: types.EventError, Error: err.Error()})
		return
	}

	// Optimistic fan-out first: peers see the edit immediately, regardless
	// of how the upstream push goes.
	s.broadcast(types.ServerMessage{
		Event:      types.EventScoreEdited,
		MatchID:    matchID,
		MatchIndex: msg.MatchIndex,
		SetIndex:   msg.SetIndex,
		Side:       msg.Side,
		ScoreInfo:  msg.ScoreInfo,
	})

	if err := s.deps.Engine.SubmitMatchScore(msg.MatchIndex, msg.SetIndex, side, *msg.ScoreInfo); err != nil {
		s.reply(types.ServerMessage{Event: types.EventPushStatus, Error: err.Error()})
		return
	}
	s.reply(types.ServerMessage{Event: types.EventPushStatus})
}

func handleAddSet(ctx context.Context, s *session, msg types.ClientMessage) {
	matchID, err := s.deps.Engine.MatchID(msg.MatchIndex)
	if err != nil {
		s.reply(types.ServerMessage{Event: types.EventError, Error: err.Error()})
		return
	}

	if err := s.deps.Engine.AddSet(msg.MatchIndex); err != nil {
		s.reply(types.ServerMessage{Event: types.EventError, Error: err.Error()})
		return
	}

	s.broadcast(types.ServerMessage{
		Event:      types.EventSetAdded,
		MatchID:    matchID,
		MatchIndex: msg.MatchIndex,
	})
}

func handleRemoveSet(ctx context.Context, s *session, msg types.ClientMessage) {
	matchID, err := s.deps.Engine.MatchID(msg.MatchIndex)
	if err != nil {
		s.reply(types.ServerMessage{Event: types.EventError, Error: err.Error()})
		return
	}

	removed, err := s.deps.Engine.RemoveLastSet(msg.MatchIndex)
	if err != nil {
		s.reply(types.ServerMessage{Event: types.EventError, Error: err.Error()})
		return
	}
	if !removed {
		// A match always keeps at least one set; nothing for peers to see.
		return
	}

	s.broadcast(types.ServerMessage{
		Event:      types.EventSetRemoved,
		MatchID:    matchID,
		MatchIndex: msg.MatchIndex,
	})
}

func handleRefreshBracket(ctx context.Context, s *session, msg types.ClientMessage) {
	err := s.deps.Engine.Fetch(ctx, engine.FetchOptions{
		CullGroupStage:      msg.Cull,
		PreserveLocalScores: msg.Preserve,
	})
	if err != nil {
		s.reply(types.ServerMessage{Event: types.EventError, Error: err.Error()})
		return
	}

	// The originator gets the fresh state directly; peers are told to
	// re-sync.
	s.reply(types.ServerMessage{Event: types.EventSnapshot, Matches: s.deps.Engine.Matches()})
	s.broadcast(types.ServerMessage{Event: types.EventBracketRefreshed})
}

func handleSetUsername(ctx context.Context, s *session, msg types.ClientMessage) {
	if msg.Username == "" {
		s.reply(types.ServerMessage{Event: types.EventUsernameStatus, Error: "username must not be empty"})
		return
	}
	if err := s.deps.Usernames.Claim(s.id, msg.Username); err != nil {
		s.reply(types.ServerMessage{Event: types.EventUsernameStatus, Error: err.Error()})
		return
	}
	s.reply(types.ServerMessage{Event: types.EventUsernameStatus})
	s.broadcast(types.ServerMessage{Event: types.EventUsernameClaimed, Username: msg.Username})
}
