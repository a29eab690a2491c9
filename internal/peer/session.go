package peer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hoshiten/goban/internal/goban/board"
	"github.com/hoshiten/goban/internal/goban/command"
	"github.com/hoshiten/goban/internal/goban/event"
	"github.com/hoshiten/goban/internal/goban/match"
	"github.com/hoshiten/goban/internal/platform/errors"
)

const tracerName = "github.com/hoshiten/goban/internal/peer"

// Session-level rejection codes. These guard preconditions that never reach
// the match decider.
const (
	RejectionUndoPending  = "UNDO_NEGOTIATION_PENDING"
	RejectionUndoNotAsked = "UNDO_NO_PENDING_REQUEST"
)

// UndoNegotiation is the ephemeral two-phase undo handshake flag. It is
// never persisted and is cleared when the connection closes.
type UndoNegotiation int

const (
	UndoNone UndoNegotiation = iota
	UndoRequestedByMe
	UndoRequestedByPeer
)

// Transport is the peer channel capability injected into the session. It is
// fire-and-forget: Send never waits for acknowledgment.
type Transport interface {
	Send(Envelope) error
	Close() error
}

// EventSink receives every event applied to local state, in application
// order. The sqlite journal implements it; a nil sink disables recording.
type EventSink interface {
	AppendEvent(ctx context.Context, evt event.Event) error
}

// Hooks are optional callbacks for presentation layers. They are invoked
// while the session lock is held, so implementations must not call back
// into the session.
type Hooks struct {
	StateChanged  func(match.State)
	ChatReceived  func(ChatMessage)
	UndoRequested func()
	UndoResolved  func(accepted bool)
	PeerClosed    func()
}

// Rejected wraps a command rejection as an error for local callers. It is
// transient user feedback and is never transmitted to the peer.
type Rejected struct {
	Rejection command.Rejection
}

func (r Rejected) Error() string {
	return r.Rejection.Code + ": " + r.Rejection.Message
}

// Config assembles a session.
type Config struct {
	MatchID   string
	BoardSize int
	LocalName string // opaque identity used as chat sender
	Journal   EventSink
	Hooks     Hooks
	Clock     func() time.Time
}

// Session owns the local copy of the match state and dispatches every
// mutation, local or remote. All state access serializes on one mutex: the
// design is single-threaded event dispatch, and the websocket read pump is
// the only other caller.
type Session struct {
	mu sync.Mutex

	matchID   string
	localName string
	state     match.State
	chat      []ChatMessage
	undo      UndoNegotiation

	transport  Transport
	localColor board.Cell // Empty while unconnected (hot-seat: both colors)

	journal EventSink
	hooks   Hooks
	clock   func() time.Time
	tracer  trace.Tracer
}

// NewSession creates a session with a fresh match.
func NewSession(cfg Config) *Session {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Session{
		matchID:   cfg.MatchID,
		localName: cfg.LocalName,
		state:     match.New(cfg.MatchID, cfg.BoardSize),
		journal:   cfg.Journal,
		hooks:     cfg.Hooks,
		clock:     clock,
		tracer:    otel.Tracer(tracerName),
	}
}

// State returns a copy of the current match state.
func (s *Session) State() match.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Chat returns a copy of the chat log.
func (s *Session) Chat() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChatMessage(nil), s.chat...)
}

// Undo returns the current negotiation phase.
func (s *Session) Undo() UndoNegotiation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undo
}

// Connected reports whether a peer transport is attached.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport != nil
}

// LocalColor returns the color this client plays, or Empty in hot-seat mode.
func (s *Session) LocalColor() board.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localColor
}

// AttachAsHost binds the transport on the accepting side. The host plays
// Black and immediately transfers the full current state to the joiner;
// this is the only full-state message of the protocol.
func (s *Session) AttachAsHost(t Transport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport != nil {
		return errors.New(errors.CodePeerAlreadyJoined, "a peer is already attached")
	}
	s.transport = t
	s.localColor = board.Black

	env, err := NewEnvelope(KindSync, SyncPayload{Match: s.state, Chat: s.chat}, s.localName)
	if err != nil {
		return err
	}
	return s.send(env)
}

// AttachAsJoiner binds the transport on the dialing side. The joiner plays
// White and waits for the host's SYNC to replace its state.
func (s *Session) AttachAsJoiner(t Transport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport != nil {
		return errors.New(errors.CodePeerAlreadyJoined, "a peer is already attached")
	}
	s.transport = t
	s.localColor = board.White
	return nil
}

// Detach drops the transport and clears in-flight negotiation state. Match
// state is untouched, so local play can continue uninterrupted.
func (s *Session) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return
	}
	s.transport = nil
	s.localColor = board.Empty
	s.undo = UndoNone
	if s.hooks.PeerClosed != nil {
		s.hooks.PeerClosed()
	}
}

// Play submits a local stone placement.
func (s *Session) Play(ctx context.Context, p board.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, span := s.tracer.Start(ctx, "session.play",
		trace.WithAttributes(attribute.Int("point.x", p.X), attribute.Int("point.y", p.Y)))
	defer span.End()

	if err := s.guardLocalMove(); err != nil {
		return err
	}
	payload, err := json.Marshal(match.PlayPayload{Point: p})
	if err != nil {
		return errors.Wrap(errors.CodeEnvelopeMalformed, "encode play payload", err)
	}
	cmd := command.Command{
		MatchID:     s.matchID,
		Type:        match.CommandTypePlay,
		Actor:       s.actingColor(),
		PayloadJSON: payload,
	}
	if err := s.applyLocal(ctx, cmd); err != nil {
		return err
	}
	env, err := NewEnvelope(KindMove, MovePayload{X: p.X, Y: p.Y}, s.localName)
	if err != nil {
		return err
	}
	return s.send(env)
}

// Pass submits a local pass.
func (s *Session) Pass(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, span := s.tracer.Start(ctx, "session.pass")
	defer span.End()

	if err := s.guardLocalMove(); err != nil {
		return err
	}
	cmd := command.Command{
		MatchID: s.matchID,
		Type:    match.CommandTypePass,
		Actor:   s.actingColor(),
	}
	if err := s.applyLocal(ctx, cmd); err != nil {
		return err
	}
	env, err := NewEnvelope(KindPass, nil, s.localName)
	if err != nil {
		return err
	}
	return s.send(env)
}

// RequestUndo starts the undo handshake. Without a peer the undo applies
// immediately; with a peer the session waits for an accept or decline.
func (s *Session) RequestUndo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, span := s.tracer.Start(ctx, "session.undo.request")
	defer span.End()

	if s.undo != UndoNone {
		return Rejected{command.Rejection{Code: RejectionUndoPending, Message: "an undo negotiation is already pending"}}
	}
	cmd := command.Command{
		MatchID: s.matchID,
		Type:    match.CommandTypeUndoRequest,
		Actor:   s.actingColor(),
	}
	if err := s.applyLocal(ctx, cmd); err != nil {
		return err
	}

	if s.transport == nil {
		// Hot-seat play: no negotiation partner, accept on the spot.
		return s.applyLocal(ctx, s.respondCommand(true))
	}

	s.undo = UndoRequestedByMe
	env, err := NewEnvelope(KindUndoReq, nil, s.localName)
	if err != nil {
		return err
	}
	return s.send(env)
}

// RespondUndo resolves a peer-initiated undo request.
func (s *Session) RespondUndo(ctx context.Context, accept bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, span := s.tracer.Start(ctx, "session.undo.respond",
		trace.WithAttributes(attribute.Bool("accept", accept)))
	defer span.End()

	if s.undo != UndoRequestedByPeer {
		return Rejected{command.Rejection{Code: RejectionUndoNotAsked, Message: "no peer undo request is pending"}}
	}
	if err := s.applyLocal(ctx, s.respondCommand(accept)); err != nil {
		return err
	}
	s.undo = UndoNone
	if s.hooks.UndoResolved != nil {
		s.hooks.UndoResolved(accept)
	}

	kind := KindUndoDecline
	if accept {
		kind = KindUndoAccept
	}
	env, err := NewEnvelope(kind, nil, s.localName)
	if err != nil {
		return err
	}
	return s.send(env)
}

// Restart reinitializes the match and tells the peer to do the same.
func (s *Session) Restart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, span := s.tracer.Start(ctx, "session.restart")
	defer span.End()

	cmd := command.Command{
		MatchID: s.matchID,
		Type:    match.CommandTypeRestart,
		Actor:   s.actingColor(),
	}
	if err := s.applyLocal(ctx, cmd); err != nil {
		return err
	}
	s.undo = UndoNone

	env, err := NewEnvelope(KindRestart, nil, s.localName)
	if err != nil {
		return err
	}
	return s.send(env)
}

// Say appends a chat message locally and relays it to the peer.
func (s *Session) Say(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, span := s.tracer.Start(ctx, "session.chat")
	defer span.End()

	msg := ChatMessage{From: s.localName, Text: text, SentAt: s.clock()}
	s.chat = append(s.chat, msg)

	env, err := NewEnvelope(KindChat, msg, s.localName)
	if err != nil {
		return err
	}
	return s.send(env)
}

// HandleEnvelope applies a remotely-received message. Remote events fold
// locally and are never re-sent.
func (s *Session) HandleEnvelope(ctx context.Context, env Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, span := s.tracer.Start(ctx, "session.receive",
		trace.WithAttributes(attribute.String("envelope.kind", string(env.Kind))))
	defer span.End()

	switch env.Kind {
	case KindMove:
		var payload MovePayload
		if err := env.DecodePayload(&payload); err != nil {
			return err
		}
		playPayload, err := json.Marshal(match.PlayPayload{Point: payload.Point()})
		if err != nil {
			return errors.Wrap(errors.CodeEnvelopeMalformed, "encode remote play payload", err)
		}
		// The remote mover is trusted: the protocol only sends a move
		// when it was that color's turn, so acting color is the local
		// notion of whose turn it is.
		return s.applyRemote(ctx, command.Command{
			MatchID:     s.matchID,
			Type:        match.CommandTypePlay,
			Actor:       match.ActorFromColor(s.state.Turn),
			PayloadJSON: playPayload,
		})

	case KindPass:
		return s.applyRemote(ctx, command.Command{
			MatchID: s.matchID,
			Type:    match.CommandTypePass,
			Actor:   match.ActorFromColor(s.state.Turn),
		})

	case KindUndoReq:
		s.undo = UndoRequestedByPeer
		if s.hooks.UndoRequested != nil {
			s.hooks.UndoRequested()
		}
		return nil

	case KindUndoAccept:
		s.undo = UndoNone
		if s.hooks.UndoResolved != nil {
			s.hooks.UndoResolved(true)
		}
		return s.applyRemote(ctx, s.respondCommand(true))

	case KindUndoDecline:
		s.undo = UndoNone
		if s.hooks.UndoResolved != nil {
			s.hooks.UndoResolved(false)
		}
		return nil

	case KindRestart:
		s.undo = UndoNone
		return s.applyRemote(ctx, command.Command{
			MatchID: s.matchID,
			Type:    match.CommandTypeRestart,
			Actor:   env.From,
		})

	case KindChat:
		var msg ChatMessage
		if err := env.DecodePayload(&msg); err != nil {
			return err
		}
		s.chat = append(s.chat, msg)
		if s.hooks.ChatReceived != nil {
			s.hooks.ChatReceived(msg)
		}
		return nil

	case KindSync:
		var payload SyncPayload
		if err := env.DecodePayload(&payload); err != nil {
			return err
		}
		s.state = payload.Match
		s.chat = payload.Chat
		s.undo = UndoNone
		if s.hooks.StateChanged != nil {
			s.hooks.StateChanged(s.state)
		}
		return nil

	default:
		return errors.WithMetadata(errors.CodeEnvelopeUnknown, "unknown envelope kind", map[string]string{
			"kind": string(env.Kind),
		})
	}
}

// guardLocalMove enforces the caller-side preconditions for moves and
// passes: a pending undo negotiation blocks play, and while connected only
// the local color may act.
func (s *Session) guardLocalMove() error {
	if s.undo != UndoNone {
		return Rejected{command.Rejection{Code: RejectionUndoPending, Message: "resolve the undo request first"}}
	}
	if s.transport != nil && s.localColor != s.state.Turn {
		return Rejected{command.Rejection{Code: match.RejectionOutOfTurn, Message: "waiting for the peer's move"}}
	}
	return nil
}

// actingColor resolves the actor for a local command: the local color while
// connected, or whoever's turn it is in hot-seat play.
func (s *Session) actingColor() string {
	if s.transport != nil {
		return match.ActorFromColor(s.localColor)
	}
	return match.ActorFromColor(s.state.Turn)
}

func (s *Session) respondCommand(accept bool) command.Command {
	payload, _ := json.Marshal(match.RespondPayload{Accept: accept})
	return command.Command{
		MatchID:     s.matchID,
		Type:        match.CommandTypeUndoRespond,
		Actor:       s.actingColor(),
		PayloadJSON: payload,
	}
}

// applyLocal decides and folds a locally-authored command. Rejections come
// back as Rejected errors and are never transmitted.
func (s *Session) applyLocal(ctx context.Context, cmd command.Command) error {
	decision := match.Decide(s.state, cmd, s.clock)
	if len(decision.Rejections) > 0 {
		return Rejected{decision.Rejections[0]}
	}
	s.fold(ctx, decision.Events)
	return nil
}

// applyRemote decides and folds a remotely-received command. A rejection
// here means the peers diverged, which the cooperative protocol treats as a
// protocol error rather than user feedback.
func (s *Session) applyRemote(ctx context.Context, cmd command.Command) error {
	decision := match.Decide(s.state, cmd, s.clock)
	if len(decision.Rejections) > 0 {
		rej := decision.Rejections[0]
		return errors.WithMetadata(errors.CodeEnvelopeMalformed, "remote command rejected", map[string]string{
			"command": string(cmd.Type),
			"code":    rej.Code,
		})
	}
	s.fold(ctx, decision.Events)
	return nil
}

func (s *Session) fold(ctx context.Context, events []event.Event) {
	for _, evt := range events {
		s.state = match.Fold(s.state, evt)
		if s.journal != nil {
			_ = s.journal.AppendEvent(ctx, evt)
		}
	}
	if len(events) > 0 && s.hooks.StateChanged != nil {
		s.hooks.StateChanged(s.state)
	}
}

// send relays an envelope to the peer, if one is attached.
func (s *Session) send(env Envelope) error {
	if s.transport == nil {
		return nil
	}
	if err := s.transport.Send(env); err != nil {
		return errors.Wrap(errors.CodeTransportClosed, "send "+string(env.Kind), err)
	}
	return nil
}
