package session

import (
	"context"
	"errors"

	"github.com/jtaylor-dev/avalon-backend/internal/game"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("session closed")

type Msg interface{ isSessionMsg() }

// Attach registers an observer. Player is the roster name the client
// claims; private events are routed by it. Empty means spectator.
type Attach struct {
	ClientID string
	Player   string
	Outbox   chan game.Event
}

func (Attach) isSessionMsg() {}

type Detach struct{ ClientID string }

func (Detach) isSessionMsg() {}

// Do applies one command and reports the result on Reply.
type Do struct {
	Cmd   game.Command
	Reply chan error
}

func (Do) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type View struct {
	NumClients int
	State      game.State
}

type client struct {
	player string
	out    chan game.Event
}

// Session owns the single game.State and serializes every mutation
// through its loop. Events for a mutation go out after the state is
// updated, in command order.
type Session struct {
	inbox   chan Msg
	state   game.State
	clients map[string]client
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, initial game.State, log *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		inbox:   make(chan Msg, 64),
		state:   initial,
		clients: make(map[string]client),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}

	go s.loop()
	return s
}

func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done is closed once the loop has been told to stop; senders should
// select against it so they never block on a dead inbox.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// Apply sends cmd through the loop and waits for its result.
func (s *Session) Apply(ctx context.Context, cmd game.Command) error {
	reply := make(chan error, 1)
	select {
	case s.inbox <- Do{Cmd: cmd, Reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrClosed
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrClosed
	}
}

// State returns a snapshot copy; it never aliases the loop's state.
func (s *Session) State(ctx context.Context) (game.State, error) {
	reply := make(chan View, 1)
	select {
	case s.inbox <- GetState{Reply: reply}:
	case <-ctx.Done():
		return game.State{}, ctx.Err()
	case <-s.ctx.Done():
		return game.State{}, ErrClosed
	}
	select {
	case v := <-reply:
		return v.State, nil
	case <-ctx.Done():
		return game.State{}, ctx.Err()
	case <-s.ctx.Done():
		return game.State{}, ErrClosed
	}
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Attach:
				s.clients[msg.ClientID] = client{player: msg.Player, out: msg.Outbox}

			case Detach:
				// closing the outbox releases the client's writer
				if c, ok := s.clients[msg.ClientID]; ok {
					close(c.out)
					delete(s.clients, msg.ClientID)
				}

			case Do:
				events, newState, err := game.Apply(s.state, msg.Cmd)
				if err != nil {
					msg.Reply <- err
					break
				}
				s.state = newState
				for _, ev := range events {
					s.deliver(ev)
				}
				s.log.Debug("command applied",
					zap.String("cmd", string(msg.Cmd.Type)),
					zap.Int("events", len(events)))
				msg.Reply <- nil

			case GetState:
				msg.Reply <- View{
					NumClients: len(s.clients),
					State:      s.state.Clone(),
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) shutdown() {
	for id, c := range s.clients {
		close(c.out)
		delete(s.clients, id)
	}
	s.cancel()
}

// deliver fans one event out; private events only reach clients
// attached under the named player. Clients that cannot keep up are
// dropped, same as any other disconnect.
func (s *Session) deliver(ev game.Event) {
	for id, c := range s.clients {
		if ev.To != "" && c.player != ev.To {
			continue
		}
		select {
		case c.out <- ev:
		default:
			s.log.Warn("dropping slow client", zap.String("client_id", id))
			close(c.out)
			delete(s.clients, id)
		}
	}
}
