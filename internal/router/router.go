// Package router implements the protocol state machine: per-client
// registration states and the per-verb command handlers that read and mutate
// server state, producing outgoing messages.
package router

import (
	"github.com/vovakirdan/ircserv/internal/proto"
	"github.com/vovakirdan/ircserv/internal/state"
)

const (
	serverName    = "ft_irc"
	serverVersion = "1.0b"
)

// Responses accumulates the outgoing messages produced while handling one
// incoming message.
type Responses []proto.Message

// Push appends messages to the accumulator.
func (r *Responses) Push(msgs ...proto.Message) {
	*r = append(*r, msgs...)
}

// Handler processes one incoming message against the shared state and appends
// any replies. Handlers may invoke each other directly with the same state and
// accumulator; that call chaining is intentional and is not re-entry into the
// top-level dispatch.
type Handler func(msg proto.Message, st *state.State, r *Responses)

// Router dispatches messages by verb once a client is welcomed.
type Router struct {
	handlers map[string]Handler
}

// New builds a router with the full command table.
func New() *Router {
	return &Router{
		handlers: map[string]Handler{
			"USER":    userHandler,
			"NICK":    nickHandler,
			"PART":    partHandler,
			"JOIN":    joinHandler,
			"PING":    pingHandler,
			"KICK":    kickHandler,
			"PRIVMSG": privmsgHandler,
			"NOTICE":  noticeHandler,
			"MOTD":    motdHandler,
			"MODE":    modeHandler,
			"OPER":    operHandler,
			"INVITE":  inviteHandler,
			"TOPIC":   topicHandler,
			"NAMES":   namesHandler,
		},
	}
}

// Route processes one incoming message. PASS, QUIT and CAP are accepted in
// any state; everything else depends on the client's registration status.
// Unknown verbs from welcomed clients are ignored.
func (rt *Router) Route(msg proto.Message, st *state.State, r *Responses) {
	c := st.EnsureClient(msg.ConnID)

	switch msg.Verb {
	case "CAP":
		capHandler(msg, st, r)
		return
	case "PASS":
		passHandler(msg, st, r)
		return
	case "QUIT":
		quitHandler(msg, st, r)
		return
	}

	if c.Status != state.Welcomed {
		if c.Status == state.Connected && st.Password == "" {
			// password not required
			c.Status = state.Authenticated
		}
		switch msg.Verb {
		case "USER":
			userHandler(msg, st, r)
		case "NICK":
			nickHandler(msg, st, r)
		case "JOIN":
			// irssi sends JOIN during registration; ignore it
			return
		default:
			r.Push(numeric(msg.ConnID, proto.ErrNotRegistered, c, "You have not registered"))
			return
		}
		if c.Username == "" || c.Nick == "" {
			return
		}
		if c.Status != state.Authenticated {
			r.Push(numeric(msg.ConnID, proto.ErrPasswdMismatch, c, "Password incorrect"))
			r.Push(reply(msg.ConnID, "ERROR", "Closing Link: "+c.Nick+" (Connection failed)"))
			st.RemoveClient(msg.ConnID)
			return
		}
		welcomeHandler(msg, st, r)
		return
	}

	if h, ok := rt.handlers[msg.Verb]; ok {
		h(msg, st, r)
	}
}

// reply builds a sourceless message addressed to one connection.
func reply(connID int, verb string, params ...string) proto.Message {
	return proto.Message{ConnID: connID, Verb: verb, Params: params}
}

// replyFrom builds a message carrying an explicit source prefix.
func replyFrom(source string, connID int, verb string, params ...string) proto.Message {
	return proto.Message{ConnID: connID, Source: source, Verb: verb, Params: params}
}

// numeric builds a numeric reply; the client display name is always the first
// parameter.
func numeric(connID int, code string, c *state.Client, params ...string) proto.Message {
	return proto.Message{ConnID: connID, Verb: code, Params: append([]string{c.Display()}, params...)}
}

func needMoreParams(msg proto.Message, c *state.Client, r *Responses) {
	r.Push(numeric(msg.ConnID, proto.ErrNeedMoreParams, c, msg.Verb, "Not enough parameters"))
}
