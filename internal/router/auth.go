package router

import (
	"strings"

	"github.com/vovakirdan/ircserv/internal/proto"
	"github.com/vovakirdan/ircserv/internal/state"
)

// passHandler checks the server password. A wrong password drops the client
// back to the unauthenticated state; it is not a terminal failure.
func passHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	if len(msg.Params) < 1 {
		r.Push(numeric(msg.ConnID, proto.ErrNeedMoreParams, c, "PASS", "Need more params"))
		return
	}
	if c.Status == state.Welcomed {
		r.Push(numeric(msg.ConnID, proto.ErrAlreadyRegistered, c, "Already registered"))
		return
	}
	if msg.Params[0] != st.Password {
		c.Status = state.Connected
		r.Push(numeric(msg.ConnID, proto.ErrPasswdMismatch, c, "Incorrect password"))
		return
	}
	c.Status = state.Authenticated
}

func isValidNick(nick string) bool {
	if nick == "" {
		return false
	}
	switch b := nick[0]; {
	case b == ':' || b == '#' || b == '&':
		return false
	case b >= '0' && b <= '9':
		return false
	}
	return !strings.ContainsRune(nick, ' ')
}

// nickHandler sets or changes the nickname, enforcing uniqueness at
// assignment time. A change is broadcast to the client and everyone sharing a
// channel with it.
func nickHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	if len(msg.Params) < 1 {
		r.Push(numeric(msg.ConnID, proto.ErrNoNicknameGiven, c, "No nick given"))
		return
	}
	newNick := msg.Params[0]
	if !isValidNick(newNick) {
		r.Push(numeric(msg.ConnID, proto.ErrErroneusNickname, c, "*", "Erroneus nick"))
		return
	}
	for _, other := range st.Clients {
		if other.Nick == newNick {
			r.Push(numeric(msg.ConnID, proto.ErrNicknameInUse, c, newNick, "Nick in use"))
			return
		}
	}
	if c.Nick != "" {
		broadcast := replyFrom(c.Hostmask(), msg.ConnID, "NICK", newNick)
		r.Push(broadcast)
		r.Push(broadcast.Repeat(st.ClientsInChannelsWith(msg.ConnID))...)
	}
	c.Nick = newNick
}

// userHandler records username and realname. There is no ident lookup, so the
// username is prefixed with '~' when the client did not do so itself.
func userHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	if len(msg.Params) < 4 {
		r.Push(numeric(msg.ConnID, proto.ErrNeedMoreParams, c, "USER", "Need more params"))
		return
	}
	if c.Status == state.Welcomed {
		r.Push(numeric(msg.ConnID, proto.ErrAlreadyRegistered, c, "Already registered"))
		return
	}
	username := msg.Params[0]
	if !strings.HasPrefix(username, "~") {
		username = "~" + username
	}
	c.Username = username
	c.Realname = msg.Params[3]
}

// quitHandler broadcasts the departure to every channel co-member, removes
// the client from all state, and queues the ERROR reply that triggers socket
// teardown.
func quitHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	if c.Status == state.Welcomed {
		broadcast := replyFrom(c.Hostmask(), msg.ConnID, "QUIT")
		if len(msg.Params) == 1 {
			broadcast.Params = append(broadcast.Params, msg.Params[0])
		}
		r.Push(broadcast.Repeat(st.ClientsInChannelsWith(msg.ConnID))...)
	}
	r.Push(reply(msg.ConnID, "ERROR", "Terminated"))
	st.RemoveClient(msg.ConnID)
}

// welcomeHandler promotes the client to the terminal state and sends the
// fixed 001-005 burst followed by the MOTD sequence.
func welcomeHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	created := "Created at " + st.StartTime.Format("15:04:05") + " " + st.StartTime.Format("Jan 2 2006")
	r.Push(
		numeric(msg.ConnID, proto.RplWelcome, c, "Welcome!"),
		numeric(msg.ConnID, proto.RplYourHost, c, "Your host is 0.0.0.0, running "+serverName),
		numeric(msg.ConnID, proto.RplCreated, c, created),
		numeric(msg.ConnID, proto.RplMyInfo, c, serverName, serverVersion, "o", "it", "klo"),
		numeric(msg.ConnID, proto.RplISupport, c, "CASEMAPPING=ascii", "is supported by this server"),
	)
	c.Status = state.Welcomed
	motdHandler(msg, st, r)
}
