package router

import (
	"strings"

	"github.com/vovakirdan/ircserv/internal/proto"
	"github.com/vovakirdan/ircserv/internal/state"
)

// capHandler answers capability negotiation with an empty capability list.
// Subcommands other than LS are ignored.
func capHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	if len(msg.Params) < 1 {
		r.Push(numeric(msg.ConnID, proto.ErrNeedMoreParams, c, "CAP", "Need more params"))
		return
	}
	if msg.Params[0] == "LS" {
		r.Push(reply(msg.ConnID, "CAP", "*", "LS", "none"))
	}
}

// pingHandler echoes the token back as PONG.
func pingHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	if len(msg.Params) < 1 {
		r.Push(numeric(msg.ConnID, proto.ErrNeedMoreParams, c, "PING", "Need more params"))
		return
	}
	r.Push(reply(msg.ConnID, "PONG", msg.Params[0]))
}

// motdHandler sends the message-of-the-day sequence, one 372 per line, or 422
// when no MOTD is configured.
func motdHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	if st.MOTD == "" {
		r.Push(numeric(msg.ConnID, proto.ErrNoMOTD, c, "No message of the day"))
		return
	}
	r.Push(numeric(msg.ConnID, proto.RplMOTDStart, c, "- Message of the day -"))
	for _, line := range strings.Split(st.MOTD, "\n") {
		if line != "" {
			r.Push(numeric(msg.ConnID, proto.RplMOTD, c, line))
		}
	}
	r.Push(numeric(msg.ConnID, proto.RplEndOfMOTD, c, "- End of /MOTD -"))
}
