package router

import (
	"strings"

	"github.com/vovakirdan/ircserv/internal/proto"
	"github.com/vovakirdan/ircserv/internal/state"
)

// privmsgHandler delivers a message to a channel (every member except the
// sender) or to a single nick. Failures are explicit numeric replies.
func privmsgHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	if len(msg.Params) < 1 {
		r.Push(numeric(msg.ConnID, proto.ErrNoRecipient, c, "No recipient given PRIVMSG"))
		return
	}
	if len(msg.Params) < 2 {
		r.Push(numeric(msg.ConnID, proto.ErrNoTextToSend, c, "No text to send"))
		return
	}

	target := msg.Params[0]
	text := msg.Params[1]

	if strings.HasPrefix(target, "#") {
		ch, ok := st.Channels[target]
		if !ok {
			r.Push(numeric(msg.ConnID, proto.ErrCannotSendToChan, c, target, "No such channel"))
			return
		}
		if !ch.IsMember(msg.ConnID) {
			r.Push(numeric(msg.ConnID, proto.ErrCannotSendToChan, c, target, "Cannot send to channel"))
			return
		}
		source := c.Hostmask()
		for _, id := range ch.MemberIDs() {
			if id != msg.ConnID {
				r.Push(replyFrom(source, id, "PRIVMSG", target, text))
			}
		}
		return
	}

	targetID := st.FindClientByNick(target)
	if targetID == -1 {
		r.Push(numeric(msg.ConnID, proto.ErrNoSuchNick, c, target, "No such nick/channel"))
		return
	}
	r.Push(replyFrom(c.Hostmask(), targetID, "PRIVMSG", target, text))
}

// noticeHandler is PRIVMSG without the error replies: by protocol convention
// NOTICE never elicits an automatic response, so failures are dropped.
func noticeHandler(msg proto.Message, st *state.State, r *Responses) {
	if len(msg.Params) < 2 {
		return
	}

	target := msg.Params[0]
	text := msg.Params[1]

	if strings.HasPrefix(target, "#") {
		ch, ok := st.Channels[target]
		if !ok || !ch.IsMember(msg.ConnID) {
			return
		}
		source := st.Clients[msg.ConnID].Hostmask()
		for _, id := range ch.MemberIDs() {
			if id != msg.ConnID {
				r.Push(replyFrom(source, id, "NOTICE", target, text))
			}
		}
		return
	}

	targetID := st.FindClientByNick(target)
	if targetID == -1 {
		return
	}
	r.Push(replyFrom(st.Clients[msg.ConnID].Hostmask(), targetID, "NOTICE", target, text))
}
