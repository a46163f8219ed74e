package router

import (
	"strings"

	"github.com/vovakirdan/ircserv/internal/proto"
	"github.com/vovakirdan/ircserv/internal/state"
)

func isValidChannelName(name string) bool {
	return len(name) >= 2 && name[0] == '#'
}

// joinHandler adds the client to a channel, creating it on first use. Key,
// limit and invite gates are bypassed by server operators. The first-ever
// joiner becomes channel operator; a pending invite is consumed. The JOIN
// broadcast is followed by TOPIC and NAMES replies to the joiner.
func joinHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	if len(msg.Params) < 1 {
		needMoreParams(msg, c, r)
		return
	}

	name := msg.Params[0]
	if !isValidChannelName(name) {
		r.Push(numeric(msg.ConnID, proto.ErrNoSuchChannel, c, name, "No such channel"))
		return
	}

	ch := st.EnsureChannel(name)

	if ch.IsMember(msg.ConnID) {
		r.Push(numeric(msg.ConnID, proto.ErrUserOnChannel, c, "JOIN", "Already on channel"))
		return
	}

	if !c.IsOp() && ch.HasMode('k') {
		if len(msg.Params) < 2 || msg.Params[1] != ch.Key {
			r.Push(numeric(msg.ConnID, proto.ErrBadChannelKey, c, name, "Cannot join channel (+k)"))
			pruneIfEmpty(st, ch)
			return
		}
	}

	if !c.IsOp() && ch.HasMode('l') {
		if len(ch.Members) >= ch.UserLimit {
			r.Push(numeric(msg.ConnID, proto.ErrChannelIsFull, c, name, "Cannot join channel (+l)"))
			pruneIfEmpty(st, ch)
			return
		}
	}

	if !c.IsOp() && ch.HasMode('i') {
		if !ch.IsInvited(msg.ConnID) {
			r.Push(numeric(msg.ConnID, proto.ErrInviteOnlyChan, c, name, "Cannot join channel (+i)"))
			pruneIfEmpty(st, ch)
			return
		}
	}

	if len(ch.Members) == 0 {
		ch.Ops[msg.ConnID] = struct{}{}
	}
	ch.Members[msg.ConnID] = struct{}{}

	// invites are one-shot
	delete(ch.Invited, msg.ConnID)

	broadcast := replyFrom(c.Hostmask(), msg.ConnID, "JOIN", name)
	r.Push(broadcast.Repeat(ch.MemberIDs())...)

	topicHandler(reply(msg.ConnID, "TOPIC", name), st, r)
	namesHandler(reply(msg.ConnID, "NAMES", name), st, r)
}

// pruneIfEmpty drops a channel that ended up with no members, e.g. one
// freshly created by a rejected JOIN.
func pruneIfEmpty(st *state.State, ch *state.Channel) {
	if len(ch.Members) == 0 {
		delete(st.Channels, ch.Name)
	}
}

// partHandler removes the client from a channel, broadcasting before the
// mutation so the leaver sees its own PART.
func partHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	if len(msg.Params) < 1 {
		needMoreParams(msg, c, r)
		return
	}

	name := msg.Params[0]
	ch, ok := st.Channels[name]
	if !ok {
		r.Push(numeric(msg.ConnID, proto.ErrNoSuchChannel, c, name, "No such channel"))
		return
	}
	if !ch.IsMember(msg.ConnID) {
		r.Push(numeric(msg.ConnID, proto.ErrNotOnChannel, c, name, "You're not on that channel"))
		return
	}

	broadcast := replyFrom(c.Hostmask(), msg.ConnID, "PART", name)
	r.Push(broadcast.Repeat(ch.MemberIDs())...)

	delete(ch.Members, msg.ConnID)
	delete(ch.Ops, msg.ConnID)
	pruneIfEmpty(st, ch)
}

// kickHandler force-removes a target from a channel. The actor must be a
// channel operator or server operator.
func kickHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	if len(msg.Params) < 2 {
		r.Push(numeric(msg.ConnID, proto.ErrNeedMoreParams, c, "KICK", "Not enough parameters"))
		return
	}

	name := msg.Params[0]
	targetNick := msg.Params[1]
	reason := "Force removed from the channel"
	if len(msg.Params) >= 3 && msg.Params[2] != "" {
		reason = msg.Params[2]
	}

	ch, ok := st.Channels[name]
	if !ok {
		r.Push(numeric(msg.ConnID, proto.ErrNoSuchChannel, c, name, "No such channel"))
		return
	}
	if !c.IsOp() && !ch.IsMember(msg.ConnID) {
		r.Push(numeric(msg.ConnID, proto.ErrNotOnChannel, c, name, "You're not on that channel"))
		return
	}
	if !c.IsOp() && !ch.IsChanOp(msg.ConnID) {
		r.Push(numeric(msg.ConnID, proto.ErrChanOPrivsNeeded, c, name, "You're not channel operator"))
		return
	}

	targetID := st.FindClientByNick(targetNick)
	if targetID == -1 {
		r.Push(numeric(msg.ConnID, proto.ErrNoSuchNick, c, targetNick, "No such nick"))
		return
	}
	if !ch.IsMember(targetID) {
		r.Push(numeric(msg.ConnID, proto.ErrUserNotInChannel, c, targetNick, name, "They aren't on that channel"))
		return
	}

	broadcast := replyFrom(c.Hostmask(), msg.ConnID, "KICK", name, st.Clients[targetID].Display(), reason)
	r.Push(broadcast.Repeat(ch.MemberIDs())...)

	delete(ch.Members, targetID)
	delete(ch.Invited, targetID)
	delete(ch.Ops, targetID)
	pruneIfEmpty(st, ch)
}

// inviteHandler adds the target to the channel's invite set and notifies both
// the inviter and the invitee.
func inviteHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	if len(msg.Params) < 2 {
		r.Push(numeric(msg.ConnID, proto.ErrNeedMoreParams, c, "INVITE", "Not enough parameters"))
		return
	}

	targetNick := msg.Params[0]
	name := msg.Params[1]

	ch, ok := st.Channels[name]
	if !ok {
		r.Push(numeric(msg.ConnID, proto.ErrNoSuchChannel, c, name, "No such channel"))
		return
	}
	if !c.IsOp() && !ch.IsMember(msg.ConnID) {
		r.Push(numeric(msg.ConnID, proto.ErrNotOnChannel, c, name, "You're not on that channel"))
		return
	}
	if !c.IsOp() && ch.HasMode('i') && !ch.IsChanOp(msg.ConnID) {
		r.Push(numeric(msg.ConnID, proto.ErrChanOPrivsNeeded, c, name, "You're not channel operator"))
		return
	}

	targetID := st.FindClientByNick(targetNick)
	if targetID == -1 {
		r.Push(numeric(msg.ConnID, proto.ErrNoSuchNick, c, targetNick, "No such nick"))
		return
	}
	if ch.IsMember(targetID) {
		r.Push(numeric(msg.ConnID, proto.ErrUserOnChannel, c, targetNick, name, "is already on channel"))
		return
	}

	ch.Invited[targetID] = struct{}{}
	r.Push(numeric(msg.ConnID, proto.RplInviting, c, targetNick, name))
	r.Push(replyFrom(c.Hostmask(), targetID, "INVITE", targetNick, name))
}

// topicHandler queries or changes a channel topic. Changing requires either
// no topic lock or channel-operator privilege; the change is broadcast to the
// full membership.
func topicHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	if len(msg.Params) < 1 {
		r.Push(numeric(msg.ConnID, proto.ErrNeedMoreParams, c, "TOPIC", "Not enough parameters"))
		return
	}

	name := msg.Params[0]
	ch, ok := st.Channels[name]
	if !ok {
		r.Push(numeric(msg.ConnID, proto.ErrNoSuchChannel, c, name, "No such channel"))
		return
	}

	if len(msg.Params) < 2 {
		if ch.Topic == "" {
			r.Push(numeric(msg.ConnID, proto.RplNoTopic, c, name, "No topic is set"))
			return
		}
		r.Push(numeric(msg.ConnID, proto.RplTopic, c, name, ch.Topic))
		return
	}

	if !c.IsOp() && !ch.IsMember(msg.ConnID) {
		r.Push(numeric(msg.ConnID, proto.ErrNotOnChannel, c, name, "You're not on that channel"))
		return
	}
	if !c.IsOp() && ch.HasMode('t') && !ch.IsChanOp(msg.ConnID) {
		r.Push(numeric(msg.ConnID, proto.ErrChanOPrivsNeeded, c, name, "You're not channel operator. Mode is +t"))
		return
	}

	ch.Topic = msg.Params[1]
	broadcast := replyFrom(c.Hostmask(), msg.ConnID, "TOPIC", name, ch.Topic)
	r.Push(broadcast.Repeat(ch.MemberIDs())...)
}

// namesHandler replies with the member listing, operators first with an '@'
// prefix.
func namesHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	if len(msg.Params) < 1 {
		r.Push(numeric(msg.ConnID, proto.ErrNeedMoreParams, c, "NAMES", "Not enough parameters"))
		return
	}

	name := msg.Params[0]
	if _, ok := st.Channels[name]; !ok {
		r.Push(numeric(msg.ConnID, proto.ErrNoSuchChannel, c, name, "No such channel"))
		return
	}

	names := strings.TrimRight(st.NamesInChannel(name), " ")
	r.Push(numeric(msg.ConnID, proto.RplNamReply, c, "=", name, names))
	r.Push(numeric(msg.ConnID, proto.RplEndOfNames, c, name, "End of /names reply"))
}
