package router

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vovakirdan/ircserv/internal/auth"
	"github.com/vovakirdan/ircserv/internal/proto"
	"github.com/vovakirdan/ircserv/internal/state"
)

func unknownFlag(msg proto.Message, st *state.State, r *Responses) {
	r.Push(numeric(msg.ConnID, proto.ErrUModeUnknownFlag, st.Clients[msg.ConnID], "Unknown MODE flag"))
}

// uModeIs reports the client's current user modes.
func uModeIs(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	r.Push(numeric(msg.ConnID, proto.RplUModeIs, c, c.ModeString()))
}

// userModeHandler lets a client query or alter its own modes. Only the +i
// query quirk and -o are implemented; granting +o to oneself is forbidden.
func userModeHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	if len(msg.Params) < 2 {
		uModeIs(msg, st, r)
		return
	}
	target := msg.Params[0]
	if st.FindClientByNick(target) == -1 {
		r.Push(numeric(msg.ConnID, proto.ErrNoSuchNick, c, target, "No such nick"))
		return
	}
	if target != c.Nick {
		r.Push(numeric(msg.ConnID, proto.ErrUsersDontMatch, c, "Cant change mode for other users"))
		return
	}
	modestring := msg.Params[1]
	switch {
	case modestring == "":
		unknownFlag(msg, st, r)
	case modestring[0] == '+':
		if strings.ContainsRune(modestring, 'o') {
			r.Push(numeric(msg.ConnID, proto.ErrNoPrivileges, c, "Permission denied - You're not an IRC op"))
			return
		}
		// irssi sends MODE +i even though it is not supported; answer with
		// the current modes instead of an error
		if modestring == "+i" {
			uModeIs(msg, st, r)
			return
		}
		unknownFlag(msg, st, r)
	case modestring[0] == '-':
		if strings.ContainsRune(modestring, 'o') {
			c.Modes = make(map[byte]struct{})
			uModeIs(msg, st, r)
			return
		}
		unknownFlag(msg, st, r)
	default:
		unknownFlag(msg, st, r)
	}
}

// channelModeIs replies 324 with the channel's current flags in sorted order,
// plus the limit argument when +l is set.
func channelModeIs(msg proto.Message, st *state.State, r *Responses) {
	ch := st.Channels[msg.Params[0]]
	flags := make([]byte, 0, len(ch.Modes))
	for f := range ch.Modes {
		flags = append(flags, f)
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i] < flags[j] })

	response := reply(msg.ConnID, proto.RplChannelModeIs, ch.Name, "+"+string(flags))
	for _, f := range flags {
		if f == 'l' {
			response.Params = append(response.Params, strconv.Itoa(ch.UserLimit))
		}
	}
	r.Push(response)
}

// broadcastFlagChange repeats the single-flag MODE message to the full
// membership with the acting client's hostmask as source.
func broadcastFlagChange(msg proto.Message, st *state.State, ch *state.Channel, r *Responses) {
	notification := msg
	notification.Source = st.Clients[msg.ConnID].Hostmask()
	r.Push(notification.Repeat(ch.MemberIDs())...)
}

func inviteFlagHandler(msg proto.Message, st *state.State, r *Responses) {
	ch := st.Channels[msg.Params[0]]
	if msg.Params[1][0] == '-' {
		if !ch.HasMode('i') {
			return
		}
		delete(ch.Modes, 'i')
	} else {
		if ch.HasMode('i') {
			return
		}
		ch.Modes['i'] = struct{}{}
	}
	broadcastFlagChange(msg, st, ch, r)
}

func topicFlagHandler(msg proto.Message, st *state.State, r *Responses) {
	ch := st.Channels[msg.Params[0]]
	if msg.Params[1][0] == '-' {
		if !ch.HasMode('t') {
			return
		}
		delete(ch.Modes, 't')
	} else {
		if ch.HasMode('t') {
			return
		}
		ch.Modes['t'] = struct{}{}
	}
	broadcastFlagChange(msg, st, ch, r)
}

func keyFlagHandler(msg proto.Message, st *state.State, r *Responses) {
	ch := st.Channels[msg.Params[0]]
	if msg.Params[1][0] == '-' {
		if !ch.HasMode('k') {
			return
		}
		delete(ch.Modes, 'k')
		ch.Key = ""
	} else {
		key := msg.Params[2]
		if key == "" {
			r.Push(numeric(msg.ConnID, proto.ErrNeedMoreParams, st.Clients[msg.ConnID], "MODE", "Key cannot be empty"))
			return
		}
		if strings.ContainsAny(key, " ,") {
			r.Push(numeric(msg.ConnID, proto.ErrInvalidKey, st.Clients[msg.ConnID], msg.Params[0], "Invalid key"))
			return
		}
		ch.Modes['k'] = struct{}{}
		ch.Key = key
	}
	// broadcast without revealing the key
	notification := replyFrom(st.Clients[msg.ConnID].Hostmask(), msg.ConnID, "MODE", msg.Params[0], msg.Params[1])
	r.Push(notification.Repeat(ch.MemberIDs())...)
}

func opFlagHandler(msg proto.Message, st *state.State, r *Responses) {
	if len(msg.Params) < 3 {
		r.Push(numeric(msg.ConnID, proto.ErrNeedMoreParams, st.Clients[msg.ConnID], "MODE", "Need more params"))
		return
	}
	ch := st.Channels[msg.Params[0]]
	targetNick := msg.Params[2]
	targetID := st.FindClientByNick(targetNick)
	if !ch.IsMember(targetID) {
		r.Push(numeric(msg.ConnID, proto.ErrUserNotInChannel, st.Clients[msg.ConnID], targetNick, ch.Name))
		return
	}
	if msg.Params[1][0] == '-' {
		if !ch.IsChanOp(targetID) {
			return
		}
		delete(ch.Ops, targetID)
	} else {
		if ch.IsChanOp(targetID) {
			return
		}
		ch.Ops[targetID] = struct{}{}
	}
	broadcastFlagChange(msg, st, ch, r)
}

func limitFlagHandler(msg proto.Message, st *state.State, r *Responses) {
	ch := st.Channels[msg.Params[0]]
	if msg.Params[1][0] == '-' {
		if !ch.HasMode('l') {
			return
		}
		delete(ch.Modes, 'l')
	} else {
		newLimit, _ := strconv.Atoi(msg.Params[2])
		if newLimit < 0 {
			newLimit = 0
		}
		if ch.HasMode('l') && ch.UserLimit == newLimit {
			return
		}
		ch.Modes['l'] = struct{}{}
		ch.UserLimit = newLimit
	}
	broadcastFlagChange(msg, st, ch, r)
}

// channelModeHandler iterates the flag string left to right tracking the
// current sign, dispatching each recognized flag to its sub-handler. The
// argument-consuming flags are 'o' always, and 'k'/'l' only when setting.
// Unrecognized flags produce one error each without aborting the rest.
func channelModeHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]

	name := msg.Params[0]
	ch, ok := st.Channels[name]
	if !ok {
		r.Push(numeric(msg.ConnID, proto.ErrNoSuchChannel, c, name, "No such channel"))
		return
	}

	if len(msg.Params) == 1 {
		channelModeIs(msg, st, r)
		return
	}

	if !ch.IsChanOp(msg.ConnID) && !c.IsOp() {
		r.Push(numeric(msg.ConnID, proto.ErrChanOPrivsNeeded, c, name, "You are not channel operator"))
		return
	}

	modestring := msg.Params[1]
	if modestring == "b" || modestring == "I" {
		// guard for irssi sending unsupported mode queries
		return
	}

	sign := byte('?')
	argIndex := 2
	for i := 0; i < len(modestring); i++ {
		flag := modestring[i]
		if flag == '+' || flag == '-' {
			sign = flag
			continue
		}
		if sign == '?' {
			unknownFlag(msg, st, r)
			return
		}
		single := reply(msg.ConnID, "MODE", name, string(sign)+string(flag))
		if flag == 'o' || (sign == '+' && (flag == 'k' || flag == 'l')) {
			if len(msg.Params) <= argIndex {
				needMoreParams(single, c, r)
				continue
			}
			single.Params = append(single.Params, msg.Params[argIndex])
			argIndex++
		}
		switch flag {
		case 'i':
			inviteFlagHandler(single, st, r)
		case 't':
			topicFlagHandler(single, st, r)
		case 'k':
			keyFlagHandler(single, st, r)
		case 'o':
			opFlagHandler(single, st, r)
		case 'l':
			limitFlagHandler(single, st, r)
		default:
			unknownFlag(single, st, r)
		}
	}
}

// modeHandler splits on the target: channel names go to the channel flag
// machinery, anything else is treated as a user mode request.
func modeHandler(msg proto.Message, st *state.State, r *Responses) {
	if len(msg.Params) < 1 {
		needMoreParams(msg, st.Clients[msg.ConnID], r)
		return
	}
	target := msg.Params[0]
	if target == "" {
		r.Push(numeric(msg.ConnID, proto.ErrNoSuchNick, st.Clients[msg.ConnID], msg.Verb, "No such nick/channel"))
		return
	}
	if target[0] == '#' {
		channelModeHandler(msg, st, r)
		return
	}
	userModeHandler(msg, st, r)
}

// operHandler grants the server-operator user mode after validating the
// configured operator credentials. The stored password may be a bcrypt hash.
func operHandler(msg proto.Message, st *state.State, r *Responses) {
	c := st.Clients[msg.ConnID]
	if len(msg.Params) < 2 {
		needMoreParams(msg, c, r)
		return
	}
	if msg.Params[0] != st.OperName || !auth.VerifyPassword(st.OperPass, msg.Params[1]) {
		r.Push(numeric(msg.ConnID, proto.ErrPasswdMismatch, c, "Oper name or password incorrect"))
		return
	}
	c.Modes['o'] = struct{}{}
	r.Push(numeric(msg.ConnID, proto.RplYoureOper, c, "You are server operator"))
	r.Push(replyFrom(c.Hostmask(), msg.ConnID, proto.RplUModeIs, c.Display(), "+o"))
}
