// Package bot implements the embedded dice-roller bot. The bot is a plug-in
// client: it re-enters the command router under a synthetic identity and adds
// no mechanism of its own to the protocol core.
package bot

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/vovakirdan/ircserv/internal/proto"
	"github.com/vovakirdan/ircserv/internal/router"
	"github.com/vovakirdan/ircserv/internal/state"
)

// Nick is the bot's nickname.
const Nick = "clank"

// NewClient returns the synthetic bot client: pre-registered and carrying the
// server-operator mode so it can join any channel.
func NewClient() *state.Client {
	c := state.NewClient()
	c.Nick = Nick
	c.Username = "bot"
	c.Realname = "bot"
	c.Status = state.Welcomed
	c.Modes['o'] = struct{}{}
	return c
}

// Bot wraps the core router. It watches the response stream for messages
// addressed to the bot id and reacts by issuing regular commands through the
// same router.
type Bot struct {
	core *router.Router
	rng  *rand.Rand
}

// New wires a bot around the core router.
func New(core *router.Router) *Bot {
	return &Bot{
		core: core,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Route handles one incoming message exactly like Router.Route, then services
// any responses addressed to the bot. Responses appended while servicing are
// scanned too, so chained reactions (invite, join, greeting) resolve within
// one call.
func (b *Bot) Route(msg proto.Message, st *state.State, r *router.Responses) {
	b.core.Route(msg, st, r)

	for i := 0; i < len(*r); i++ {
		out := (*r)[i]
		switch {
		case out.ConnID == state.BotID:
			b.handle(out, st, r)
		case out.Verb == "JOIN":
			b.autoInvite(out, st, r)
		}
	}
}

// command issues a command as the bot through the core router.
func (b *Bot) command(st *state.State, r *router.Responses, verb string, params ...string) {
	b.core.Route(proto.Message{ConnID: state.BotID, Verb: verb, Params: params}, st, r)
}

// autoInvite invites the bot to any channel a JOIN broadcast reveals it is
// not in. The invite is addressed to the bot id, so handle picks it up and
// joins.
func (b *Bot) autoInvite(join proto.Message, st *state.State, r *router.Responses) {
	if len(join.Params) < 1 {
		return
	}
	name := join.Params[0]
	ch, ok := st.Channels[name]
	if !ok || ch.IsMember(state.BotID) {
		return
	}
	r.Push(proto.Message{ConnID: state.BotID, Verb: "INVITE", Params: []string{"*", name}})
}

// handle reacts to one message delivered to the bot.
func (b *Bot) handle(out proto.Message, st *state.State, r *router.Responses) {
	my := st.Clients[state.BotID]

	switch {
	case out.Source == my.Hostmask():
		// my own actions echoed back, e.g. the confirmation that I joined
		if out.Verb == "JOIN" && len(out.Params) >= 1 {
			b.command(st, r, "NOTICE", out.Params[0], "is ready!")
		}

	case out.Source != "":
		switch out.Verb {
		case "PART":
			if len(out.Params) < 1 {
				return
			}
			name := out.Params[0]
			if ch, ok := st.Channels[name]; ok && len(ch.Members) == 1 && ch.IsMember(state.BotID) {
				// alone in the channel, leave so it gets pruned
				b.command(st, r, "PART", name)
			}
		case "QUIT":
			var abandoned []string
			for name, ch := range st.Channels {
				if len(ch.Members) == 1 && ch.IsMember(state.BotID) {
					abandoned = append(abandoned, name)
				}
			}
			for _, name := range abandoned {
				b.command(st, r, "PART", name)
			}
		case "PRIVMSG":
			b.privmsg(out, st, r)
		}

	default:
		// server-originated, e.g. the auto-invite
		if out.Verb == "INVITE" && len(out.Params) >= 2 && out.Params[1] != "" {
			b.command(st, r, "JOIN", out.Params[1])
		}
	}
}

// privmsg answers "info" requests and dice rolls. In a channel the message
// must start with the bot's nick; in a direct message the prefix is optional
// and the reply goes back to the sender.
func (b *Bot) privmsg(out proto.Message, st *state.State, r *router.Responses) {
	if len(out.Params) < 2 {
		return
	}
	my := st.Clients[state.BotID]

	direct := false
	dest := out.Params[0]
	if dest == my.Nick {
		nick, _, _ := strings.Cut(out.Source, "!")
		dest = nick
		direct = true
	}
	text := out.Params[1]

	if !direct && !strings.HasPrefix(text, Nick) {
		return
	}

	if isInfoRequest(text, direct) {
		for _, line := range usageLines() {
			b.command(st, r, "NOTICE", dest, line)
		}
		return
	}

	req := newRolls()
	if !parseDice(text, req) {
		return
	}

	b.command(st, r, "NOTICE", dest, "-----")
	b.command(st, r, "NOTICE", dest, "List of requested rolls => "+req.list())
	for _, key := range diceTypes {
		count := req.counts[key]
		if count == 0 {
			continue
		}
		sides, _ := strconv.Atoi(key[1:])
		b.command(st, r, "NOTICE", dest, "")
		b.command(st, r, "NOTICE", dest, key+": "+b.rollDice(sides, count))
	}
	b.command(st, r, "NOTICE", dest, "-----")
}

// rollDice rolls count dice with the given number of sides, rendered as a
// comma-separated list.
func (b *Bot) rollDice(sides, count int) string {
	var sb strings.Builder
	for i := 0; i < count; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(b.rng.Intn(sides) + 1))
	}
	return sb.String()
}

// isInfoRequest matches "info" in a direct message and "clank info" in a
// channel.
func isInfoRequest(text string, direct bool) bool {
	fields := strings.Fields(text)
	if direct {
		return len(fields) == 1 && fields[0] == "info"
	}
	return len(fields) == 2 && fields[1] == "info"
}
