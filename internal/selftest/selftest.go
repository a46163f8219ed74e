// Package selftest runs a built-in assertion suite against the parser, the
// registration machine and the channel handlers, without opening a socket.
// It backs the "ircserv selftest" subcommand.
package selftest

import (
	"fmt"
	"io"

	"github.com/vovakirdan/ircserv/internal/proto"
	"github.com/vovakirdan/ircserv/internal/router"
	"github.com/vovakirdan/ircserv/internal/state"
)

type runner struct {
	w        io.Writer
	checks   int
	failures int
}

// Run executes every suite, writing progress to w, and returns the number of
// failed checks.
func Run(w io.Writer) int {
	r := &runner{w: w}
	r.suite("parsing", r.parsing)
	r.suite("registration", r.registration)
	r.suite("channels", r.channels)
	r.suite("modes", r.modes)
	r.suite("messaging", r.messaging)
	fmt.Fprintf(w, "%d checks, %d failures\n", r.checks, r.failures)
	return r.failures
}

func (r *runner) suite(name string, fn func()) {
	fmt.Fprintf(r.w, "--- %s\n", name)
	fn()
}

func (r *runner) check(name string, ok bool) {
	r.checks++
	if !ok {
		r.failures++
		fmt.Fprintf(r.w, "FAIL %s\n", name)
	}
}

func (r *runner) checkEq(name, got, want string) {
	r.checks++
	if got != want {
		r.failures++
		fmt.Fprintf(r.w, "FAIL %s: got %q want %q\n", name, got, want)
	}
}

// session is a state plus router with a direct route helper.
type session struct {
	st *state.State
	rt *router.Router
}

func newSession(password string) *session {
	return &session{st: state.New(password, ""), rt: router.New()}
}

func (s *session) route(connID int, raw string) router.Responses {
	var out router.Responses
	s.rt.Route(proto.Parse(connID, raw+proto.Terminator), s.st, &out)
	return out
}

// register drives a connection through PASS/NICK/USER to the welcomed state.
func (s *session) register(connID int, password, nick string) {
	if password != "" {
		s.route(connID, "PASS "+password)
	}
	s.route(connID, "NICK "+nick)
	s.route(connID, "USER "+nick+" 0 * :"+nick)
}

func (r *runner) parsing() {
	m := proto.Parse(1, ":irc.example.org 001 nick :Welcome!\r\n")
	r.checkEq("parse source", m.Source, "irc.example.org")
	r.checkEq("parse verb", m.Verb, "001")
	r.check("parse params", len(m.Params) == 2 && m.Params[1] == "Welcome!")

	m = proto.Parse(1, "foo bar baz :asdf quux\r\n")
	r.check("trailing param", len(m.Params) == 3 && m.Params[2] == "asdf quux")
	r.checkEq("assemble round trip", m.Assemble(), "foo bar baz :asdf quux\r\n")

	m = proto.Parse(1, "PRIVMSG   #chan    :hello\r\n")
	r.check("space runs collapse", len(m.Params) == 2 && m.Params[0] == "#chan")

	r.check("error disconnects", proto.Parse(1, "ERROR :bye\r\n").ShouldDisconnect())
	r.check("privmsg does not disconnect", !proto.Parse(1, "PRIVMSG a :b\r\n").ShouldDisconnect())
}

func (r *runner) registration() {
	s := newSession("secret")

	out := s.route(1, "PASS secret")
	r.check("good password is silent", len(out) == 0)
	r.check("good password authenticates", s.st.Clients[1].Status == state.Authenticated)

	s.route(1, "NICK alice")
	out = s.route(1, "USER alice 0 * :Alice")
	r.check("welcome starts with 001", len(out) > 0 && out[0].Verb == proto.RplWelcome)
	r.check("welcomed state", s.st.Clients[1].Status == state.Welcomed)

	out = s.route(2, "PASS wrong")
	r.check("bad password replies 464", len(out) == 1 && out[0].Verb == proto.ErrPasswdMismatch)
	s.route(2, "NICK bob")
	out = s.route(2, "USER bob 0 * :Bob")
	r.check("unauthenticated registration fails",
		len(out) >= 2 && out[len(out)-1].Verb == "ERROR")
	r.check("failed client removed", s.st.Clients[2] == nil)

	out = s.route(3, "JOIN #chan")
	r.check("pre-registration JOIN ignored", len(out) == 0)
	out = s.route(3, "PRIVMSG alice :hi")
	r.check("pre-registration command rejected",
		len(out) == 1 && out[0].Verb == proto.ErrNotRegistered)
}

func (r *runner) channels() {
	s := newSession("")
	s.register(1, "", "alice")
	s.register(2, "", "bob")

	s.route(1, "JOIN #test")
	r.check("first joiner is op", s.st.Channels["#test"].IsChanOp(1))

	s.route(2, "JOIN #test")
	r.check("two members", len(s.st.Channels["#test"].Members) == 2)

	out := s.route(2, "PART #test :bye")
	r.check("part broadcast reaches both members", countVerb(out, "PART") == 2)
	r.check("part removes member", !s.st.Channels["#test"].IsMember(2))

	s.route(2, "JOIN #test")
	out = s.route(1, "KICK #test bob :enough")
	r.check("kick broadcast reaches both members", countVerb(out, "KICK") == 2)
	r.check("kick removes member", !s.st.Channels["#test"].IsMember(2))

	s.route(1, "PART #test")
	r.check("empty channel pruned", s.st.Channels["#test"] == nil)
}

func (r *runner) modes() {
	s := newSession("")
	s.register(1, "", "alice")
	s.register(2, "", "bob")
	s.route(1, "JOIN #m")
	s.route(2, "JOIN #m")

	out := s.route(2, "MODE #m +i")
	r.check("non-op mode change rejected",
		len(out) == 1 && out[0].Verb == proto.ErrChanOPrivsNeeded)
	r.check("flag unchanged after rejection", !s.st.Channels["#m"].HasMode('i'))

	out = s.route(1, "MODE #m +i")
	r.check("op sets invite-only",
		s.st.Channels["#m"].HasMode('i') && countVerb(out, "MODE") == 2)

	s.register(3, "", "carol")
	out = s.route(3, "JOIN #m")
	r.check("invite-only gate", containsVerb(out, proto.ErrInviteOnlyChan))
	r.check("members unchanged after rejected join", len(s.st.Channels["#m"].Members) == 2)

	s.route(1, "MODE #m -i")
	s.route(1, "MODE #m +l 1")
	out = s.route(3, "JOIN #m")
	r.check("user limit gate", containsVerb(out, proto.ErrChannelIsFull))
}

func (r *runner) messaging() {
	s := newSession("")
	s.register(1, "", "alice")
	s.register(2, "", "bob")
	s.register(3, "", "carol")
	s.route(1, "JOIN #msg")
	s.route(2, "JOIN #msg")

	out := s.route(1, "PRIVMSG #msg :hello")
	r.check("channel message reaches other members only",
		len(out) == 1 && out[0].ConnID == 2)

	out = s.route(3, "PRIVMSG #msg :hello")
	r.check("non-member cannot send", containsVerb(out, proto.ErrCannotSendToChan))

	out = s.route(1, "PRIVMSG carol :hi")
	r.check("direct message delivered", len(out) == 1 && out[0].ConnID == 3)

	out = s.route(1, "PRIVMSG ghost :hi")
	r.check("unknown nick replies 401", containsVerb(out, proto.ErrNoSuchNick))
}

func countVerb(out router.Responses, verb string) int {
	n := 0
	for _, m := range out {
		if m.Verb == verb {
			n++
		}
	}
	return n
}

func containsVerb(out router.Responses, verb string) bool {
	return countVerb(out, verb) > 0
}
