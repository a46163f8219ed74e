package bot

import (
	"strings"
	"testing"

	"github.com/vovakirdan/ircserv/internal/proto"
	"github.com/vovakirdan/ircserv/internal/router"
	"github.com/vovakirdan/ircserv/internal/state"
)

type fixture struct {
	t  *testing.T
	st *state.State
	b  *Bot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := state.New("", "")
	st.Clients[state.BotID] = NewClient()
	return &fixture{t: t, st: st, b: New(router.New())}
}

func (f *fixture) route(connID int, line string) router.Responses {
	f.t.Helper()
	var out router.Responses
	f.b.Route(proto.Parse(connID, line+proto.Terminator), f.st, &out)
	return out
}

func (f *fixture) register(connID int, nick string) {
	f.t.Helper()
	f.route(connID, "NICK "+nick)
	f.route(connID, "USER "+nick+" 0 * :"+nick)
}

// noticesTo collects the NOTICE texts addressed to one connection.
func noticesTo(out router.Responses, connID int) []string {
	var texts []string
	for _, m := range out {
		if m.Verb == "NOTICE" && m.ConnID == connID {
			texts = append(texts, m.Params[len(m.Params)-1])
		}
	}
	return texts
}

func TestBotJoinsNewChannels(t *testing.T) {
	f := newFixture(t)
	f.register(1, "alice")

	out := f.route(1, "JOIN #dice")
	ch := f.st.Channels["#dice"]
	if ch == nil || !ch.IsMember(state.BotID) {
		t.Fatal("bot did not join the new channel")
	}

	greeted := false
	for _, text := range noticesTo(out, 1) {
		if text == "is ready!" {
			greeted = true
		}
	}
	if !greeted {
		t.Error("bot did not greet the channel")
	}
}

func TestBotRollsDice(t *testing.T) {
	f := newFixture(t)
	f.register(1, "alice")
	f.route(1, "JOIN #dice")

	out := f.route(1, "PRIVMSG #dice :clank 2d6")
	texts := noticesTo(out, 1)
	if len(texts) == 0 {
		t.Fatal("no roll reply")
	}

	var rollLine string
	for _, text := range texts {
		if strings.HasPrefix(text, "d6: ") {
			rollLine = text
		}
	}
	if rollLine == "" {
		t.Fatalf("no d6 results in %q", texts)
	}
	results := strings.Split(strings.TrimPrefix(rollLine, "d6: "), ", ")
	if len(results) != 2 {
		t.Fatalf("rolled %d dice, want 2: %q", len(results), rollLine)
	}
	for _, res := range results {
		if res < "1" || res > "6" || len(res) != 1 {
			t.Errorf("roll result %q out of range", res)
		}
	}
}

func TestBotIgnoresUnaddressedChannelChatter(t *testing.T) {
	f := newFixture(t)
	f.register(1, "alice")
	f.route(1, "JOIN #dice")

	out := f.route(1, "PRIVMSG #dice :just talking about d6 odds")
	if texts := noticesTo(out, 1); len(texts) != 0 {
		t.Errorf("bot replied to unaddressed message: %q", texts)
	}
}

func TestBotAnswersDirectMessages(t *testing.T) {
	f := newFixture(t)
	f.register(1, "alice")

	out := f.route(1, "PRIVMSG clank :info")
	texts := noticesTo(out, 1)
	if len(texts) != len(usageLines()) {
		t.Fatalf("info reply = %d lines, want %d", len(texts), len(usageLines()))
	}

	out = f.route(1, "PRIVMSG clank :d20")
	if texts := noticesTo(out, 1); len(texts) == 0 {
		t.Error("direct roll request unanswered")
	}
}

func TestBotInfoInChannel(t *testing.T) {
	f := newFixture(t)
	f.register(1, "alice")
	f.route(1, "JOIN #dice")

	out := f.route(1, "PRIVMSG #dice :clank info")
	if texts := noticesTo(out, 1); len(texts) != len(usageLines()) {
		t.Fatalf("channel info reply = %d lines, want %d", len(texts), len(usageLines()))
	}
}

func TestBotLeavesAbandonedChannel(t *testing.T) {
	f := newFixture(t)
	f.register(1, "alice")
	f.route(1, "JOIN #dice")
	if !f.st.Channels["#dice"].IsMember(state.BotID) {
		t.Fatal("bot did not join")
	}

	f.route(1, "PART #dice")
	if _, ok := f.st.Channels["#dice"]; ok {
		t.Error("channel survived with only the bot in it")
	}
}

func TestBotLeavesAfterQuit(t *testing.T) {
	f := newFixture(t)
	f.register(1, "alice")
	f.register(2, "bob")
	f.route(1, "JOIN #a")
	f.route(2, "JOIN #b")

	f.route(1, "QUIT :bye")
	if _, ok := f.st.Channels["#a"]; ok {
		t.Error("abandoned channel survived")
	}
	if ch, ok := f.st.Channels["#b"]; !ok || !ch.IsMember(2) || !ch.IsMember(state.BotID) {
		t.Error("unrelated channel disturbed")
	}
}
