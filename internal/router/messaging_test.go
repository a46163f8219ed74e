package router

import (
	"testing"

	"github.com/vovakirdan/ircserv/internal/proto"
)

func TestPrivmsgChannelFanOut(t *testing.T) {
	f := newFixture(t, "")
	f.register(1, "", "alice")
	f.register(2, "", "bob")
	f.register(3, "", "carol")
	f.route(1, "JOIN #c")
	f.route(2, "JOIN #c")
	f.route(3, "JOIN #c")

	out := f.route(1, "PRIVMSG #c :hello all")
	if len(out) != 2 {
		t.Fatalf("fan-out = %v, want exactly the other members", out)
	}
	seen := map[int]bool{}
	for _, m := range out {
		if m.Verb != "PRIVMSG" {
			t.Fatalf("reply verb = %s", m.Verb)
		}
		if m.Source != "alice!~alice@0.0.0.0" {
			t.Errorf("source = %q", m.Source)
		}
		if m.Params[0] != "#c" || m.Params[1] != "hello all" {
			t.Errorf("params = %v", m.Params)
		}
		seen[m.ConnID] = true
	}
	if seen[1] || !seen[2] || !seen[3] {
		t.Errorf("fan-out targets = %v", seen)
	}
}

func TestPrivmsgChannelErrors(t *testing.T) {
	f := newFixture(t, "")
	f.register(1, "", "alice")
	f.register(2, "", "bob")
	f.route(1, "JOIN #c")

	assertSingle(t, f.route(2, "PRIVMSG #c :hi"), proto.ErrCannotSendToChan)
	assertSingle(t, f.route(2, "PRIVMSG #ghost :hi"), proto.ErrCannotSendToChan)
}

func TestPrivmsgDirect(t *testing.T) {
	f := newFixture(t, "")
	f.register(1, "", "alice")
	f.register(2, "", "bob")

	out := f.route(1, "PRIVMSG bob :psst")
	if len(out) != 1 || out[0].ConnID != 2 {
		t.Fatalf("direct message = %v", out)
	}
	if out[0].Params[0] != "bob" || out[0].Params[1] != "psst" {
		t.Errorf("params = %v", out[0].Params)
	}

	assertSingle(t, f.route(1, "PRIVMSG ghost :psst"), proto.ErrNoSuchNick)
}

func TestPrivmsgMissingParams(t *testing.T) {
	f := newFixture(t, "")
	f.register(1, "", "alice")
	assertSingle(t, f.route(1, "PRIVMSG"), proto.ErrNoRecipient)
	assertSingle(t, f.route(1, "PRIVMSG bob"), proto.ErrNoTextToSend)
}

func TestNoticeNeverReplies(t *testing.T) {
	f := newFixture(t, "")
	f.register(1, "", "alice")
	f.register(2, "", "bob")
	f.route(1, "JOIN #c")

	if out := f.route(1, "NOTICE ghost :hi"); len(out) != 0 {
		t.Errorf("NOTICE to unknown nick replied %v", verbs(out))
	}
	if out := f.route(2, "NOTICE #c :hi"); len(out) != 0 {
		t.Errorf("NOTICE from non-member replied %v", verbs(out))
	}
	if out := f.route(1, "NOTICE"); len(out) != 0 {
		t.Errorf("bare NOTICE replied %v", verbs(out))
	}

	out := f.route(1, "NOTICE bob :fyi")
	if len(out) != 1 || out[0].Verb != "NOTICE" || out[0].ConnID != 2 {
		t.Fatalf("NOTICE delivery = %v", out)
	}
}
