package router

import (
	"testing"

	"github.com/vovakirdan/ircserv/internal/proto"
)

func TestChannelModeQuery(t *testing.T) {
	f := newFixture(t, "")
	f.register(1, "", "alice")
	f.route(1, "JOIN #q")
	f.route(1, "MODE #q +i")
	f.route(1, "MODE #q +l 5")

	out := f.route(1, "MODE #q")
	got := assertSingle(t, out, proto.RplChannelModeIs)
	if got.Params[1] != "+il" || got.Params[2] != "5" {
		t.Errorf("mode query params = %v", got.Params)
	}
}

func TestChannelModeNonOperatorRejected(t *testing.T) {
	f := newFixture(t, "")
	f.register(1, "", "alice")
	f.register(2, "", "bob")
	f.route(1, "JOIN #m")
	f.route(2, "JOIN #m")

	out := f.route(2, "MODE #m +i")
	assertSingle(t, out, proto.ErrChanOPrivsNeeded)
	if f.st.Channels["#m"].HasMode('i') {
		t.Error("flag set despite rejection")
	}
}

func TestChannelModeBroadcast(t *testing.T) {
	f := newFixture(t, "")
	f.register(1, "", "alice")
	f.register(2, "", "bob")
	f.route(1, "JOIN #m")
	f.route(2, "JOIN #m")

	out := f.route(1, "MODE #m +i")
	if countVerb(out, "MODE") != 2 {
		t.Fatalf("MODE broadcast = %v, want both members notified", verbs(out))
	}
	if out[0].Source != "alice!~alice@0.0.0.0" {
		t.Errorf("broadcast source = %q", out[0].Source)
	}

	// setting an already-set flag is a silent no-op
	if out := f.route(1, "MODE #m +i"); len(out) != 0 {
		t.Errorf("redundant +i replied %v", verbs(out))
	}
	if out := f.route(1, "MODE #m -t"); len(out) != 0 {
		t.Errorf("redundant -t replied %v", verbs(out))
	}
}

func TestChannelModeFlagSequence(t *testing.T) {
	f := newFixture(t, "")
	f.register(1, "", "alice")
	f.route(1, "JOIN #s")

	f.route(1, "MODE #s +kl sesame 7")
	ch := f.st.Channels["#s"]
	if !ch.HasMode('k') || ch.Key != "sesame" {
		t.Errorf("key = %q, modes k=%v", ch.Key, ch.HasMode('k'))
	}
	if !ch.HasMode('l') || ch.UserLimit != 7 {
		t.Errorf("limit = %d, modes l=%v", ch.UserLimit, ch.HasMode('l'))
	}

	// sign flips mid-string
	f.route(1, "MODE #s +i-k")
	if !ch.HasMode('i') || ch.HasMode('k') || ch.Key != "" {
		t.Errorf("after +i-k: i=%v k=%v key=%q", ch.HasMode('i'), ch.HasMode('k'), ch.Key)
	}
}

func TestChannelModeKeyValidation(t *testing.T) {
	f := newFixture(t, "")
	f.register(1, "", "alice")
	f.route(1, "JOIN #k")

	assertSingle(t, f.route(1, "MODE #k +k"), proto.ErrNeedMoreParams)
	assertSingle(t, f.route(1, "MODE #k +k bad,key"), proto.ErrInvalidKey)
	if f.st.Channels["#k"].HasMode('k') {
		t.Error("invalid key set the flag")
	}
}

func TestChannelModeKeyBroadcastHidesKey(t *testing.T) {
	f := newFixture(t, "")
	f.register(1, "", "alice")
	f.route(1, "JOIN #k")

	out := f.route(1, "MODE #k +k sesame")
	m := first(t, out, "MODE")
	if len(m.Params) != 2 {
		t.Fatalf("key broadcast params = %v, key must not leak", m.Params)
	}
}

func TestChannelModeOpGrantAndRevoke(t *testing.T) {
	f := newFixture(t, "")
	f.register(1, "", "alice")
	f.register(2, "", "bob")
	f.route(1, "JOIN #o")
	f.route(2, "JOIN #o")

	assertSingle(t, f.route(1, "MODE #o +o"), proto.ErrNeedMoreParams)
	assertSingle(t, f.route(1, "MODE #o +o carol"), proto.ErrUserNotInChannel)

	out := f.route(1, "MODE #o +o bob")
	if countVerb(out, "MODE") != 2 {
		t.Fatalf("+o broadcast = %v", verbs(out))
	}
	if !f.st.Channels["#o"].IsChanOp(2) {
		t.Fatal("target not promoted")
	}

	f.route(2, "MODE #o -o bob")
	if f.st.Channels["#o"].IsChanOp(2) {
		t.Error("target not demoted")
	}
}

func TestChannelModeUnknownFlag(t *testing.T) {
	f := newFixture(t, "")
	f.register(1, "", "alice")
	f.route(1, "JOIN #u")

	assertSingle(t, f.route(1, "MODE #u +x"), proto.ErrUModeUnknownFlag)
	if out := f.route(1, "MODE #u b"); len(out) != 0 {
		t.Errorf("ban list probe replied %v", verbs(out))
	}
}

func TestUserMode(t *testing.T) {
	f := newFixture(t, "")
	f.register(1, "", "alice")
	f.register(2, "", "bob")

	got := assertSingle(t, f.route(1, "MODE alice"), proto.RplUModeIs)
	if got.Params[1] != "+" {
		t.Errorf("initial modes = %q", got.Params[1])
	}

	assertSingle(t, f.route(1, "MODE bob +i"), proto.ErrUsersDontMatch)
	assertSingle(t, f.route(1, "MODE ghost +i"), proto.ErrNoSuchNick)
	assertSingle(t, f.route(1, "MODE alice +o"), proto.ErrNoPrivileges)
	assertSingle(t, f.route(1, "MODE alice +i"), proto.RplUModeIs)
}

func TestOper(t *testing.T) {
	f := newFixture(t, "")
	f.st.OperName = "oper"
	f.st.OperPass = "operpw"
	f.register(1, "", "alice")

	assertSingle(t, f.route(1, "OPER oper"), proto.ErrNeedMoreParams)
	assertSingle(t, f.route(1, "OPER oper wrong"), proto.ErrPasswdMismatch)
	assertSingle(t, f.route(1, "OPER nobody operpw"), proto.ErrPasswdMismatch)

	out := f.route(1, "OPER oper operpw")
	if countVerb(out, proto.RplYoureOper) != 1 || countVerb(out, proto.RplUModeIs) != 1 {
		t.Fatalf("OPER replies = %v", verbs(out))
	}
	if !f.st.Clients[1].IsOp() {
		t.Error("operator mode not granted")
	}

	// -o drops all user modes
	assertSingle(t, f.route(1, "MODE alice -o"), proto.RplUModeIs)
	if f.st.Clients[1].IsOp() {
		t.Error("operator mode not dropped")
	}
}
