package state

import (
	"reflect"
	"testing"
)

func newPopulated() *State {
	st := New("pw", "")
	for id, nick := range map[int]string{1: "alice", 2: "bob", 3: "carol"} {
		c := st.EnsureClient(id)
		c.Nick = nick
		c.Username = "~" + nick
		c.Status = Welcomed
	}
	return st
}

func TestEnsureClientIdempotent(t *testing.T) {
	st := New("", "")
	a := st.EnsureClient(1)
	b := st.EnsureClient(1)
	if a != b {
		t.Fatal("EnsureClient created a second client for the same id")
	}
}

func TestHostmaskAndDisplay(t *testing.T) {
	c := NewClient()
	if c.Hostmask() != "*" || c.Display() != "*" {
		t.Errorf("unnamed client: Hostmask=%q Display=%q", c.Hostmask(), c.Display())
	}
	c.Nick = "alice"
	c.Username = "~alice"
	if got := c.Hostmask(); got != "alice!~alice@0.0.0.0" {
		t.Errorf("Hostmask() = %q", got)
	}
}

func TestRemoveClientPrunesEmptyChannels(t *testing.T) {
	st := newPopulated()
	ch := st.EnsureChannel("#solo")
	ch.Members[1] = struct{}{}
	ch.Ops[1] = struct{}{}

	shared := st.EnsureChannel("#shared")
	shared.Members[1] = struct{}{}
	shared.Members[2] = struct{}{}
	shared.Invited[1] = struct{}{}

	st.RemoveClient(1)

	if _, ok := st.Clients[1]; ok {
		t.Error("client still present")
	}
	if _, ok := st.Channels["#solo"]; ok {
		t.Error("empty channel not pruned")
	}
	if shared.IsMember(1) || shared.IsChanOp(1) || shared.IsInvited(1) {
		t.Error("client not purged from surviving channel")
	}
	if !shared.IsMember(2) {
		t.Error("other member lost")
	}
}

func TestFindClientByNick(t *testing.T) {
	st := newPopulated()
	if got := st.FindClientByNick("bob"); got != 2 {
		t.Errorf("FindClientByNick(bob) = %d", got)
	}
	if got := st.FindClientByNick("Bob"); got != -1 {
		t.Errorf("lookup is case-sensitive, got %d", got)
	}
	if got := st.FindClientByNick("ghost"); got != -1 {
		t.Errorf("FindClientByNick(ghost) = %d", got)
	}
}

func TestClientsInChannelsWith(t *testing.T) {
	st := newPopulated()
	a := st.EnsureChannel("#a")
	a.Members[1] = struct{}{}
	a.Members[2] = struct{}{}
	b := st.EnsureChannel("#b")
	b.Members[1] = struct{}{}
	b.Members[3] = struct{}{}

	got := st.ClientsInChannelsWith(1)
	if !reflect.DeepEqual(got, []int{2, 3}) {
		t.Errorf("ClientsInChannelsWith(1) = %v", got)
	}
	if got := st.ClientsInChannelsWith(2); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("ClientsInChannelsWith(2) = %v", got)
	}
}

func TestNamesInChannelOpsFirst(t *testing.T) {
	st := newPopulated()
	ch := st.EnsureChannel("#n")
	ch.Members[1] = struct{}{}
	ch.Members[2] = struct{}{}
	ch.Members[3] = struct{}{}
	ch.Ops[2] = struct{}{}

	if got := st.NamesInChannel("#n"); got != "@bob alice carol " {
		t.Errorf("NamesInChannel() = %q", got)
	}
	if got := st.NamesInChannel("#missing"); got != "" {
		t.Errorf("missing channel = %q", got)
	}
}

func TestModeString(t *testing.T) {
	c := NewClient()
	c.Modes['o'] = struct{}{}
	c.Modes['i'] = struct{}{}
	if got := c.ModeString(); got != "+io" {
		t.Errorf("ModeString() = %q", got)
	}
}
