// Package state holds the in-memory data model of the server: clients keyed
// by connection id and channels keyed by name, plus the query and mutation
// helpers the command handlers build on. The state is owned by a single
// goroutine; nothing in this package locks.
package state

import (
	"sort"
	"strings"
	"time"
)

// BotID is the reserved connection id of the embedded bot client. It never
// maps to a real socket; messages addressed to it are routed internally.
const BotID = -2

// Status is the registration state of a client.
type Status int

const (
	// Connected is the initial state of every client.
	Connected Status = iota
	// Authenticated means the server password was accepted or waived.
	Authenticated
	// Welcomed is terminal; the full command set is unlocked.
	Welcomed
)

// Client is one chat participant.
type Client struct {
	Status   Status
	Nick     string
	Username string
	Realname string
	Modes    map[byte]struct{}
}

// NewClient returns an unregistered client with no modes set.
func NewClient() *Client {
	return &Client{Modes: make(map[byte]struct{})}
}

// IsOp reports whether the client holds the server-operator user mode.
func (c *Client) IsOp() bool {
	_, ok := c.Modes['o']
	return ok
}

// Hostmask is the <nick>!<user>@<host> source used when broadcasting on the
// client's behalf, or "*" before a nick is set.
func (c *Client) Hostmask() string {
	if c.Nick == "" {
		return "*"
	}
	return c.Nick + "!" + c.Username + "@0.0.0.0"
}

// Display is the client field of numeric replies: the nick, or "*" before one
// is set.
func (c *Client) Display() string {
	if c.Nick == "" {
		return "*"
	}
	return c.Nick
}

// ModeString renders the user modes as "+<flags>" in sorted order.
func (c *Client) ModeString() string {
	flags := make([]byte, 0, len(c.Modes))
	for f := range c.Modes {
		flags = append(flags, f)
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i] < flags[j] })
	return "+" + string(flags)
}

// Channel groups clients. It exists only while it has members.
type Channel struct {
	Name      string
	Topic     string
	Key       string
	Members   map[int]struct{}
	Ops       map[int]struct{}
	Invited   map[int]struct{}
	Modes     map[byte]struct{}
	UserLimit int
}

// NewChannel returns an empty channel with the given name.
func NewChannel(name string) *Channel {
	return &Channel{
		Name:    name,
		Members: make(map[int]struct{}),
		Ops:     make(map[int]struct{}),
		Invited: make(map[int]struct{}),
		Modes:   make(map[byte]struct{}),
	}
}

// IsMember reports channel membership for a connection id.
func (ch *Channel) IsMember(id int) bool {
	_, ok := ch.Members[id]
	return ok
}

// IsChanOp reports whether the connection id is a channel operator.
func (ch *Channel) IsChanOp(id int) bool {
	_, ok := ch.Ops[id]
	return ok
}

// IsInvited reports whether the connection id holds a pending invite.
func (ch *Channel) IsInvited(id int) bool {
	_, ok := ch.Invited[id]
	return ok
}

// HasMode reports whether a channel mode flag is set.
func (ch *Channel) HasMode(flag byte) bool {
	_, ok := ch.Modes[flag]
	return ok
}

// MemberIDs returns the member set in ascending id order.
func (ch *Channel) MemberIDs() []int {
	ids := make([]int, 0, len(ch.Members))
	for id := range ch.Members {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// State is the single mutable server-state object. Handlers receive it by
// pointer and must not retain it beyond their invocation.
type State struct {
	Clients  map[int]*Client
	Channels map[string]*Channel

	Password  string
	MOTD      string
	OperName  string
	OperPass  string
	StartTime time.Time
}

// New returns an empty state with the given server password and MOTD.
func New(password, motd string) *State {
	return &State{
		Clients:   make(map[int]*Client),
		Channels:  make(map[string]*Channel),
		Password:  password,
		MOTD:      motd,
		StartTime: time.Now(),
	}
}

// EnsureClient returns the client for a connection id, creating it on first
// contact. The router calls this once per incoming message so that implicit
// creation is a single explicit step.
func (s *State) EnsureClient(id int) *Client {
	if c, ok := s.Clients[id]; ok {
		return c
	}
	c := NewClient()
	s.Clients[id] = c
	return c
}

// EnsureChannel returns the channel with the given name, creating it empty on
// first use.
func (s *State) EnsureChannel(name string) *Channel {
	if ch, ok := s.Channels[name]; ok {
		return ch
	}
	ch := NewChannel(name)
	s.Channels[name] = ch
	return ch
}

// RemoveClient purges a connection id from the client map and from every
// channel's member, operator and invite sets, deleting channels left with no
// members.
func (s *State) RemoveClient(id int) {
	var empty []string
	for name, ch := range s.Channels {
		delete(ch.Members, id)
		delete(ch.Ops, id)
		delete(ch.Invited, id)
		if len(ch.Members) == 0 {
			empty = append(empty, name)
		}
	}
	delete(s.Clients, id)
	for _, name := range empty {
		delete(s.Channels, name)
	}
}

// FindClientByNick returns the connection id holding the nick, or -1. The
// match is case-sensitive and exact.
func (s *State) FindClientByNick(nick string) int {
	for id, c := range s.Clients {
		if c.Nick == nick {
			return id
		}
	}
	return -1
}

// ClientsInChannelsWith returns, in ascending order, every connection id that
// shares at least one channel with the given id, excluding the id itself.
// Used to compute broadcast targets for identity-wide events.
func (s *State) ClientsInChannelsWith(id int) []int {
	seen := make(map[int]struct{})
	for _, ch := range s.Channels {
		if !ch.IsMember(id) {
			continue
		}
		for member := range ch.Members {
			seen[member] = struct{}{}
		}
	}
	delete(seen, id)
	ids := make([]int, 0, len(seen))
	for member := range seen {
		ids = append(ids, member)
	}
	sort.Ints(ids)
	return ids
}

// NamesInChannel renders the space-joined member nick listing for the NAMES
// reply: operators first, each prefixed with '@', then regular members, both
// groups in ascending id order.
func (s *State) NamesInChannel(name string) string {
	ch, ok := s.Channels[name]
	if !ok {
		return ""
	}

	var b strings.Builder
	for _, id := range ch.MemberIDs() {
		if ch.IsChanOp(id) {
			b.WriteByte('@')
			b.WriteString(s.Clients[id].Nick)
			b.WriteByte(' ')
		}
	}
	for _, id := range ch.MemberIDs() {
		if !ch.IsChanOp(id) {
			b.WriteString(s.Clients[id].Nick)
			b.WriteByte(' ')
		}
	}
	return b.String()
}
