// Package proto implements the line-oriented IRC wire format: parsing raw
// frames into structured messages and assembling messages back to raw bytes.
package proto

import "strings"

const (
	// MaxLineLen is the wire limit for a single frame, terminator included.
	MaxLineLen = 512
	// MaxPayloadLen is the frame limit without the CRLF terminator.
	MaxPayloadLen = 510

	// Terminator ends every frame on the wire.
	Terminator = "\r\n"
)

// Message is one protocol message. ConnID addresses the destination
// connection for outbound messages and records the origin connection for
// inbound ones; it is never serialized. Source carries the hostmask or server
// name prefix. The last parameter may contain spaces.
type Message struct {
	ConnID int
	Source string
	Verb   string
	Params []string
}

// Parse turns a raw frame into a Message. Input is truncated at the first
// CRLF, or at MaxPayloadLen bytes when no terminator is present. Parsing is
// permissive and never fails: a degenerate line yields an empty verb and no
// parameters. Runs of spaces between tokens collapse; a trailing parameter
// introduced by ':' keeps everything after it verbatim.
func Parse(connID int, raw string) Message {
	m := Message{ConnID: connID}

	line := raw
	if i := strings.Index(line, Terminator); i >= 0 {
		line = line[:i]
	}
	// the payload cap applies even when the terminator sits beyond it
	if len(line) > MaxPayloadLen {
		line = line[:MaxPayloadLen]
	}

	if strings.HasPrefix(line, ":") {
		line = line[1:]
		if i := strings.IndexByte(line, ' '); i >= 0 {
			m.Source, line = line[:i], line[i+1:]
		} else {
			m.Source, line = line, ""
		}
	}

	line = strings.TrimLeft(line, " ")
	if i := strings.IndexByte(line, ' '); i >= 0 {
		m.Verb, line = line[:i], line[i+1:]
	} else {
		m.Verb, line = line, ""
	}

	line = strings.TrimLeft(line, " ")
	for line != "" {
		if line[0] == ':' {
			m.Params = append(m.Params, line[1:])
			break
		}
		var param string
		if i := strings.IndexByte(line, ' '); i >= 0 {
			param, line = line[:i], line[i+1:]
		} else {
			param, line = line, ""
		}
		if param != "" {
			m.Params = append(m.Params, param)
		}
		line = strings.TrimLeft(line, " ")
	}

	return m
}

// Assemble serializes the message to its wire form. The last parameter is
// always written with a leading ':', so Assemble(Parse(x)) is not a strict
// identity, but Parse(Assemble(m)) == m holds for every valid m.
func (m Message) Assemble() string {
	var b strings.Builder

	if m.Source != "" {
		b.WriteByte(':')
		b.WriteString(m.Source)
		b.WriteByte(' ')
	}
	b.WriteString(m.Verb)

	for i := 0; i+1 < len(m.Params); i++ {
		b.WriteByte(' ')
		b.WriteString(m.Params[i])
	}
	if len(m.Params) > 0 {
		b.WriteString(" :")
		b.WriteString(m.Params[len(m.Params)-1])
	}

	b.WriteString(Terminator)
	return b.String()
}

func invalidToken(s string) bool {
	return s == "" || strings.ContainsRune(s, ' ')
}

// IsValid reports whether the message can be assembled unambiguously: verb and
// source free of spaces, every parameter except the last non-empty and free of
// spaces. The parser is deliberately more permissive than this check.
func (m Message) IsValid() bool {
	if invalidToken(m.Verb) {
		return false
	}
	if m.Source != "" && strings.ContainsRune(m.Source, ' ') {
		return false
	}
	for i := 0; i+1 < len(m.Params); i++ {
		if invalidToken(m.Params[i]) {
			return false
		}
	}
	return true
}

// ShouldDisconnect reports whether the destination connection must be torn
// down once this message has been flushed.
func (m Message) ShouldDisconnect() bool {
	return m.Verb == "ERROR"
}

// Repeat duplicates the message for broadcasting: one copy per connection id,
// identical except for the addressee.
func (m Message) Repeat(connIDs []int) []Message {
	out := make([]Message, 0, len(connIDs))
	for _, id := range connIDs {
		dup := m
		dup.ConnID = id
		out = append(out, dup)
	}
	return out
}

// Equal reports whether two messages match field for field, addressee
// included.
func (m Message) Equal(other Message) bool {
	if m.ConnID != other.ConnID || m.Source != other.Source || m.Verb != other.Verb {
		return false
	}
	if len(m.Params) != len(other.Params) {
		return false
	}
	for i := range m.Params {
		if m.Params[i] != other.Params[i] {
			return false
		}
	}
	return true
}
