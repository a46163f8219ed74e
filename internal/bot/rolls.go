package bot

import (
	"strconv"
	"strings"
)

// diceTypes lists the supported dice, in reporting order.
var diceTypes = []string{"d2", "d4", "d6", "d8", "d10", "d12", "d20", "d100"}

// maxRollsPerType caps how many rolls of one dice type a single request may
// ask for.
const maxRollsPerType = 100

// rolls accumulates how many rolls of each dice type a request asked for.
type rolls struct {
	counts map[string]int
}

func newRolls() *rolls {
	r := &rolls{counts: make(map[string]int, len(diceTypes))}
	for _, key := range diceTypes {
		r.counts[key] = 0
	}
	return r
}

func isDiceType(key string) bool {
	for _, k := range diceTypes {
		if k == key {
			return true
		}
	}
	return false
}

// add increases the count for a dice type, saturating at maxRollsPerType.
func (r *rolls) add(key string, n int) {
	if r.counts[key]+n <= maxRollsPerType {
		r.counts[key] += n
	} else {
		r.counts[key] = maxRollsPerType
	}
}

// list renders the requested rolls, e.g. "d6: 2 / d20: 1".
func (r *rolls) list() string {
	var b strings.Builder
	for _, key := range diceTypes {
		if r.counts[key] == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" / ")
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(strconv.Itoa(r.counts[key]))
	}
	return b.String()
}

// usageLines is the reply to an "info" request.
func usageLines() []string {
	return []string{
		"-----",
		"Available dice:",
		strings.Join(diceTypes, ", "),
		"",
		"Format:",
		"[multiplier]d<dice_type>",
		"The multiplier is optional.",
		"",
		"Examples:",
		"d6     = roll one 6-sided die",
		"3d8    = roll three 8-sided dice",
		"10d2   = roll ten 2-sided dice",
		"",
		"Multiple dice can be rolled at once.",
		"Syntax: d2 d4d6 2d8 6d20",
		"",
		"Limits:",
		"100 rolls per dice type.",
		"-----",
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// parseDice scans free-form text for roll requests of the form
// [multiplier]d<sides>, e.g. "d6", "3d8", "d4d6". Digits already consumed as
// the sides of a previous match are never reused as a multiplier. Returns
// true when at least one valid dice type was requested.
func parseDice(text string, r *rolls) bool {
	found := false
	for _, token := range strings.Fields(text) {
		pos := 0
		prevEnd := 0
		for pos < len(token) {
			d := strings.IndexByte(token[pos:], 'd')
			if d < 0 {
				break
			}
			dpos := pos + d

			start := dpos
			for start > prevEnd && isDigit(token[start-1]) {
				start--
			}

			end := dpos + 1
			for end < len(token) && isDigit(token[end]) {
				end++
			}
			if end == dpos+1 {
				// no digits after 'd'
				pos = dpos + 1
				continue
			}

			multiplier := 1
			if start < dpos {
				if n, err := strconv.Atoi(token[start:dpos]); err == nil {
					if n > maxRollsPerType {
						n = maxRollsPerType
					}
					multiplier = n
				}
				if multiplier == 0 {
					pos, prevEnd = end, end
					continue
				}
			}

			if key := "d" + token[dpos+1:end]; isDiceType(key) {
				found = true
				r.add(key, multiplier)
			}
			pos, prevEnd = end, end
		}
	}
	return found
}
