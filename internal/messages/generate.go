package messages

import "github.com/kozaktomas/marathon-booth/internal/runner"

// Phrases is the generated upper/lower pair shown on the completion screen.
type Phrases struct {
	Upper string `json:"upper"`
	Lower string `json:"lower"`
}

// Generate draws the phrase pair for a 1-based message index and a 1-based
// bracket index. The upper phrase comes from the message's initial list, the
// lower from its bracket list. Anything missing or empty yields "" for that
// phrase; Generate never fails.
func (c *Catalog) Generate(l Locale, messageIndex, bracketIndex int, src runner.IntSource) Phrases {
	var p Phrases
	t, ok := c.tables[l]
	if !ok || messageIndex < 1 || messageIndex > len(t.Messages) {
		return p
	}
	if src == nil {
		src = runner.DefaultSource
	}

	msg := t.Messages[messageIndex-1]
	p.Upper = pick(msg.Initial, src)
	if bracketIndex >= 1 && bracketIndex <= len(msg.Time) {
		p.Lower = pick(msg.Time[bracketIndex-1], src)
	}
	return p
}

func pick(candidates []string, src runner.IntSource) string {
	if len(candidates) == 0 {
		return ""
	}
	return candidates[src.IntN(len(candidates))]
}
