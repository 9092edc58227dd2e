package lrc

// DefaultSearchTimeout is the default number of unanchored lines tolerated
// before a stream is rejected.
const DefaultSearchTimeout = 20

// IsAnchored reports whether the line starts with a recognized timestamp.
// It only checks the shape; no arithmetic is performed.
func IsAnchored(line string) bool {
	_, ok := Classify(line)
	return ok
}

// Classify returns the first grammar, in priority order, whose shape the
// line starts with.
func Classify(line string) (Grammar, bool) {
	for _, g := range grammars {
		if g.pattern.MatchString(line) {
			return g.grammar, true
		}
	}
	return 0, false
}

// SearchBudget bounds how many unanchored lines one decode pass may see.
// It is spent across the whole pass and never replenished. Each pass owns
// its own budget; the detector uses the same type to predict rejection.
type SearchBudget struct {
	remaining int
}

// NewSearchBudget creates a budget of timeout unanchored lines.
func NewSearchBudget(timeout int) *SearchBudget {
	return &SearchBudget{remaining: timeout}
}

// Spend consumes one unit and reports whether the budget is exhausted.
func (b *SearchBudget) Spend() bool {
	b.remaining--
	return b.remaining <= 0
}
