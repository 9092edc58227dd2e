package detector

import "github.com/ccollicutt/lrcparse/pkg/lrc"

// GrammarFormat describes one leading timestamp grammar for reporting.
type GrammarFormat struct {
	Grammar      lrc.Grammar
	Name         string   // Human-readable name
	PatternStr   string   // Regular expression source
	FractionUnit string   // milliseconds or centiseconds
	Examples     []string // Example timestamps
}

var grammarExamples = map[lrc.Grammar][]string{
	lrc.ShortMilli: {"[01:02.345]", "[125:07.010]"},
	lrc.ShortCenti: {"[01:02.34]", "[00:17.20]"},
	lrc.LongMilli:  {"[1:02:03.456]"},
	lrc.LongCenti:  {"[1:02:03.45]"},
}

var grammarNames = map[lrc.Grammar]string{
	lrc.ShortMilli: "Minutes and seconds with milliseconds",
	lrc.ShortCenti: "Minutes and seconds with centiseconds",
	lrc.LongMilli:  "Hours, minutes and seconds with milliseconds",
	lrc.LongCenti:  "Hours, minutes and seconds with centiseconds",
}

// DefaultFormats returns the recognized grammars in matching priority order.
func DefaultFormats() []*GrammarFormat {
	formats := make([]*GrammarFormat, 0, len(lrc.Grammars()))
	for _, g := range lrc.Grammars() {
		formats = append(formats, &GrammarFormat{
			Grammar:      g,
			Name:         grammarNames[g],
			PatternStr:   g.Pattern(),
			FractionUnit: g.FractionUnit(),
			Examples:     grammarExamples[g],
		})
	}
	return formats
}
