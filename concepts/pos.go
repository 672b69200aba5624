package concepts

import (
	"slices"

	"github.com/poiesic/conceptmatch/core"
)

// Parts of speech that carry no content for phrase matching.
var trivialPartsOfSpeech = map[core.PartOfSpeech]struct{}{
	"DT":   {}, // determiner
	"CD":   {}, // cardinal number
	"WDT":  {}, // wh-determiner
	"TO":   {}, // infinitive marker
	"CC":   {}, // coordinating conjunction
	"PRP":  {}, // personal pronoun
	"PRP$": {}, // possessive pronoun
	"MD":   {}, // modal
	"EX":   {}, // existential there
	"IN":   {}, // preposition or subordinating conjunction
	"XX":   {}, // unknown or foreign

	// punctuation
	".":     {},
	",":     {},
	":":     {},
	"``":    {},
	"''":    {},
	"-LRB-": {},
	"-RRB-": {},
	"(":     {},
	")":     {},
	"#":     {},
	"$":     {},
	"HYPH":  {},
	"NFP":   {},
}

// IsTrivial reports whether tag is a function word or punctuation tag.
func IsTrivial(tag core.PartOfSpeech) bool {
	_, ok := trivialPartsOfSpeech[tag]
	return ok
}

// TrivialPartsOfSpeech returns the trivial tags in sorted order.
func TrivialPartsOfSpeech() []core.PartOfSpeech {
	tags := make([]core.PartOfSpeech, 0, len(trivialPartsOfSpeech))
	for tag := range trivialPartsOfSpeech {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// allTrivial reports whether every tag is trivial. It is true for no tags.
func allTrivial(tags []core.PosTag) bool {
	for _, tag := range tags {
		if !IsTrivial(tag.Tag) {
			return false
		}
	}
	return true
}
