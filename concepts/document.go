package concepts

import (
	"fmt"

	"github.com/poiesic/conceptmatch/core"
)

// Document is the text of one document together with the labels computed for
// it upstream. Any index may be nil, which is treated as empty.
type Document struct {
	Text      string
	Sentences *core.LabelIndex[core.Sentence]
	Tokens    *core.LabelIndex[core.TermToken]
	PosTags   *core.LabelIndex[core.PosTag]
	Norms     *core.LabelIndex[core.NormForm]
	Acronyms  *core.LabelIndex[core.Acronym]
}

// Validate checks that every sentence and token span lies within the text.
func (d *Document) Validate() error {
	for _, sentence := range d.Sentences.All() {
		if err := core.ValidateSpan(sentence.Span, len(d.Text)); err != nil {
			return fmt.Errorf("sentence: %w", err)
		}
	}
	for _, token := range d.Tokens.All() {
		if err := core.ValidateSpan(token.Span, len(d.Text)); err != nil {
			return fmt.Errorf("token %q: %w", token.Text, err)
		}
	}
	return nil
}
