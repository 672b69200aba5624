package concepts

import "github.com/poiesic/conceptmatch/core"

// Sink receives the labels produced while matching one document.
type Sink interface {
	AddTerm(term core.DictionaryTerm)
	AddConcept(concept core.Concept)
}

// Collector is a Sink that keeps labels in memory in emission order.
// It is meant to be owned by a single document task.
type Collector struct {
	Terms    []core.DictionaryTerm
	Concepts []core.Concept
}

var _ Sink = (*Collector)(nil)

// AddTerm appends term.
func (c *Collector) AddTerm(term core.DictionaryTerm) {
	c.Terms = append(c.Terms, term)
}

// AddConcept appends concept.
func (c *Collector) AddConcept(concept core.Concept) {
	c.Concepts = append(c.Concepts, concept)
}

// Reset empties the collector for reuse.
func (c *Collector) Reset() {
	c.Terms = c.Terms[:0]
	c.Concepts = c.Concepts[:0]
}
