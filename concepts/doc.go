// Package concepts recognizes dictionary concepts in labeled text.
//
// For each sentence the Matcher slides a window of up to SpanSize tokens and
// tries every prefix of the window as a candidate span. Candidates made only
// of trivial parts of speech are skipped. Every other candidate is looked up
// tier by tier until one matches:
//
//  1. exact surface text (1.0)
//  2. lower-cased surface text (0.6), multi-token candidates only
//  3. surface text with acronyms expanded (0.9)
//  4. lower-cased expanded text (0.5), multi-token candidates only
//  5. bag of non-trivial norm forms (0.3), multi-token candidates only
//
// A match emits one core.Concept per dictionary record followed by one
// core.DictionaryTerm for the span.
package concepts
