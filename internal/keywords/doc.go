// Package keywords derives weighted keywords and regex patterns from text.
//
// The same weighting algorithm runs at ingestion time (Synthesizer, over a
// chunk's text and labels) and at query time (ExtractQuery, over the live
// query). All comparisons go through Normalize, which lowercases, strips
// punctuation and Porter-stems each word.
//
// PriorityIndex and the keyword-group table are immutable values injected
// into the Synthesizer and the boost calculator; there is no process-wide
// registry.
package keywords
