// Package ranking implements the query-time stages of the retrieval
// pipeline: activation gating, keyword boost scoring, crosslink and
// fallback expansion, link resolution, inclusion-group filtering, score
// fusion and top-K selection.
//
// Every stage is a pure function over a Corpus (the merged chunk map of the
// activated collections) and a candidate slice. Scores follow one
// convention end to end: higher is better, base scores in [0,1].
package ranking
