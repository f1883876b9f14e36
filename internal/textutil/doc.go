// Package textutil holds small text helpers shared across the pipeline:
// filename sanitization for transient working copies and the caption
// quote-trim heuristic.
package textutil
