/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: search.go
Description: Bounded combinatorial search over the covering grammar's edits. Tries the
unmodified input first, then ascending edit counts, pruning selections that need more
than the configured number of characters, until the oracle accepts a candidate or the
budget is exhausted.
*/

package search

import (
	"fmt"

	"github.com/kleascm/covgram-repair/pkg/alphabet"
	"github.com/kleascm/covgram-repair/pkg/generator"
	"github.com/kleascm/covgram-repair/pkg/grammar"
	"github.com/kleascm/covgram-repair/pkg/metrics"
	"github.com/kleascm/covgram-repair/pkg/oracle"
)

// Config bounds the search: the largest edit count to try, the largest number of
// char-needing edits a single selection may contain, and whether the covering
// grammar's sentinel position also permits a tail insertion past the end of input.
type Config struct {
	MaxEdits        int
	MaxCharEdits    int
	AllowTailInsert bool
}

// Result is the outcome of a repair search.
type Result struct {
	Repaired string
	Found    bool
	Stats    oracle.Stats
}

// Engine runs the search: it owns no mutable state beyond what a single Run call
// needs, mirroring the single-threaded, cooperative concurrency model the oracle
// driver itself follows.
type Engine struct {
	driver  *oracle.Driver
	metrics *metrics.Metrics
	cfg     Config
}

// New constructs a search Engine bound to driver, using cfg's bounds.
func New(driver *oracle.Driver, m *metrics.Metrics, cfg Config) *Engine {
	return &Engine{driver: driver, metrics: m, cfg: cfg}
}

// Run searches for a repair of input. It returns the repaired string and Found=true
// on the first accepted candidate (the unmodified input counts as a zero-edit
// candidate); otherwise Found=false once every selection up to MaxEdits has been
// tried.
func (e *Engine) Run(input []byte) Result {
	if e.driver.Query(string(input)) == oracle.Accepted {
		return Result{Repaired: string(input), Found: true, Stats: e.driver.Stats()}
	}

	base := grammar.FromString(input)
	cov := base.Covering(e.cfg.AllowTailInsert)
	edits := cov.Edits()

	for k := 1; k <= e.cfg.MaxEdits; k++ {
		if repaired, ok := e.searchK(cov, edits, k); ok {
			return Result{Repaired: repaired, Found: true, Stats: e.driver.Stats()}
		}
	}
	return Result{Found: false, Stats: e.driver.Stats()}
}

// searchK enumerates every strictly-ascending k-combination of edit indices in
// lexicographic order and tries each one.
func (e *Engine) searchK(cov *grammar.Grammar, edits []grammar.Edit, k int) (string, bool) {
	n := len(edits)
	sel := make([]int, k)

	var search func(idx int) (string, bool)
	search = func(idx int) (string, bool) {
		if idx == k {
			return e.tryCombination(cov, edits, sel)
		}
		start := 0
		if idx > 0 {
			start = sel[idx-1] + 1
		}
		for i := start; i < n; i++ {
			sel[idx] = i
			if repaired, ok := search(idx + 1); ok {
				return repaired, true
			}
		}
		return "", false
	}
	return search(0)
}

// tryCombination checks the char-count pruning rule for the selection named by sel,
// then either queries directly (no chars needed) or iterates the alphabet.
func (e *Engine) tryCombination(cov *grammar.Grammar, edits []grammar.Edit, sel []int) (string, bool) {
	selected := make([]grammar.Edit, len(sel))
	for i, idx := range sel {
		selected[i] = edits[idx]
	}

	need := 0
	for _, ed := range selected {
		if ed.NeedsChar() {
			need++
		}
	}
	if need > e.cfg.MaxCharEdits {
		if e.metrics != nil {
			e.metrics.SelectionsPruned.Inc()
		}
		return "", false
	}
	if e.metrics != nil {
		e.metrics.SelectionsGenerated.Inc()
	}

	if need == 0 {
		return e.queryCandidate(cov, generator.Selection{Edits: selected})
	}

	// The lean default (MaxCharEdits=1) only ever reaches this branch with
	// exactly one char-needing edit; richer configurations may select more,
	// in which case every alphabet byte is tried for every slot in turn.
	return e.assignChars(cov, selected, make([]byte, 0, need), need)
}

// assignChars fills in the characters for every char-needing edit in selected, in
// the fixed alphabet order, trying every combination until one is accepted or the
// alphabet is exhausted.
func (e *Engine) assignChars(cov *grammar.Grammar, selected []grammar.Edit, chars []byte, need int) (string, bool) {
	if len(chars) == need {
		return e.queryCandidate(cov, generator.Selection{Edits: selected, Chars: chars})
	}
	for i := 0; i < alphabet.Len(); i++ {
		c := alphabet.At(i)
		if repaired, ok := e.assignChars(cov, selected, append(chars, c), need); ok {
			return repaired, true
		}
	}
	return "", false
}

// queryCandidate generates the candidate string for sel and submits it to the
// oracle, returning it with ok=true only on an Accepted verdict. A selection whose
// edits could not all be applied during generation is rejected without ever
// reaching the oracle.
func (e *Engine) queryCandidate(cov *grammar.Grammar, sel generator.Selection) (string, bool) {
	candidate, ok := generator.Generate(cov, sel)
	if !ok {
		return "", false
	}
	if e.driver.Query(candidate) == oracle.Accepted {
		return candidate, true
	}
	return "", false
}

// ExhaustionMessage renders the message printed to stdout when no repair was found
// within maxEdits.
func ExhaustionMessage(maxEdits int) string {
	return fmt.Sprintf("No fix with up to %d edits found.", maxEdits)
}
