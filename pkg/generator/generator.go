/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: generator.go
Description: Candidate string generation over a covering grammar. Given a selection of
edits (and, for edits that need one, a replacement character each), expands the
grammar's start symbol into the resulting repaired candidate string.
*/

package generator

import (
	"strings"

	"github.com/kleascm/covgram-repair/pkg/grammar"
)

// Application tracks the expansion state of one selected edit while generating a
// single candidate: whether its production has been substituted in yet, and, for
// insert/substitute edits, the character assigned to it and whether that character
// has already been emitted.
type Application struct {
	Edit      grammar.Edit
	Applied   bool
	CharUsed  bool
	Char      byte
	NeedsChar bool
}

// Selection is an ordered set of edits together with the characters assigned to the
// ones that need one, in the order those edits appear in the selection.
type Selection struct {
	Edits []grammar.Edit
	Chars []byte
}

// NewApplications builds the per-edit application state for a selection, assigning
// characters to edits that need one in order.
func NewApplications(sel Selection) []*Application {
	apps := make([]*Application, 0, len(sel.Edits))
	ci := 0
	for _, e := range sel.Edits {
		a := &Application{Edit: e, NeedsChar: e.NeedsChar()}
		if a.NeedsChar {
			a.Char = sel.Chars[ci]
			ci++
		}
		apps = append(apps, a)
	}
	return apps
}

// Generate expands the covering grammar's start symbol under the given selection and
// returns the resulting candidate string, or ok=false if any selected edit's
// production was never reached during expansion (the selection is unusable — e.g. two
// edits targeting the same position).
func Generate(cov *grammar.Grammar, sel Selection) (string, bool) {
	apps := NewApplications(sel)
	var sb strings.Builder
	gen(&sb, "<start>", cov, apps, -1)
	for _, a := range apps {
		if !a.Applied {
			return "", false
		}
	}
	return sb.String(), true
}

// gen recursively expands sym under the covering grammar cov, writing emitted
// terminals to sb. active is the index into apps of the edit application currently
// being expanded, or -1 when not inside any edit's subtree.
//
// Dispatch order: the wildcard and substitute markers each emit their application's
// assigned character at most once; the delete marker and the NUL sentinel always emit
// nothing; any other terminal emits itself; a nonterminal with an unapplied edit
// targeting it (checked only outside an active subtree, first-fit in selection order)
// expands that edit's production instead of its default; otherwise a nonterminal
// expands its first (match) production.
func gen(sb *strings.Builder, sym grammar.Symbol, cov *grammar.Grammar, apps []*Application, active int) {
	if sym == grammar.Any || isSubstituteTag(sym) {
		if active >= 0 {
			a := apps[active]
			if a.NeedsChar && !a.CharUsed {
				a.CharUsed = true
				sb.WriteByte(a.Char)
			}
		}
		return
	}

	if isDeleteTag(sym) {
		return
	}

	if !cov.IsNonterminal(sym) {
		if sym == grammar.Sentinel {
			return
		}
		sb.WriteString(sym)
		return
	}

	if active == -1 {
		for _, a := range apps {
			if !a.Applied && sym == a.Edit.LHS {
				a.Applied = true
				for i, rhsSym := range a.Edit.RHS {
					_ = i
					gen(sb, rhsSym, cov, apps, indexOf(apps, a))
				}
				return
			}
		}
	}

	first := cov.Productions(sym)[0]
	for _, rhsSym := range first {
		gen(sb, rhsSym, cov, apps, active)
	}
}

func indexOf(apps []*Application, target *Application) int {
	for i, a := range apps {
		if a == target {
			return i
		}
	}
	return -1
}

func isDeleteTag(sym grammar.Symbol) bool {
	return len(sym) >= 6 && sym[:6] == "<$del["
}

func isSubstituteTag(sym grammar.Symbol) bool {
	return len(sym) >= 4 && sym[:4] == "<$!["
}
