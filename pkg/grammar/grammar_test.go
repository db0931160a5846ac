package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStringShape(t *testing.T) {
	g := FromString([]byte("ab"))

	start := g.Productions("<start>")
	require.Len(t, start, 1)
	assert.Equal(t, []Symbol{"<c0>", "<c1>", "<c2>"}, start[0])

	assert.Equal(t, [][]Symbol{{"a"}}, g.Productions("<c0>"))
	assert.Equal(t, [][]Symbol{{"b"}}, g.Productions("<c1>"))
	assert.Equal(t, [][]Symbol{{Sentinel}}, g.Productions("<c2>"))
}

func TestCoveringProducesFourAlternativesPerPosition(t *testing.T) {
	g := FromString([]byte("ab"))
	cg := g.Covering(false)

	for _, nt := range []Symbol{"<c0>", "<c1>"} {
		prods := cg.Productions(nt)
		require.Len(t, prods, 4, "position %s must have exactly 4 alternatives", nt)
	}

	// sentinel position has exactly one epsilon alternative when tail insert is off.
	tail := cg.Productions("<c2>")
	require.Len(t, tail, 1)
	assert.Empty(t, tail[0])
}

func TestCoveringTailInsertOptional(t *testing.T) {
	g := FromString([]byte("a"))
	cg := g.Covering(true)

	tail := cg.Productions("<c1>")
	require.Len(t, tail, 2)
	assert.Empty(t, tail[0])
	assert.Equal(t, []Symbol{Any}, tail[1])
}

func TestCoveringMatchBranchIsFirst(t *testing.T) {
	g := FromString([]byte("x"))
	cg := g.Covering(false)

	prods := cg.Productions("<c0>")
	require.Len(t, prods, 4)
	assert.Equal(t, []Symbol{"x"}, prods[0])
	assert.Equal(t, []Symbol{DelTag("x")}, prods[1])
	assert.Equal(t, []Symbol{Any, "x"}, prods[2])
	assert.Equal(t, []Symbol{SubTag("x")}, prods[3])
}

func TestEditsOrderingAndClassification(t *testing.T) {
	g := FromString([]byte("ab"))
	cg := g.Covering(false)
	edits := cg.Edits()

	// 3 non-match alternatives at each of 2 positions, sentinel contributes none.
	require.Len(t, edits, 6)
	for i, e := range edits {
		if i > 0 {
			assert.LessOrEqual(t, edits[i-1].LHS, e.LHS)
		}
		assert.True(t, e.Kind == EditDelete || e.Kind == EditInsert || e.Kind == EditSubstitute)
	}
}

func TestEditNeedsChar(t *testing.T) {
	assert.False(t, Edit{Kind: EditDelete}.NeedsChar())
	assert.True(t, Edit{Kind: EditInsert}.NeedsChar())
	assert.True(t, Edit{Kind: EditSubstitute}.NeedsChar())
}
