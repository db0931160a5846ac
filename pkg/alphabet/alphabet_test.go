package alphabet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLenMatchesRange(t *testing.T) {
	// 0x21..0x7E inclusive is 94 bytes, plus tab and newline.
	assert.Equal(t, 96, Len())
}

func TestContainsPrintableAndWhitespace(t *testing.T) {
	assert.True(t, Contains('a'))
	assert.True(t, Contains('!'))
	assert.True(t, Contains('~'))
	assert.True(t, Contains('\t'))
	assert.True(t, Contains('\n'))
	assert.False(t, Contains(' '))
	assert.False(t, Contains(0x00))
	assert.False(t, Contains('\r'))
}

func TestIterationIsDeterministic(t *testing.T) {
	var first, second []byte
	for i := 0; i < Len(); i++ {
		first = append(first, At(i))
	}
	for i := 0; i < Len(); i++ {
		second = append(second, At(i))
	}
	assert.Equal(t, first, second)
}
