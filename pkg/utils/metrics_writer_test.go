package utils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMetricsResultCreatesFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(wd)

	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))

	path, err := WriteMetricsResult("search", "1.0.0", map[string]int{"runs": 3})
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, path, "metrics/search")
}
