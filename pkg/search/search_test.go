package search

import (
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/covgram-repair/pkg/metrics"
	"github.com/kleascm/covgram-repair/pkg/oracle"
)

// acceptorScriptPath writes a throwaway "oracle" shell script that accepts any
// candidate string equal to want and rejects everything else, and returns its path.
func acceptorScriptPath(t *testing.T, want string) string {
	t.Helper()
	f, err := os.CreateTemp("", "search-oracle-*.sh")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(f.Name()) })

	script := "#!/bin/sh\n" +
		"content=$(cat \"$1\")\n" +
		"if [ \"$content\" = \"" + want + "\" ]; then exit 0; else exit 1; fi\n"
	_, err = f.WriteString(script)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, os.Chmod(f.Name(), 0755))
	return f.Name()
}

func newEngine(t *testing.T, want string, cfg Config) *Engine {
	t.Helper()
	path := acceptorScriptPath(t, want)
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	d, err := oracle.New(path, time.Second, 64, 0, m, nil)
	require.NoError(t, err)
	return New(d, m, cfg)
}

func TestRunZeroEditAccepted(t *testing.T) {
	e := newEngine(t, "hello", Config{MaxEdits: 5, MaxCharEdits: 1})
	res := e.Run([]byte("hello"))
	require.True(t, res.Found)
	assert.Equal(t, "hello", res.Repaired)
	assert.EqualValues(t, 1, res.Stats.Runs)
}

func TestRunSingleDeleteRepair(t *testing.T) {
	e := newEngine(t, "hello", Config{MaxEdits: 5, MaxCharEdits: 1})
	res := e.Run([]byte("hellxo"))
	require.True(t, res.Found)
	assert.Equal(t, "hello", res.Repaired)
}

func TestRunSingleInsertRepair(t *testing.T) {
	e := newEngine(t, "hello", Config{MaxEdits: 5, MaxCharEdits: 1})
	res := e.Run([]byte("helo"))
	require.True(t, res.Found)
	assert.Equal(t, "hello", res.Repaired)
}

func TestRunSingleSubstituteRepair(t *testing.T) {
	e := newEngine(t, "hello", Config{MaxEdits: 5, MaxCharEdits: 1})
	res := e.Run([]byte("hellx"))
	require.True(t, res.Found)
	assert.Equal(t, "hello", res.Repaired)
}

func TestRunExhaustionReturnsNotFound(t *testing.T) {
	e := newEngine(t, "unreachable-target-string", Config{MaxEdits: 1, MaxCharEdits: 1})
	res := e.Run([]byte("xy"))
	assert.False(t, res.Found)
}

func TestRunIsDeterministic(t *testing.T) {
	cfg := Config{MaxEdits: 5, MaxCharEdits: 1}
	e1 := newEngine(t, "hello", cfg)
	res1 := e1.Run([]byte("helo"))

	e2 := newEngine(t, "hello", cfg)
	res2 := e2.Run([]byte("helo"))

	assert.Equal(t, res1.Repaired, res2.Repaired)
	assert.Equal(t, res1.Found, res2.Found)
}

func TestExhaustionMessage(t *testing.T) {
	assert.Equal(t, "No fix with up to 5 edits found.", ExhaustionMessage(5))
}
