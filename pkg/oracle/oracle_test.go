package oracle

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/covgram-repair/pkg/metrics"
)

// TestMain implements the standard os/exec re-exec helper-process trick: when invoked
// with GO_WANT_HELPER_PROCESS=1, this test binary itself acts as a throwaway oracle
// executable instead of running the test suite, so the driver's per-call subprocess
// mode can be exercised without a separately compiled fixture binary.
func TestMain(m *testing.M) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") == "1" {
		helperOracleMain()
		return
	}
	os.Exit(m.Run())
}

// helperOracleMain reads the candidate file named in argv[1] and exits with the code
// named by GO_HELPER_EXIT, so each test can script the verdict it wants.
func helperOracleMain() {
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) > 0 {
		args = args[1:]
	}
	if len(args) < 1 {
		os.Exit(1)
	}
	if _, err := os.ReadFile(args[0]); err != nil {
		os.Exit(1)
	}
	switch os.Getenv("GO_HELPER_EXIT") {
	case "accept":
		os.Exit(0)
	case "incomplete":
		os.Exit(255)
	case "hang":
		time.Sleep(5 * time.Second)
		os.Exit(0)
	default:
		os.Exit(1)
	}
}

// newHelperDriver returns a Driver whose oracle_spec is this same test binary re-exec'd
// with the helper-process env vars set, exiting according to verdict.
func newHelperDriver(t *testing.T, verdict string, timeout time.Duration) *Driver {
	t.Helper()
	exe, err := os.Executable()
	require.NoError(t, err)

	// The driver's per-call mode shells out to a fixed argv[0] with no way to
	// inject env vars, so we wrap it in a tiny shell script instead.
	script, err := os.CreateTemp("", "helper-oracle-*.sh")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(script.Name()) })

	content := fmt.Sprintf("#!/bin/sh\nGO_WANT_HELPER_PROCESS=1 GO_HELPER_EXIT=%s %s -- \"$1\"\n", verdict, exe)
	_, err = script.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, script.Close())
	require.NoError(t, os.Chmod(script.Name(), 0755))

	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	d, err := New(script.Name(), timeout, 16, 0, m, nil)
	require.NoError(t, err)
	return d
}

func TestQueryProcessAccept(t *testing.T) {
	d := newHelperDriver(t, "accept", time.Second)
	assert.Equal(t, Accepted, d.Query("hello"))
	assert.EqualValues(t, 1, d.Stats().Correct)
}

func TestQueryProcessReject(t *testing.T) {
	d := newHelperDriver(t, "reject", time.Second)
	assert.Equal(t, Rejected, d.Query("hello"))
	assert.EqualValues(t, 1, d.Stats().Incorrect)
}

func TestQueryProcessIncomplete(t *testing.T) {
	d := newHelperDriver(t, "incomplete", time.Second)
	assert.Equal(t, Incomplete, d.Query("hel"))
	assert.EqualValues(t, 1, d.Stats().Incomplete)
}

func TestQueryProcessTimeout(t *testing.T) {
	d := newHelperDriver(t, "hang", 50*time.Millisecond)
	assert.Equal(t, Rejected, d.Query("hello"))
}

func TestQueryDuplicateSuppression(t *testing.T) {
	d := newHelperDriver(t, "accept", time.Second)
	assert.Equal(t, Accepted, d.Query("same"))
	assert.Equal(t, Rejected, d.Query("same"))
	assert.EqualValues(t, 1, d.Stats().Runs)
}

func TestQueryMaxCallsBudget(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)
	script, err := os.CreateTemp("", "helper-oracle-*.sh")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(script.Name()) })
	content := fmt.Sprintf("#!/bin/sh\nGO_WANT_HELPER_PROCESS=1 GO_HELPER_EXIT=reject %s -- \"$1\"\n", exe)
	_, err = script.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, script.Close())
	require.NoError(t, os.Chmod(script.Name(), 0755))

	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	d, err := New(script.Name(), time.Second, 16, 2, m, nil)
	require.NoError(t, err)

	assert.Equal(t, Rejected, d.Query("one"))
	assert.Equal(t, Rejected, d.Query("two"))
	assert.Equal(t, Rejected, d.Query("three"))
	assert.EqualValues(t, 2, d.Stats().Runs)
}

func TestQueryDuplicateSuppressionAfterIncomplete(t *testing.T) {
	d := newHelperDriver(t, "incomplete", time.Second)
	assert.Equal(t, Incomplete, d.Query("same"))
	assert.Equal(t, Rejected, d.Query("same"))
}

func TestNewRejectsMissingExecutable(t *testing.T) {
	_, err := New("/no/such/oracle/binary", time.Second, 16, 0, nil, nil)
	assert.Error(t, err)
}

func TestParseServerSpec(t *testing.T) {
	cat, ok := parseServerSpec("re2-server:URL")
	assert.True(t, ok)
	assert.Equal(t, "URL", cat)

	_, ok = parseServerSpec("re2-server:Bogus")
	assert.False(t, ok)

	_, ok = parseServerSpec("/usr/bin/validate")
	assert.False(t, ok)
}

func TestDefaultTimeout(t *testing.T) {
	os.Unsetenv("REPAIR_VALIDATOR_TIMEOUT_MS")
	assert.Equal(t, 6000*time.Millisecond, DefaultTimeout("/usr/bin/validate"))
	assert.Equal(t, 200*time.Millisecond, DefaultTimeout("re2-server:URL"))

	os.Setenv("REPAIR_VALIDATOR_TIMEOUT_MS", "50")
	defer os.Unsetenv("REPAIR_VALIDATOR_TIMEOUT_MS")
	assert.Equal(t, 50*time.Millisecond, DefaultTimeout("/usr/bin/validate"))
}
