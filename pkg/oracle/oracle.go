/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: oracle.go
Description: Oracle driver for the repair engine. Submits candidate strings to an
external validator process and classifies its verdict. Supports per-call subprocess
invocation and a persistent pipe-connected server mode, with duplicate suppression and
live statistics counters.
*/

package oracle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"

	"github.com/kleascm/covgram-repair/pkg/metrics"
)

// Verdict classifies an oracle's response to a candidate string.
type Verdict int

const (
	// Accepted means the oracle exited 0: the candidate is a valid repair.
	Accepted Verdict = iota
	// Rejected means the oracle exited 1, exited with any other code, died by
	// signal, timed out, or the transport otherwise failed.
	Rejected
	// Incomplete means the oracle exited 255: the input ended mid-production and
	// might become acceptable with more characters appended.
	Incomplete
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case Incomplete:
		return "incomplete"
	default:
		return "rejected"
	}
}

// Stats mirrors the oracle run counters the original repairer prints on exit.
type Stats struct {
	Runs       int64
	Correct    int64
	Incorrect  int64
	Incomplete int64
}

// Line renders the final statistics line exactly as the CLI must print it.
func (s Stats) Line() string {
	return fmt.Sprintf("*** Number of required oracle runs: %d correct: %d incorrect: %d incomplete: %d ***",
		s.Runs, s.Correct, s.Incorrect, s.Incomplete)
}

// serverCategories is the fixed set of categories a re2-server: spec may name.
var serverCategories = map[string]bool{
	"Date": true, "Time": true, "URL": true, "ISBN": true,
	"IPv4": true, "IPv6": true, "FilePath": true,
}

const serverPrefix = "re2-server:"

// Driver submits candidate strings to an oracle and classifies the result. It owns a
// duplicate-suppression cache and the run counters; both are read only by its own
// caller, never concurrently, so no locking is required beyond what the persistent
// server's pipes need.
type Driver struct {
	spec       string
	timeout    time.Duration
	cacheSize  int
	maxCalls   int64
	metrics    *metrics.Metrics
	logger     *log.Logger

	stats Stats
	seen  *lru.Cache[string, struct{}]

	server *serverConn // nil in per-call mode
}

// serverConn holds the pipes and process handle for persistent server mode.
type serverConn struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	mu     sync.Mutex
}

func init() {
	// A crashed persistent server closes its end of the pipe; without this the
	// next write would kill the driver with SIGPIPE instead of returning EPIPE.
	ignoreSIGPIPE()
}

// New constructs a Driver for oracleSpec, either an executable path or
// "re2-server:<Category>". cacheSize bounds the duplicate-suppression cache;
// timeout bounds every individual oracle call. maxCalls ceilings the total number of
// oracle invocations the Driver will make over its lifetime; 0 means unlimited.
func New(oracleSpec string, timeout time.Duration, cacheSize int, maxCalls int64, m *metrics.Metrics, logger *log.Logger) (*Driver, error) {
	if cacheSize <= 0 {
		cacheSize = 4096
	}
	seen, err := lru.New[string, struct{}](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("oracle: building duplicate cache: %w", err)
	}
	d := &Driver{
		spec:      oracleSpec,
		timeout:   timeout,
		cacheSize: cacheSize,
		maxCalls:  maxCalls,
		metrics:   m,
		logger:    logger,
		seen:      seen,
	}

	if category, ok := parseServerSpec(oracleSpec); ok {
		conn, err := startServer(category)
		if err != nil {
			return nil, fmt.Errorf("oracle: starting re2-server %s: %w", category, err)
		}
		d.server = conn
		return d, nil
	}

	if err := checkExecutable(oracleSpec); err != nil {
		return nil, err
	}
	return d, nil
}

// parseServerSpec reports whether spec names a persistent server and, if so, its
// category.
func parseServerSpec(spec string) (string, bool) {
	if !strings.HasPrefix(spec, serverPrefix) {
		return "", false
	}
	category := strings.TrimPrefix(spec, serverPrefix)
	if !serverCategories[category] {
		return "", false
	}
	return category, true
}

// checkExecutable verifies path exists and is executable, matching the upfront
// access(exe, X_OK) validation an oracle_spec usage error must surface before any
// candidate is generated.
func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("oracle executable not found or not executable: %s", path)
	}
	if info.Mode()&0111 == 0 {
		return fmt.Errorf("oracle executable not found or not executable: %s", path)
	}
	return nil
}

// Query submits candidate to the oracle, honoring the duplicate-suppression cache
// and the maxCalls budget, and returns its verdict. A repeated candidate (including
// one that previously returned Incomplete) returns Rejected without invoking the
// oracle again. Once maxCalls oracle invocations have been made, every further call
// returns Rejected without invoking the oracle.
func (d *Driver) Query(candidate string) Verdict {
	if _, ok := d.seen.Get(candidate); ok {
		if d.metrics != nil {
			d.metrics.DuplicatesSkipped.Inc()
		}
		return Rejected
	}
	if d.maxCalls > 0 && d.stats.Runs >= d.maxCalls {
		return Rejected
	}
	d.seen.Add(candidate, struct{}{})

	d.stats.Runs++
	if d.metrics != nil {
		d.metrics.OracleCalls.Inc()
	}

	var v Verdict
	if d.server != nil {
		v = d.queryServer(candidate)
	} else {
		v = d.queryProcess(candidate)
	}

	switch v {
	case Accepted:
		d.stats.Correct++
		if d.metrics != nil {
			d.metrics.OracleAccepted.Inc()
		}
	case Incomplete:
		d.stats.Incomplete++
		if d.metrics != nil {
			d.metrics.OracleIncomplete.Inc()
		}
	default:
		d.stats.Incorrect++
		if d.metrics != nil {
			d.metrics.OracleRejected.Inc()
		}
	}
	if d.logger != nil {
		d.logger.Debugf("oracle called: %q -> %s", candidate, v)
	}
	return v
}

// Stats returns a snapshot of the run counters.
func (d *Driver) Stats() Stats { return d.stats }

// Close shuts down a persistent server connection, if any. Per-call mode has nothing
// to release.
func (d *Driver) Close() error {
	if d.server == nil {
		return nil
	}
	return d.server.shutdown()
}

// queryProcess runs the per-call subprocess mode: write the candidate to a uniquely
// named temp file, spawn the oracle with that path as its sole argument, wait with a
// timeout, classify by exit status.
func (d *Driver) queryProcess(candidate string) Verdict {
	path, err := writeTempCandidate(candidate)
	if err != nil {
		return Rejected
	}
	defer os.Remove(path)

	cmd := exec.Command(d.spec, path)
	cmd.Stdout = nil
	cmd.Stderr = nil
	devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err == nil {
		cmd.Stdout = devnull
		cmd.Stderr = devnull
		defer devnull.Close()
	}

	if err := cmd.Start(); err != nil {
		return Rejected
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return classifyExit(cmd, err)
	case <-time.After(d.timeout):
		_ = cmd.Process.Kill()
		<-done
		if d.metrics != nil {
			d.metrics.OracleTimeouts.Inc()
		}
		return Rejected
	}
}

// classifyExit maps a finished subprocess's wait status to a Verdict per the
// exit-code contract: 0 accept, 1 reject, 255 incomplete, anything else (including
// death by signal) reject.
func classifyExit(cmd *exec.Cmd, waitErr error) Verdict {
	if cmd.ProcessState == nil {
		return Rejected
	}
	if status, ok := cmd.ProcessState.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return Rejected
	}
	code := cmd.ProcessState.ExitCode()
	switch code {
	case 0:
		return Accepted
	case 255:
		return Incomplete
	default:
		return Rejected
	}
}

// writeTempCandidate writes candidate to a freshly created temp file with an
// unpredictable name and returns its path.
func writeTempCandidate(candidate string) (string, error) {
	f, err := os.CreateTemp("", "repair-"+uuid.NewString())
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(candidate); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// queryServer implements the persistent server wire protocol: write
// "DATA <n>\n<n bytes>\n", read one reply line, "OK" means accept, anything else
// means reject.
func (d *Driver) queryServer(candidate string) Verdict {
	s := d.server
	s.mu.Lock()
	defer s.mu.Unlock()

	req := fmt.Sprintf("DATA %d\n%s\n", len(candidate), candidate)
	if _, err := io.WriteString(s.stdin, req); err != nil {
		return Rejected
	}
	line, err := s.stdout.ReadString('\n')
	if err != nil {
		return Rejected
	}
	if strings.TrimRight(line, "\n") == "OK" {
		return Accepted
	}
	return Rejected
}

// startServer spawns the persistent re2-server helper for category, connected via
// stdin/stdout pipes.
func startServer(category string) (*serverConn, error) {
	cmd := exec.Command("re2-server", category)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &serverConn{cmd: cmd, stdin: stdin, stdout: bufio.NewReader(stdoutPipe)}, nil
}

// shutdown sends QUIT, drains at most one goodbye line, closes the pipes, and reaps
// the child.
func (s *serverConn) shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = io.WriteString(s.stdin, "QUIT\n")
	_, _ = s.stdout.ReadString('\n')
	_ = s.stdin.Close()
	return s.cmd.Wait()
}

// DefaultTimeout returns the default per-call timeout for oracleSpec: 200ms for
// regex-class (re2-server) oracles, 6000ms for grammar-class (subprocess) oracles,
// overridden by REPAIR_VALIDATOR_TIMEOUT_MS when set and in range [1, 60000].
func DefaultTimeout(oracleSpec string) time.Duration {
	base := 6000 * time.Millisecond
	if _, ok := parseServerSpec(oracleSpec); ok {
		base = 200 * time.Millisecond
	}
	if raw := os.Getenv("REPAIR_VALIDATOR_TIMEOUT_MS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 && v <= 60000 {
			return time.Duration(v) * time.Millisecond
		}
	}
	return base
}
