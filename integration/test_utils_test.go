package integration

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// cliResult is the outcome of one mailfold invocation
type cliResult struct {
	stdout   string
	stderr   string
	exitCode int
}

// runMailfold runs the binary with stdin and returns its output and exit code
func runMailfold(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = testEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := cliResult{stdout: stdout.String(), stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		result.exitCode = exitErr.ExitCode()
	default:
		t.Fatalf("running mailfold: %v", err)
	}

	trace(t, "mailfold %v -> exit %d\nstdout: %s\nstderr: %s", args, result.exitCode, result.stdout, result.stderr)
	return result
}

// testEnv passes LOG_LEVEL and LOG_FORMAT through only when set
func testEnv() []string {
	env := []string{"PATH=" + os.Getenv("PATH")}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		env = append(env, "LOG_LEVEL="+logLevel)
	}
	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		env = append(env, "LOG_FORMAT="+logFormat)
	}
	return env
}

// freeAddr returns a loopback address with a port nobody is listening on
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("finding free port: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

// startHTTPServer runs "mailfold serve" on streamable HTTP and waits for /health
func startHTTPServer(t *testing.T, addr string) {
	t.Helper()

	cmd := exec.Command(binaryPath, "serve", "-transport", "streamable-http", "-addr", addr)
	cmd.Env = testEnv()
	if os.Getenv("TRACE") == "1" {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("starting mailfold serve: %v", err)
	}
	t.Cleanup(func() {
		_ = cmd.Process.Signal(os.Interrupt)
		done := make(chan struct{})
		go func() {
			_ = cmd.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			_ = cmd.Process.Kill()
		}
	})

	waitForHealth(t, fmt.Sprintf("http://%s/health", addr))
}

func waitForHealth(t *testing.T, url string) {
	t.Helper()
	for range 50 {
		resp, err := http.Get(url)
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("mailfold failed to become ready after 5 seconds")
}

// trace logs a message if TRACE environment variable is set
func trace(t *testing.T, format string, args ...any) {
	if os.Getenv("TRACE") == "1" {
		t.Logf("TRACE: "+format, args...)
	}
}
