package oracle

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
)

// Executor abstracts the oracle subprocess so tests can swap in canned
// responses.
type Executor interface {
	// Run executes name with args in dir, returning captured stdout and
	// stderr.
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)
	// LookPath reports whether name resolves to an executable.
	LookPath(name string) error
}

// NewCommandExecutor returns the production executor backed by os/exec.
func NewCommandExecutor() Executor {
	return commandExecutor{}
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = scrubEnv(os.Environ())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func (commandExecutor) LookPath(name string) error {
	_, err := exec.LookPath(name)
	return err
}

// scrubEnv drops the oracle CLI's nesting-detection variables so it does not
// refuse to run under another instance of itself.
func scrubEnv(env []string) []string {
	out := make([]string, 0, len(env))
	for _, kv := range env {
		if strings.HasPrefix(kv, "CLAUDECODE") {
			continue
		}
		out = append(out, kv)
	}
	return out
}
