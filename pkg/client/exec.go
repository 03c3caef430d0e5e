//go:build !kube_noclient

package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
)

// execCommand is a test seam for stubbing command creation in tests.
var execCommand = exec.CommandContext

// Command represents a credential plugin invocation.
type Command interface {
	Output() ([]byte, error)
	SetStderr(w io.Writer)
	SetStdin(r io.Reader)
	SetEnv(env []string)
}

// Executor creates credential plugin commands.
type Executor interface {
	Command(ctx context.Context, name string, args []string, validators ...ExecValidator) (Command, error)
}

// execCmd wraps exec.Cmd to implement Command.
type execCmd struct {
	cmd *exec.Cmd
}

func (c *execCmd) Output() ([]byte, error) { return c.cmd.Output() }
func (c *execCmd) SetStderr(w io.Writer)   { c.cmd.Stderr = w }
func (c *execCmd) SetStdin(r io.Reader)    { c.cmd.Stdin = r }
func (c *execCmd) SetEnv(env []string)     { c.cmd.Env = append(os.Environ(), env...) }

// osExecutor is the production implementation using os/exec.
type osExecutor struct{}

func (osExecutor) Command(ctx context.Context, name string, args []string, validators ...ExecValidator) (Command, error) {
	spec := ExecSpec{Name: name, Args: args}
	for _, validate := range validators {
		if err := validate(spec); err != nil {
			return nil, err
		}
	}
	return &execCmd{cmd: execCommand(ctx, name, args...)}, nil
}

// ExecSpec is the command line a validator inspects.
type ExecSpec struct {
	Name string
	Args []string
}

// ExecValidator rejects a command line before it runs.
type ExecValidator func(ExecSpec) error

var (
	ErrExecNotAllowed   = errors.New("exec: binary not allowed")
	ErrExecShellMeta    = errors.New("exec: shell metacharacters not allowed")
	ErrExecControlChars = errors.New("exec: control characters not allowed")
)

// AllowlistBins only admits the named binaries.
func AllowlistBins(allowed ...string) ExecValidator {
	set := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		set[name] = struct{}{}
	}
	return func(spec ExecSpec) error {
		if _, ok := set[spec.Name]; !ok {
			return ErrExecNotAllowed
		}
		return nil
	}
}

// NoShellMeta rejects arguments carrying shell metacharacters.
func NoShellMeta() ExecValidator {
	return func(spec ExecSpec) error {
		for _, arg := range spec.Args {
			if strings.ContainsAny(arg, "&|;<>()$`\\") {
				return ErrExecShellMeta
			}
		}
		return nil
	}
}

// NoControlChars rejects arguments carrying line breaks or tabs.
func NoControlChars() ExecValidator {
	return func(spec ExecSpec) error {
		for _, arg := range append([]string{spec.Name}, spec.Args...) {
			if strings.ContainsAny(arg, "\r\n\t") {
				return ErrExecControlChars
			}
		}
		return nil
	}
}

// runPlugin runs a credential plugin with input on stdin and returns stdout.
// Stderr is captured so a failure can report it.
func runPlugin(ctx context.Context, e Executor, name string, args, env []string, input []byte) ([]byte, error) {
	cmd, err := e.Command(ctx, name, args, NoControlChars(), NoShellMeta())
	if err != nil {
		return nil, err
	}
	var stderr bytes.Buffer
	cmd.SetStderr(&stderr)
	cmd.SetStdin(bytes.NewReader(input))
	cmd.SetEnv(env)

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.Join(err, errors.New(msg))
		}
		return nil, err
	}
	return out, nil
}
