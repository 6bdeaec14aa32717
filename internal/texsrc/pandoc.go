// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package texsrc

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pdiddy/labmate/pkg/errdefs"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunOutput(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunOutput(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

var defaultExec executor = &osExecutor{}

// Pandoc runs the pandoc binary to convert flattened LaTeX to Markdown.
type Pandoc struct {
	// Path is the pandoc binary, resolved on PATH when relative.
	Path string

	exec executor
}

// NewPandoc returns a runner for the given binary path; empty means
// "pandoc" on PATH.
func NewPandoc(path string) *Pandoc {
	if path == "" {
		path = "pandoc"
	}
	return &Pandoc{Path: path, exec: defaultExec}
}

// Available reports whether the pandoc binary can be resolved.
func (p *Pandoc) Available() bool {
	_, err := p.exec.LookPath(p.Path)
	return err == nil
}

// Convert runs pandoc on the LaTeX file at texPath and returns Markdown.
// A missing binary maps to ErrNotFound; a conversion failure carries
// pandoc's stderr in the message.
func (p *Pandoc) Convert(ctx context.Context, texPath string) (string, error) {
	const op = "pandoc convert"

	if _, err := p.exec.LookPath(p.Path); err != nil {
		return "", errdefs.New(errdefs.ErrNotFound, op, "pandoc binary %q not found on PATH", p.Path)
	}

	stdout, stderr, err := p.exec.RunOutput(ctx, p.Path, "-f", "latex", "-t", "markdown", "--wrap=none", texPath)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = err.Error()
		}
		return "", errdefs.New(errdefs.ErrFormat, op, "%s", msg)
	}
	return string(stdout), nil
}
