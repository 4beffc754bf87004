package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Prompter reads answers from the command's input. Secrets are read without
// echo when the input is the terminal.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	stdin  bool
	secret func() ([]byte, error)
}

// NewPrompter creates a prompter for cmd.
func NewPrompter(cmd *cobra.Command) *Prompter {
	in := cmd.InOrStdin()
	p := &Prompter{
		in:  bufio.NewReader(in),
		out: cmd.ErrOrStderr(),
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.stdin = true
		p.secret = func() ([]byte, error) { return term.ReadPassword(int(f.Fd())) }
	}
	return p
}

// Line asks for a visible value.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// Secret asks for a value without echoing it.
func (p *Prompter) Secret(label string) (string, error) {
	if !p.stdin {
		return p.Line(label)
	}
	fmt.Fprintf(p.out, "%s: ", label)
	b, err := p.secret()
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

// ValueOr returns value, prompting for it when empty.
func (p *Prompter) ValueOr(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return p.Line(label)
}

// SecretOr returns value, prompting for it without echo when empty.
func (p *Prompter) SecretOr(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return p.Secret(label)
}

// Confirm asks a yes/no question. Anything but y or yes is no.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.Line(question + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
