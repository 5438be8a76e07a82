package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when the input ends before an answer.
var ErrNoInput = errors.New("no input")

// Prompter asks questions on a terminal. When the input is not a terminal
// passphrases are read as plain lines, which keeps scripted use working.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int // -1 when in is not a terminal
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
	}
	return p
}

// Interactive reports whether the prompter reads from a terminal.
func (p *Prompter) Interactive() bool {
	return p.fd >= 0
}

func (p *Prompter) line() (string, error) {
	s, err := p.in.ReadString('\n')
	if err == io.EOF && s != "" {
		err = nil
	}
	if err == io.EOF {
		return "", ErrNoInput
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Confirm asks a yes/no question. Anything but y/yes is a no.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/n] (n): ", question)
	answer, err := p.line()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Ask reads a free-form answer.
func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	answer, err := p.line()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// Password reads a passphrase without echo.
func (p *Prompter) Password(prompt string) ([]byte, error) {
	fmt.Fprint(p.out, prompt)
	if p.fd < 0 {
		s, err := p.line()
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	}
	password, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// NewPassword reads a passphrase twice and checks both entries match.
func (p *Prompter) NewPassword(prompt string) ([]byte, error) {
	first, err := p.Password(prompt)
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, errors.New("passphrase must not be empty")
	}
	second, err := p.Password("Retype the passphrase: ")
	if err != nil {
		return nil, err
	}
	if string(first) != string(second) {
		return nil, errors.New("passphrases do not match")
	}
	return first, nil
}
