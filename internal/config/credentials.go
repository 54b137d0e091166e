package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Environment variables holding the Odoo login
const (
	EnvUser     = "ODOOCLIUSER"
	EnvPassword = "ODOOCLIPASS"
)

// Credentials is an Odoo username/password pair
type Credentials struct {
	Username string
	Password string
}

// Prompter asks the user for missing credentials
type Prompter interface {
	Username() (string, error)
	Password() (string, error)
}

// ResolveCredentials picks the login in precedence order: --user flag (password
// prompted), ODOOCLIUSER+ODOOCLIPASS, ODOOCLIUSER alone (password prompted),
// and finally prompting for both.
func ResolveCredentials(flagUser string, getenv func(string) string, prompt Prompter) (Credentials, error) {
	var creds Credentials
	var err error

	envUser := getenv(EnvUser)
	envPassword := getenv(EnvPassword)

	switch {
	case flagUser != "":
		creds.Username = flagUser
	case envUser != "" && envPassword != "":
		return Credentials{Username: envUser, Password: envPassword}, nil
	case envUser != "":
		creds.Username = envUser
	default:
		creds.Username, err = prompt.Username()
		if err != nil {
			return Credentials{}, fmt.Errorf("failed to read username: %w", err)
		}
	}

	creds.Password, err = prompt.Password()
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read password: %w", err)
	}

	return creds, nil
}

// TerminalPrompter reads credentials from the controlling terminal
type TerminalPrompter struct {
	In  *os.File
	Out io.Writer

	// reader is shared by both prompts
	reader *bufio.Reader
}

// NewTerminalPrompter creates a prompter on stdin/stderr
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

// Username prompts for the username with echo
func (p *TerminalPrompter) Username() (string, error) {
	fmt.Fprint(p.Out, "Username: ")
	line, err := p.lineReader().ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Password prompts for the password without echo
func (p *TerminalPrompter) Password() (string, error) {
	fmt.Fprint(p.Out, "Password: ")
	fd := int(p.In.Fd())
	if !term.IsTerminal(fd) {
		line, err := p.lineReader().ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(p.Out)
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func (p *TerminalPrompter) lineReader() *bufio.Reader {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	return p.reader
}
