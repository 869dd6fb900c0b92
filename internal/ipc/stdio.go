package ipc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/ssh/terminal"
)

// Stdio is the PromptChannel a command-line invocation of oidcd uses to
// reach the human operator running it. DeliverCode and DeliverDeviceCode
// print the AUTHORIZATION_REQUIRED_WITH_MESSAGE text to Out; RequestPassword
// reads from In, disabling terminal echo when In is a terminal. It is
// grounded on amdonov/lite-idp's cmd/hash.go, which pairs
// golang.org/x/crypto/ssh/terminal.ReadPassword with an explicit prompt
// line printed first.
type Stdio struct {
	Out io.Writer
	In  *os.File // nil defaults to os.Stdin
}

// NewStdio returns a Stdio that writes prompts to out and reads passwords
// from os.Stdin.
func NewStdio(out io.Writer) *Stdio {
	return &Stdio{Out: out}
}

func (s *Stdio) input() *os.File {
	if s.In != nil {
		return s.In
	}
	return os.Stdin
}

// RequestPassword implements PromptChannel. When In is a terminal, it
// disables echo for the duration of the read so the password never
// appears on screen; otherwise (a pipe, e.g. under a test harness or a
// scripted invocation) it reads one newline-terminated line verbatim.
func (s *Stdio) RequestPassword(ctx context.Context, accountName string) (string, error) {
	fmt.Fprintf(s.Out, "%s: account %q needs a password to continue\n", KindAuthorizationRequiredWithMessage, accountName)

	in := s.input()
	fd := int(in.Fd())
	if terminal.IsTerminal(fd) {
		fmt.Fprint(s.Out, "Password: ")
		b, err := terminal.ReadPassword(fd)
		fmt.Fprintln(s.Out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return "", scanner.Err()
	}
	return scanner.Text(), nil
}

// DeliverCode implements PromptChannel for the authorization-code flow's
// out-of-band step.
func (s *Stdio) DeliverCode(ctx context.Context, accountName, authorizationURL string) error {
	_, err := fmt.Fprintf(s.Out, "%s (%s): Visit %s to finish signing in.\n", KindAuthorizationRequiredWithMessage, accountName, authorizationURL)
	return err
}

// DeliverDeviceCode implements PromptChannel for the device flow's
// verification step.
func (s *Stdio) DeliverDeviceCode(ctx context.Context, accountName string, auth DeviceAuthorization) error {
	_, err := fmt.Fprintf(s.Out, "%s (%s): %s\n", KindAuthorizationRequiredWithMessage, accountName, auth.Text())
	return err
}
