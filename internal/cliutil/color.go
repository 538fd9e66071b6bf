// Package cliutil carries the small pieces of CLI furniture both
// commands share: colored status lines and a rsaerr.Error to process
// exit code mapping.
package cliutil

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/relayforge/rsaforge/internal/rsaerr"
)

// DisableColor turns every helper below into a plain Sprintf, for
// --nocolor or a non-tty stdout.
func DisableColor() {
	color.NoColor = true
}

func Green(s string) string {
	c := color.New(color.FgHiGreen)
	return c.SprintFunc()(s)
}

func Yellow(s string) string {
	c := color.New(color.FgHiYellow)
	return c.SprintFunc()(s)
}

func Red(s string) string {
	c := color.New(color.FgHiRed)
	return c.SprintFunc()(s)
}

func Cyan(s string) string {
	c := color.New(color.FgHiCyan)
	return c.SprintFunc()(s)
}

// PrintOK writes a green "ok:" status line to w.
func PrintOK(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", Green("ok:"), fmt.Sprintf(format, args...))
}

// PrintErr writes a red "error:" status line to w.
func PrintErr(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", Red("error:"), fmt.Sprintf(format, args...))
}

// ExitCode maps an engine error to a process exit status: 0 for nil,
// otherwise the rsaerr.Kind's ordinal plus one, and 1 for any error that
// did not come from this module's own engines. EntropyUnavailable
// (ordinal 0) therefore shares exit status 1 with those foreign errors;
// every other Kind has a status of its own.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *rsaerr.Error
	if errors.As(err, &e) {
		return int(e.Kind) + 1
	}
	return 1
}
