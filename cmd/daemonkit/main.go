package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		var exitErr *exitError
		switch {
		case errors.As(err, &exitErr):
			os.Exit(exitErr.code)
		case !errors.Is(err, context.Canceled):
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// exitError ends the process with code after the command already reported
// the failure on stdout.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
