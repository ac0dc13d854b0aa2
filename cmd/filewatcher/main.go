package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"filewatcher/internal/lifecycle"
)

// Exit codes: 1 for runtime failures, 2 when configuration or preflight
// checks reject the setup before any file is touched.
const (
	exitFailure = 1
	exitConfig  = 2
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(reportError(err))
	}
}

func reportError(err error) int {
	if errors.Is(err, context.Canceled) {
		return exitFailure
	}
	fmt.Fprintln(os.Stderr, "filewatcher:", err)
	if hint := lifecycle.Hint(err); errors.Is(err, lifecycle.ErrConfiguration) {
		fmt.Fprintln(os.Stderr, "hint:", hint)
		return exitConfig
	}
	return exitFailure
}
