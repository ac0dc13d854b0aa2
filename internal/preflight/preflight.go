package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"filewatcher/internal/config"
	"filewatcher/internal/lifecycle"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem and credential checks for cfg. The object
// store check needs a live client and is run separately through CheckStore.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckSourceDirectory("Source directory", cfg.Paths.SourceDir),
		CheckCreatableDirectory("Archive directory", cfg.Paths.ArchiveDir),
		CheckCreatableDirectory("State directory", cfg.Paths.StateDir),
		CheckArchiveDevice("Archive filesystem", cfg.Paths.SourceDir, cfg.Paths.ArchiveDir),
	}

	if cfg.RequiresCredentials() {
		results = append(results, CheckCredentialsFile("Credentials file", cfg.Store.CredentialsFile))
	}

	return results
}

// Err returns nil when every result passed, otherwise an error tagged with
// lifecycle.ErrConfiguration listing each failure.
func Err(results []Result) error {
	var failures []string
	for _, r := range results {
		if !r.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return lifecycle.Wrap(lifecycle.ErrConfiguration, "preflight", "", "",
		errors.New(strings.Join(failures, "; ")))
}
