package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"filewatcher/internal/objectstore"
	"filewatcher/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var skipStore bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify directories, credentials, and bucket access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			if !skipStore {
				store, err := objectstore.Open(cmd.Context(), objectstore.OptionsFromConfig(cfg))
				if err != nil {
					results = append(results, preflight.Result{Name: "Object store", Detail: err.Error()})
				} else {
					results = append(results, preflight.CheckStore(cmd.Context(), store))
					_ = store.Close()
				}
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, yesNo(r.Passed), strings.TrimSpace(r.Detail)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{{title: "Check"}, {title: "Passed"}, {title: "Detail", maxWidth: 80}}, rows, nil))
			return preflight.Err(results)
		},
	}

	cmd.Flags().BoolVar(&skipStore, "skip-store", false, "Skip the bucket reachability check")
	return cmd
}
