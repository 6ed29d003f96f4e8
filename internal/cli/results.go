package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"timed-exam-service/internal/app"
	"timed-exam-service/internal/config"
	"timed-exam-service/internal/logger"
)

// NewResultsCmd groups operator commands over the configured results store.
func NewResultsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect or clear stored exam results",
	}
	cmd.AddCommand(newResultsListCmd(configPath), newResultsClearCmd(configPath))
	return cmd
}

func newResultsListCmd(configPath *string) *cobra.Command {
	var (
		query  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List results, optionally filtered by name or collegiate number",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
			b, err := openBackends(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer b.Close()

			results, err := b.deps.Results.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			results = app.FilterResults(results, query)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCOLLEGIATE NUMBER\tSCORE\tTYPE\tDATE")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", r.FullName, r.CollegiateNumber, r.Score, r.Type, r.Date.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by name (case-insensitive) or collegiate number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newResultsClearCmd(configPath *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all results and official attempt markers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear results without --yes")
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
			b, err := openBackends(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer b.Close()

			if err := b.deps.Results.Clear(cmd.Context()); err != nil {
				return err
			}
			if err := b.deps.Attempts.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "results and attempt markers cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}
