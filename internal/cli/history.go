package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ensure-schema/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DatabaseOptions
	RunID string
}

// HistoryResult is the payload of the history command.
type HistoryResult struct {
	RunID string      `json:"run_id"`
	Runs  []store.Run `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the recorded outcome of an apply run",
		Long: `Print the objects converged by one apply run, in order. Defaults to the
most recent run recorded in the database.

Example:
  ensure-schema history --db ./app.db
  ensure-schema history --db ./app.db --run 0190f3c2-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to show (default: latest)")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := opts.storeConfig(cmd, true)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, err, nil)
	}

	st, err := store.Open(cfg)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, err, nil)
	}
	defer st.Close()

	runID := opts.RunID
	if runID == "" {
		runID, err = st.LatestRunID(ctx)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeHistory, err, nil)
		}
		if runID == "" {
			return formatter.fail(ExitCommandError, ErrCodeHistory, fmt.Errorf("no runs recorded"), nil)
		}
	}

	runs, err := st.ReadRuns(ctx, runID)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeHistory, err, nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(HistoryResult{RunID: runID, Runs: runs})
	}

	fmt.Fprintf(formatter.Writer, "run %s\n", runID)
	for _, r := range runs {
		fmt.Fprintf(formatter.Writer, "%3d %-8s %s\n", r.Seq, r.State, r.Name)
		if r.Error != "" {
			fmt.Fprintf(formatter.Writer, "    %s\n", r.Error)
		}
	}
	return nil
}
