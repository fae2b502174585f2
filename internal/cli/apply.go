package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/ensure-schema/internal/manifest"
	"github.com/roach88/ensure-schema/internal/schema"
	"github.com/roach88/ensure-schema/internal/store"
)

// ApplyOptions holds flags for the apply and plan commands.
type ApplyOptions struct {
	*RootOptions
	DatabaseOptions
	DryRun    bool
	NoHistory bool
}

// ObjectResult is the outcome of one top-level object.
type ObjectResult struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

// ApplyResult is the payload of a successful apply or plan.
type ApplyResult struct {
	RunID   string         `json:"run_id"`
	DryRun  bool           `json:"dry_run"`
	Objects []ObjectResult `json:"objects"`
}

// stateFailed marks the object that stopped the run.
const stateFailed = "failed"

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <manifest>",
		Short: "Converge every object in a manifest",
		Long: `Converge the schema objects described in a manifest, in order.

Each object is checked first. Objects that are not satisfied get their
prerequisites converged, then their corrective statements applied and
verified. The run stops at the first error; statements already applied are
kept.

Example:
  ensure-schema apply --db ./app.db schema.yaml
  ensure-schema apply --db ./app.db --dry-run schema.toml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.Context(), opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)
	opts.addWALFlag(cmd)
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report corrective statements without executing them")
	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "do not record the run in "+store.HistoryTable)

	return cmd
}

// NewPlanCommand creates the plan command, a dry-run apply.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts, DryRun: true, NoHistory: true}

	cmd := &cobra.Command{
		Use:   "plan <manifest>",
		Short: "Show what apply would do without executing anything",
		Long: `Check every object in a manifest and log the corrective statements that
apply would execute. Nothing is written to the database: the journal mode is
left alone and a database file that does not exist is not created.

Objects report "ok" whether they are satisfied or would be changed; run with
--verbose to see the statements.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.Context(), opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)

	return cmd
}

func runApply(ctx context.Context, opts *ApplyOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	runID := newRunID()
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose).With("run_id", runID)

	doc, err := manifest.Load(path)
	if err != nil {
		var verrs manifest.ValidationErrors
		if errors.As(err, &verrs) {
			return formatter.fail(ExitCommandError, ErrCodeInvalid, err, verrs)
		}
		return formatter.fail(ExitCommandError, ErrCodeManifest, err, nil)
	}
	logger.Debug("manifest loaded", "path", path, "objects", len(doc.Objects), "total", doc.Count())

	cfg, err := opts.storeConfig(cmd, opts.DryRun)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, err, nil)
	}

	st, err := store.Open(cfg)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, err, nil)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	logger.Debug("database ready", "path", cfg.Path, "driver", cfg.Driver)

	converger := &schema.Converger{Logger: logger, DryRun: opts.DryRun}

	record := !opts.DryRun && !opts.NoHistory
	if record {
		if _, err := converger.Converge(ctx, store.HistoryNode(), st); err != nil {
			return formatter.fail(ExitFailure, ErrCodeHistory, err, nil)
		}
	}

	result := ApplyResult{RunID: runID, DryRun: opts.DryRun, Objects: []ObjectResult{}}

	for i, node := range doc.Build() {
		state, convergeErr := converger.Converge(ctx, node, st)

		obj := ObjectResult{Name: node.Name, State: state.String()}
		if convergeErr != nil {
			obj.State = stateFailed
			obj.Error = convergeErr.Error()
		}
		result.Objects = append(result.Objects, obj)

		if formatter.Format != "json" {
			fmt.Fprintf(formatter.Writer, "%-8s %s\n", obj.State, obj.Name)
		}

		if record {
			if err := writeRun(ctx, st, runID, i+1, obj); err != nil {
				return formatter.fail(ExitFailure, ErrCodeHistory, err, nil)
			}
		}

		if convergeErr != nil {
			code := ErrCodeMeet
			if schema.IsCheckError(convergeErr) {
				code = ErrCodeCheck
			}
			logger.Error("convergence failed", "error", convergeErr)
			return formatter.fail(ExitFailure, code, convergeErr, result)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(summarize(result))
}

func writeRun(ctx context.Context, st *store.Store, runID string, seq int, obj ObjectResult) error {
	return st.WriteRun(ctx, store.Run{
		RunID:  runID,
		Seq:    int64(seq),
		Name:   obj.Name,
		State:  obj.State,
		Error:  obj.Error,
		Failed: obj.State == stateFailed,
	})
}

// summarize renders the closing line of text output.
func summarize(result ApplyResult) string {
	changed := 0
	for _, obj := range result.Objects {
		if obj.State == schema.StateChanged.String() {
			changed++
		}
	}
	if result.DryRun {
		return fmt.Sprintf("%d object(s) checked (dry run, nothing executed)", len(result.Objects))
	}
	return fmt.Sprintf("%d object(s) converged, %d changed", len(result.Objects), changed)
}

// newRunID returns a time-sortable UUIDv7 tagging every log record of a run.
func newRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

