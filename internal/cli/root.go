// Package cli implements the careerlift command line, which runs the pipeline
// in-process and prints JSON results.
package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"careerlift-backend/internal/bootstrap"
	"careerlift-backend/internal/pipeline"
	"careerlift-backend/internal/shared/config"
	"careerlift-backend/internal/shared/storage/object"
)

const cliOwner = "cli"

// Deps is what the commands need from the composition root.
type Deps struct {
	Pipeline *pipeline.Service
	Store    object.ObjectStore
}

// Loader builds Deps and returns a cleanup func.
type Loader func(ctx context.Context) (Deps, func() error, error)

// DefaultLoader wires dependencies from the environment.
func DefaultLoader(ctx context.Context) (Deps, func() error, error) {
	app, err := bootstrap.Build(ctx, config.Load())
	if err != nil {
		return Deps{}, nil, errors.Wrap(err, "failed to build application")
	}
	return Deps{Pipeline: app.Pipeline, Store: app.Store}, app.Close, nil
}

// NewRootCmd assembles the command tree.
func NewRootCmd(load Loader) *cobra.Command {
	var pretty bool
	root := &cobra.Command{
		Use:   "careerlift",
		Short: "Resume analysis, learning resources and job matching from the command line",
		Long: `careerlift runs the CareerLift pipeline locally.

Configuration is read from the environment and from .env, the same way the API does.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&pretty, "pretty", true, "Indent JSON output")

	run := func(cmd *cobra.Command, fn func(ctx context.Context, d Deps) (any, error)) error {
		ctx := pipeline.WithOwner(cmd.Context(), cliOwner)
		deps, cleanup, err := load(ctx)
		if err != nil {
			return err
		}
		if cleanup != nil {
			defer func() { _ = cleanup() }()
		}
		out, err := fn(ctx, deps)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), out, pretty)
	}

	root.AddCommand(newAnalyzeCmd(run), newCoursesCmd(run), newJobsCmd(run))
	return root
}

type runner func(cmd *cobra.Command, fn func(ctx context.Context, d Deps) (any, error)) error

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to write output")
	}
	return nil
}
