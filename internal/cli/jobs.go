package cli

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"careerlift-backend/internal/jobmatch"
)

func newJobsCmd(run runner) *cobra.Command {
	var f jobmatch.Filter
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Match job postings by skills, location and title",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, d Deps) (any, error) {
				jobs, err := d.Pipeline.MatchJobs(ctx, f)
				if err != nil {
					return nil, errors.Wrap(err, "job match failed")
				}
				return map[string]any{"jobs": jobs, "count": len(jobs)}, nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&f.Skills, "skills", nil, "Skills (comma separated); any one matches")
	cmd.Flags().StringVar(&f.Location, "location", "", "Location substring")
	cmd.Flags().StringVar(&f.JobTitle, "title", "", "Job title substring")
	cmd.Flags().IntVar(&f.Limit, "limit", jobmatch.DefaultLimit, "Maximum results")
	return cmd
}
