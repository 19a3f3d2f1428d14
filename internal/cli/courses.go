package cli

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newCoursesCmd(run runner) *cobra.Command {
	var (
		role   string
		skills []string
	)
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "Discover courses and practice opportunities for a role",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(role) == "" {
				return errors.New("--role is required")
			}
			return run(cmd, func(ctx context.Context, d Deps) (any, error) {
				out, err := d.Pipeline.DiscoverAndStructure(ctx, role, skills)
				return out, errors.Wrap(err, "resource discovery failed")
			})
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "Target role")
	cmd.Flags().StringSliceVar(&skills, "skills", nil, "Skills to focus on (comma separated)")
	return cmd
}
