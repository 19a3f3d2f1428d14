package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"careerlift-backend/internal/extract"
)

func newAnalyzeCmd(run runner) *cobra.Command {
	var (
		goal string
		file string
		text string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a resume against a career goal",
		Long: `Analyze a resume given as a file (PDF, DOCX or plain text) or as inline text.

Examples:
  careerlift analyze --goal "Data Engineer" --file ~/cv.pdf
  careerlift analyze --goal "SRE" --text "$(cat cv.txt)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (text == "") {
				return errors.New("exactly one of --file or --text is required")
			}
			return run(cmd, func(ctx context.Context, d Deps) (any, error) {
				if text != "" {
					if err := d.Pipeline.CheckResumeLength(text); err != nil {
						return nil, errors.Wrap(err, "resume text rejected")
					}
					res, err := d.Pipeline.Analyze(ctx, text, goal)
					return res, errors.Wrap(err, "analysis failed")
				}
				return analyzeFile(ctx, d, file, goal)
			})
		},
	}
	cmd.Flags().StringVar(&goal, "goal", "", "Target career goal")
	cmd.Flags().StringVar(&file, "file", "", "Resume file to extract and analyze")
	cmd.Flags().StringVar(&text, "text", "", "Resume text to analyze")
	_ = cmd.MarkFlagRequired("goal")
	return cmd
}

func analyzeFile(ctx context.Context, d Deps, path, goal string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	name := filepath.Base(path)
	obj, err := d.Store.Save(ctx, cliOwner, name, f)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stage resume")
	}
	out, err := d.Pipeline.ExtractAndAnalyze(ctx, extract.Upload{
		Key:      obj.Key,
		FileName: obj.FileName,
		MIMEType: strings.TrimSpace(obj.SniffedType),
	}, goal)
	if err != nil {
		return nil, errors.Wrap(err, "analysis failed")
	}
	return out, nil
}
