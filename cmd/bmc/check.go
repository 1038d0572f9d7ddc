package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmc/internal/culler"
	"github.com/nikbrunner/bmc/internal/logger"
)

func newCheckCmd(flags *globalFlags) *cobra.Command {
	var (
		showAll    bool
		deleteDead bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check every bookmarked URL for dead links",
		Long: `Request every bookmarked URL concurrently and report those that are
dead (404 or 410) or unreachable. 404s on domains listed in
checkExcludeDomains count as unreachable, since they are often private.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags, func(e *env) error {
				if err := requireSession(cmd, e); err != nil {
					return err
				}
				list, err := e.store.Bookmarks(cmd.Context())
				if err != nil {
					return fmt.Errorf("load bookmarks: %w", err)
				}

				stderr := cmd.ErrOrStderr()
				results := culler.CheckURLs(cmd.Context(), list, culler.Params{
					Concurrency:    e.cfg.CheckConcurrency,
					Timeout:        e.cfg.Timeout.Std(),
					ExcludeDomains: e.cfg.CheckExcludeDomains,
					OnProgress: func(completed, total int) {
						fmt.Fprintf(stderr, "\rChecking %d/%d", completed, total)
						if completed == total {
							fmt.Fprintln(stderr)
						}
					},
				})

				out := cmd.OutOrStdout()
				shown := results
				if !showAll {
					shown = append(culler.Filter(results, culler.Dead), culler.Filter(results, culler.Unreachable)...)
				}
				if err := printResults(out, shown); err != nil {
					return err
				}

				dead := culler.Filter(results, culler.Dead)
				fmt.Fprintf(out, "%d healthy, %d dead, %d unreachable\n",
					len(culler.Filter(results, culler.Healthy)),
					len(dead),
					len(culler.Filter(results, culler.Unreachable)))

				if !deleteDead {
					return nil
				}
				failed := 0
				for _, r := range dead {
					if err := e.store.DeleteBookmark(cmd.Context(), r.Bookmark.ID).Error(); err != nil {
						failed++
						e.log.Warn("delete dead bookmark failed", logger.Int64("id", r.Bookmark.ID), logger.Error(err))
						continue
					}
				}
				fmt.Fprintf(out, "Deleted %d dead bookmarks\n", len(dead)-failed)
				if failed > 0 {
					return fmt.Errorf("%d dead bookmarks could not be deleted", failed)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "list healthy bookmarks too")
	cmd.Flags().BoolVar(&deleteDead, "delete", false, "delete dead bookmarks after the check")
	return cmd
}

func printResults(w io.Writer, results []culler.Result) error {
	if len(results) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tID\tTITLE\tURL\tDETAIL")
	for _, r := range results {
		detail := r.Error
		if r.StatusCode != 0 {
			detail = fmt.Sprintf("HTTP %d", r.StatusCode)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", r.Status, r.Bookmark.ID, r.Bookmark.Title, r.Bookmark.URL, detail)
	}
	return tw.Flush()
}
