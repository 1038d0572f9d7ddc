package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nikbrunner/bmc/internal/browser"
	"github.com/nikbrunner/bmc/internal/logger"
	"github.com/nikbrunner/bmc/internal/model"
	"github.com/nikbrunner/bmc/internal/picker"
	"github.com/nikbrunner/bmc/internal/search"
)

var errNotLoggedIn = errors.New("not logged in, run 'bmc login' first")

func newListCmd(flags *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the bookmarks on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "table", "json", "yaml":
			default:
				return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
			}

			return withEnv(flags, func(e *env) error {
				if err := requireSession(cmd, e); err != nil {
					return err
				}
				list, err := e.store.Bookmarks(cmd.Context())
				if err != nil {
					return fmt.Errorf("load bookmarks: %w", err)
				}
				return printBookmarks(cmd.OutOrStdout(), list, format)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json or yaml")
	return cmd
}

func printBookmarks(w io.Writer, list []model.Bookmark, format string) error {
	if list == nil {
		list = []model.Bookmark{}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(list); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(list) == 0 {
		fmt.Fprintln(w, "No bookmarks.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tURL\tUPDATED")
	for _, b := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.ID, b.Title, b.URL, b.UpdatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

func newAddCmd(flags *globalFlags) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a bookmark",
		Long: `Add a bookmark. A missing title or description is taken from the
page itself.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags, func(e *env) error {
				if err := requireSession(cmd, e); err != nil {
					return err
				}

				fields := model.BookmarkFields{URL: args[0], Title: title, Description: description}
				if fields.Title == "" || fields.Description == "" {
					seed := e.inspector.Seed(cmd.Context(), fields.URL)
					if fields.Title == "" {
						fields.Title = seed.Title
					}
					if fields.Description == "" {
						fields.Description = seed.Description
					}
				}

				b, err := e.store.AddBookmark(cmd.Context(), fields).Unwrap()
				if err != nil {
					return fmt.Errorf("add bookmark: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added bookmark %d: %s\n", b.ID, b.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "bookmark title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "bookmark description")
	return cmd
}

func newDeleteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid bookmark id %q", args[0])
			}

			return withEnv(flags, func(e *env) error {
				if err := requireSession(cmd, e); err != nil {
					return err
				}
				if _, err := e.store.DeleteBookmark(cmd.Context(), id).Unwrap(); err != nil {
					return fmt.Errorf("delete bookmark %d: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted bookmark %d\n", id)
				return nil
			})
		},
	}
}

func newSearchCmd(flags *globalFlags) *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search bookmarks and open the chosen one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			out := cmd.OutOrStdout()

			return withEnv(flags, func(e *env) error {
				if err := requireSession(cmd, e); err != nil {
					return err
				}
				list, err := e.store.Bookmarks(cmd.Context())
				if err != nil {
					return fmt.Errorf("load bookmarks: %w", err)
				}

				results := search.FuzzySearchBookmarks(list, query)
				if len(results) == 0 {
					fmt.Fprintf(out, "No bookmarks found for '%s'\n", query)
					return nil
				}

				if printOnly {
					tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
					for _, r := range results {
						fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Bookmark.ID, r.Bookmark.Title, r.Bookmark.URL)
					}
					return tw.Flush()
				}

				selected := results[0].Bookmark
				action := picker.ActionOpen
				if len(results) > 1 {
					finalModel, err := tea.NewProgram(picker.New(results, query)).Run()
					if err != nil {
						return fmt.Errorf("run picker: %w", err)
					}
					finalPicker := finalModel.(picker.Picker)
					if finalPicker.Cancelled() {
						return nil
					}
					selected = finalPicker.SelectedBookmark()
					action = finalPicker.Action()
				}
				if selected == nil {
					return nil
				}

				if action == picker.ActionYank {
					if err := clipboard.WriteAll(selected.URL); err != nil {
						return fmt.Errorf("copy URL: %w", err)
					}
					fmt.Fprintf(out, "Copied: %s\n", selected.URL)
					return nil
				}

				fmt.Fprintf(out, "Opening: %s\n", selected.Title)
				if err := browser.Open(selected.URL); err != nil {
					e.log.Warn("open url failed", logger.String("url", selected.URL), logger.Error(err))
					return fmt.Errorf("open URL: %w", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "print the matches instead of opening one")
	return cmd
}
