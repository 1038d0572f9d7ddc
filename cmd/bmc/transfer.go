package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmc/internal/exporter"
	"github.com/nikbrunner/bmc/internal/importer"
	"github.com/nikbrunner/bmc/internal/logger"
	"github.com/nikbrunner/bmc/internal/model"
)

func newImportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.html>",
		Short: "Add the bookmarks of a browser HTML export",
		Long: `Add every bookmark of a Netscape HTML bookmark file (the format all
major browsers export). URLs already on the server are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer file.Close()

			entries, err := importer.ParseHTMLBookmarks(file)
			if err != nil {
				return fmt.Errorf("parse HTML: %w", err)
			}

			return withEnv(flags, func(e *env) error {
				if err := requireSession(cmd, e); err != nil {
					return err
				}
				existing, err := e.store.Bookmarks(cmd.Context())
				if err != nil {
					return fmt.Errorf("load bookmarks: %w", err)
				}

				fresh, skipped := model.FilterNew(existing, importer.Fields(entries))

				added, failed := 0, 0
				for _, fields := range fresh {
					if err := e.store.AddBookmark(cmd.Context(), fields).Error(); err != nil {
						failed++
						e.log.Warn("import bookmark failed", logger.String("url", fields.URL), logger.Error(err))
						fmt.Fprintf(cmd.ErrOrStderr(), "Failed to add %s: %v\n", fields.URL, err)
						continue
					}
					added++
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported %d bookmarks", added)
				if skipped > 0 {
					fmt.Fprintf(out, " (%d duplicates skipped)", skipped)
				}
				fmt.Fprintln(out)

				if failed > 0 {
					return fmt.Errorf("%d bookmarks could not be added", failed)
				}
				return nil
			})
		},
	}
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Write the bookmarks as a browser HTML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath := ""
			if len(args) == 1 {
				outputPath = args[0]
			} else {
				p, err := exporter.DefaultExportPath()
				if err != nil {
					return fmt.Errorf("default export path: %w", err)
				}
				outputPath = p
			}

			return withEnv(flags, func(e *env) error {
				if err := requireSession(cmd, e); err != nil {
					return err
				}
				list, err := e.store.Bookmarks(cmd.Context())
				if err != nil {
					return fmt.Errorf("load bookmarks: %w", err)
				}

				if err := exporter.WriteFile(outputPath, list); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks to %s\n", len(list), outputPath)
				return nil
			})
		},
	}
}
