package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmc/internal/model"
	"github.com/nikbrunner/bmc/internal/tabseed"
	"github.com/nikbrunner/bmc/internal/tui"
)

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	var (
		seedURL       string
		fromClipboard bool
	)

	root := &cobra.Command{
		Use:   "bmc",
		Short: "Terminal client for a remote bookmark service",
		Long: `bmc keeps a local view of the bookmarks stored on a bookmark server.

Run without arguments for the interactive browser. --url or --clipboard
prefill the add dialog with the title and description of a page.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags, func(e *env) error {
				return runTUI(cmd.Context(), e, seedURL, fromClipboard)
			})
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.config/bmc/config.json)")
	root.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "bookmark server URL, overrides the config")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	root.Flags().StringVar(&seedURL, "url", "", "prefill the add dialog from this page")
	root.Flags().BoolVar(&fromClipboard, "clipboard", false, "prefill the add dialog from the URL in the clipboard")
	root.MarkFlagsMutuallyExclusive("url", "clipboard")

	root.AddCommand(
		newLoginCmd(flags),
		newLogoutCmd(flags),
		newWhoamiCmd(flags),
		newListCmd(flags),
		newAddCmd(flags),
		newDeleteCmd(flags),
		newSearchCmd(flags),
		newImportCmd(flags),
		newExportCmd(flags),
		newCheckCmd(flags),
	)

	return root
}

func runTUI(ctx context.Context, e *env, seedURL string, fromClipboard bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if fromClipboard {
		u, err := tabseed.ClipboardURL()
		if err != nil {
			return err
		}
		seedURL = u
	}

	var seed *model.TabSeed
	if seedURL != "" {
		s := e.inspector.Seed(ctx, seedURL)
		seed = &s
	}

	app := tui.NewApp(tui.AppParams{
		Store:   e.store,
		Notices: e.notices,
		Seed:    seed,
		Context: ctx,
		Logger:  e.log,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
