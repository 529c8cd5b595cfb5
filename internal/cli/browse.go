package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"scrollgrid/internal/coordinator"
	"scrollgrid/internal/eventbus"
	"scrollgrid/internal/fetch"
	"scrollgrid/internal/logging"
	"scrollgrid/internal/ui"
)

// e2eEnv makes browse announce readiness for the end-to-end harness
const e2eEnv = "SCROLLGRID_E2E_TEST"

// newBrowseCmd creates the 'browse' command
func newBrowseCmd(opts *rootOptions) *cobra.Command {
	var flags sourceFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the collection in the terminal",
		Long: `Open the interactive list browser.

Rows are fetched page by page as they scroll into view. Press / to
search, s to change the sort column, S to flip its direction, r to
reload and ? for all keys. Logs go to the configured log file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}

			// the terminal belongs to the UI, so logs go to a file
			logger, closer, err := logging.OpenFile(cfg.Log.File, cfg.Log.Level)
			if err != nil {
				return err
			}
			defer closer.Close()

			bus := eventbus.NewWithLogger(logger)
			defer bus.Close()

			source, err := newProvider(cfg, logger)
			if err != nil {
				return err
			}

			coord, err := coordinator.New(fetch.NewCoordinator(source, cfg.Provider.SearchField), bus, coordinator.Options{
				PageSize:    cfg.PageSize,
				InitialSort: cfg.SortSpec(),
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			defer coord.Close()
			coord.Attach(bus)

			model := ui.NewModel(bus, ui.Options{
				InitialSort:     cfg.SortSpec(),
				ShowDescription: cfg.UI.ShowDescription,
			})
			forwarder := ui.NewForwarder(bus, logger)
			defer forwarder.Close()

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			model.SetProgram(p)
			go forwarder.Run(p.Send)

			if os.Getenv(e2eEnv) == "1" {
				fmt.Fprintln(cmd.OutOrStdout(), "__READY__")
			}

			logger.Info().
				Str("provider", cfg.Provider.Kind).
				Int("page_size", cfg.PageSize).
				Str("sort", cfg.SortSpec().String()).
				Msg("starting browser")

			if _, err := p.Run(); err != nil {
				logger.Error().Err(err).Msg("error running program")
				return fmt.Errorf("error running program: %w", err)
			}
			logger.Info().Msg("browser exited normally")
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}
