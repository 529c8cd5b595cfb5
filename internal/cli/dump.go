package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"scrollgrid/internal/config"
	"scrollgrid/internal/coordinator"
	"scrollgrid/internal/domain"
	"scrollgrid/internal/eventbus"
	"scrollgrid/internal/fetch"
	"scrollgrid/internal/provider"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type dumpOptions struct {
	format  string
	search  string
	max     int
	timeout time.Duration
}

// dumpResult is the document printed by dump
type dumpResult struct {
	Search string        `json:"search,omitempty" yaml:"search,omitempty"`
	Sort   string        `json:"sort" yaml:"sort"`
	Total  int           `json:"total" yaml:"total"`
	Count  int           `json:"count" yaml:"count"`
	Items  []domain.Item `json:"items" yaml:"items"`
}

// newDumpCmd creates the 'dump' command
func newDumpCmd(opts *rootOptions) *cobra.Command {
	var (
		flags sourceFlags
		dump  dumpOptions
	)

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Fetch the whole collection page by page and print it",
		Long: `Scroll through the collection without a terminal UI. Each page is
requested the way the browser requests it as rows come into view, until
the reported total is reached. The accumulated list is printed as JSON
or YAML.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dump.format != FormatJSON && dump.format != FormatYAML {
				return fmt.Errorf("invalid --format %q: must be %s or %s", dump.format, FormatJSON, FormatYAML)
			}
			if dump.max < 0 {
				return fmt.Errorf("--max must not be negative")
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			logger, err := opts.stderrLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			source, err := newProvider(cfg, logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if dump.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, dump.timeout)
				defer cancel()
			}

			result, err := runDump(ctx, source, cfg, dump, logger)
			if err != nil {
				return err
			}
			return writeDump(cmd.OutOrStdout(), dump.format, result)
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&dump.format, "format", "o", FormatJSON, "Output format: json or yaml")
	cmd.Flags().StringVar(&dump.search, "search", "", "Search term")
	cmd.Flags().IntVar(&dump.max, "max", 0, "Stop after this many items (0 = all)")
	cmd.Flags().DurationVar(&dump.timeout, "timeout", 0, "Give up after this long (0 = no limit)")
	return cmd
}

// runDump drives a coordinator the way a viewport scrolling one page past
// the loaded rows would, until no further pages are fetched
func runDump(ctx context.Context, source provider.Provider, cfg *config.Config, opts dumpOptions, logger zerolog.Logger) (*dumpResult, error) {
	bus := eventbus.NewWithLogger(logger)
	defer bus.Close()

	events := make(chan eventbus.DomainEvent, 16)
	done := make(chan struct{})
	defer close(done)
	forward := func(e eventbus.DomainEvent) {
		select {
		case events <- e:
		case <-done:
		}
	}
	defer bus.Subscribe(eventbus.EventResultsSettled, forward)()
	defer bus.Subscribe(eventbus.EventFetchFailed, forward)()

	sort := cfg.SortSpec()
	coord, err := coordinator.New(fetch.NewCoordinator(source, cfg.Provider.SearchField), bus, coordinator.Options{
		PageSize:    cfg.PageSize,
		InitialSort: sort,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	defer coord.Close()

	coord.ApplyFilters(coordinator.FilterChange{SearchTerm: opts.search, Sort: sort})

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("dump interrupted: %w", ctx.Err())

		case e := <-events:
			switch ev := e.(type) {
			case domain.FetchFailedEvent:
				return nil, fmt.Errorf("fetch %s failed: %w", ev.Window, ev.Err)

			case domain.ResultsSettledEvent:
				limited := opts.max > 0 && len(ev.Items) >= opts.max
				if !ev.Done && !limited {
					coord.ObserveRange(domain.Range{Start: 0, End: len(ev.Items) + cfg.PageSize})
					continue
				}

				items := ev.Items
				if limited {
					items = items[:opts.max]
				}
				logger.Debug().Int("items", len(items)).Int("total", ev.Total).Msg("dump complete")
				return &dumpResult{
					Search: opts.search,
					Sort:   sort.String(),
					Total:  ev.Total,
					Count:  len(items),
					Items:  items,
				}, nil
			}
		}
	}
}

func writeDump(w io.Writer, format string, result *dumpResult) error {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}
