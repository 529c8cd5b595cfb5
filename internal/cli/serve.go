package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"scrollgrid/internal/metrics"
	"scrollgrid/internal/mockserver"
)

// newServeCmd creates the 'serve' command
func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr  string
		items int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mock paged HTTP server",
		Long: `Serve a generated dataset over HTTP with paging, search and sort.

Endpoints:
  GET /api/v1/servers  - one page of items
  GET /healthz         - liveness
  GET /metrics         - Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("items") {
				cfg.Memory.Items = items
			}

			logger, err := opts.stderrLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			collector := metrics.New(reg)

			srv := mockserver.New(newMemoryProvider(cfg), mockserver.Options{
				Logger:   logger,
				Metrics:  collector,
				Gatherer: reg,
			})
			return srv.Start(cmd.Context(), cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().IntVar(&items, "items", 0, "Number of generated items (overrides config)")
	return cmd
}
