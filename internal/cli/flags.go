package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"scrollgrid/internal/config"
	"scrollgrid/internal/domain"
)

// sourceFlags override the provider and paging settings of the config
type sourceFlags struct {
	provider string
	baseURL  string
	pageSize int
	sort     string
	desc     bool
}

func (f *sourceFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "Data provider: memory or http (overrides config)")
	cmd.Flags().StringVar(&f.baseURL, "url", "", "Base URL of the HTTP provider (overrides config)")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "Rows per page (overrides config)")
	cmd.Flags().StringVar(&f.sort, "sort", "", fmt.Sprintf("Initial sort column %v, or none (overrides config)", domain.Columns))
	cmd.Flags().BoolVar(&f.desc, "desc", false, "Sort descending")
}

// apply writes the set flags into cfg and validates the result
func (f *sourceFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("provider") {
		cfg.Provider.Kind = f.provider
	}
	if cmd.Flags().Changed("url") {
		cfg.Provider.BaseURL = f.baseURL
		if !cmd.Flags().Changed("provider") {
			cfg.Provider.Kind = config.ProviderHTTP
		}
	}
	if cmd.Flags().Changed("page-size") {
		cfg.PageSize = f.pageSize
	}
	if cmd.Flags().Changed("sort") {
		switch {
		case f.sort == "none":
			cfg.Sort.By = ""
		case slices.Contains(domain.Columns, f.sort):
			cfg.Sort.By = f.sort
			cfg.Sort.Direction = string(domain.SortAscending)
		default:
			return fmt.Errorf("invalid --sort %q: must be one of %v or none", f.sort, domain.Columns)
		}
	}
	if f.desc {
		if cfg.Sort.By == "" {
			return fmt.Errorf("--desc requires a sort column")
		}
		cfg.Sort.Direction = string(domain.SortDescending)
	}
	return cfg.Validate()
}
