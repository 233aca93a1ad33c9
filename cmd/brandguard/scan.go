package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"brandguard/internal/config"
	"brandguard/internal/ports"
)

type scanFlags struct {
	keyword string
	geo     string
	pages   int
}

func (f *scanFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.keyword, "keyword", "k", "", "search keyword (default: brand name)")
	fs.StringVarP(&f.geo, "geo", "g", "", "search geolocation (default: SEARCH_DEFAULT_GEO)")
	fs.IntVarP(&f.pages, "pages", "p", 0, "result pages to scan (default: SCAN_DEFAULT_PAGES)")
}

func newScanCmd(cfg *config.Config) *cobra.Command {
	var flags scanFlags
	cmd := &cobra.Command{
		Use:   "scan BRAND_ID",
		Short: "Run one impostor scan for a brand and print the summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			sum, err := a.scanner.Trigger(cmd.Context(), ports.ScanRequest{
				BrandID:     args[0],
				Keyword:     flags.keyword,
				Geolocation: flags.geo,
				PageCount:   flags.pages,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			sc := sum.Scan
			fmt.Fprintf(out, "scan %s %s: %d/%d pages, %d results, %d candidates (%d new)\n",
				sc.ID, sc.Status, sc.PagesScanned, sc.RequestedPages, sc.TotalResults, sc.ImpostorsFound, sc.NewImposters)
			for _, c := range sum.Candidates {
				fmt.Fprintf(out, "  #%-3d %-40s %s\n", c.SearchRank, c.Domain, c.DetectionRule)
			}
			for _, e := range sum.Errors {
				fmt.Fprintf(out, "  error: %s\n", e)
			}
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
