package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"brandguard/internal/config"
	"brandguard/internal/domain"
	"brandguard/internal/export"
)

func newExportCmd(cfg *config.Config) *cobra.Command {
	var (
		output string
		status string
	)
	cmd := &cobra.Command{
		Use:   "export BRAND_ID",
		Short: "Write a brand's imposter register to an XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *domain.ImposterStatus
			if status != "" {
				st, err := domain.ParseImposterStatus(status)
				if err != nil {
					return err
				}
				filter = &st
			}
			a, err := newApp(cmd.Context(), *cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			brand, err := a.brands.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			list, err := a.lifecycle.ListImposters(cmd.Context(), brand.ID, filter)
			if err != nil {
				return err
			}
			if output == "" {
				output = brand.Domain + "-imposters.xlsx"
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := export.WriteXLSX(f, brand, list); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d imposters to %s\n", len(list), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <domain>-imposters.xlsx)")
	cmd.Flags().StringVar(&status, "status", "", "only export imposters in this status")
	return cmd
}
