package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"brandguard/internal/config"
)

func newBrandCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brand",
		Short: "Manage monitored brands",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add NAME DOMAIN",
			Short: "Register a brand and its official domain",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(cmd.Context(), *cfg, false)
				if err != nil {
					return err
				}
				defer a.Close()
				b, err := a.brands.Register(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", b.ID, b.Name, b.Domain)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List monitored brands",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(cmd.Context(), *cfg, false)
				if err != nil {
					return err
				}
				defer a.Close()
				list, err := a.brands.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, b := range list {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", b.ID, b.Name, b.Domain)
				}
				return nil
			},
		},
	)
	return cmd
}
