package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xavierca1/buyer-leads/internal/app"
	"github.com/xavierca1/buyer-leads/internal/infra/csvio"
	"github.com/xavierca1/buyer-leads/internal/usecase"
)

func newExportCmd() *cobra.Command {
	var (
		out    string
		format string
		owner  ownerFlags
		filter usecase.ExportLeadsInput
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an owner's buyer leads as CSV or XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("invalid --format %q", format)
			}
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}

			stores, err := app.OpenStores(cmd.Context(), cfg, false, log)
			if err != nil {
				return err
			}
			defer stores.Close()

			filter.Actor = owner.actor()
			leads, err := app.NewUseCases(stores, nil, log).Export.Execute(cmd.Context(), filter)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			if format == "xlsx" {
				return csvio.WriteLeadsXLSX(w, leads)
			}
			return csvio.WriteLeads(w, leads)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVar(&filter.City, "city", "", "Filter by city")
	cmd.Flags().StringVar(&filter.PropertyType, "property-type", "", "Filter by property type")
	cmd.Flags().StringVar(&filter.Status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&filter.Timeline, "timeline", "", "Filter by timeline")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Search name, phone or email")
	owner.register(cmd)
	return cmd
}
