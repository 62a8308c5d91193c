package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xavierca1/buyer-leads/internal/app"
	"github.com/xavierca1/buyer-leads/internal/entity"
	"github.com/xavierca1/buyer-leads/internal/infra/csvio"
	"github.com/xavierca1/buyer-leads/internal/usecase"
)

type importOutput struct {
	Outcome  string            `json:"outcome"`
	Inserted int               `json:"inserted"`
	Errors   []entity.RowError `json:"errors"`
}

func newImportCmd() *cobra.Command {
	var (
		file  string
		owner ownerFlags
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import buyer leads from a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := csvio.ReadRows(f, cfg.Import.MaxRows)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}

			stores, err := app.OpenStores(cmd.Context(), cfg, false, log)
			if err != nil {
				return err
			}
			defer stores.Close()

			uc := app.NewUseCases(stores, nil, log)
			out, err := uc.Import.Execute(cmd.Context(), usecase.ImportLeadsInput{Actor: owner.actor(), Rows: rows})
			if out == nil {
				return err
			}
			if werr := writeJSON(cmd.OutOrStdout(), importOutput{Outcome: out.Outcome, Inserted: out.Inserted, Errors: out.Errors}); werr != nil {
				return werr
			}
			if err != nil {
				return err
			}
			if out.Outcome == usecase.ImportFailed {
				return errors.New("no rows imported")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV file to import (required)")
	_ = cmd.MarkFlagRequired("file")
	owner.register(cmd)
	return cmd
}
