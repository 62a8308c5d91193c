package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xavierca1/buyer-leads/internal/app"
	"github.com/xavierca1/buyer-leads/internal/infra/integration/kommo"
	"github.com/xavierca1/buyer-leads/internal/usecase"
)

func newCRMSyncCmd() *cobra.Command {
	var (
		id    string
		owner ownerFlags
	)

	cmd := &cobra.Command{
		Use:   "crm-sync",
		Short: "Push one buyer lead to Kommo",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			if !cfg.KommoEnabled() {
				return errors.New("KOMMO_BASE_URL and KOMMO_API_TOKEN must be set")
			}

			stores, err := app.OpenStores(cmd.Context(), cfg, false, log)
			if err != nil {
				return err
			}
			defer stores.Close()

			got, err := app.NewUseCases(stores, nil, log).Get.Execute(cmd.Context(), usecase.GetLeadInput{Actor: owner.actor(), ID: id})
			if err != nil {
				return err
			}

			crmID, err := kommo.NewClient(cfg.Kommo.BaseURL, cfg.Kommo.APIToken).SyncLead(cmd.Context(), got.Buyer)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "lead %s synced to Kommo as #%d\n", got.Buyer.ID, crmID)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Buyer lead id (required)")
	_ = cmd.MarkFlagRequired("id")
	owner.register(cmd)
	return cmd
}
