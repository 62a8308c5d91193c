package main

import (
	"encoding/json"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xavierca1/buyer-leads/internal/config"
	"github.com/xavierca1/buyer-leads/internal/entity"
	"github.com/xavierca1/buyer-leads/internal/logger"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "leadctl",
		Short:        "Buyer leads maintenance tools",
		SilenceUsage: true,
	}
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newCRMSyncCmd())
	return cmd
}

// setup loads configuration and a logger writing to the command's stderr.
func setup(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.NewWithOutput(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat), nil
}

// ownerFlags are shared by commands acting on behalf of a user.
type ownerFlags struct {
	id    string
	email string
}

func (o *ownerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.id, "owner", "", "Owner user id (required)")
	cmd.Flags().StringVar(&o.email, "owner-email", "", "Owner email")
	_ = cmd.MarkFlagRequired("owner")
}

func (o *ownerFlags) actor() entity.Actor {
	return entity.Actor{ID: o.id, Email: o.email}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
