package cmd

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the tracking status and the keyboard it implies",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	d, err := newDispatcher(ctx, cfg, newGateway(cfg, log), log)
	if err != nil {
		return err
	}
	printReply(cmd.OutOrStdout(), d.Status(ctx))
	return nil
}
