package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timew-bot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an annotated default config file",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.ResolvePath(configPath)
	if err := config.WriteDefault(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s. Set telegram.token and telegram.operator_id before running `twb serve`.\n", path)
	return nil
}
