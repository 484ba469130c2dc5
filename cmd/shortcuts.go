package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timew-bot/internal/dispatch"
	"github.com/Tiliavir/timew-bot/internal/storage"
)

var shortcutsCmd = &cobra.Command{
	Use:   "shortcuts",
	Short: "List the persisted shortcut map",
	Args:  cobra.NoArgs,
	RunE:  runShortcutsList,
}

var shortcutsAddCmd = &cobra.Command{
	Use:   "add <alias> <text...>",
	Short: "Add or replace a shortcut",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runShortcutsAdd,
}

var shortcutsDeleteCmd = &cobra.Command{
	Use:   "delete <alias>",
	Short: "Delete a shortcut",
	Args:  cobra.ExactArgs(1),
	RunE:  runShortcutsDelete,
}

func init() {
	shortcutsCmd.AddCommand(shortcutsAddCmd)
	shortcutsCmd.AddCommand(shortcutsDeleteCmd)
}

func openShortcuts() (*storage.Shortcuts, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return storage.LoadShortcuts(cfg.Shortcuts.File, cfg.Shortcuts.Aliases)
}

func runShortcutsList(cmd *cobra.Command, args []string) error {
	s, err := openShortcuts()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), strings.TrimRight(dispatch.FormatShortcuts(s), "\n")+"\n")
	return nil
}

func runShortcutsAdd(cmd *cobra.Command, args []string) error {
	s, err := openShortcuts()
	if err != nil {
		return err
	}
	text := strings.Join(args[1:], " ")
	if err := s.Add(args[0], text); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], text)
	return nil
}

func runShortcutsDelete(cmd *cobra.Command, args []string) error {
	s, err := openShortcuts()
	if err != nil {
		return err
	}
	found, err := s.Delete(args[0])
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no shortcut %q", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}
