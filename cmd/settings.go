package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rotehq/rote/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Get or set values in this project's local settings layer",
}

func settingsStore() *settings.Store {
	return settings.Open(filepath.Join(projectDir(), ".rote.local.toml"))
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting's value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, ok, err := settingsStore().Get(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no such setting: %s", args[0])
		}
		fmt.Println(v)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one setting's value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return settingsStore().Set(args[0], args[1])
	},
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return settingsStore().Unset(args[0])
	},
}

var settingsAddCmd = &cobra.Command{
	Use:   "add <key> <value>",
	Short: "Append a value to a multi-value setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return settingsStore().Add(args[0], args[1])
	},
}

var settingsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List every setting",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := settingsStore().All()
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s = %s\n", k, all[k])
		}
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsUnsetCmd, settingsAddCmd, settingsLsCmd)
}
