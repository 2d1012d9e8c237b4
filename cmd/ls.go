package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rotehq/rote/pkg/lifecycle"
	"github.com/rotehq/rote/pkg/runtime"
)

var lsAll bool

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List declared tools and their resolved/installed state",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := runtime.Open(projectDir())
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(env.Config.Tools))
		for k := range env.Config.Tools {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			spec := env.Config.Tools[key]
			version, err := env.Resolver.Resolve(spec.Backend, spec.Name, spec.Version, env.Config.Aliases[spec.Name])
			if err != nil {
				fmt.Printf("%-24s %-12s (unresolved: %v)\n", key, spec.Version, err)
				continue
			}
			state := env.Store.CurrentState(spec.Backend, spec.Name, version)
			fmt.Printf("%-24s %-12s %s\n", key, version, stateLabel(state))
		}
		return nil
	},
}

func stateLabel(s lifecycle.State) string {
	switch s {
	case lifecycle.StateInstalled:
		return "installed"
	case lifecycle.StateCorrupt:
		return "corrupt (will reinstall)"
	case lifecycle.StateUninstalled:
		return "uninstalled"
	default:
		return "not installed"
	}
}

func init() {
	lsCmd.Flags().BoolVar(&lsAll, "all", false, "accepted but has no effect: ls lists only declared tools, never catalog versions")
}
