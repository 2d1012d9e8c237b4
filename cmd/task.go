package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rotehq/rote/pkg/layerconfig"
	"github.com/rotehq/rote/pkg/taskrunner"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Inspect the task graph without running anything",
}

var taskLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List every declared task",
	RunE: func(cmd *cobra.Command, args []string) error {
		eff, err := layerconfig.Load(projectDir())
		if err != nil {
			return err
		}
		names := make([]string, 0, len(eff.Tasks))
		for n, t := range eff.Tasks {
			if t.Hide {
				continue
			}
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			t := eff.Tasks[n]
			if t.Description != "" {
				fmt.Printf("%-20s %s\n", n, t.Description)
			} else {
				fmt.Println(n)
			}
		}
		return nil
	},
}

var taskDepsCmd = &cobra.Command{
	Use:   "deps <task>...",
	Short: "Print the dependency graph for the given tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eff, err := layerconfig.Load(projectDir())
		if err != nil {
			return err
		}
		graph, err := taskrunner.Build(eff, args)
		if err != nil {
			return err
		}
		fmt.Print(graph.String())
		return nil
	},
}

func init() {
	taskCmd.AddCommand(taskLsCmd, taskDepsCmd)
}
