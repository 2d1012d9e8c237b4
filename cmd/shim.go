package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rotehq/rote/pkg/runtime"
	"github.com/rotehq/rote/pkg/shim"
)

var shimCmd = &cobra.Command{
	Use:   "shim",
	Short: "Manage the per-tool shim executables on PATH",
}

var shimReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Create/remove shims so the shim directory matches this project's declared tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := runtime.Open(projectDir())
		if err != nil {
			return err
		}

		var desired shim.Desired
		for _, spec := range env.Config.Tools {
			desired.BinaryNames = append(desired.BinaryNames, runtime.BinaryNameFor(env.Registry, spec.Backend, spec.Name))
		}

		shimDir := filepath.Join(runtime.DataDir(), "shims")
		dispatcher := filepath.Join(runtime.DataDir(), "bin", "rote-shim")
		created, removed, conflicts, err := shim.Reconcile(shimDir, desired, dispatcher)
		if err != nil {
			return err
		}

		for _, name := range created {
			fmt.Printf("created %s\n", name)
		}
		for _, name := range removed {
			fmt.Printf("removed %s\n", name)
		}
		for _, name := range conflicts {
			fmt.Printf("skipped %s: not a rote-managed shim\n", name)
		}
		return nil
	},
}

func init() {
	shimCmd.AddCommand(shimReconcileCmd)
	rootCmd.AddCommand(shimCmd)
}
