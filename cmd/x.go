package cmd

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

var xCmd = &cobra.Command{
	Use:   "x -- <command> [args...]",
	Short: "Run one command with this project's resolved tools on PATH",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, result, err := resolveEnv(projectDir())
		if err != nil {
			return err
		}

		c := exec.Command(args[0], args[1:]...)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		c.Env = result.ApplyToEnviron(os.Environ())
		if err := c.Run(); err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				os.Exit(exitErr.ExitCode())
			}
			return err
		}
		return nil
	},
}

func init() {
	xCmd.Flags().SetInterspersed(false)
}
