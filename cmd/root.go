// Package cmd implements rote's command-line surface (the §6 CLI surface):
// install, use, ls, bin-paths, env, hook-env, x, settings, run, task, and
// cache, all sharing the runtime.Env wiring (pkg/runtime) the teacher's
// cmd/root.go assembled ad hoc per command via config.LoadConfig +
// tools.NewManager + executor.NewExecutor.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rotehq/rote/pkg/logging"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"

	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "rote",
	Short: "Layered, per-project tool version manager and task runner",
	Long: `rote resolves tool versions from layered project/user/system config,
installs them into a content-addressed store, and runs project tasks with
the right tools on PATH -- without mutating your shell's global environment.

Examples:
  rote install           # install every tool this project declares
  rote use node@20       # pin a tool version in the local config layer
  rote run build         # run the "build" task with the resolved environment
  rote x -- mvn -v       # run one command with tools resolved on PATH`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet output (errors only)")
	cobra.OnInitialize(func() {
		lg := logging.Default()
		switch {
		case verbose:
			lg.SetLevel(logging.LevelVerbose)
		case quiet:
			lg.SetLevel(logging.LevelQuiet)
		default:
			lg.SetLevel(logging.LevelNormal)
		}
	})

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(useCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(binPathsCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(hookEnvCmd)
	rootCmd.AddCommand(xCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(cacheCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print rote's version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rote %s (%s, built %s)\n", version, commit, date)
	},
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func projectDir() string {
	dir, err := os.Getwd()
	if err != nil {
		fail(err)
	}
	return dir
}
