package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rotehq/rote/pkg/envbuild"
	"github.com/rotehq/rote/pkg/runtime"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print resolved environment variables for this project",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, result, err := resolveEnv(projectDir())
		if err != nil {
			return err
		}
		fmt.Print(result.ShellDelta())
		return nil
	},
}

var hookEnvCmd = &cobra.Command{
	Use:   "hook-env",
	Short: "Print shell export statements for a shell hook to source on every prompt",
	Long: `hook-env is meant to be wired into a shell prompt hook:

  eval "$(rote hook-env)"

It resolves and installs (if missing) every tool this project declares and
prints PATH/env var exports. It re-resolves on every run; no result is
cached between runs. Diffs
against the previous run's contribution (carried in $__ROTE_SHELL) so
switching into a directory with fewer or different tools emits "unset"
for whatever no longer applies, instead of only ever adding exports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, result, err := resolveEnv(projectDir())
		if err != nil {
			return err
		}
		fmt.Print(result.ShellDeltaFrom(os.Getenv(envbuild.SentinelVar)))
		return nil
	},
}

var binPathsCmd = &cobra.Command{
	Use:   "bin-paths",
	Short: "Print the resolved tool bin directories, one per line",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, result, err := resolveEnv(projectDir())
		if err != nil {
			return err
		}
		for _, p := range result.BinPaths {
			fmt.Println(p)
		}
		return nil
	},
}

// resolveEnv resolves and ensures every declared tool is installed, then
// computes the envbuild.Result for them -- the shared core of `env`,
// `hook-env`, and `bin-paths`.
func resolveEnv(dir string) (*runtime.Env, *envbuild.Result, error) {
	env, err := runtime.Open(dir)
	if err != nil {
		return nil, nil, err
	}

	keys := make([]string, 0, len(env.Config.Tools))
	for k := range env.Config.Tools {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var resolved []envbuild.ResolvedTool
	for _, key := range keys {
		backendName, tool, version, installDir, err := runtime.ResolveAndEnsure(env, key)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", key, err)
		}
		resolved = append(resolved, envbuild.ResolvedTool{
			Backend: backendName, Tool: tool, Version: version, InstallDir: installDir,
		})
	}

	result, err := envbuild.Build(env.Store, resolved, projectEnvOf(env))
	if err != nil {
		return nil, nil, err
	}
	return env, result, nil
}

func projectEnvOf(env *runtime.Env) map[string]string {
	return env.Config.Env
}
