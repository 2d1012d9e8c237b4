package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/rotehq/rote/pkg/envbuild"
	"github.com/rotehq/rote/pkg/layerconfig"
	"github.com/rotehq/rote/pkg/taskrunner"
)

var (
	runMaxParallel int
	runOutput      string
)

var runCmd = &cobra.Command{
	Use:   "run <task>... [::: <task>...]",
	Short: "Run one or more tasks (and their dependencies) with the resolved environment",
	Long: `run executes the named task(s), their depends first and depends_post
after, scheduling independent tasks concurrently. A ::: separator starts a
new sibling group that runs after the previous group finishes entirely --
useful for "build all, then in parallel lint and test":

  rote run build ::: lint test`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		groups := splitGroups(args)

		env, result, err := resolveEnv(projectDir())
		if err != nil {
			return err
		}

		for _, group := range groups {
			if len(group) == 0 {
				continue
			}
			if err := runGroup(cmd.Context(), env.Config, result, group); err != nil {
				return err
			}
		}
		return nil
	},
}

// splitGroups breaks args on the literal token ":::" into sibling task
// groups, each run to completion before the next group starts.
func splitGroups(args []string) [][]string {
	var groups [][]string
	var cur []string
	for _, a := range args {
		if a == ":::" {
			groups = append(groups, cur)
			cur = nil
			continue
		}
		cur = append(cur, a)
	}
	groups = append(groups, cur)
	return groups
}

func runGroup(ctx context.Context, cfg *layerconfig.EffectiveConfig, result *envbuild.Result, roots []string) error {
	graph, err := taskrunner.Build(cfg, roots)
	if err != nil {
		return err
	}
	runner := &taskrunner.Runner{
		Graph:       graph,
		ProjectDir:  projectDir(),
		Env:         result,
		MaxParallel: runMaxParallel,
		Mode:        resolveOutputMode(),
	}
	return runner.Run(ctx)
}

// resolveOutputMode applies the --output flag > ROTE_TASK_OUTPUT env var >
// auto precedence rule.
func resolveOutputMode() taskrunner.OutputMode {
	if runOutput != "" {
		return taskrunner.ParseOutputMode(runOutput)
	}
	if env := os.Getenv("ROTE_TASK_OUTPUT"); env != "" {
		return taskrunner.ParseOutputMode(env)
	}
	return taskrunner.OutputAuto
}

func init() {
	runCmd.Flags().IntVar(&runMaxParallel, "max-parallel", 0, "maximum concurrent tasks (default: number of CPUs)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "task output mode: silent, quiet, interleave, prefix (default: auto, or $ROTE_TASK_OUTPUT)")
}
