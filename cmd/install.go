package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rotehq/rote/pkg/backend"
	"github.com/rotehq/rote/pkg/progress"
	"github.com/rotehq/rote/pkg/runtime"
	"github.com/rotehq/rote/pkg/workpool"
)

var installCmd = &cobra.Command{
	Use:   "install [tool...]",
	Short: "Install every declared tool, or only the ones named",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := runtime.Open(projectDir())
		if err != nil {
			return err
		}

		keys := args
		if len(keys) == 0 {
			for k := range env.Config.Tools {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		if len(keys) == 0 {
			fmt.Println("no tools declared in this project")
			return nil
		}

		prog := progress.New(os.Stderr)
		err = installAll(cmd.Context(), env, keys, prog)
		prog.Wait()
		return err
	},
}

// installAll resolves and installs every key in parallel, capped at
// ROTE_PARALLEL_DOWNLOADS-many concurrent installs (default 3, matching
// the teacher's InstallOptions.MaxConcurrent default in InstallToolsWithOptions).
func installAll(ctx context.Context, env *runtime.Env, keys []string, prog *progress.Manager) error {
	return workpool.Run(ctx, backend.EnvConfigProvider{}.MaxConcurrentInstalls(), keys, func(_ context.Context, key string) error {
		prog.Start(key, key, 0)
		backendName, tool, version, _, err := runtime.ResolveAndEnsure(env, key)
		if err != nil {
			prog.Fail(key, key, err)
			return fmt.Errorf("%s: %w", key, err)
		}
		prog.Complete(key, fmt.Sprintf("%s:%s@%s", backendName, tool, version))
		return nil
	})
}
