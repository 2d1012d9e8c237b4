package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rotehq/rote/pkg/cache"
	"github.com/rotehq/rote/pkg/runtime"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear rote's fingerprinted cache",
}

var cacheClearNamespace string
var cacheClearOlderThan string

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cache.Open(filepath.Join(runtime.DataDir(), "cache"))
		if err != nil {
			return err
		}

		if cacheClearOlderThan != "" {
			age, err := time.ParseDuration(cacheClearOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than duration: %w", err)
			}
			return store.PruneOlderThan(age)
		}

		return store.Clear(cacheClearNamespace)
	},
}

func init() {
	cacheClearCmd.Flags().StringVar(&cacheClearNamespace, "namespace", "", "only clear this namespace (default: everything)")
	cacheClearCmd.Flags().StringVar(&cacheClearOlderThan, "older-than", "", "only clear entries older than this duration, e.g. 168h")
	cacheCmd.AddCommand(cacheClearCmd)
}
