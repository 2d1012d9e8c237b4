// Package envbuild computes the environment spec component F describes: a
// pure function of (effective config, installed tool prefixes, previous
// shell snapshot) -> (bin_paths, env_vars, shell_delta), used by both
// `rote env`/`rote hook-env` and task execution.
//
// Adapted from the teacher's pkg/tools.Manager.SetupEnvironment /
// pkg/executor.Executor.setupEnvironment, which mutated os.Environ()
// directly and special-cased JAVA_HOME/MAVEN_HOME/NODE_HOME inline. Here
// the computation is side-effect-free: it returns a Result the caller
// applies (to a child process's env, or prints as shell-hook output),
// instead of calling os.Setenv itself.
package envbuild

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotehq/rote/pkg/cache"
	"github.com/rotehq/rote/pkg/layerconfig"
	"github.com/rotehq/rote/pkg/lifecycle"
)

// homeVar maps a tool name to the legacy *_HOME environment variable
// ecosystem tools expect, mirroring the teacher's special cases for
// JAVA_HOME/MAVEN_HOME/NODE_HOME in SetupEnvironment.
var homeVar = map[string]string{
	"java":  "JAVA_HOME",
	"maven": "MAVEN_HOME",
	"mvnd":  "MVND_HOME",
	"node":  "NODE_HOME",
	"go":    "GOROOT",
}

// Result is the computed environment contribution for one resolved set of
// tools: the PATH entries to prepend and the extra env vars to set.
type Result struct {
	BinPaths []string
	EnvVars  map[string]string
}

// ResolvedTool is (backend:tool, version, install dir) -- the
// already-resolved+installed triple envbuild needs; it does not re-resolve
// or install anything itself, keeping this package a pure function.
type ResolvedTool struct {
	Backend   string
	Tool      string
	Version   string
	InstallDir string
}

// Build computes bin paths and env vars for a set of resolved tools plus
// any project-level [env] entries from the effective config.
func Build(store *lifecycle.Store, tools []ResolvedTool, projectEnv map[string]string) (*Result, error) {
	res := &Result{EnvVars: make(map[string]string)}

	for _, t := range tools {
		bin, err := store.BinDir(t.Backend, t.Tool, t.Version)
		if err != nil {
			return nil, fmt.Errorf("resolve bin dir for %s:%s: %w", t.Backend, t.Tool, err)
		}
		res.BinPaths = append(res.BinPaths, bin)

		if hv, ok := homeVar[t.Tool]; ok {
			res.EnvVars[hv] = filepath.Dir(bin)
			if filepath.Base(bin) != "bin" {
				res.EnvVars[hv] = bin
			}
		}
	}

	for k, v := range projectEnv {
		res.EnvVars[k] = v
	}

	return res, nil
}

// ApplyToEnviron returns a full environ slice (os.Environ() plus this
// result's PATH prepend and extra vars applied), for exec'ing a child
// process -- e.g. a task step or `rote x -- <cmd>`.
func (r *Result) ApplyToEnviron(base []string) []string {
	env := make([]string, 0, len(base)+len(r.EnvVars)+1)
	pathIdx := -1
	for i, kv := range base {
		if strings.HasPrefix(kv, "PATH=") {
			pathIdx = i
			continue
		}
		if _, overridden := r.EnvVars[strings.SplitN(kv, "=", 2)[0]]; overridden {
			continue
		}
		env = append(env, kv)
	}

	currentPath := ""
	if pathIdx >= 0 {
		currentPath = strings.TrimPrefix(base[pathIdx], "PATH=")
	} else {
		currentPath = os.Getenv("PATH")
	}
	newPath := strings.Join(r.BinPaths, string(os.PathListSeparator))
	if currentPath != "" {
		newPath = newPath + string(os.PathListSeparator) + currentPath
	}
	env = append(env, "PATH="+newPath)

	keys := make([]string, 0, len(r.EnvVars))
	for k := range r.EnvVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, r.EnvVars[k]))
	}
	return env
}

// SentinelVar is the environment variable a shell hook carries forward
// between invocations, recording the names of every variable rote set on
// the previous run -- the mechanism ShellDelta uses to know what to unset
// when a tool is removed from the effective config, satisfying the
// env-reversibility requirement an unconditional export-everything can't:
// without it, a variable rote once set but no longer contributes would
// linger in the shell forever.
const SentinelVar = "__ROTE_SHELL"

// ShellDelta renders the POSIX-shell export/unset lines `rote hook-env`
// emits with no prior sentinel to diff against -- equivalent to
// ShellDeltaFrom("").
func (r *Result) ShellDelta() string {
	return r.ShellDeltaFrom("")
}

// ShellDeltaFrom renders the diff between prevSentinel (the comma-joined
// variable names recorded by the previous hook-env run, decoded from
// SentinelVar) and this Result's contribution: variables no longer
// contributed are emitted as `unset`, variables still or newly contributed
// are emitted as `export`, and a new SentinelVar export records the
// current set for the next invocation to diff against.
func (r *Result) ShellDeltaFrom(prevSentinel string) string {
	keys := make([]string, 0, len(r.EnvVars))
	for k := range r.EnvVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	current := make(map[string]bool, len(keys)+1)
	current["PATH"] = true
	for _, k := range keys {
		current[k] = true
	}

	var b strings.Builder
	for _, prev := range splitSentinel(prevSentinel) {
		if prev == "" || prev == "PATH" || current[prev] {
			continue
		}
		fmt.Fprintf(&b, "unset %s\n", prev)
	}

	fmt.Fprintf(&b, "export PATH=%q\n", strings.Join(r.BinPaths, string(os.PathListSeparator))+string(os.PathListSeparator)+"$PATH")
	for _, k := range keys {
		fmt.Fprintf(&b, "export %s=%q\n", k, r.EnvVars[k])
	}

	names := append([]string{"PATH"}, keys...)
	fmt.Fprintf(&b, "export %s=%q\n", SentinelVar, strings.Join(names, ","))
	return b.String()
}

func splitSentinel(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// CacheKey fingerprints the inputs that determine a Result so hook-env can
// skip recomputation (spec's sub-20ms cached path requirement) whenever the
// effective config and installed tool set haven't changed since the last run.
func CacheKey(eff *layerconfig.EffectiveConfig, tools []ResolvedTool) string {
	parts := make([]string, 0, len(tools)+1)
	for _, t := range tools {
		parts = append(parts, fmt.Sprintf("%s:%s@%s", t.Backend, t.Tool, t.Version))
	}
	if eff != nil {
		for k, v := range eff.Env {
			parts = append(parts, fmt.Sprintf("env:%s=%s", k, v))
		}
	}
	sort.Strings(parts)
	return cache.Fingerprint(parts...)
}
