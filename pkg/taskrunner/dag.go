// Package taskrunner builds and executes the task DAG spec component H
// describes: depends/depends_post edges, cycle detection, bounded-parallel
// topological scheduling, and output modes chosen by whether the DAG is a
// simple chain or has genuine fan-out.
//
// Adapted from the teacher's pkg/executor.Executor.ExecuteCommand (one
// command, one script, one interpreter dispatch) generalized to a graph of
// named tasks; the per-task execution core (native shell vs mvx-shell
// interpreter dispatch, environment assembly) is carried over almost
// unchanged from Executor.executeScriptWithInterpreter /
// setupEnvironment, just driven by pkg/envbuild instead of
// tools.Manager.SetupEnvironment.
package taskrunner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotehq/rote/pkg/errs"
	"github.com/rotehq/rote/pkg/layerconfig"
)

// Graph is the resolved dependency graph for a set of root tasks: every
// task reachable from the roots via depends/depends_post, plus the edges
// between them.
type Graph struct {
	Tasks map[string]layerconfig.TaskSpec
	// edges[a] = tasks that must finish before a can start (its depends),
	// not counting depends_post, which is modeled as a reverse edge below.
	edges map[string][]string
	order []string // insertion order, for stable diagnostics
}

// Build resolves roots (the task names the user asked to run) against cfg,
// following depends/depends_post transitively, and returns the full graph
// or a KindTaskNotFound / KindTaskCycle error.
func Build(cfg *layerconfig.EffectiveConfig, roots []string) (*Graph, error) {
	g := &Graph{
		Tasks: make(map[string]layerconfig.TaskSpec),
		edges: make(map[string][]string),
	}

	var visit func(name string, stack []string) error
	visit = func(name string, stack []string) error {
		for _, s := range stack {
			if s == name {
				return errs.TaskCycle(strings.Join(append(stack, name), " -> "))
			}
		}
		if _, done := g.Tasks[name]; done {
			return nil
		}
		spec, ok := cfg.Tasks[name]
		if !ok {
			return errs.TaskNotFound(name)
		}
		g.Tasks[name] = spec
		g.order = append(g.order, name)

		next := append([]string{}, stack...)
		next = append(next, name)

		for _, dep := range spec.Depends {
			if err := visit(dep, next); err != nil {
				return err
			}
			g.edges[name] = append(g.edges[name], dep)
		}
		// depends_post tasks must run after name, so the edge runs the
		// other way: name is a prerequisite of each depends_post entry.
		for _, post := range spec.DependsPost {
			if err := visit(post, next); err != nil {
				return err
			}
			g.edges[post] = append(g.edges[post], name)
		}
		return nil
	}

	for _, root := range roots {
		if err := visit(root, nil); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Ready returns the tasks in g whose dependencies are all present in done,
// excluding tasks already in done -- the frontier a bounded-parallel
// scheduler can launch next.
func (g *Graph) Ready(done map[string]bool) []string {
	var ready []string
	for _, name := range g.order {
		if done[name] {
			continue
		}
		satisfied := true
		for _, dep := range g.edges[name] {
			if !done[dep] {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)
	return ready
}

// IsLinear reports whether g ever has more than one task ready to run at
// once -- the signal the output-mode selector uses to fall back to plain
// interleaved streaming instead of a prefixed multiplexed view, since a
// graph that never actually runs tasks concurrently has nothing to
// distinguish. This is about effective concurrency, not raw adjacency
// count: a task can list redundant depends entries already implied
// transitively by its other dependencies, which inflates edge counts
// without introducing any real fan-out, so linearity is determined by
// simulating the same Ready frontier the scheduler itself uses.
func (g *Graph) IsLinear() bool {
	done := make(map[string]bool, len(g.order))
	for len(done) < len(g.order) {
		ready := g.Ready(done)
		if len(ready) == 0 {
			return true // unreachable given Build's cycle detection
		}
		if len(ready) > 1 {
			return false
		}
		done[ready[0]] = true
	}
	return true
}

// String renders the graph as "task <- dep1, dep2" lines for `rote task deps`.
func (g *Graph) String() string {
	var b strings.Builder
	for _, name := range g.order {
		deps := g.edges[name]
		if len(deps) == 0 {
			fmt.Fprintf(&b, "%s\n", name)
			continue
		}
		sorted := append([]string{}, deps...)
		sort.Strings(sorted)
		fmt.Fprintf(&b, "%s <- %s\n", name, strings.Join(sorted, ", "))
	}
	return b.String()
}
