package taskrunner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/rotehq/rote/pkg/envbuild"
	"github.com/rotehq/rote/pkg/layerconfig"
	"github.com/rotehq/rote/pkg/logging"
	"github.com/rotehq/rote/pkg/shell"
	"github.com/rotehq/rote/pkg/workpool"
)

// OutputMode controls how concurrently-running tasks' stdout/stderr are
// shown, spec component H's four modes.
type OutputMode int

const (
	// OutputAuto picks OutputInterleave for a linear DAG (nothing ever
	// runs concurrently, so there's nothing to distinguish) and
	// OutputPrefix otherwise.
	OutputAuto OutputMode = iota
	OutputSilent
	OutputQuiet
	OutputInterleave
	OutputPrefix
)

// ParseOutputMode maps the `--output`/`ROTE_TASK_OUTPUT` string values
// (silent, quiet, interleave, prefix, auto) to an OutputMode. An empty or
// unrecognized string falls back to OutputAuto.
func ParseOutputMode(s string) OutputMode {
	switch s {
	case "silent":
		return OutputSilent
	case "quiet":
		return OutputQuiet
	case "interleave":
		return OutputInterleave
	case "prefix":
		return OutputPrefix
	default:
		return OutputAuto
	}
}

// Runner executes a Graph with bounded parallelism, in dependency order.
type Runner struct {
	Graph      *Graph
	ProjectDir string
	Env        *envbuild.Result
	MaxParallel int
	Mode       OutputMode
	Logger     *logging.Logger
}

// resolvedMode picks the effective OutputMode, applying the OutputAuto rule.
func (r *Runner) resolvedMode() OutputMode {
	if r.Mode != OutputAuto {
		return r.Mode
	}
	if r.Graph.IsLinear() {
		return OutputInterleave
	}
	return OutputPrefix
}

// Run executes every task in the graph in waves: each wave launches every
// task whose dependencies are done, capped at MaxParallel concurrent tasks,
// and the next wave starts only once the whole current wave has finished.
func (r *Runner) Run(ctx context.Context) error {
	mode := r.resolvedMode()
	maxParallel := r.MaxParallel
	if maxParallel <= 0 {
		maxParallel = runtime.NumCPU()
	}

	var mu sync.Mutex
	done := make(map[string]bool)
	failed := make(map[string]error)
	total := len(r.Graph.Tasks)

	pool := workpool.New(ctx, maxParallel)
	launched := make(map[string]bool)

	for len(done)+len(failed) < total {
		mu.Lock()
		ready := r.Graph.Ready(done)
		var toLaunch []string
		for _, name := range ready {
			if !launched[name] {
				launched[name] = true
				toLaunch = append(toLaunch, name)
			}
		}
		mu.Unlock()

		if len(toLaunch) == 0 {
			break // everything remaining is blocked on a failed dependency
		}

		var wg sync.WaitGroup
		for _, name := range toLaunch {
			name := name
			wg.Add(1)
			pool.Go(func(ctx context.Context) error {
				defer wg.Done()
				err := r.runOne(ctx, name, mode)
				mu.Lock()
				if err != nil {
					failed[name] = err
				} else {
					done[name] = true
				}
				mu.Unlock()
				return nil // collected per-task, doesn't abort siblings
			})
		}
		wg.Wait()
	}

	if len(failed) > 0 {
		var names []string
		for name, err := range failed {
			names = append(names, fmt.Sprintf("%s: %v", name, err))
		}
		return fmt.Errorf("%d task(s) failed:\n%s", len(failed), strings.Join(names, "\n"))
	}
	return nil
}

func (r *Runner) runOne(ctx context.Context, name string, mode OutputMode) error {
	spec := r.Graph.Tasks[name]
	if mode != OutputSilent && mode != OutputQuiet {
		r.logger().Infof("-> running task %s", name)
	}

	workDir := r.ProjectDir
	if spec.Dir != "" {
		workDir = filepath.Join(r.ProjectDir, spec.Dir)
	}

	script := spec.Run
	if runtime.GOOS == "windows" && spec.RunWindows != "" {
		script = spec.RunWindows
	}
	if script == "" {
		return nil // a pure grouping task with no run step, only depends
	}

	env := os.Environ()
	if r.Env != nil {
		env = r.Env.ApplyToEnviron(env)
	}
	for k, v := range spec.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	stdout, stderr := r.outputWriters(name, mode)

	return runScript(ctx, script, workDir, env, stdout, stderr)
}

func (r *Runner) logger() *logging.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logging.Default()
}

// outputWriters returns the writers a task's output should go to for mode:
// OutputSilent discards everything, OutputQuiet streams stdout/stderr as-is
// (only the "-> running task" banner is suppressed, in runOne),
// OutputInterleave writes straight through too, and OutputPrefix tags every
// line with the task name so concurrent tasks' output stays distinguishable
// on one stream.
func (r *Runner) outputWriters(name string, mode OutputMode) (io.Writer, io.Writer) {
	switch mode {
	case OutputSilent:
		return io.Discard, io.Discard
	case OutputPrefix:
		return &prefixWriter{prefix: name, out: os.Stdout}, &prefixWriter{prefix: name, out: os.Stderr}
	default: // OutputQuiet, OutputInterleave
		return os.Stdout, os.Stderr
	}
}

// runScript executes script with the native system shell, mirroring the
// teacher's executor.executeNativeScript.
func runScript(ctx context.Context, script, workDir string, env []string, stdout, stderr io.Writer) error {
	shellBin := "/bin/bash"
	shellArgs := []string{"-c"}
	if runtime.GOOS == "windows" {
		shellBin = "cmd"
		shellArgs = []string{"/c"}
	}

	cmd := exec.CommandContext(ctx, shellBin, append(shellArgs, script)...)
	cmd.Dir = workDir
	cmd.Env = env
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}

// RunPortable executes spec.Run with the RoteShell portable interpreter
// instead of the native shell -- a distinct entry point since it needs
// per-task Stdout/Stderr redirection wired through shell.RoteShell rather
// than exec.Cmd directly. Runner.Run does not call it: TaskSpec has no
// interpreter field, and every task the Runner executes goes through
// runScript.
func RunPortable(spec layerconfig.TaskSpec, workDir string, env []string, stdout, stderr io.Writer) error {
	s := shell.NewRoteShell(workDir, env)
	s.Stdout = stdout
	s.Stderr = stderr
	return s.Execute(spec.Run)
}

// prefixWriter tags each newline-terminated chunk written to it with a
// task-name prefix before forwarding to out, used by OutputPrefix mode.
type prefixWriter struct {
	prefix string
	out    io.Writer
	buf    strings.Builder
	mu     sync.Mutex
}

func (w *prefixWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	content := w.buf.String()
	lines := strings.Split(content, "\n")
	for _, line := range lines[:len(lines)-1] {
		fmt.Fprintf(w.out, "[%s] %s\n", w.prefix, line)
	}
	w.buf.Reset()
	w.buf.WriteString(lines[len(lines)-1])
	return len(p), nil
}
