// Command rote-shim is the re-exec target every shim script in a project's
// shim directory points at (see pkg/shim). It is invoked as
// `rote-shim <binary-name> [args...]`, resolves <binary-name>'s effective
// version for the current directory, installs it if needed, and execs the
// real binary with the remaining arguments -- the spec component G
// dispatcher, intentionally kept dependency-light (no cobra) since it sits
// on the hot path of every shimmed command invocation.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rotehq/rote/pkg/errs"
	"github.com/rotehq/rote/pkg/logging"
	"github.com/rotehq/rote/pkg/runtime"
)

func main() {
	if err := run(os.Args); err != nil {
		logging.Default().Errorf("rote-shim: %v", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	if len(argv) < 2 {
		return fmt.Errorf("usage: rote-shim <binary-name> [args...]")
	}
	binaryName := argv[1]
	passthrough := argv[2:]

	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	env, err := runtime.Open(dir)
	if err != nil {
		return err
	}

	key, ok := runtime.FindToolByBinary(env, binaryName)
	if !ok {
		return errs.NoVersion(binaryName)
	}

	backendName, tool, version, installDir, err := runtime.ResolveAndEnsure(env, key)
	if err != nil {
		return err
	}

	binDir, err := env.Store.BinDir(backendName, tool, version)
	if err != nil {
		return err
	}
	_ = installDir // not needed: binDir already points inside the install dir

	exe := filepath.Join(binDir, binaryName)
	if _, err := os.Stat(exe); err != nil {
		return fmt.Errorf("resolved %s@%s but %s is missing from %s: %w", tool, version, binaryName, binDir, err)
	}

	cmd := exec.Command(exe, passthrough...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		return fmt.Errorf("run %s: %w", exe, err)
	}
	return nil
}
