// Package shim implements spec component G: a directory of small
// dispatcher executables on PATH, one per shimmed tool binary, each of
// which re-execs into whichever installed version the current directory's
// effective config resolves to. New relative to the teacher, which only
// ever exposed tools as cobra passthrough subcommands
// (cmd/root.go's addToolCommands) -- shims work from any directory without
// going through the rote binary's own subcommand dispatch, the way asdf/
// mise shims do.
package shim

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/gofrs/flock"
)

// signaturePrefix marks a file as a rote-managed shim so reconciliation can
// tell "a shim we created" apart from "something else put a file here",
// and only ever removes the former.
const signaturePrefix = "#!/usr/bin/env rote-shim-marker:"

// Desired is the set of binary names that should have a shim, derived from
// every tool a project's effective config declares (across backends).
type Desired struct {
	BinaryNames []string
}

// Reconcile brings shimDir's contents in line with desired: creates
// missing shims, and removes any existing rote-managed shim not in
// desired. A non-rote file occupying a shim's name is left untouched and
// reported back as a conflict rather than overwritten, matching spec
// component G's "safe removal" requirement.
func Reconcile(shimDir string, desired Desired, shimTargetExe string) (created, removed []string, conflicts []string, err error) {
	if err = os.MkdirAll(shimDir, 0o755); err != nil {
		return nil, nil, nil, err
	}

	lockPath := filepath.Join(shimDir, ".rote-shim.lock")
	fl := flock.New(lockPath)
	if err = fl.Lock(); err != nil {
		return nil, nil, nil, fmt.Errorf("lock shim dir: %w", err)
	}
	defer fl.Unlock()

	entries, readErr := os.ReadDir(shimDir)
	if readErr != nil {
		return nil, nil, nil, readErr
	}

	present := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() || e.Name() == filepath.Base(lockPath) {
			continue
		}
		present[e.Name()] = true
	}

	wanted := make(map[string]bool, len(desired.BinaryNames))
	for _, name := range desired.BinaryNames {
		wanted[shimFileName(name)] = true
	}

	names := append([]string(nil), desired.BinaryNames...)
	sort.Strings(names)
	for _, name := range names {
		fname := shimFileName(name)
		path := filepath.Join(shimDir, fname)
		if present[fname] {
			if isRoteShim(path) {
				continue // already present as a rote shim; its contents are not rewritten
			}
			conflicts = append(conflicts, fname)
			continue
		}
		if err = writeShim(path, name, shimTargetExe); err != nil {
			return created, removed, conflicts, err
		}
		created = append(created, fname)
	}

	var stale []string
	for fname := range present {
		if wanted[fname] {
			continue
		}
		path := filepath.Join(shimDir, fname)
		if !isRoteShim(path) {
			continue // not ours, never touch it
		}
		stale = append(stale, fname)
	}
	sort.Strings(stale)
	for _, fname := range stale {
		if err = os.Remove(filepath.Join(shimDir, fname)); err != nil {
			return created, removed, conflicts, err
		}
		removed = append(removed, fname)
	}

	return created, removed, conflicts, nil
}

func shimFileName(binary string) string {
	if runtime.GOOS == "windows" {
		return binary + ".cmd"
	}
	return binary
}

// writeShim creates a dispatcher script that re-execs shimTargetExe with
// the real binary name as its first argument; the rote-shim binary (see
// cmd/rote-shim) looks itself up by that name to resolve the right version.
func writeShim(path, binaryName, shimTargetExe string) error {
	var content string
	if runtime.GOOS == "windows" {
		content = fmt.Sprintf("@echo off\r\n%s%s %s %%*\r\n", signatureComment(binaryName), shimTargetExe, binaryName)
	} else {
		content = fmt.Sprintf("#!/usr/bin/env bash\n%s\nexec %q %q \"$@\"\n", signatureComment(binaryName), shimTargetExe, binaryName)
	}
	return os.WriteFile(path, []byte(content), 0o755)
}

func signatureComment(binaryName string) string {
	return fmt.Sprintf("# %s%s", signaturePrefix, shimSignature(binaryName))
}

func shimSignature(binaryName string) string {
	h := sha256.Sum256([]byte(binaryName))
	return hex.EncodeToString(h[:])[:12]
}

func isRoteShim(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if len(data) > 4096 {
		data = data[:4096]
	}
	return containsSignature(string(data))
}

func containsSignature(content string) bool {
	for i := 0; i+len(signaturePrefix) <= len(content); i++ {
		if content[i:i+len(signaturePrefix)] == signaturePrefix {
			return true
		}
	}
	return false
}
