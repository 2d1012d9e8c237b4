// Package lifecycle owns the install orchestration spec component E
// describes: a content-addressed install layout, an explicit install state
// machine (NotInstalled -> Staging -> Installed -> Corrupt -> reinstall ->
// Installed; Installed -> Uninstalled is terminal), and per-(backend,tool)
// advisory locking so two concurrent `rote install` invocations never race
// on the same destination directory.
//
// This is new relative to the teacher: pkg/tools.Manager mixed orchestration
// into the same struct as the registry and an ad-hoc boolean isToolInstalled
// cache, with no lock file at all -- concurrent installs of the same tool
// were simply undefined behavior. Locking here is grounded in
// github.com/gofrs/flock, the advisory-lock library terassyi-tomei uses for
// its own install-time coordination.
package lifecycle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gofrs/flock"

	"github.com/rotehq/rote/pkg/backend"
	"github.com/rotehq/rote/pkg/errs"
)

// State is one point in the install state machine.
type State string

const (
	StateNotInstalled State = "not_installed"
	StateStaging       State = "staging"
	StateInstalled     State = "installed"
	StateCorrupt       State = "corrupt"
	StateUninstalled   State = "uninstalled" // terminal
)

// Manifest is the ".rote.lock" file written alongside a completed install,
// recording which backend, tool and version was installed, when, and in
// what state. It holds no checksums, so changes to the installed files
// themselves are not detected from it.
type Manifest struct {
	Backend   string    `json:"backend"`
	Tool      string    `json:"tool"`
	Version   string    `json:"version"`
	InstalledAt time.Time `json:"installed_at"`
	State     State     `json:"state"`
}

// Store manages the content-addressed install tree rooted at dataDir,
// matching spec component E's layout: <data>/installs/<backend>/<tool>/<version>/.
type Store struct {
	dataDir  string
	registry *backend.Registry
	ctx      *backend.InstallContext
	// ShimDir, if set, is where Uninstall removes a tool's own shim from
	// once no install of it remains, mirroring shim.Reconcile's
	// signature-checked safe removal so Uninstall never touches a file it
	// doesn't own.
	ShimDir string
}

func NewStore(dataDir string, registry *backend.Registry, ctx *backend.InstallContext) *Store {
	return &Store{dataDir: dataDir, registry: registry, ctx: ctx}
}

func (s *Store) InstallDir(backendName, tool, version string) string {
	return filepath.Join(s.dataDir, "installs", backendName, tool, version)
}

func (s *Store) stagingDir(backendName, tool, version string) string {
	return filepath.Join(s.dataDir, "installs", backendName, tool, "."+version+".staging")
}

func (s *Store) lockPath(backendName, tool string) string {
	return filepath.Join(s.dataDir, "locks", backendName+"-"+tool+".lock")
}

func (s *Store) manifestPath(backendName, tool, version string) string {
	return filepath.Join(s.InstallDir(backendName, tool, version), ".rote.lock")
}

// CurrentState inspects disk to classify an install's current state.
func (s *Store) CurrentState(backendName, tool, version string) State {
	dir := s.InstallDir(backendName, tool, version)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return StateNotInstalled
	}
	data, err := os.ReadFile(s.manifestPath(backendName, tool, version))
	if err != nil {
		return StateCorrupt // directory exists but no manifest: treat as corrupt
	}
	var m Manifest
	if json.Unmarshal(data, &m) != nil {
		return StateCorrupt
	}
	return m.State
}

// lockBackoff is how long Ensure waits between non-blocking TryLock
// attempts before giving up with errs.InstallBusy, bounding how long a
// caller blocks on a sibling process's install of the same tool.
const lockRetries = 20
const lockBackoff = 500 * time.Millisecond

// Ensure runs the full install state machine for one (backend, tool,
// version): if already Installed, verifies and returns; if Corrupt,
// wipes and reinstalls; if NotInstalled, stages then promotes atomically.
// A flock-guarded lock serializes concurrent callers targeting the same
// (backend, tool) pair across processes.
func (s *Store) Ensure(backendName, tool, version string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(s.lockPath(backendName, tool)), 0o755); err != nil {
		return "", err
	}
	fl := flock.New(s.lockPath(backendName, tool))
	locked := false
	for i := 0; i < lockRetries; i++ {
		ok, err := fl.TryLock()
		if err != nil {
			return "", fmt.Errorf("acquire install lock: %w", err)
		}
		if ok {
			locked = true
			break
		}
		time.Sleep(lockBackoff)
	}
	if !locked {
		return "", errs.InstallBusy(backendName+":"+tool, version)
	}
	defer fl.Unlock()

	return s.ensureLocked(backendName, tool, version)
}

func (s *Store) ensureLocked(backendName, tool, version string) (string, error) {
	b, err := s.registry.Get(backend.RegistryKey(backendName, tool))
	if err != nil {
		return "", errs.UnknownBackend(backendName)
	}

	dir := s.InstallDir(backendName, tool, version)
	switch s.CurrentState(backendName, tool, version) {
	case StateInstalled:
		if err := b.Verify(dir, version); err == nil {
			return dir, nil
		}
		// Verify failing against a manifest claiming Installed means the
		// directory was tampered with or partially deleted; fall through
		// to a full reinstall rather than trusting the stale manifest.
		if err := os.RemoveAll(dir); err != nil {
			return "", errs.CorruptInstall(tool, version, err)
		}
	case StateCorrupt:
		if err := os.RemoveAll(dir); err != nil {
			return "", errs.CorruptInstall(tool, version, err)
		}
	case StateUninstalled:
		return "", errs.New(errs.KindInstallFailed, "install", tool, version,
			fmt.Errorf("tool was explicitly uninstalled; remove the manifest to reinstall"))
	}

	staging := s.stagingDir(backendName, tool, version)
	if err := os.RemoveAll(staging); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(staging), 0o755); err != nil {
		return "", err
	}

	if err := b.Install(s.ctx, version, staging); err != nil {
		os.RemoveAll(staging)
		return "", errs.InstallFailed(backendName+":"+tool, version, err)
	}
	if err := b.Verify(staging, version); err != nil {
		os.RemoveAll(staging)
		return "", errs.InstallFailed(backendName+":"+tool, version, err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return "", err
	}
	if err := os.Rename(staging, dir); err != nil {
		return "", fmt.Errorf("promote staged install: %w", err)
	}

	manifest := Manifest{Backend: backendName, Tool: tool, Version: version, InstalledAt: time.Now(), State: StateInstalled}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(s.manifestPath(backendName, tool, version), data, 0o644); err != nil {
		return "", err
	}
	return dir, nil
}

// Uninstall removes an install directory and marks it terminal by writing
// a State: uninstalled manifest in its place (spec's "Installed ->
// Uninstalled (terminal)" transition), so a later status check doesn't
// silently reinstall on next use without an explicit `rote install` again.
// It refuses with errs.InUse if another process currently holds the
// (backend, tool) install lock (e.g. a concurrent `rote install` of a
// different version), and removes this tool's own shim from ShimDir once
// no other version of it remains installed.
func (s *Store) Uninstall(backendName, tool, version string) error {
	if err := os.MkdirAll(filepath.Dir(s.lockPath(backendName, tool)), 0o755); err != nil {
		return err
	}
	fl := flock.New(s.lockPath(backendName, tool))
	locked := false
	for i := 0; i < lockRetries; i++ {
		ok, err := fl.TryLock()
		if err != nil {
			return fmt.Errorf("acquire install lock: %w", err)
		}
		if ok {
			locked = true
			break
		}
		time.Sleep(lockBackoff)
	}
	if !locked {
		return errs.InUse(backendName+":"+tool, version)
	}
	defer fl.Unlock()

	dir := s.InstallDir(backendName, tool, version)
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	manifest := Manifest{Backend: backendName, Tool: tool, Version: version, InstalledAt: time.Now(), State: StateUninstalled}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.manifestPath(backendName, tool, version), data, 0o644); err != nil {
		return err
	}

	if s.ShimDir != "" && !s.hasOtherInstalledVersion(backendName, tool, version) {
		if err := s.removeOwnedShim(backendName, tool); err != nil {
			return err
		}
	}
	return nil
}

// hasOtherInstalledVersion reports whether any version of (backendName,
// tool) other than version is still in the StateInstalled state.
func (s *Store) hasOtherInstalledVersion(backendName, tool, version string) bool {
	toolDir := filepath.Join(s.dataDir, "installs", backendName, tool)
	entries, err := os.ReadDir(toolDir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() || e.Name() == version || e.Name()[0] == '.' {
			continue
		}
		if s.CurrentState(backendName, tool, e.Name()) == StateInstalled {
			return true
		}
	}
	return false
}

// removeOwnedShim deletes (backendName, tool)'s shim file from ShimDir, but
// only if it's a shim rote itself created -- a shim that was never
// reconciled, or that something else occupies, is left untouched.
func (s *Store) removeOwnedShim(backendName, tool string) error {
	binaryName := tool
	if b, err := s.registry.Get(backend.RegistryKey(backendName, tool)); err == nil {
		if info, ok := b.(backend.ToolInfoProvider); ok {
			if name := info.ToolInfo().BinaryName; name != "" {
				binaryName = name
			}
		}
	}
	fname := binaryName
	if runtime.GOOS == "windows" {
		fname += ".cmd"
	}
	path := filepath.Join(s.ShimDir, fname)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil // no shim to remove
	}
	if !bytes.Contains(data, []byte("rote-shim-marker:")) {
		return nil // not ours, never touch it
	}
	return os.Remove(path)
}

// GCStaging removes staging directories older than maxAge (default use:
// 1 hour), cleaning up after a process that staged an install and then
// crashed before promoting it.
func (s *Store) GCStaging(maxAge time.Duration) error {
	root := filepath.Join(s.dataDir, "installs")
	var stagingDirs []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() && len(info.Name()) > 0 && info.Name()[0] == '.' && filepath.Ext(info.Name()) == ".staging" {
			stagingDirs = append(stagingDirs, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cutoff := time.Now().Add(-maxAge)
	for _, d := range stagingDirs {
		info, err := os.Stat(d)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.RemoveAll(d)
		}
	}
	return nil
}

// BinDir resolves the bin directory for an installed (backend, tool,
// version), used by pkg/envbuild and cmd/rote-shim.
func (s *Store) BinDir(backendName, tool, version string) (string, error) {
	b, err := s.registry.Get(backend.RegistryKey(backendName, tool))
	if err != nil {
		return "", errs.UnknownBackend(backendName)
	}
	return b.BinDir(s.InstallDir(backendName, tool, version), version)
}
