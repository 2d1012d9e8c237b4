// Package errs defines the typed error vocabulary shared across rote's
// components, following the teacher's pkg/tools/errors.go pattern of a
// single wrapped struct per concern instead of bare fmt.Errorf strings.
package errs

import "fmt"

// Kind identifies one of the error classes a caller can match on with
// errors.Is / a type switch, independent of the human-readable message.
type Kind string

const (
	KindNoVersion       Kind = "no_version"       // no version request resolves for a tool
	KindUnknownBackend  Kind = "unknown_backend"  // backend name not registered
	KindInstallFailed   Kind = "install_failed"   // download/extract/verify failed
	KindInstallBusy     Kind = "install_busy"     // lock held by another process
	KindCorruptInstall  Kind = "corrupt_install"  // install dir present but unusable
	KindChecksumMismatch Kind = "checksum_mismatch"
	KindTaskCycle       Kind = "task_cycle"       // depends/depends_post form a cycle
	KindTaskNotFound    Kind = "task_not_found"
	KindAliasCycle      Kind = "alias_cycle"      // version alias resolution looped
	KindConfigInvalid   Kind = "config_invalid"
	KindCacheCorrupt    Kind = "cache_corrupt"
	KindShimConflict    Kind = "shim_conflict"
	KindInUse           Kind = "in_use"           // uninstall refused: another process holds the install lock
)

// Error is the common wrapper for every error kind rote returns across
// package boundaries. Op/Tool/Version give callers enough context to log
// or display without re-deriving it.
type Error struct {
	Kind    Kind
	Op      string // operation being performed, e.g. "install", "resolve"
	Tool    string // backend:tool pair or task name, empty if not applicable
	Version string // version request string, empty if not applicable
	Err     error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	switch {
	case e.Tool != "" && e.Version != "":
		if e.Err != nil {
			return fmt.Sprintf("%s %s@%s: %v", e.Op, e.Tool, e.Version, e.Err)
		}
		return fmt.Sprintf("%s %s@%s: %s", e.Op, e.Tool, e.Version, e.Kind)
	case e.Tool != "":
		if e.Err != nil {
			return fmt.Sprintf("%s %s: %v", e.Op, e.Tool, e.Err)
		}
		return fmt.Sprintf("%s %s: %s", e.Op, e.Tool, e.Kind)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Op, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, errs.InstallBusy("", "")) style matching work by
// comparing Kind when the target is itself an *Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, op, tool, version string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Tool: tool, Version: version, Err: cause}
}

func NoVersion(tool string) *Error {
	return New(KindNoVersion, "resolve", tool, "", nil)
}

func UnknownBackend(name string) *Error {
	return New(KindUnknownBackend, "lookup", name, "", nil)
}

func InstallFailed(tool, version string, cause error) *Error {
	return New(KindInstallFailed, "install", tool, version, cause)
}

func InstallBusy(tool, version string) *Error {
	return New(KindInstallBusy, "install", tool, version, nil)
}

func CorruptInstall(tool, version string, cause error) *Error {
	return New(KindCorruptInstall, "verify", tool, version, cause)
}

func ChecksumMismatch(tool, version string, cause error) *Error {
	return New(KindChecksumMismatch, "checksum", tool, version, cause)
}

func TaskCycle(cycle string) *Error {
	return New(KindTaskCycle, "plan", cycle, "", nil)
}

func TaskNotFound(name string) *Error {
	return New(KindTaskNotFound, "lookup", name, "", nil)
}

func AliasCycle(tool, alias string) *Error {
	return New(KindAliasCycle, "resolve", tool, alias, nil)
}

func ConfigInvalid(path string, cause error) *Error {
	return New(KindConfigInvalid, "load", path, "", cause)
}

func CacheCorrupt(key string, cause error) *Error {
	return New(KindCacheCorrupt, "read", key, "", cause)
}

func ShimConflict(name string) *Error {
	return New(KindShimConflict, "reconcile", name, "", nil)
}

func InUse(tool, version string) *Error {
	return New(KindInUse, "uninstall", tool, version, nil)
}
