// Package backend implements rote's backend registry (spec component C):
// the Backend interface every tool plugin satisfies, and a Registry that
// looks backends up by name and lists what each one can install.
//
// This generalizes the teacher's pkg/tools.Manager/Tool split: Manager
// mixed registry bookkeeping, HTTP caching, and install orchestration into
// one struct. Here, Backend + Registry keep the "what can this plugin do"
// surface, while orchestration (locking, state machine, caching) moves to
// pkg/lifecycle so each concern has one owner.
package backend

import (
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Backend is the interface every tool plugin implements, renaming and
// trimming the teacher's pkg/tools.Tool: GetManager/GetToolName collapsed
// into the registry holding the name, and the deprecated InstallTool-era
// methods dropped since pkg/lifecycle now owns orchestration.
type Backend interface {
	// Name is the tool name this backend installs, e.g. "java", "node".
	Name() string

	// Install fetches and unpacks version into destDir.
	Install(ctx *InstallContext, version, destDir string) error

	// Verify runs the freshly-installed binary to confirm it reports the
	// expected version, catching silent corrupt/partial extracts.
	Verify(destDir, version string) error

	// BinDir returns the directory (relative to destDir after extraction,
	// already resolved to an absolute path) holding the tool's executables.
	BinDir(destDir, version string) (string, error)

	// ListVersions returns the catalog of installable version strings.
	ListVersions(ctx *InstallContext) ([]string, error)
}

// ToolInfoProvider is an optional interface a backend can implement to
// supply metadata about the tool it installs, mirroring the teacher's
// optional ToolInfoProvider; its BinaryName is what runtime.BinaryNameFor
// and lifecycle's shim cleanup use as the executable's name.
type ToolInfoProvider interface {
	ToolInfo() Info
}

// Info is descriptive metadata about a backend.
type Info struct {
	Description string
	Homepage    string
	BinaryName  string
}

// SystemDetector is an optional interface a backend implements to support
// `system` version requests, adapted from the teacher's SystemToolDetector.
type SystemDetector interface {
	DetectSystemHome() (string, error)
	DetectSystemVersion(home string) (string, error)
}

// InstallContext carries the shared, cacheable dependencies a backend needs
// (HTTP client, env-derived config) without each backend constructing its
// own -- adapted from the teacher's Manager embedding a single httpClient
// and ConfigProvider for every tool.
type InstallContext struct {
	HTTPClient *http.Client
	Config     ConfigProvider
}

// ConfigProvider exposes the env-derived download/retry/concurrency knobs,
// adapted from the teacher's pkg/tools.DownloadConfigProvider.
type ConfigProvider interface {
	DownloadTimeout() time.Duration
	MaxRetries() int
	RetryDelay() time.Duration
	MaxConcurrentInstalls() int
	Verbose() bool
}

// Factory builds a Backend instance; registered per name so discovery stays
// data-driven the way the teacher's toolFactories map did.
type Factory func() Backend

// Registry holds every known backend, keyed by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	instances map[string]Backend
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		instances: make(map[string]Backend),
	}
}

// Register adds a backend factory under name, overwriting any previous
// registration -- used both by the built-in "core:*" backends and by any
// future plugin backend.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns the (lazily constructed, memoized) backend for name.
func (r *Registry) Get(name string) (Backend, error) {
	r.mu.RLock()
	if b, ok := r.instances[name]; ok {
		r.mu.RUnlock()
		return b, nil
	}
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.instances[name]; ok {
		return b, nil
	}
	b := factory()
	r.instances[name] = b
	return b, nil
}

// RegistryKey joins a backend plugin name and tool name into the key
// backends are registered under, e.g. ("core", "java") -> "core:java".
// Every caller that looks a Backend up by (backend, tool) -- rather than
// already holding the combined "[tools]" key from layerconfig -- must go
// through this so the two never drift apart.
func RegistryKey(backendName, tool string) string {
	return backendName + ":" + tool
}

// Names returns every registered backend name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewDefaultRegistry registers every built-in "core:*" backend, the
// equivalent of the teacher's discoverAndRegisterTools.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("core:java", func() Backend { return &JavaBackend{} })
	r.Register("core:maven", func() Backend { return &MavenBackend{} })
	r.Register("core:mvnd", func() Backend { return &MvndBackend{} })
	r.Register("core:node", func() Backend { return &NodeBackend{} })
	r.Register("core:go", func() Backend { return &GoBackend{} })
	r.Register("core:python", func() Backend { return &PythonBackend{} })
	r.Register("core:rust", func() Backend { return &RustBackend{} })
	return r
}
