// Package runtime wires together layerconfig, version, and lifecycle into
// the single "given a directory and a tool name, what installed binary
// should run" operation both the shim dispatcher (cmd/rote-shim) and the
// main CLI's `rote x` / task execution need. Factoring it out here avoids
// cmd/rote-shim depending on the full cobra command tree the way a shim
// re-exec should not: it needs to be small and fast, not pull in every
// subcommand's dependencies.
package runtime

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rotehq/rote/pkg/backend"
	"github.com/rotehq/rote/pkg/cache"
	"github.com/rotehq/rote/pkg/errs"
	"github.com/rotehq/rote/pkg/layerconfig"
	"github.com/rotehq/rote/pkg/lifecycle"
	rversion "github.com/rotehq/rote/pkg/version"
)

// Env bundles the long-lived handles a resolve-and-install operation
// needs, constructed once per process invocation.
type Env struct {
	Registry *backend.Registry
	Store    *lifecycle.Store
	Resolver *rversion.Resolver
	Config   *layerconfig.EffectiveConfig
}

// Open discovers the effective config rooted at dir and assembles an Env
// against the standard data directory layout (ROTE_DATA_DIR, defaulting to
// ~/.local/share/rote, mirroring the teacher's XDG-style DataDir()).
func Open(dir string) (*Env, error) {
	eff, err := layerconfig.Load(dir)
	if err != nil {
		return nil, errs.ConfigInvalid(dir, err)
	}

	dataDir := DataDir()
	registry := backend.NewDefaultRegistry()
	ctx := backend.NewInstallContext()
	if ctx.HTTPClient == nil {
		ctx.HTTPClient = &http.Client{Timeout: 5 * time.Minute}
	}
	store := lifecycle.NewStore(dataDir, registry, ctx)
	store.ShimDir = filepath.Join(dataDir, "shims")
	// Clean up staging directories a crashed install left behind before
	// this process does any installing of its own.
	_ = store.GCStaging(time.Hour)
	cacheStore, err := cache.Open(filepath.Join(dataDir, "cache"))
	if err != nil {
		return nil, err
	}
	resolver := &rversion.Resolver{Registry: registry, Ctx: ctx, Cache: cacheStore}

	return &Env{Registry: registry, Store: store, Resolver: resolver, Config: eff}, nil
}

// DataDir is rote's install/cache root, overridable with ROTE_DATA_DIR.
func DataDir() string {
	if d := os.Getenv("ROTE_DATA_DIR"); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "rote")
	}
	return filepath.Join(home, ".local", "share", "rote")
}

// ResolveAndEnsure resolves tool's effective version request from cfg and
// makes sure it is installed, returning the install directory. key is the
// "[tools]" map key (e.g. "core:java"); backendName/tool come from
// splitting it, matching layerconfig.ParseFile's convention.
func ResolveAndEnsure(env *Env, key string) (backendName, tool, version, installDir string, err error) {
	spec, ok := env.Config.Tools[key]
	if !ok {
		return "", "", "", "", errs.NoVersion(key)
	}
	backendName, tool = spec.Backend, spec.Name

	version, err = env.Resolver.Resolve(backendName, tool, spec.Version, env.Config.Aliases[tool])
	if err != nil {
		return "", "", "", "", fmt.Errorf("resolve %s: %w", key, err)
	}

	installDir, err = env.Store.Ensure(backendName, tool, version)
	if err != nil {
		return "", "", "", "", err
	}
	return backendName, tool, version, installDir, nil
}

// FindToolByBinary looks for a "[tools]" entry whose backend declares
// binaryName as one of its executables, used by the shim dispatcher which
// only knows the binary name (e.g. "mvn") it was invoked as, not the
// "[tools]" key or tool name (e.g. "core:maven" / "maven"). A backend
// without a ToolInfoProvider is assumed to expose a binary matching its
// tool name, the common case (node, go, python, rust).
func FindToolByBinary(env *Env, binaryName string) (key string, ok bool) {
	for k, spec := range env.Config.Tools {
		if BinaryNameFor(env.Registry, spec.Backend, spec.Name) == binaryName {
			return k, true
		}
	}
	return "", false
}

// BinaryNameFor returns the executable name a (backend, tool) pair
// installs, consulting the backend's ToolInfo if it provides one.
func BinaryNameFor(registry *backend.Registry, backendName, tool string) string {
	b, err := registry.Get(backend.RegistryKey(backendName, tool))
	if err != nil {
		return tool
	}
	if info, ok := b.(backend.ToolInfoProvider); ok {
		if name := info.ToolInfo().BinaryName; name != "" {
			return name
		}
	}
	return tool
}

