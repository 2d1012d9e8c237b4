package version

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotehq/rote/pkg/backend"
	"github.com/rotehq/rote/pkg/cache"
)

// Resolver turns a raw VersionRequest string into a concrete version,
// consulting a backend's catalog, the alias table, or the local filesystem
// as the request kind demands -- spec component D in full, generalizing the
// teacher's Manager.resolveVersion (which only ever handled a literal
// concrete-version fast path or deferred everything else to a per-tool
// VersionResolver interface).
type Resolver struct {
	Registry *backend.Registry
	Ctx      *backend.InstallContext
	Cache    *cache.Store
}

// Resolve resolves req (raw config string) for backendName:tool, using
// aliases (tool -> alias name -> target request) when req matches one.
// An env var override ROTE_<TOOL>_VERSION takes precedence over everything,
// the same escape hatch the teacher exposed via MVX_<TOOL>_VERSION.
func (r *Resolver) Resolve(backendName, tool string, req string, aliases map[string]string) (string, error) {
	if override := os.Getenv(envOverrideName(tool)); override != "" {
		req = override
	}

	resolvedReq, err := ResolveAlias(aliases, req)
	if err != nil {
		return "", err
	}

	parsed := ParseRequest(resolvedReq)
	switch parsed.Kind {
	case KindLiteral:
		return parsed.Raw, nil
	case KindPath:
		if _, err := os.Stat(parsed.Path); err != nil {
			return "", fmt.Errorf("path version request %s: %w", parsed.Path, err)
		}
		return parsed.Raw, nil // the path itself stands in for a version identity
	case KindRef:
		return parsed.Raw, nil // VCS-style backends (e.g. rust toolchains) resolve refs at install time
	case KindSystem:
		return r.resolveSystem(backendName, tool)
	default: // KindPrefix, KindLatest
		return r.resolveFromCatalog(backendName, tool, parsed)
	}
}

func envOverrideName(tool string) string {
	return "ROTE_" + strings.ToUpper(tool) + "_VERSION"
}

const catalogCacheTTLHours = 24

func (r *Resolver) resolveFromCatalog(backendName, tool string, req Request) (string, error) {
	b, err := r.Registry.Get(backend.RegistryKey(backendName, tool))
	if err != nil {
		return "", err
	}

	var versions []string
	cacheKey := backendName + ":" + tool
	if r.Cache != nil && r.Cache.Get("version-catalog", cacheKey, &versions) {
		// cache hit
	} else {
		versions, err = b.ListVersions(r.Ctx)
		if err != nil {
			return "", fmt.Errorf("list versions for %s: %w", cacheKey, err)
		}
		if r.Cache != nil {
			_ = r.Cache.Put("version-catalog", cacheKey, cache.Fingerprint(backendName, tool), versions, catalogCacheTTLHours*time.Hour)
		}
	}

	spec, err := ParseSpec(req.Raw)
	if err != nil {
		return "", err
	}
	return spec.Resolve(versions)
}

func (r *Resolver) resolveSystem(backendName, tool string) (string, error) {
	b, err := r.Registry.Get(backend.RegistryKey(backendName, tool))
	if err != nil {
		return "", err
	}
	sd, ok := b.(backend.SystemDetector)
	if !ok {
		return "", fmt.Errorf("backend %s does not support system version requests", backendName)
	}
	home, err := sd.DetectSystemHome()
	if err != nil {
		return "", fmt.Errorf("detect system %s: %w", tool, err)
	}
	v, err := sd.DetectSystemVersion(home)
	if err != nil {
		return "", fmt.Errorf("detect system %s version: %w", tool, err)
	}
	return v, nil
}
