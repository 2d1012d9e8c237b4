package version_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotehq/rote/pkg/backend"
	"github.com/rotehq/rote/pkg/version"
)

type fakeCatalogBackend struct {
	versions []string
	home     string
	sysVer   string
}

func (f *fakeCatalogBackend) Name() string { return "java" }
func (f *fakeCatalogBackend) Install(ctx *backend.InstallContext, version, destDir string) error {
	return nil
}
func (f *fakeCatalogBackend) Verify(destDir, version string) error { return nil }
func (f *fakeCatalogBackend) BinDir(destDir, version string) (string, error) {
	return destDir, nil
}
func (f *fakeCatalogBackend) ListVersions(ctx *backend.InstallContext) ([]string, error) {
	return f.versions, nil
}
func (f *fakeCatalogBackend) DetectSystemHome() (string, error)         { return f.home, nil }
func (f *fakeCatalogBackend) DetectSystemVersion(home string) (string, error) { return f.sysVer, nil }

func newResolver(t *testing.T, fb *fakeCatalogBackend) *version.Resolver {
	t.Helper()
	reg := backend.NewRegistry()
	reg.Register("core:java", func() backend.Backend { return fb })
	return &version.Resolver{Registry: reg, Ctx: &backend.InstallContext{}}
}

func TestResolveLiteralPassesThrough(t *testing.T) {
	r := newResolver(t, &fakeCatalogBackend{})
	got, err := r.Resolve("core", "java", "21.0.5", nil)
	require.NoError(t, err)
	assert.Equal(t, "21.0.5", got)
}

func TestResolvePrefixPicksHighestFromCatalog(t *testing.T) {
	r := newResolver(t, &fakeCatalogBackend{versions: []string{"21.0.1", "21.0.5", "20.0.9"}})
	got, err := r.Resolve("core", "java", "21", nil)
	require.NoError(t, err)
	assert.Equal(t, "21.0.5", got)
}

func TestResolveAliasIndirection(t *testing.T) {
	r := newResolver(t, &fakeCatalogBackend{versions: []string{"21.0.1", "21.0.5", "20.0.9"}})
	aliases := map[string]string{"lts": "21"}
	got, err := r.Resolve("core", "java", "lts", aliases)
	require.NoError(t, err)
	assert.Equal(t, "21.0.5", got)
}

func TestResolveSystemUsesDetector(t *testing.T) {
	r := newResolver(t, &fakeCatalogBackend{home: "/usr/lib/jvm/java-21", sysVer: "21.0.2"})
	got, err := r.Resolve("core", "java", "system", nil)
	require.NoError(t, err)
	assert.Equal(t, "21.0.2", got)
}

func TestResolveEnvOverrideWins(t *testing.T) {
	r := newResolver(t, &fakeCatalogBackend{versions: []string{"21.0.5"}})
	require.NoError(t, os.Setenv("ROTE_JAVA_VERSION", "21.0.5"))
	defer os.Unsetenv("ROTE_JAVA_VERSION")

	got, err := r.Resolve("core", "java", "20", nil)
	require.NoError(t, err)
	assert.Equal(t, "21.0.5", got, "env override should replace the config-supplied request before resolution")
}

func TestResolvePathRequiresExistingPath(t *testing.T) {
	r := newResolver(t, &fakeCatalogBackend{})
	_, err := r.Resolve("core", "java", "path:/definitely/not/here", nil)
	assert.Error(t, err)
}
